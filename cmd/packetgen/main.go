// Command packetgen renders the serverbound dispatch table from its YAML schema.
//
//	go run ./cmd/packetgen -schema protocol/serverbound.yaml -out protocol/serverbound_gen.go
package main

import (
	"bytes"
	"flag"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"text/template"

	"github.com/cloudwego/kitex/pkg/klog"

	"github.com/gogogo1024/mcgate/internal/schema"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		schemaPath = flag.String("schema", "serverbound.yaml", "path to the packet schema")
		outPath    = flag.String("out", "serverbound_gen.go", "path of the generated Go file")
		pkg        = flag.String("package", "protocol", "package name of the generated file")
	)
	flag.Parse()

	s, err := schema.Load(*schemaPath)
	if err != nil {
		klog.Errorf("packetgen: %v", err)
		return 1
	}
	if issues := s.Validate(); len(issues) > 0 {
		for _, it := range issues {
			klog.Errorf("packetgen: %s", it)
		}
		return 1
	}

	src, err := render(*pkg, filepath.Base(*schemaPath), s)
	if err != nil {
		klog.Errorf("packetgen: %v", err)
		return 1
	}
	if err := os.WriteFile(*outPath, src, 0o644); err != nil {
		klog.Errorf("packetgen: write %s: %v", *outPath, err)
		return 1
	}
	fmt.Printf("ok: wrote %s (%d packets)\n", *outPath, len(s.Packets()))
	return 0
}

type templateData struct {
	Package  string
	Source   string
	Protocol int
	Packets  []schema.Packet
	States   []schema.State
}

func render(pkg, source string, s *schema.Schema) ([]byte, error) {
	var buf bytes.Buffer
	err := genTemplate.Execute(&buf, templateData{
		Package:  pkg,
		Source:   source,
		Protocol: s.Protocol,
		Packets:  s.Packets(),
		States:   s.States,
	})
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("gofmt generated source: %w", err)
	}
	return out, nil
}

var genTemplate = template.Must(template.New("gen").Parse(`// Code generated by packetgen from {{.Source}}; DO NOT EDIT.

package {{.Package}}

// ProtocolVersion is the protocol number the serverbound table describes.
const ProtocolVersion = {{.Protocol}}

const (
{{- range $i, $p := .Packets}}
	Kind{{$p.Name}}{{if eq $i 0}} Kind = iota{{end}}
{{- end}}

	kindCount
)

var kinds = [kindCount]kindInfo{
{{- range .Packets}}
	Kind{{.Name}}: {name: "{{.Name}}", state: State{{.State}}, id: {{printf "0x%02X" .ID}}, new: func() Packet { return new({{.Name}}) }},
{{- end}}
}

var byState = [stateCount][]Kind{
{{- range .States}}
	State{{.State}}: {
{{- range .Packets}}
		Kind{{.Name}},
{{- end}}
	},
{{- end}}
}
{{range .Packets}}
func (*{{.Name}}) Kind() Kind      { return Kind{{.Name}} }
func (*{{.Name}}) isServerbound() {}
{{end -}}
`))
