package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gogogo1024/mcgate/internal/schema"
)

type loc struct {
	file string
	line int
}

type issue struct {
	msg string
}

type patterns struct {
	structDefRe    *regexp.Regexp
	decodeRe       *regexp.Regexp
	encodeRe       *regexp.Regexp
	tableEntryRe   *regexp.Regexp
	kindRegisterRe *regexp.Regexp
}

func defaultPatterns() patterns {
	return patterns{
		structDefRe:    regexp.MustCompile(`(?m)^type\s+([A-Z][0-9A-Za-z_]*)\s+struct\b`),
		decodeRe:       regexp.MustCompile(`(?m)^func\s+\(\w+\s+\*([A-Z][0-9A-Za-z_]*)\)\s+Decode\(\w+\s+\*Reader\)`),
		encodeRe:       regexp.MustCompile(`(?m)^func\s+\(\w+\s+\*([A-Z][0-9A-Za-z_]*)\)\s+Encode\(\w+\s+\*Writer\)`),
		tableEntryRe:   regexp.MustCompile(`Kind([0-9A-Za-z_]+):\s*\{name:\s*"([^"]*)",\s*state:\s*State([A-Za-z]+),\s*id:\s*(0x[0-9A-Fa-f]+)`),
		kindRegisterRe: regexp.MustCompile(`\.Register\(\s*protocol\.Kind([0-9A-Za-z_]+)\s*,`),
	}
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("validate-packets", flag.ContinueOnError)
	var (
		schemaPath   = fs.String("schema", "protocol/serverbound.yaml", "path to the packet schema")
		protocolDir  = fs.String("protocol", "protocol", "directory of the protocol package")
		genPath      = fs.String("gen", "protocol/serverbound_gen.go", "path to the generated dispatch table")
		registryPath = fs.String("registry", "internal/service/registry.go", "path to the default handler registry")
		requireAll   = fs.Bool("require-all", false, "if true, require a handler for every packet in the schema")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	scan, issues := scanAll(*schemaPath, *protocolDir, *genPath, *registryPath)
	issues = append(issues, validateConsistency(scan, *requireAll)...)

	if len(issues) == 0 {
		fmt.Printf(
			"ok: packet table looks consistent (packets=%d structs=%d generated=%d handled=%d)\n",
			len(scan.packets),
			len(scan.structs),
			len(scan.generated),
			len(scan.handled),
		)
		return 0
	}

	sort.Slice(issues, func(i, j int) bool { return issues[i].msg < issues[j].msg })
	for _, it := range issues {
		fmt.Printf("- %s\n", it.msg)
	}
	return 1
}

type genEntry struct {
	name  string
	state string
	id    int
	loc   loc
}

type scanResult struct {
	schemaPath string
	packets    map[string]schema.Packet
	structs    map[string]loc
	decoders   map[string]loc
	encoders   map[string]loc
	generated  map[string]genEntry
	handled    map[string]loc
}

func scanAll(schemaPath, protocolDir, genPath, registryPath string) (scanResult, []issue) {
	pat := defaultPatterns()
	out := scanResult{
		schemaPath: schemaPath,
		packets:    map[string]schema.Packet{},
		structs:    map[string]loc{},
		decoders:   map[string]loc{},
		encoders:   map[string]loc{},
		generated:  map[string]genEntry{},
		handled:    map[string]loc{},
	}
	var issues []issue

	s, err := schema.Load(schemaPath)
	if err != nil {
		return out, []issue{{msg: fmt.Sprintf("load %s: %v", schemaPath, err)}}
	}
	for _, msg := range s.Validate() {
		issues = append(issues, issue{msg: fmt.Sprintf("%s: %s", schemaPath, msg)})
	}
	for _, p := range s.Packets() {
		out.packets[p.Name] = p
	}

	files, err := filepath.Glob(filepath.Join(protocolDir, "*.go"))
	if err != nil || len(files) == 0 {
		issues = append(issues, issue{msg: fmt.Sprintf("no Go files found in %s", protocolDir)})
	}
	for _, f := range files {
		if strings.HasSuffix(f, "_test.go") {
			continue
		}
		text, rerr := readFile(f)
		if rerr != nil {
			issues = append(issues, *rerr)
			continue
		}
		scanRefs(f, text, pat.structDefRe, out.structs)
		scanRefs(f, text, pat.decodeRe, out.decoders)
		scanRefs(f, text, pat.encodeRe, out.encoders)
	}

	if text, rerr := readFile(genPath); rerr != nil {
		issues = append(issues, *rerr)
	} else {
		issues = append(issues, scanGenerated(genPath, text, pat.tableEntryRe, out.generated)...)
	}

	if text, rerr := readFile(registryPath); rerr != nil {
		issues = append(issues, *rerr)
	} else {
		scanRefs(registryPath, text, pat.kindRegisterRe, out.handled)
	}
	return out, issues
}

func readFile(path string) (string, *issue) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", &issue{msg: fmt.Sprintf("read %s: %v", path, err)}
	}
	return string(b), nil
}

func scanGenerated(path, s string, re *regexp.Regexp, out map[string]genEntry) []issue {
	var issues []issue
	for _, mi := range re.FindAllStringSubmatchIndex(s, -1) {
		kind := s[mi[2]:mi[3]]
		where := loc{file: path, line: lineNumber(s, mi[0])}
		name := s[mi[4]:mi[5]]
		if kind != name {
			issues = append(issues, issue{msg: fmt.Sprintf("%s:%d: Kind%s is named %q in the table", where.file, where.line, kind, name)})
		}
		id, err := strconv.ParseInt(s[mi[8]:mi[9]], 0, 32)
		if err != nil {
			issues = append(issues, issue{msg: fmt.Sprintf("%s:%d: parse id of Kind%s: %v", where.file, where.line, kind, err)})
			continue
		}
		out[kind] = genEntry{name: name, state: s[mi[6]:mi[7]], id: int(id), loc: where}
	}
	if len(out) == 0 {
		issues = append(issues, issue{msg: fmt.Sprintf("no table entries found in %s (run go generate ./protocol)", path)})
	}
	return issues
}

func scanRefs(path, s string, re *regexp.Regexp, out map[string]loc) {
	for _, mi := range re.FindAllStringSubmatchIndex(s, -1) {
		name := s[mi[2]:mi[3]]
		if _, ok := out[name]; ok {
			continue
		}
		out[name] = loc{file: path, line: lineNumber(s, mi[0])}
	}
}

func validateConsistency(scan scanResult, requireAll bool) []issue {
	var issues []issue
	issues = append(issues, validatePacketsHaveCodecs(scan)...)
	issues = append(issues, validateGeneratedMatchesSchema(scan)...)
	issues = append(issues, validateCodecsAreInSchema(scan)...)
	issues = append(issues, validateHandledAreKnown(scan)...)
	if requireAll {
		issues = append(issues, validateAllHandled(scan)...)
	}
	return issues
}

func validatePacketsHaveCodecs(scan scanResult) []issue {
	var issues []issue
	for name, p := range scan.packets {
		if _, ok := scan.structs[name]; !ok {
			issues = append(issues, issue{msg: fmt.Sprintf("%s: %s/%s has no `type %s struct` in the protocol package", scan.schemaPath, p.State, name, name)})
		}
		if _, ok := scan.decoders[name]; !ok {
			issues = append(issues, issue{msg: fmt.Sprintf("%s: %s/%s has no Decode(*Reader) method", scan.schemaPath, p.State, name)})
		}
		if _, ok := scan.encoders[name]; !ok {
			issues = append(issues, issue{msg: fmt.Sprintf("%s: %s/%s has no Encode(*Writer) method", scan.schemaPath, p.State, name)})
		}
	}
	return issues
}

func validateGeneratedMatchesSchema(scan scanResult) []issue {
	var issues []issue
	for name, p := range scan.packets {
		g, ok := scan.generated[name]
		if !ok {
			issues = append(issues, issue{msg: fmt.Sprintf("%s: %s/%s is missing from the generated table (run go generate ./protocol)", scan.schemaPath, p.State, name)})
			continue
		}
		if g.state != p.State || g.id != p.ID {
			issues = append(issues, issue{msg: fmt.Sprintf("%s:%d: Kind%s is %s/0x%02X, schema says %s/0x%02X (run go generate ./protocol)", g.loc.file, g.loc.line, name, g.state, g.id, p.State, p.ID)})
		}
	}
	for name, g := range scan.generated {
		if _, ok := scan.packets[name]; !ok {
			issues = append(issues, issue{msg: fmt.Sprintf("%s:%d: Kind%s is not in the schema", g.loc.file, g.loc.line, name)})
		}
	}
	return issues
}

// A struct with both codec methods is a packet; it must be listed so the
// dispatcher can reach it.
func validateCodecsAreInSchema(scan scanResult) []issue {
	var issues []issue
	for name, where := range scan.decoders {
		if _, ok := scan.encoders[name]; !ok {
			issues = append(issues, issue{msg: fmt.Sprintf("%s:%d: %s has Decode but no Encode", where.file, where.line, name)})
			continue
		}
		if _, ok := scan.packets[name]; !ok {
			issues = append(issues, issue{msg: fmt.Sprintf("%s:%d: packet type %s is not in the schema", where.file, where.line, name)})
		}
	}
	return issues
}

func validateHandledAreKnown(scan scanResult) []issue {
	var issues []issue
	for name, where := range scan.handled {
		if _, ok := scan.packets[name]; !ok {
			issues = append(issues, issue{msg: fmt.Sprintf("%s:%d: handler registered for unknown packet protocol.Kind%s", where.file, where.line, name)})
		}
	}
	return issues
}

func validateAllHandled(scan scanResult) []issue {
	var issues []issue
	for name, p := range scan.packets {
		if _, ok := scan.handled[name]; !ok {
			issues = append(issues, issue{msg: fmt.Sprintf("%s: %s/%s has no registered handler (enable -require-all only if this is intended)", scan.schemaPath, p.State, name)})
		}
	}
	return issues
}

func lineNumber(s string, idx int) int {
	if idx <= 0 {
		return 1
	}
	return strings.Count(s[:min(idx, len(s))], "\n") + 1
}
