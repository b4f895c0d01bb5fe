package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRepositoryIsConsistent(t *testing.T) {
	scan, issues := scanAll(
		"../../protocol/serverbound.yaml",
		"../../protocol",
		"../../protocol/serverbound_gen.go",
		"../../internal/service/registry.go",
	)
	issues = append(issues, validateConsistency(scan, false)...)
	if len(issues) > 0 {
		t.Fatalf("unexpected issues:\n%s", joinIssues(issues))
	}
	if len(scan.packets) != 38 || len(scan.generated) != 38 {
		t.Fatalf("packets=%d generated=%d", len(scan.packets), len(scan.generated))
	}
}

func TestMismatchesAreReported(t *testing.T) {
	tmp := t.TempDir()
	protoDir := filepath.Join(tmp, "protocol")
	if err := os.Mkdir(protoDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	schemaPath := filepath.Join(protoDir, "serverbound.yaml")
	genPath := filepath.Join(protoDir, "serverbound_gen.go")
	registryPath := filepath.Join(tmp, "registry.go")

	mustWrite(t, schemaPath, `protocol: 340
direction: serverbound
states:
  - state: Handshake
    packets:
      - {id: 0x00, name: Handshake}
  - state: Status
    packets:
      - {id: 0x00, name: StatusRequest}
      - {id: 0x02, name: StatusPing}
`)
	// Parsed as plain text; these files do not need to compile.
	mustWrite(t, filepath.Join(protoDir, "packets.go"), `package protocol

type Handshake struct{}

func (p *Handshake) Decode(r *Reader) error { return nil }
func (p *Handshake) Encode(w *Writer) error { return nil }

type StatusRequest struct{}

func (p *StatusRequest) Decode(r *Reader) error { return nil }

type Orphan struct{}

func (p *Orphan) Decode(r *Reader) error { return nil }
func (p *Orphan) Encode(w *Writer) error { return nil }
`)
	mustWrite(t, genPath, `package protocol

var kinds = [kindCount]kindInfo{
	KindHandshake:     {name: "Handshake", state: StateHandshake, id: 0x00},
	KindStatusRequest: {name: "StatusRequest", state: StateStatus, id: 0x01},
}
`)
	mustWrite(t, registryPath, `package service

func register(r *mcgate.Router) {
	r.Register(protocol.KindHandshake, nil)
	r.Register(protocol.KindLegacyPing, nil)
}
`)

	scan, issues := scanAll(schemaPath, protoDir, genPath, registryPath)
	issues = append(issues, validateConsistency(scan, true)...)
	joined := joinIssues(issues)

	for _, want := range []string{
		"ids must be dense and zero-based",
		"Status/StatusPing has no `type StatusPing struct`",
		"StatusRequest has Decode but no Encode",
		"Status/StatusPing is missing from the generated table",
		"KindStatusRequest is Status/0x01, schema says Status/0x00",
		"packet type Orphan is not in the schema",
		"unknown packet protocol.KindLegacyPing",
		"Status/StatusRequest has no registered handler",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing %q in:\n%s", want, joined)
		}
	}
	if strings.Contains(joined, "Handshake/Handshake has no registered handler") {
		t.Fatalf("handled packet reported as unhandled:\n%s", joined)
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func joinIssues(issues []issue) string {
	var b strings.Builder
	for _, it := range issues {
		b.WriteString(it.msg)
		b.WriteByte('\n')
	}
	return b.String()
}
