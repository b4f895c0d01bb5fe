package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gogogo1024/mcgate/internal/stats"
	"github.com/gogogo1024/mcgate/protocol"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mcgate.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig([]string{"-config", filepath.Join(t.TempDir(), "missing.yaml")})
	if err == nil {
		t.Fatalf("expected error for an explicit missing config, got %+v", cfg)
	}

	cfg, err = loadConfig(nil)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.addr != ":25565" || cfg.compressionThreshold != 256 || cfg.statsBackend != "memory" {
		t.Fatalf("defaults: %+v", cfg)
	}
	for _, s := range cfg.settings {
		if s.source != sourceDefault {
			t.Fatalf("%s source=%s without any overrides", s.key, s.source)
		}
	}
}

func TestLoadConfigLayering(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":25570"
timeouts:
  idle: 45s
  write: 5s
protocol:
  compression_threshold: 512
status:
  motd: "from file"
  max_players: 50
metrics:
  addr: "127.0.0.1:9100"
`)
	t.Setenv("MCGATE_IDLE_TIMEOUT", "1m")
	t.Setenv("MCGATE_MOTD", "from env")

	cfg, err := loadConfig([]string{"-config", path, "-motd", "from flag", "-stats", "none"})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if !cfg.configLoaded {
		t.Fatalf("config file not reported as loaded")
	}

	checks := []struct {
		flag   string
		got    any
		want   any
		source configSource
	}{
		{"addr", cfg.addr, ":25570", sourceFile},
		{"idle-timeout", cfg.idleTimeout, time.Minute, sourceEnv},
		{"write-timeout", cfg.writeTimeout, 5 * time.Second, sourceFile},
		{"compression-threshold", cfg.compressionThreshold, 512, sourceFile},
		{"motd", cfg.motd, "from flag", sourceFlag},
		{"max-players", cfg.maxPlayers, 50, sourceFile},
		{"stats", cfg.statsBackend, "none", sourceFlag},
		{"redis-addr", cfg.redisAddr, "localhost:6379", sourceDefault},
		{"redis-flush-interval", cfg.redisFlushInterval, time.Second, sourceDefault},
		{"metrics-addr", cfg.metricsAddr, "127.0.0.1:9100", sourceFile},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Fatalf("%s=%v, want %v", c.flag, c.got, c.want)
		}
		if src := cfg.sourceOf(c.flag); src != c.source {
			t.Fatalf("%s source=%s, want %s", c.flag, src, c.source)
		}
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		env  map[string]string
		args []string
	}{
		{name: "bad yaml duration", yaml: "timeouts:\n  idle: soon\n"},
		{name: "yaml map where scalar expected", yaml: "server:\n  addr:\n    host: x\n"},
		{name: "empty env", env: map[string]string{"MCGATE_ADDR": ""}},
		{name: "bad env int", env: map[string]string{"MCGATE_MAX_PLAYERS": "lots"}},
		{name: "unknown stats backend", args: []string{"-stats", "etcd"}},
		{name: "negative timeout", args: []string{"-write-timeout", "-1s"}},
		{name: "zero packet rate", args: []string{"-packet-rate", "0"}},
		{name: "zero redis flush interval", args: []string{"-redis-flush-interval", "0s"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			for k, v := range c.env {
				t.Setenv(k, v)
			}
			args := c.args
			if c.yaml != "" {
				args = append([]string{"-config", writeConfig(t, c.yaml)}, args...)
			}
			if _, err := loadConfig(args); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestCompressionThresholdBelowDisabledClamps(t *testing.T) {
	cfg, err := loadConfig([]string{"-compression-threshold", "-5"})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.compressionThreshold != protocol.CompressionDisabled {
		t.Fatalf("threshold=%d", cfg.compressionThreshold)
	}
}

func TestConfigArgs(t *testing.T) {
	got := configArgs([]string{"-addr", ":1", "--config", "a.yaml", "-motd", "x", "-config=b.yaml"})
	want := []string{"--config", "a.yaml", "-config=b.yaml"}
	if len(got) != len(want) {
		t.Fatalf("configArgs=%v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("configArgs=%v, want %v", got, want)
		}
	}
}

func TestServeMetrics(t *testing.T) {
	store := stats.NewMetricsStore(nil)
	_ = store.Record(protocol.StatePlay, "KeepAlive")

	stop, err := serveMetrics("127.0.0.1:0", store)
	if err != nil {
		t.Fatalf("serveMetrics: %v", err)
	}
	stop()

	if _, err := serveMetrics("not an address", store); err == nil {
		t.Fatalf("expected listen error")
	}
}
