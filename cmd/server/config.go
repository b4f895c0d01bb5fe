package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/kitex/pkg/klog"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/gogogo1024/mcgate"
	"github.com/gogogo1024/mcgate/protocol"
)

type configSource string

const (
	sourceDefault configSource = "default"
	sourceFile    configSource = "file"
	sourceEnv     configSource = "env"
	sourceFlag    configSource = "flag"
)

const (
	envPrefix         = "MCGATE_"
	defaultConfigPath = "mcgate.yaml"
)

// yamlConfig holds a parsed YAML document and reads values by dotted path,
// e.g. "server.addr".
type yamlConfig struct {
	data map[string]interface{}
}

func readYAMLConfigFile(path string) (*yamlConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data := make(map[string]interface{})
	if err := yaml.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &yamlConfig{data: data}, nil
}

func (yc *yamlConfig) get(path string) (interface{}, bool) {
	if yc == nil || path == "" {
		return nil, false
	}
	var cur interface{} = yc.data
	for _, p := range strings.Split(path, ".") {
		switch m := cur.(type) {
		case map[string]interface{}:
			v, ok := m[p]
			if !ok {
				return nil, false
			}
			cur = v
		case map[interface{}]interface{}:
			v, ok := m[p]
			if !ok {
				return nil, false
			}
			cur = v
		default:
			return nil, false
		}
	}
	return cur, true
}

// scalar returns the value at path as text; maps and lists are rejected.
func (yc *yamlConfig) scalar(path string) (string, bool, error) {
	v, ok := yc.get(path)
	if !ok {
		return "", false, nil
	}
	switch x := v.(type) {
	case string:
		if x == "" {
			return "", true, fmt.Errorf("yaml %s is empty", path)
		}
		return x, true, nil
	case int, int64, float64, bool:
		return fmt.Sprint(x), true, nil
	case nil:
		return "", true, fmt.Errorf("yaml %s is empty", path)
	}
	return "", true, fmt.Errorf("yaml %s must be a scalar", path)
}

type durationValue struct{ p *time.Duration }

func (v durationValue) String() string {
	if v.p == nil {
		return ""
	}
	return v.p.String()
}

func (v durationValue) Set(s string) error {
	d, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	if d < 0 {
		return fmt.Errorf("negative duration %s", s)
	}
	*v.p = d
	return nil
}

type intValue struct{ p *int }

func (v intValue) String() string {
	if v.p == nil {
		return ""
	}
	return strconv.Itoa(*v.p)
}

func (v intValue) Set(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*v.p = n
	return nil
}

type stringValue struct {
	p       *string
	allowed []string
}

func (v stringValue) String() string {
	if v.p == nil {
		return ""
	}
	return *v.p
}

func (v stringValue) Set(s string) error {
	if s == "" {
		return errors.New("empty value")
	}
	if len(v.allowed) > 0 && !contains(v.allowed, s) {
		return fmt.Errorf("%q is not one of %s", s, strings.Join(v.allowed, ", "))
	}
	*v.p = s
	return nil
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

// setting is one configurable value. Later layers override earlier ones:
// default < YAML file < environment < command line.
type setting struct {
	key    string
	env    string
	flag   string
	usage  string
	value  flag.Value
	source configSource
}

type serverConfig struct {
	addr                 string
	idleTimeout          time.Duration
	writeTimeout         time.Duration
	compressionThreshold int
	packetRate           int
	packetBurst          int
	statsBackend         string
	redisAddr            string
	redisPrefix          string
	redisFlushInterval   time.Duration
	metricsAddr          string
	motd                 string
	maxPlayers           int
	logLevel             string

	settings []*setting

	dotenvPath   string
	dotenvLoaded bool

	configPath   string
	configLoaded bool
}

func defaultServerConfig() *serverConfig {
	c := &serverConfig{
		addr:                 ":25565",
		idleTimeout:          30 * time.Second,
		writeTimeout:         10 * time.Second,
		compressionThreshold: 256,
		packetRate:           mcgate.DefaultConnLimits.PacketRate,
		packetBurst:          mcgate.DefaultConnLimits.PacketBurst,
		statsBackend:         "memory",
		redisAddr:            "localhost:6379",
		redisPrefix:          "mcgate:",
		redisFlushInterval:   time.Second,
		motd:                 "A mcgate server",
		maxPlayers:           20,
		logLevel:             "info",
	}
	c.settings = []*setting{
		{key: "server.addr", env: "ADDR", flag: "addr", usage: "listen address", value: stringValue{p: &c.addr}},
		{key: "timeouts.idle", env: "IDLE_TIMEOUT", flag: "idle-timeout", usage: "connection idle timeout (0 to disable)", value: durationValue{&c.idleTimeout}},
		{key: "timeouts.write", env: "WRITE_TIMEOUT", flag: "write-timeout", usage: "packet write timeout (0 to disable)", value: durationValue{&c.writeTimeout}},
		{key: "protocol.compression_threshold", env: "COMPRESSION_THRESHOLD", flag: "compression-threshold", usage: "compress packets of at least this many bytes after login (-1 to disable)", value: intValue{&c.compressionThreshold}},
		{key: "limits.packet_rate", env: "PACKET_RATE", flag: "packet-rate", usage: "packets per second allowed per connection", value: intValue{&c.packetRate}},
		{key: "limits.packet_burst", env: "PACKET_BURST", flag: "packet-burst", usage: "packet burst allowed per connection", value: intValue{&c.packetBurst}},
		{key: "stats.backend", env: "STATS_BACKEND", flag: "stats", usage: "packet statistics backend: memory, redis or none", value: stringValue{p: &c.statsBackend, allowed: []string{"memory", "redis", "none"}}},
		{key: "stats.redis.addr", env: "REDIS_ADDR", flag: "redis-addr", usage: "redis address for the redis stats backend", value: stringValue{p: &c.redisAddr}},
		{key: "stats.redis.prefix", env: "REDIS_PREFIX", flag: "redis-prefix", usage: "key prefix for the redis stats backend", value: stringValue{p: &c.redisPrefix}},
		{key: "stats.redis.flush_interval", env: "REDIS_FLUSH_INTERVAL", flag: "redis-flush-interval", usage: "how often buffered packet counts are written to redis", value: durationValue{&c.redisFlushInterval}},
		{key: "metrics.addr", env: "METRICS_ADDR", flag: "metrics-addr", usage: "serve Prometheus metrics on this address (unset to disable)", value: stringValue{p: &c.metricsAddr}},
		{key: "status.motd", env: "MOTD", flag: "motd", usage: "server list description", value: stringValue{p: &c.motd}},
		{key: "status.max_players", env: "MAX_PLAYERS", flag: "max-players", usage: "player limit", value: intValue{&c.maxPlayers}},
		{key: "log.level", env: "LOG_LEVEL", flag: "log-level", usage: "log level: debug, info, warn or error", value: stringValue{p: &c.logLevel, allowed: []string{"debug", "info", "warn", "error"}}},
	}
	for _, s := range c.settings {
		s.source = sourceDefault
	}
	return c
}

func loadConfig(args []string) (*serverConfig, error) {
	resolved, err := resolveYAML(args)
	if err != nil {
		return nil, err
	}
	c := defaultServerConfig()
	c.configPath = resolved.path
	c.configLoaded = resolved.loaded
	c.dotenvPath, c.dotenvLoaded = loadDotenv(".env")

	if err := c.applyFile(resolved.yc); err != nil {
		return nil, err
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.applyFlags(args); err != nil {
		return nil, err
	}
	return c, c.validate()
}

func (c *serverConfig) applyFile(yc *yamlConfig) error {
	for _, s := range c.settings {
		v, ok, err := yc.scalar(s.key)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := s.value.Set(v); err != nil {
			return fmt.Errorf("yaml %s: %w", s.key, err)
		}
		s.source = sourceFile
	}
	return nil
}

func (c *serverConfig) applyEnv() error {
	for _, s := range c.settings {
		key := envPrefix + s.env
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		if v == "" {
			return fmt.Errorf("env %s is empty", key)
		}
		if err := s.value.Set(v); err != nil {
			return fmt.Errorf("env %s: %w", key, err)
		}
		s.source = sourceEnv
	}
	return nil
}

func (c *serverConfig) applyFlags(args []string) error {
	fs := flag.NewFlagSet("mcgate", flag.ContinueOnError)
	fs.String("config", c.configPath, "path to YAML config file")
	for _, s := range c.settings {
		fs.Var(s.value, s.flag, s.usage)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		if s := c.setting(f.Name); s != nil {
			s.source = sourceFlag
		}
	})
	return nil
}

func (c *serverConfig) setting(flagName string) *setting {
	for _, s := range c.settings {
		if s.flag == flagName {
			return s
		}
	}
	return nil
}

func (c *serverConfig) sourceOf(flagName string) configSource {
	if s := c.setting(flagName); s != nil {
		return s.source
	}
	return sourceDefault
}

func (c *serverConfig) validate() error {
	if c.compressionThreshold < protocol.CompressionDisabled {
		c.compressionThreshold = protocol.CompressionDisabled
	}
	if c.compressionThreshold > protocol.MaxFrameLen {
		return fmt.Errorf("compression threshold %d exceeds the frame limit", c.compressionThreshold)
	}
	if c.packetRate <= 0 || c.packetBurst <= 0 {
		return errors.New("packet rate and burst must be positive")
	}
	if c.maxPlayers <= 0 {
		return errors.New("max players must be positive")
	}
	if c.redisFlushInterval <= 0 {
		return errors.New("redis flush interval must be positive")
	}
	return nil
}

func (c *serverConfig) serveOptions() []mcgate.ServeOption {
	return []mcgate.ServeOption{
		mcgate.WithIdleTimeout(c.idleTimeout),
		mcgate.WithWriteTimeout(c.writeTimeout),
		mcgate.WithCompressionThreshold(c.compressionThreshold),
		mcgate.WithConnLimits(mcgate.ConnLimits{PacketRate: c.packetRate, PacketBurst: c.packetBurst}),
	}
}

func (c *serverConfig) klogLevel() klog.Level {
	switch c.logLevel {
	case "debug":
		return klog.LevelDebug
	case "warn":
		return klog.LevelWarn
	case "error":
		return klog.LevelError
	}
	return klog.LevelInfo
}

type resolvedYAML struct {
	yc     *yamlConfig
	path   string
	loaded bool
}

func resolveYAML(args []string) (resolvedYAML, error) {
	configPath, explicit := parseConfigPath(args, defaultConfigPath)
	if configPath == "" {
		configPath = defaultConfigPath
	}
	if abs, err := filepath.Abs(configPath); err == nil {
		configPath = abs
	}

	yc, err := readYAMLConfigFile(configPath)
	if err == nil {
		return resolvedYAML{yc: yc, path: configPath, loaded: true}, nil
	}
	if errors.Is(err, os.ErrNotExist) && !explicit {
		return resolvedYAML{path: configPath}, nil
	}
	return resolvedYAML{}, err
}

// parseConfigPath finds -config ahead of the full flag parse, which needs the
// file's values as defaults.
func parseConfigPath(args []string, defaultValue string) (string, bool) {
	fs := flag.NewFlagSet("preconfig", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	config := fs.String("config", defaultValue, "")
	_ = fs.Parse(configArgs(args))
	explicit := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicit = true
		}
	})
	return *config, explicit
}

// configArgs keeps only -config and its value so the pre-parse ignores flags
// it does not define.
func configArgs(args []string) []string {
	var out []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		name := strings.TrimLeft(a, "-")
		switch {
		case name == "config" && i+1 < len(args):
			out = append(out, a, args[i+1])
			i++
		case strings.HasPrefix(name, "config="):
			out = append(out, a)
		}
	}
	return out
}

func loadDotenv(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	if err := godotenv.Load(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			klog.Warnf("load %s: %v", path, err)
		}
		return path, false
	}
	return path, true
}
