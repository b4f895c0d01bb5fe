package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/cloudwego/kitex/pkg/klog"
	"github.com/redis/go-redis/v9"

	"github.com/gogogo1024/mcgate"
	"github.com/gogogo1024/mcgate/internal/service"
	"github.com/gogogo1024/mcgate/internal/stats"
)

func setup(cfg *serverConfig) mcgate.SetupFunc {
	return func(r *mcgate.Router) error {
		service.RegisterHandlers(r, service.Config{
			MOTD:       cfg.motd,
			MaxPlayers: cfg.maxPlayers,
		})
		return nil
	}
}

// openStats builds the configured statistics backend. A nil store means
// statistics are off.
func openStats(ctx context.Context, cfg *serverConfig) (stats.Store, func(), error) {
	switch cfg.statsBackend {
	case "none":
		return nil, func() {}, nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.redisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		batcher := stats.NewBatcher(stats.NewRedisStore(client, cfg.redisPrefix), cfg.redisFlushInterval)
		return batcher, func() {
			if err := batcher.Close(); err != nil {
				klog.Warnf("mcgate: flush packet stats: %v", err)
			}
			_ = client.Close()
		}, nil
	}
	return stats.NewInMemoryStore(), func() {}, nil
}

// serveMetrics exposes store on addr; the returned func shuts it down.
func serveMetrics(addr string, store *stats.MetricsStore) (func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", store.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			klog.Warnf("mcgate: metrics server: %v", err)
		}
	}()
	klog.Infof("mcgate: metrics on http://%s/metrics", listener.Addr())
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}, nil
}

func logStats(store stats.Store) {
	snap, err := store.Snapshot()
	if err != nil {
		klog.Warnf("mcgate: read packet stats: %v", err)
		return
	}
	var total int64
	for _, n := range snap {
		total += n
	}
	klog.Infof("mcgate: decoded %d packets across %d kinds", total, len(snap))
}

func run(ctx context.Context, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	klog.SetLevel(cfg.klogLevel())

	if cfg.configLoaded {
		klog.Infof("mcgate: config file %s", cfg.configPath)
	}
	if cfg.dotenvLoaded {
		klog.Infof("mcgate: loaded %s", cfg.dotenvPath)
	}
	klog.Infof("mcgate: addr=%s (%s) idle=%s (%s) write=%s (%s) compression=%d (%s) stats=%s (%s)",
		cfg.addr, cfg.sourceOf("addr"),
		cfg.idleTimeout, cfg.sourceOf("idle-timeout"),
		cfg.writeTimeout, cfg.sourceOf("write-timeout"),
		cfg.compressionThreshold, cfg.sourceOf("compression-threshold"),
		cfg.statsBackend, cfg.sourceOf("stats"),
	)

	store, closeStats, err := openStats(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStats()

	if store != nil {
		defer logStats(store)
	}
	if cfg.metricsAddr != "" {
		metrics := stats.NewMetricsStore(store)
		stop, err := serveMetrics(cfg.metricsAddr, metrics)
		if err != nil {
			return err
		}
		defer stop()
		store = metrics
	}

	opts := cfg.serveOptions()
	if store != nil {
		opts = append(opts, mcgate.WithStats(store))
	}

	listener, err := net.Listen("tcp", cfg.addr)
	if err != nil {
		return err
	}
	klog.Infof("mcgate listening on %s", listener.Addr())
	return mcgate.ServeWithContext(ctx, listener, setup(cfg), opts...)
}

func main() {
	// `go test ./...` may execute command mains; never start a listener from a test binary.
	if strings.HasSuffix(filepath.Base(os.Args[0]), ".test") {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		klog.Fatal(err)
	}
}
