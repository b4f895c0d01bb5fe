package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/kitex/pkg/klog"
	"github.com/redis/go-redis/v9"

	"github.com/gogogo1024/mcgate/internal/admin"
	"github.com/gogogo1024/mcgate/internal/stats"
)

func main() {
	// Never start the HTTP server from a test binary.
	if strings.HasSuffix(filepath.Base(os.Args[0]), ".test") {
		return
	}

	var (
		addr      = flag.String("addr", ":8888", "admin service address")
		redisAddr = flag.String("redis", "localhost:6379", "redis address the gateways record packet stats to")
		prefix    = flag.String("prefix", "mcgate:", "redis key prefix used by the gateways")
	)
	flag.Parse()

	rdb := redis.NewClient(&redis.Options{Addr: *redisAddr})
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	err := rdb.Ping(ctx).Err()
	cancel()
	if err != nil {
		klog.Fatalf("admin: redis %s: %v", *redisAddr, err)
	}

	h := server.Default(server.WithHostPorts(*addr))
	admin.NewHandler(stats.NewRedisStore(rdb, *prefix)).Register(h)

	klog.Infof("admin service listening on %s", *addr)
	h.Spin()
}
