// Package admin serves packet statistics and the serverbound packet table over
// HTTP for operators.
package admin

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/cloudwego/kitex/pkg/klog"
	"github.com/redis/go-redis/v9"

	"github.com/gogogo1024/mcgate/internal/stats"
	"github.com/gogogo1024/mcgate/protocol"
)

type Handler struct {
	store stats.Store
	now   func() time.Time
}

func NewHandler(store stats.Store) *Handler {
	return &Handler{store: store, now: time.Now}
}

// Register mounts the admin routes on h.
func (a *Handler) Register(h *server.Hertz) {
	h.GET("/v1/stats", a.Stats)
	h.DELETE("/v1/stats", a.ResetStats)
	h.GET("/v1/packets", a.Packets)
}

type packetCount struct {
	State string `json:"state"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type statsResponse struct {
	Backend string        `json:"backend"`
	Now     string        `json:"now"`
	Total   int64         `json:"total"`
	Packets []packetCount `json:"packets"`
	Redis   *redisInfo    `json:"redis,omitempty"`
}

type redisInfo struct {
	Prefix string            `json:"prefix"`
	Memory map[string]string `json:"memory,omitempty"`
}

// Stats GET /v1/stats
// Optional ?state=Play narrows the counters to one state.
func (a *Handler) Stats(ctx context.Context, c *app.RequestContext) {
	var filter *protocol.State
	if name := strings.TrimSpace(c.Query("state")); name != "" {
		st, err := protocol.ParseState(name)
		if err != nil {
			c.JSON(consts.StatusBadRequest, utils.H{"error": err.Error()})
			return
		}
		filter = &st
	}

	snap, err := a.store.Snapshot()
	if err != nil {
		klog.CtxWarnf(ctx, "admin: snapshot: %v", err)
		c.JSON(consts.StatusServiceUnavailable, utils.H{"error": err.Error()})
		return
	}

	resp := statsResponse{
		Backend: backendName(a.store),
		Now:     a.now().UTC().Format(time.RFC3339Nano),
		Packets: make([]packetCount, 0, len(snap)),
	}
	for key, n := range snap {
		st, name, err := stats.SplitKey(key)
		if err != nil {
			klog.CtxWarnf(ctx, "admin: skip counter %q: %v", key, err)
			continue
		}
		if filter != nil && st != *filter {
			continue
		}
		resp.Packets = append(resp.Packets, packetCount{State: st.String(), Name: name, Count: n})
		resp.Total += n
	}
	sort.Slice(resp.Packets, func(i, j int) bool {
		if resp.Packets[i].Count != resp.Packets[j].Count {
			return resp.Packets[i].Count > resp.Packets[j].Count
		}
		return resp.Packets[i].State+resp.Packets[i].Name < resp.Packets[j].State+resp.Packets[j].Name
	})

	if rs := redisStoreOf(a.store); rs != nil {
		resp.Redis = &redisInfo{Prefix: rs.Prefix(), Memory: redisMemory(ctx, rs.Client())}
	}
	c.JSON(consts.StatusOK, resp)
}

// ResetStats DELETE /v1/stats
func (a *Handler) ResetStats(ctx context.Context, c *app.RequestContext) {
	if err := a.store.Reset(); err != nil {
		c.JSON(consts.StatusServiceUnavailable, utils.H{"error": err.Error()})
		return
	}
	klog.CtxInfof(ctx, "admin: packet counters reset")
	c.JSON(consts.StatusOK, utils.H{"reset": true})
}

type packetInfo struct {
	State string `json:"state"`
	ID    int32  `json:"id"`
	Name  string `json:"name"`
}

// Packets GET /v1/packets
// Lists the serverbound packet table, optionally for one ?state=.
func (a *Handler) Packets(ctx context.Context, c *app.RequestContext) {
	kinds := protocol.AllKinds()
	if name := strings.TrimSpace(c.Query("state")); name != "" {
		st, err := protocol.ParseState(name)
		if err != nil {
			c.JSON(consts.StatusBadRequest, utils.H{"error": err.Error()})
			return
		}
		kinds = protocol.Kinds(st)
	}
	out := make([]packetInfo, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, packetInfo{State: k.State().String(), ID: k.ID(), Name: k.Name()})
	}
	c.JSON(consts.StatusOK, utils.H{"protocol": protocol.ProtocolVersion, "packets": out})
}

func backendName(s stats.Store) string {
	switch st := s.(type) {
	case *stats.RedisStore:
		return "redis"
	case *stats.InMemoryStore:
		return "in_memory"
	case *stats.Batcher:
		return backendName(st.Inner())
	case *stats.MetricsStore:
		if inner := st.Inner(); inner != nil {
			return backendName(inner) + "+prometheus"
		}
		return "prometheus"
	}
	return "unknown"
}

// redisStoreOf unwraps metrics and batching layers down to a RedisStore.
func redisStoreOf(s stats.Store) *stats.RedisStore {
	switch st := s.(type) {
	case *stats.RedisStore:
		return st
	case *stats.Batcher:
		return redisStoreOf(st.Inner())
	case *stats.MetricsStore:
		return redisStoreOf(st.Inner())
	}
	return nil
}

func redisMemory(ctx context.Context, rdb *redis.Client) map[string]string {
	if rdb == nil {
		return nil
	}
	rctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	info, err := rdb.Info(rctx, "memory").Result()
	if err != nil {
		return nil
	}
	return parseRedisInfo(info)
}

func parseRedisInfo(info string) map[string]string {
	m := make(map[string]string)
	for _, line := range strings.Split(info, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if k = strings.TrimSpace(k); k != "" {
			m[k] = strings.TrimSpace(v)
		}
	}
	return m
}
