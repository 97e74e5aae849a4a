package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/trainhub-backend/internal/config"
	"github.com/stemsi/trainhub-backend/internal/middleware"
	"github.com/stemsi/trainhub-backend/internal/response"
)

const (
	metricsInterval = 7 * time.Second
	healthTimeout   = 2 * time.Second
)

// SystemHandler serves the health check and an SSE feed of runtime,
// database pool, queue and upload storage metrics.
type SystemHandler struct {
	pool      *pgxpool.Pool
	rdb       *redis.Client
	uploadDir string
	startTime time.Time
	log       zerolog.Logger
}

func NewSystemHandler(pool *pgxpool.Pool, rdb *redis.Client, uploadDir string, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		pool:      pool,
		rdb:       rdb,
		uploadDir: uploadDir,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

// ---------- Health ----------

// Health godoc
// GET /health
// Pings PostgreSQL and Redis; 503 when either is unreachable.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	checks := gin.H{"postgres": "ok", "redis": "ok"}
	healthy := true
	if err := h.pool.Ping(ctx); err != nil {
		checks["postgres"] = err.Error()
		healthy = false
	}
	if err := h.rdb.Ping(ctx).Err(); err != nil {
		checks["redis"] = err.Error()
		healthy = false
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "checks": checks})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": checks, "uptime": formatDuration(time.Since(h.startTime))})
}

// ---------- SSE Endpoint ----------

type systemMetrics struct {
	Timestamp int64  `json:"timestamp"`
	Uptime    string `json:"uptime"`
	GoVersion string `json:"go_version"`
	NumCPU    int    `json:"num_cpu"`

	// Go runtime
	Goroutines int    `json:"goroutines"`
	HeapAlloc  uint64 `json:"heap_alloc"`
	HeapSys    uint64 `json:"heap_sys"`
	NumGC      uint32 `json:"num_gc"`

	// PostgreSQL pool
	DBConnsTotal    int32 `json:"db_conns_total"`
	DBConnsAcquired int32 `json:"db_conns_acquired"`
	DBConnsIdle     int32 `json:"db_conns_idle"`
	DBConnsMax      int32 `json:"db_conns_max"`
	DBAcquireWaits  int64 `json:"db_acquire_waits"`

	// Worker queues
	QueueActivity      int64 `json:"queue_activity"`
	QueueNotifications int64 `json:"queue_notifications"`

	// Material storage
	UploadUsedBytes  uint64  `json:"upload_used_bytes"`
	UploadTotalBytes uint64  `json:"upload_total_bytes"`
	UploadPercent    float64 `json:"upload_percent"`
}

// SystemMetricsSSE godoc
// GET /api/v1/system/metrics
func (h *SystemHandler) SystemMetricsSSE(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	log := h.log.With().Str("user_id", claims.UserID.String()).Logger()
	log.Info().Msg("Metrics stream opened")

	ticker := time.NewTicker(metricsInterval)
	defer ticker.Stop()

	h.writeMetrics(c)
	for {
		select {
		case <-reqCtx.Done():
			log.Info().Msg("Metrics stream closed")
			return
		case <-ticker.C:
			h.writeMetrics(c)
		}
	}
}

func (h *SystemHandler) writeMetrics(c *gin.Context) {
	data, err := json.Marshal(h.collect(c.Request.Context()))
	if err != nil {
		return
	}
	writeSSE(c, data)
}

func (h *SystemHandler) collect(ctx context.Context) systemMetrics {
	m := systemMetrics{
		Timestamp: time.Now().Unix(),
		Uptime:    formatDuration(time.Since(h.startTime)),
		GoVersion: runtime.Version(),
		NumCPU:    runtime.NumCPU(),
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.Goroutines = runtime.NumGoroutine()
	m.HeapAlloc = ms.HeapAlloc
	m.HeapSys = ms.HeapSys
	m.NumGC = ms.NumGC

	stat := h.pool.Stat()
	m.DBConnsTotal = stat.TotalConns()
	m.DBConnsAcquired = stat.AcquiredConns()
	m.DBConnsIdle = stat.IdleConns()
	m.DBConnsMax = stat.MaxConns()
	m.DBAcquireWaits = stat.EmptyAcquireCount()

	qctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	pipe := h.rdb.Pipeline()
	activityCmd := pipe.LLen(qctx, config.WorkerKey.ActivityQueue)
	notifyCmd := pipe.LLen(qctx, config.WorkerKey.NotifyQueue)
	if _, err := pipe.Exec(qctx); err == nil {
		m.QueueActivity, _ = activityCmd.Result()
		m.QueueNotifications, _ = notifyCmd.Result()
	}

	if total, free, err := diskUsage(h.uploadDir); err == nil && total > 0 {
		m.UploadTotalBytes = total
		m.UploadUsedBytes = total - free
		m.UploadPercent = float64(m.UploadUsedBytes) / float64(total) * 100
	}

	return m
}

// ---------- Helpers ----------

// diskUsage reports the size and free space of the filesystem holding path.
func diskUsage(path string) (total, free uint64, err error) {
	var st syscall.Statfs_t
	if err := syscall.Statfs(path, &st); err != nil {
		return 0, 0, err
	}
	return st.Blocks * uint64(st.Bsize), st.Bavail * uint64(st.Bsize), nil
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	default:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
}
