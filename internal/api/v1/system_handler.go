package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"barangay-hub/internal/api/middleware"
	"barangay-hub/internal/api/response"
	loggerpkg "barangay-hub/pkg/logger"
)

type SystemHandler struct {
	pool     *pgxpool.Pool
	logStore *loggerpkg.SystemLogStore
}

func NewSystemHandler(pool *pgxpool.Pool, logStore *loggerpkg.SystemLogStore) *SystemHandler {
	return &SystemHandler{pool: pool, logStore: logStore}
}

func RegisterSystemRoutes(group gin.IRouter, pool *pgxpool.Pool, logStore *loggerpkg.SystemLogStore, jwtSecret string) {
	handler := NewSystemHandler(pool, logStore)

	group.GET("/health", handler.Health)
	group.GET("/health/ready", handler.Ready)
	if logStore != nil {
		group.GET("/system/logs", middleware.JWTAuth(jwtSecret), middleware.RequireStaff(), handler.Logs)
	}
}

func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}

// Ready pings the database with a short deadline so load balancers can pull
// an instance whose pool has gone bad.
func (h *SystemHandler) Ready(c *gin.Context) {
	if h.pool == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "reason": "no database pool"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.pool.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "reason": "database unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (h *SystemHandler) Logs(c *gin.Context) {
	page := parseIntOrDefault(c.Query("page"), 1)
	pageSize := parseIntOrDefault(c.Query("page_size"), 50)

	entries, total := h.logStore.QueryLogs(c.Query("level"), c.Query("keyword"), page, pageSize)
	response.Paginated(c, entries, page, pageSize, total)
}
