package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/voxkit/voxconsole/pkg/cache"
	"github.com/voxkit/voxconsole/pkg/response"
)

func (h *Handlers) handleHealth(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database connection failed"})
		return
	}
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database ping failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (h *Handlers) handleSystemStatus(c *gin.Context) {
	status := make(map[string]bool)

	dbStatus := false
	if sqlDB, err := h.db.DB(); err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := sqlDB.PingContext(ctx); err == nil {
			dbStatus = true
		}
	}
	status["database"] = dbStatus

	cacheStatus := false
	if globalCache := cache.GetGlobalCache(); globalCache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		testKey := "__health_check__"
		if err := globalCache.Set(ctx, testKey, "test", time.Second); err == nil {
			if val, exists := globalCache.Get(ctx, testKey); exists && val == "test" {
				cacheStatus = true
				globalCache.Delete(ctx, testKey)
			}
		}
	}
	status["cache"] = cacheStatus

	backendStatus := false
	{
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		if err := h.logClient.Health(ctx); err == nil {
			backendStatus = true
		}
	}
	status["log_backend"] = backendStatus
	status["api"] = true

	response.Success(c, "ok", gin.H{
		"services":  status,
		"uptime":    time.Since(h.startedAt).Round(time.Second).String(),
		"resources": hostResources(),
	})
}

// hostResources samples host-level usage; any probe failure just omits the field.
func hostResources() gin.H {
	resources := gin.H{}
	if vm, err := mem.VirtualMemory(); err == nil {
		resources["memoryUsedPercent"] = vm.UsedPercent
	}
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		resources["cpuPercent"] = percents[0]
	}
	if info, err := host.Info(); err == nil {
		resources["os"] = info.Platform
		resources["hostUptime"] = info.Uptime
	}
	return resources
}
