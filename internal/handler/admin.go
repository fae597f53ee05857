package handler

import (
	"net/http"
	"runtime"
	"time"

	"bakerybot/internal/service"
	"bakerybot/internal/store"
	"bakerybot/pkg/response"
)

// AdminHandler handles admin-related HTTP requests.
type AdminHandler struct {
	store     *store.Store
	assistant *service.Assistant
	dbType    string
	cacheType string
	startTime time.Time
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(st *store.Store, assistant *service.Assistant, dbType, cacheType string) *AdminHandler {
	return &AdminHandler{
		store:     st,
		assistant: assistant,
		dbType:    dbType,
		cacheType: cacheType,
		startTime: time.Now(),
	}
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats := make(map[string]interface{})

	stats["uptime_seconds"] = int64(time.Since(h.startTime).Seconds())
	stats["uptime_human"] = time.Since(h.startTime).Round(time.Second).String()
	stats["server_time"] = time.Now().Format(time.RFC3339)
	stats["db_type"] = h.dbType
	stats["cache_type"] = h.cacheType

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats["memory"] = map[string]interface{}{
		"alloc_mb":      float64(memStats.Alloc) / 1024 / 1024,
		"sys_mb":        float64(memStats.Sys) / 1024 / 1024,
		"heap_inuse_mb": float64(memStats.HeapInuse) / 1024 / 1024,
		"num_gc":        memStats.NumGC,
		"goroutines":    runtime.NumGoroutine(),
	}

	if storeStats, err := h.store.Stats(ctx); err == nil {
		storeStats["status"] = "connected"
		stats["store"] = storeStats
	} else {
		stats["store"] = map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		}
	}

	if inv, err := h.store.LoadInventory(ctx); err == nil {
		stats["inventory"] = map[string]interface{}{
			"tracked_items":   len(inv.Items),
			"history_entries": len(inv.History),
		}
	}
	if pending, err := h.store.LoadPending(ctx); err == nil {
		open := 0
		for _, rem := range pending.Reminders {
			if !rem.Resolved {
				open++
			}
		}
		stats["pending"] = map[string]interface{}{
			"clarifications": len(pending.Clarifications),
			"open_reminders": open,
		}
	}
	if h.assistant != nil {
		stats["orders_today"] = h.assistant.OrdersToday()
	}

	stats["runtime"] = map[string]interface{}{
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"cpus":       runtime.NumCPU(),
	}

	response.OK(w, stats)
}
