package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jkirui/shellbot-agent/config"
	"github.com/jkirui/shellbot-agent/internal/cache"
	"github.com/jkirui/shellbot-agent/internal/docker"
	"github.com/jkirui/shellbot-agent/internal/process"
	"github.com/jkirui/shellbot-agent/internal/system"
)

// Version is stamped at build time via -ldflags
var Version = "dev"

// Cache keys for the metrics endpoints
const (
	keyAll    = "metrics:all"
	keyCPU    = "metrics:cpu"
	keyMemory = "metrics:memory"
	keyDisk   = "metrics:disk"
)

// Handlers holds all HTTP handlers
type Handlers struct {
	cfg       *config.Config
	cache     *cache.Cache
	collector *system.Collector
	inspector *docker.Inspector
	auth      *AuthService
}

// NewHandlers creates a new handlers instance
func NewHandlers(cfg *config.Config, auth *AuthService) *Handlers {
	h := &Handlers{
		cfg:       cfg,
		cache:     cache.New(2 * time.Second),
		collector: system.NewCollector(),
		auth:      auth,
	}

	if cfg.DockerEnabled {
		inspector, err := docker.NewInspector()
		if err == nil {
			h.inspector = inspector
		}
	}

	return h
}

// Close releases handler resources
func (h *Handlers) Close() error {
	h.cache.Close()
	if h.inspector != nil {
		return h.inspector.Close()
	}
	return nil
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"version":   Version,
	})
}

// GetInfo handles GET /api/info
func (h *Handlers) GetInfo(c *gin.Context) {
	hostInfo, err := h.collector.HostInfo()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"agent":         "shellbot-agent",
		"version":       Version,
		"hostname":      hostInfo.Hostname,
		"platform":      hostInfo.Platform,
		"kernel":        hostInfo.KernelVersion,
		"uptime":        hostInfo.UptimeHuman,
		"model":         h.cfg.LLMModel,
		"working_dir":   h.cfg.WorkingDir,
		"allowed_chats": len(h.cfg.AllowedChatIDs),
		"echo_result":   h.cfg.EchoResult,
	})
}

// GetAllMetrics handles GET /api/metrics
func (h *Handlers) GetAllMetrics(c *gin.Context) {
	value, err := h.cache.GetOrSet(keyAll, func() (interface{}, error) {
		return h.collector.All()
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, value)
}

// GetCPUMetrics handles GET /api/metrics/cpu
func (h *Handlers) GetCPUMetrics(c *gin.Context) {
	value, err := h.cache.GetOrSet(keyCPU, func() (interface{}, error) {
		return h.collector.CPUInfo()
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, value)
}

// GetMemoryMetrics handles GET /api/metrics/memory
func (h *Handlers) GetMemoryMetrics(c *gin.Context) {
	value, err := h.cache.GetOrSet(keyMemory, func() (interface{}, error) {
		return h.collector.MemoryInfo()
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, value)
}

// GetDiskMetrics handles GET /api/metrics/disk
func (h *Handlers) GetDiskMetrics(c *gin.Context) {
	value, err := h.cache.GetOrSet(keyDisk, func() (interface{}, error) {
		return h.collector.DiskInfo()
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, value)
}

// ListProcesses handles GET /api/processes
func (h *Handlers) ListProcesses(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	list, err := process.Top(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

// ListContainers handles GET /api/docker/containers
func (h *Handlers) ListContainers(c *gin.Context) {
	if h.inspector == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "docker is not enabled"})
		return
	}

	all := c.Query("all") == "true"
	list, err := h.inspector.ListContainers(c.Request.Context(), all)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

// CreateToken handles POST /api/auth/token, minting a short-lived JWT for
// callers that hold the API key.
func (h *Handlers) CreateToken(c *gin.Context) {
	token, err := h.auth.GenerateToken("admin", time.Hour)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_in": int((time.Hour).Seconds()),
	})
}
