package server

import (
	"net/http"
	"os"
	"runtime"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/aristath/stockboard/internal/di"
	"github.com/aristath/stockboard/internal/modules/settings"
)

// SystemHandlers serves process, host and job endpoints under /api/system
type SystemHandlers struct {
	container *di.Container
	jobs      *di.JobInstances
	startedAt time.Time
	log       zerolog.Logger
}

// NewSystemHandlers creates system handlers. jobs may be nil.
func NewSystemHandlers(container *di.Container, jobs *di.JobInstances, log zerolog.Logger) *SystemHandlers {
	return &SystemHandlers{
		container: container,
		jobs:      jobs,
		startedAt: time.Now(),
		log:       log.With().Str("handler", "system").Logger(),
	}
}

// HostStats is a host resource snapshot
type HostStats struct {
	Hostname        string  `json:"hostname"`
	UptimeSeconds   uint64  `json:"uptime_seconds"`
	CPUPercent      float64 `json:"cpu_percent"`
	MemoryPercent   float64 `json:"memory_percent"`
	DiskUsedPercent float64 `json:"disk_used_percent"`
	DiskFreeBytes   uint64  `json:"disk_free_bytes"`
}

// ProcessStats describes this process
type ProcessStats struct {
	PID           int     `json:"pid"`
	RSSBytes      uint64  `json:"rss_bytes"`
	CPUPercent    float64 `json:"cpu_percent"`
	Goroutines    int     `json:"goroutines"`
	UptimeSeconds int64   `json:"uptime_seconds"`
}

// SystemStatusResponse is the body of GET /api/system/status
type SystemStatusResponse struct {
	App        settings.AppInfo      `json:"app"`
	Status     settings.SystemStatus `json:"status"`
	Portfolios int                   `json:"portfolios"`
	Watchlist  int                   `json:"watchlist"`
	Host       HostStats             `json:"host"`
	Process    ProcessStats          `json:"process"`
}

// HandleSystemStatus returns application and resource status
// GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SystemStatusResponse{
		App:        h.container.Settings.Info(),
		Status:     h.container.Settings.Status(),
		Portfolios: len(h.container.Ledger.Portfolios()),
		Watchlist:  len(h.container.Watchlist.List()),
		Host:       h.hostStats(),
		Process:    h.processStats(),
	})
}

// hostStats samples CPU over a short window so the call stays fast.
// Failed probes leave zero values.
func (h *SystemHandlers) hostStats() HostStats {
	var stats HostStats

	if info, err := host.Info(); err == nil {
		stats.Hostname = info.Hostname
		stats.UptimeSeconds = info.Uptime
	} else {
		h.log.Warn().Err(err).Msg("Failed to get host info")
	}

	if cpuPercent, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(cpuPercent) > 0 {
		stats.CPUPercent = cpuPercent[0]
	} else if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
	}

	if memStat, err := mem.VirtualMemory(); err == nil {
		stats.MemoryPercent = memStat.UsedPercent
	} else {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
	}

	if usage, err := disk.Usage(h.container.Config.DataDir); err == nil {
		stats.DiskUsedPercent = usage.UsedPercent
		stats.DiskFreeBytes = usage.Free
	} else {
		h.log.Warn().Err(err).Msg("Failed to get disk usage")
	}

	return stats
}

func (h *SystemHandlers) processStats() ProcessStats {
	stats := ProcessStats{
		PID:           os.Getpid(),
		Goroutines:    runtime.NumGoroutine(),
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
	}

	proc, err := process.NewProcess(int32(stats.PID))
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to inspect process")
		return stats
	}
	if memInfo, err := proc.MemoryInfo(); err == nil {
		stats.RSSBytes = memInfo.RSS
	}
	if cpuPercent, err := proc.CPUPercent(); err == nil {
		stats.CPUPercent = cpuPercent
	}
	return stats
}

// HandleDatabaseStats returns size and page statistics of the state database
// GET /api/system/database/stats
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.container.StateDB.GetStats()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get database stats")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":  h.container.StateDB.Name(),
		"path":  h.container.StateDB.Path(),
		"stats": stats,
	})
}

// HandleStorageEntries lists persisted documents without their payloads
// GET /api/system/storage
func (h *SystemHandlers) HandleStorageEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.container.Storage.Entries()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list storage entries")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleJobsStatus lists the scheduled jobs
// GET /api/system/jobs
func (h *SystemHandlers) HandleJobsStatus(w http.ResponseWriter, r *http.Request) {
	names := []string{}
	if h.container.Scheduler != nil {
		names = h.container.Scheduler.Jobs()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"jobs": names})
}

// HandleTriggerJob runs a registered job immediately
// POST /api/system/jobs/{name}
func (h *SystemHandlers) HandleTriggerJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if h.jobs == nil || h.container.Scheduler == nil {
		writeError(w, http.StatusServiceUnavailable, "jobs not registered")
		return
	}

	job, ok := h.jobs.All()[name]
	if !ok {
		known := make([]string, 0)
		for n := range h.jobs.All() {
			known = append(known, n)
		}
		sort.Strings(known)
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"error": "unknown job: " + name,
			"jobs":  known,
		})
		return
	}

	if err := h.container.Scheduler.RunNow(job); err != nil {
		h.log.Error().Err(err).Str("job", name).Msg("Manual job run failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "job": name})
}

// HandleListBackups lists remote backups, newest first
// GET /api/system/backups
func (h *SystemHandlers) HandleListBackups(w http.ResponseWriter, r *http.Request) {
	if h.container.Backup == nil {
		writeError(w, http.StatusServiceUnavailable, "backups are not configured")
		return
	}

	backups, err := h.container.Backup.ListBackups(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list backups")
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"bucket":  h.container.Backup.Bucket(),
		"backups": backups,
	})
}
