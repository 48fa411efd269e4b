package server

import (
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/pulse/internal/database"
	"github.com/aristath/pulse/internal/di"
	"github.com/aristath/pulse/internal/scheduler"
)

// SystemHandlers serves process status and manual job triggers
type SystemHandlers struct {
	container *di.Container
	jobs      map[string]scheduler.Job
	started   time.Time
	stats     func() (float64, float64)
	log       zerolog.Logger
}

// NewSystemHandlers creates the system handlers. jobs may be nil.
func NewSystemHandlers(container *di.Container, jobs *di.JobInstances, log zerolog.Logger) *SystemHandlers {
	h := &SystemHandlers{
		container: container,
		jobs:      map[string]scheduler.Job{},
		started:   time.Now(),
		log:       log.With().Str("handler", "system").Logger(),
	}
	if jobs != nil {
		h.jobs = jobs.All()
	}
	h.stats = h.getSystemStats
	return h
}

// StatusResponse is the body of GET /api/system/status
type StatusResponse struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	CPUPercent    float64           `json:"cpu_percent"`
	MemoryPercent float64           `json:"memory_percent"`
	Databases     []*database.Stats `json:"databases"`
	Events        EventStatus       `json:"events"`
	Backups       bool              `json:"backups_enabled"`
}

// EventStatus describes the live event feed
type EventStatus struct {
	Subscribers int    `json:"subscribers"`
	Dropped     uint64 `json:"dropped"`
}

// HandleStatus handles GET /api/system/status
func (h *SystemHandlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.stats()

	response := StatusResponse{
		Status:        "ok",
		Version:       Version,
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		Databases:     []*database.Stats{},
		Backups:       h.container.BackupService != nil,
	}

	for _, db := range h.container.Databases() {
		stats, err := db.GetStats(r.Context())
		if err != nil {
			h.log.Warn().Err(err).Str("database", db.Name()).Msg("Failed to get database stats")
			response.Status = "degraded"
			continue
		}
		response.Databases = append(response.Databases, stats)
	}

	if h.container.EventManager != nil {
		response.Events = EventStatus{
			Subscribers: h.container.EventManager.Subscribers(),
			Dropped:     h.container.EventManager.Dropped(),
		}
	}

	writeJSON(w, http.StatusOK, response, h.log)
}

// HandleListJobs handles GET /api/system/jobs
func (h *SystemHandlers) HandleListJobs(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(h.jobs))
	for name := range h.jobs {
		names = append(names, name)
	}
	sort.Strings(names)

	writeJSON(w, http.StatusOK, map[string]interface{}{"jobs": names}, h.log)
}

// HandleTriggerJob handles POST /api/system/jobs/{name}. The job runs in the
// background; progress is visible on the event feed.
func (h *SystemHandlers) HandleTriggerJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	job, ok := h.jobs[name]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown job: "+name, h.log)
		return
	}

	go func() {
		if err := h.container.Scheduler.RunNow(job); err != nil {
			h.log.Error().Err(err).Str("job", name).Msg("Manually triggered job failed")
		}
	}()

	h.log.Info().Str("job", name).Msg("Job triggered manually")
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "triggered", "job": name}, h.log)
}

func (h *SystemHandlers) getSystemStats() (float64, float64) {
	// Sampled over 100ms to keep the endpoint responsive
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}
