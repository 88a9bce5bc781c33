package workers

import (
	"boardroom/observability"
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// HeartbeatWorker logs process health and stream counters at a fixed interval.
type HeartbeatWorker struct {
	log      *slog.Logger
	stats    *observability.StreamStats
	interval time.Duration
}

func NewHeartbeatWorker(log *slog.Logger, stats *observability.StreamStats, interval time.Duration) *HeartbeatWorker {
	return &HeartbeatWorker{log: log, stats: stats, interval: interval}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting heartbeat worker", "interval", w.interval.String())
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.beat(p)
		}
	}
}

func (w *HeartbeatWorker) beat(p *process.Process) {
	snapshot := w.stats.Snapshot()
	rss, cpu, status, err := selfStats(p)
	if err != nil {
		w.log.Warn("Failed to collect self stats", "err", err)
	}
	w.log.Info("Heartbeat",
		"pid", p.Pid,
		"status", status,
		"cpu_percent", cpu,
		"rss_bytes", rss,
		"alloc_mem_mb", snapshot.AllocMemMb,
		"active_streams", snapshot.ActiveStreams,
		"started_streams", snapshot.StartedStreams,
		"failed_streams", snapshot.FailedStreams,
		"agent_updates", snapshot.AgentUpdates,
		"error_records", snapshot.ErrorRecords,
	)
}

// selfStats reads memory, CPU and OS status of the given process.
func selfStats(p *process.Process) (uint64, float64, string, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}
	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpuPercent, status, nil
}
