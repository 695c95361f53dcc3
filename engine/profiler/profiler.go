package profiler

import (
	"runtime"
	"time"

	"go.uber.org/zap"
)

// Stats is the resource usage measured between Start and Stop.
type Stats struct {
	Elapsed time.Duration
	// AllocatedBytes is the cumulative heap allocation, including memory already collected.
	AllocatedBytes uint64
	// HeapBytes is the live heap at Stop.
	HeapBytes uint64
	// SysBytes is the memory obtained from the OS at Stop.
	SysBytes uint64
	GCCount  uint32
	// MaxGCPause is the longest collection pause observed, limited to the last 256 collections.
	MaxGCPause time.Duration
}

// AllocRate returns the allocation rate in bytes per second.
func (s Stats) AllocRate() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.AllocatedBytes) / s.Elapsed.Seconds()
}

// Profiler measures the time and memory spent in an operation such as an asset load.
type Profiler struct {
	log            *zap.Logger
	start          time.Time
	startGCCount   uint32
	startTotalHeap uint64
	memStats       runtime.MemStats
}

// NewProfiler creates a new Profiler reporting through log.
//
// Parameters:
//   - log: the logger receiving the report, nil disables logging
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(log *zap.Logger) *Profiler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Profiler{log: log}
}

// Start records the baseline the next Stop is measured against.
func (p *Profiler) Start() {
	runtime.ReadMemStats(&p.memStats)
	p.startGCCount = p.memStats.NumGC
	p.startTotalHeap = p.memStats.TotalAlloc
	p.start = time.Now()
}

// Stop measures the usage since Start and logs it under name at info level.
//
// Parameters:
//   - name: the label of the measured operation
//
// Returns:
//   - Stats: the measured usage
func (p *Profiler) Stop(name string) Stats {
	elapsed := time.Since(p.start)
	runtime.ReadMemStats(&p.memStats)

	stats := Stats{
		Elapsed:        elapsed,
		AllocatedBytes: p.memStats.TotalAlloc - p.startTotalHeap,
		HeapBytes:      p.memStats.HeapAlloc,
		SysBytes:       p.memStats.Sys,
		GCCount:        p.memStats.NumGC - p.startGCCount,
	}

	// PauseNs is a circular buffer of the last 256 pauses
	gcCount := p.memStats.NumGC
	first := p.startGCCount
	if gcCount-first > 256 {
		first = gcCount - 256
	}
	for i := first; i < gcCount; i++ {
		if pause := time.Duration(p.memStats.PauseNs[i%256]); pause > stats.MaxGCPause {
			stats.MaxGCPause = pause
		}
	}

	p.log.Info("Profile",
		zap.String("operation", name),
		zap.Duration("elapsed", stats.Elapsed),
		zap.Float64("allocated_mb", float64(stats.AllocatedBytes)/1024/1024),
		zap.Float64("alloc_rate_mb_s", stats.AllocRate()/1024/1024),
		zap.Float64("heap_mb", float64(stats.HeapBytes)/1024/1024),
		zap.Uint32("gc", stats.GCCount),
		zap.Duration("max_gc_pause", stats.MaxGCPause),
		zap.Float64("sys_mb", float64(stats.SysBytes)/1024/1024),
	)
	return stats
}
