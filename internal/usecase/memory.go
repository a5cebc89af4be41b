package usecase

import (
	"context"
	"log/slog"
	"runtime"
)

// logMemory logs heap usage at debug level only, since ReadMemStats stops the world.
func (p *Pipeline) logMemory(log *slog.Logger, stage string) {
	if !log.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	log.Debug("memory",
		"stage", stage,
		"heap_alloc_mib", m.HeapAlloc>>20,
		"heap_objects", m.HeapObjects,
		"sys_mib", m.Sys>>20,
		"num_gc", m.NumGC,
	)
}
