package usecase

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// progress logs how many files of a folder are done, at most once per
// interval and always for the last file.
type progress struct {
	logger   *slog.Logger
	total    int
	interval time.Duration
	start    time.Time

	mu   sync.Mutex
	done int
	last time.Time
}

func newProgress(logger *slog.Logger, total int, interval time.Duration) *progress {
	now := time.Now()
	return &progress{logger: logger, total: total, interval: interval, start: now, last: now}
}

func (p *progress) add() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
	now := time.Now()
	if p.done < p.total && now.Sub(p.last) < p.interval {
		return
	}
	p.last = now
	p.logger.Info("progress",
		"files", fmt.Sprintf("%d/%d", p.done, p.total),
		"percent", fmt.Sprintf("%.1f%%", 100*float64(p.done)/float64(p.total)),
		"elapsed", now.Sub(p.start).Round(time.Second))
}
