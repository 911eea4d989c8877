package stats

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/relloyd/addrsync/logger"
)

// StepWatcher holds the counters of one step of a run, e.g. extract or load.
// Counters are updated by the step and read concurrently by the stats dumper.
type StepWatcher struct {
	log             logger.Logger
	stepName        string
	processed       int64
	inserted        int64
	updated         int64
	unchanged       int64
	failed          int64
	discarded       int64
	commits         int64
	rowsPerSecDelta int64
	isRunning       int32
	mu              sync.Mutex // guards the times and priorProcessed
	startTime       time.Time
	endTime         time.Time
	priorProcessed  int64
	priorTime       time.Time
}

type Stats struct {
	StepName           string `json:"stepName"`
	StatusText         string `json:"statusText"`
	StatusEmoji        string `json:"statusEmoji"`
	ElapsedTimeSec     int    `json:"elapsedTimeSec"`
	TotalRowsProcessed int    `json:"totalRowsProcessed"`
	RowsInserted       int    `json:"rowsInserted"`
	RowsUpdated        int    `json:"rowsUpdated"`
	RowsUnchanged      int    `json:"rowsUnchanged"`
	RowsFailed         int    `json:"rowsFailed"`
	RowsDiscarded      int    `json:"rowsDiscarded"`
	Commits            int    `json:"commits"`
	RowsPerSecondAvg   int    `json:"rowsPerSecondAvg"`
	RowsPerSecondDelta int    `json:"rowsPerSecondDelta"`
}

func NewStepWatcher(log logger.Logger, stepName string) *StepWatcher {
	return &StepWatcher{log: log, stepName: stepName}
}

// StartWatching resets the clock used for rates.
func (n *StepWatcher) StartWatching() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.startTime = time.Now()
	n.priorTime = n.startTime
	n.endTime = time.Time{}
	atomic.StoreInt32(&n.isRunning, 1)
}

// StopWatching freezes the elapsed time.
func (n *StepWatcher) StopWatching() {
	n.CalculateStats()
	n.mu.Lock()
	defer n.mu.Unlock()
	n.endTime = time.Now()
	atomic.StoreInt32(&n.isRunning, 0)
}

func (n *StepWatcher) AddProcessed(i int64) { atomic.AddInt64(&n.processed, i) }
func (n *StepWatcher) AddInserted(i int64)  { atomic.AddInt64(&n.inserted, i) }
func (n *StepWatcher) AddUpdated(i int64)   { atomic.AddInt64(&n.updated, i) }
func (n *StepWatcher) AddUnchanged(i int64) { atomic.AddInt64(&n.unchanged, i) }
func (n *StepWatcher) AddFailed(i int64)    { atomic.AddInt64(&n.failed, i) }
func (n *StepWatcher) AddDiscarded(i int64) { atomic.AddInt64(&n.discarded, i) }
func (n *StepWatcher) AddCommits(i int64)   { atomic.AddInt64(&n.commits, i) }

// CalculateStats saves the rows per second since the previous call.
func (n *StepWatcher) CalculateStats() {
	n.mu.Lock()
	defer n.mu.Unlock()
	deltaTime := int64(time.Since(n.priorTime).Seconds())
	if deltaTime < 1 { // if we will cause divide by 0 error...
		deltaTime = 1
	}
	processed := atomic.LoadInt64(&n.processed)
	atomic.StoreInt64(&n.rowsPerSecDelta, (processed-n.priorProcessed)/deltaTime)
	n.log.Debug("STATS: ", n.stepName, " processing ", atomic.LoadInt64(&n.rowsPerSecDelta), " rows per sec")
	n.priorProcessed = processed
	n.priorTime = time.Now()
}

// RenderStats gets a struct filled with stats at the point of time it is called.
func (n *StepWatcher) RenderStats() Stats {
	var statusText, statusEmoji string
	if atomic.LoadInt32(&n.isRunning) == 1 {
		statusText = "running"
		statusEmoji = "\U0000231B" // hour glass
	} else {
		statusText = "complete"
		statusEmoji = "\U00002705" // green tick
	}
	n.mu.Lock()
	end := n.endTime
	if end.IsZero() {
		end = time.Now()
	}
	elapsed := end.Sub(n.startTime)
	n.mu.Unlock()
	processed := atomic.LoadInt64(&n.processed)
	return Stats{
		StepName:           n.stepName,
		StatusText:         statusText,
		StatusEmoji:        statusEmoji,
		ElapsedTimeSec:     int(elapsed.Seconds()),
		TotalRowsProcessed: int(processed),
		RowsInserted:       int(atomic.LoadInt64(&n.inserted)),
		RowsUpdated:        int(atomic.LoadInt64(&n.updated)),
		RowsUnchanged:      int(atomic.LoadInt64(&n.unchanged)),
		RowsFailed:         int(atomic.LoadInt64(&n.failed)),
		RowsDiscarded:      int(atomic.LoadInt64(&n.discarded)),
		Commits:            int(atomic.LoadInt64(&n.commits)),
		RowsPerSecondAvg:   int(processed / secondsOrOne(elapsed)),
		RowsPerSecondDelta: int(atomic.LoadInt64(&n.rowsPerSecDelta)),
	}
}

// String will format the stats for general logging.
func (s Stats) String() string {
	return fmt.Sprintf(
		"Stats for %v %v %v "+
			"elapsedTimeSec=%v "+
			"totalRowsProcessed=%v "+
			"inserted=%v "+
			"updated=%v "+
			"unchanged=%v "+
			"failed=%v "+
			"discarded=%v "+
			"commits=%v "+
			"rowsPerSecondAvg=%v "+
			"rowsPerSecondDelta=%v",
		s.StepName, s.StatusText, s.StatusEmoji,
		s.ElapsedTimeSec,
		s.TotalRowsProcessed,
		s.RowsInserted,
		s.RowsUpdated,
		s.RowsUnchanged,
		s.RowsFailed,
		s.RowsDiscarded,
		s.Commits,
		s.RowsPerSecondAvg,
		s.RowsPerSecondDelta,
	)
}

func secondsOrOne(d time.Duration) (seconds int64) {
	seconds = int64(d.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return
}
