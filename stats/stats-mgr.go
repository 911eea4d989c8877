package stats

import (
	"sync"
	"time"

	"github.com/cevaris/ordered_map"
	"github.com/relloyd/addrsync/logger"
)

// StatsManager is used to save stats from each step added via calls to AddStepWatcher and
// optionally log them on a ticker.
type StatsManager struct {
	ticker          *time.Ticker
	tickerDone      chan struct{}
	tickerStopped   chan struct{}
	tickerIsRunning bool
	tickerFrequency int
	mu              sync.Mutex
	log             logger.Logger
	mapStepStats    *ordered_map.OrderedMap // map of step name to *StepWatcher, in the order steps were added.
}

// SetStatsDumpFrequency returns a function that can be supplied as an option to constructor NewStatsManager().
// Zero seconds disables periodic dumping.
func SetStatsDumpFrequency(seconds int) func(t *StatsManager) {
	return func(t *StatsManager) {
		t.tickerFrequency = seconds
	}
}

// NewStatsManager creates a new StatsManager.
// Optionally supply func SetStatsDumpFrequency() to turn on periodic stats logging.
func NewStatsManager(log logger.Logger, options ...func(t *StatsManager)) *StatsManager {
	t := &StatsManager{log: log}
	for _, option := range options {
		option(t)
	}
	t.mapStepStats = ordered_map.NewOrderedMap()
	return t
}

// AddStepWatcher creates a new StepWatcher and saves it into this StatsManager.
func (t *StatsManager) AddStepWatcher(stepName string) *StepWatcher {
	t.mu.Lock()
	defer t.mu.Unlock()
	sw := NewStepWatcher(t.log, stepName)
	t.mapStepStats.Set(stepName, sw)
	return sw
}

// StartDumping starts a goroutine that logs stats every tickerFrequency seconds.
func (t *StatsManager) StartDumping() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.tickerIsRunning {
		t.log.Debug("stats dumper ticker already running")
		return
	}
	if t.tickerFrequency <= 0 {
		t.log.Debug("stats dumper disabled")
		return
	}
	t.ticker = time.NewTicker(time.Second * time.Duration(t.tickerFrequency))
	t.tickerDone = make(chan struct{})
	t.tickerStopped = make(chan struct{})
	t.tickerIsRunning = true
	go func(ticker *time.Ticker, done chan struct{}, stopped chan struct{}) {
		defer close(stopped)
		t.log.Debug("stats dumper ticker started")
		for {
			select {
			case <-done:
				t.log.Debug("stats dumper ticker stopped")
				return
			case <-ticker.C:
				t.logStats()
			}
		}
	}(t.ticker, t.tickerDone, t.tickerStopped)
}

// StopDumping will stop the ticker, if it was started, and log the final stats.
func (t *StatsManager) StopDumping() {
	t.mu.Lock()
	if t.tickerIsRunning {
		t.tickerIsRunning = false
		t.ticker.Stop()
		close(t.tickerDone)
		stopped := t.tickerStopped
		t.mu.Unlock()
		<-stopped
	} else {
		t.mu.Unlock()
	}
	t.logStats()
}

// logStats outputs stats of each registered step.
func (t *StatsManager) logStats() {
	for _, sw := range t.watchers() {
		sw.CalculateStats()
	}
	for _, s := range t.GetStats() {
		t.log.Info(s.String())
	}
}

func (t *StatsManager) watchers() []*StepWatcher {
	t.mu.Lock()
	defer t.mu.Unlock()
	retval := make([]*StepWatcher, 0, t.mapStepStats.Len())
	iter := t.mapStepStats.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		retval = append(retval, kv.Value.(*StepWatcher))
	}
	return retval
}

// GetStats returns the current stats of each step, in the order they were added.
func (t *StatsManager) GetStats() []Stats {
	statsList := make([]Stats, 0)
	for _, sw := range t.watchers() {
		statsList = append(statsList, sw.RenderStats())
	}
	return statsList
}
