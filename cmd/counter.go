package cmd

import (
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
)

// ShotCounter batches completed-shot updates and feeds them to the
// progress bar on a fixed cadence, so the EWMA decorators see steady
// increments instead of one burst per pushed event.
type ShotCounter struct {
	ticker *time.Ticker
	mu     *sync.Mutex
	// completed shots reported by the latest event
	current int64
	// shots already flushed into the bar
	flushed int64
	// refresh rate
	refreshRate time.Duration
	bar         *mpb.Bar
	totalSet    bool
}

func NewShotCounter(refreshRate time.Duration) *ShotCounter {
	sc := ShotCounter{
		ticker:      time.NewTicker(refreshRate),
		mu:          &sync.Mutex{},
		refreshRate: refreshRate,
	}
	return &sc
}

func (s *ShotCounter) SetBar(bar *mpb.Bar) {
	s.mu.Lock()
	s.bar = bar
	s.mu.Unlock()
}

func (s *ShotCounter) Start() {
	go s.worker()
}

// Observe records a progress event. Completed shot counts are cumulative
// on the wire; the counter turns them into increments.
func (s *ShotCounter) Observe(total, completed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.totalSet && total > 0 && s.bar != nil {
		s.bar.SetTotal(total, false)
		s.totalSet = true
	}
	if completed > s.current {
		s.current = completed
	}
}

func (s *ShotCounter) Stop() {
	s.ticker.Stop()
}

func (s *ShotCounter) worker() {
	for range s.ticker.C {
		s.mu.Lock()
		delta := s.current - s.flushed
		if delta > 0 && s.bar != nil {
			s.bar.EwmaIncrInt64(delta, s.refreshRate)
			s.flushed = s.current
		}
		s.mu.Unlock()
	}
}
