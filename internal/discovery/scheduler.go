package discovery

import (
	"context"
	"log"
	"sync"
	"time"
)

// Scheduler runs background discovery passes on a fixed cadence and serves
// on-demand passes from a dedicated worker so a slow manual scan never
// delays the periodic one.
type Scheduler struct {
	orch     *Orchestrator
	interval time.Duration

	trigger  chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewScheduler(orch *Orchestrator, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Scheduler{
		orch:     orch,
		interval: interval,
		trigger:  make(chan struct{}, 1),
		stopChan: make(chan struct{}),
	}
}

// Start launches the periodic loop and the on-demand worker.
func (s *Scheduler) Start() {
	s.wg.Add(2)
	go s.runPeriodic()
	go s.runOnDemand()
	log.Printf("[Discovery] Scheduler started, interval %s", s.interval)
}

func (s *Scheduler) runPeriodic() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.runPass()
		case <-s.stopChan:
			return
		}
	}
}

func (s *Scheduler) runOnDemand() {
	defer s.wg.Done()
	for {
		select {
		case <-s.trigger:
			s.runPass()
		case <-s.stopChan:
			return
		}
	}
}

func (s *Scheduler) runPass() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()
	if err := s.orch.RunPass(ctx); err != nil {
		log.Printf("[Discovery] Pass failed: %v", err)
	}
}

// TriggerScan requests an on-demand pass. Returns false when one is already
// pending.
func (s *Scheduler) TriggerScan() bool {
	select {
	case s.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// Stop ends both loops. A pass already underway completes.
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}
