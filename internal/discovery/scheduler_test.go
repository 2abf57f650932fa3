package discovery

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"NetSentra/internal/storage/memory"
)

func TestSchedulerOnDemand(t *testing.T) {
	store := memory.NewStore()
	o := testOrchestrator(store)

	var mu sync.Mutex
	passes := 0
	o.arpSweep = func(string, *net.IPNet) (map[string]string, error) {
		mu.Lock()
		passes++
		mu.Unlock()
		return nil, nil
	}

	s := NewScheduler(o, time.Hour)
	s.Start()
	defer s.Stop()

	if !s.TriggerScan() {
		t.Fatal("TriggerScan must accept when idle")
	}

	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		done := passes >= 1
		mu.Unlock()
		if done {
			break
		}
		select {
		case <-deadline:
			t.Fatal("On-demand pass never ran")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestTriggerScanPendingRejected(t *testing.T) {
	o := testOrchestrator(memory.NewStore())
	s := NewScheduler(o, time.Hour)
	// Not started: the first trigger parks in the buffer, the second has
	// nowhere to go.
	if !s.TriggerScan() {
		t.Fatal("First trigger must be accepted")
	}
	if s.TriggerScan() {
		t.Error("Second trigger must be rejected while one is pending")
	}
}

func TestOrchestratorPartialResultOnCancel(t *testing.T) {
	orig := pingHostFunc
	defer func() { pingHostFunc = orig }()
	pingHostFunc = func(string) bool { return true }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// A cancelled context stops feeding the pool; whatever was collected is
	// returned rather than an error.
	alive := PingSweep(ctx, []string{"10.0.0.1", "10.0.0.2"}, 1)
	if alive == nil {
		_ = alive // empty is acceptable; the call must simply not hang
	}
}
