package stats

import (
	"context"
	"log"
	"sync"
	"time"

	"NetSentra/internal/model"
)

// Flusher periodically writes collector snapshots to the store. When the
// extended insert is rejected (older schema without the http/https/dns/dhcp
// columns) it falls back to the basic counter shape for that flush.
type Flusher struct {
	collector *Collector
	store     model.Store
	interval  time.Duration

	done chan struct{}
	wg   sync.WaitGroup
}

func NewFlusher(c *Collector, store model.Store, interval time.Duration) *Flusher {
	return &Flusher{
		collector: c,
		store:     store,
		interval:  interval,
		done:      make(chan struct{}),
	}
}

// Start launches the flush loop.
func (f *Flusher) Start() {
	f.wg.Add(1)
	go f.run()
}

func (f *Flusher) run() {
	defer f.wg.Done()
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			f.Flush()
		case <-f.done:
			return
		}
	}
}

// Flush writes one snapshot. Store failures are logged and dropped so a slow
// or absent backend never stalls the capture path.
func (f *Flusher) Flush() {
	snap := f.collector.Snapshot()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := f.store.InsertStats(ctx, &snap); err != nil {
		log.Printf("[Stats] Extended insert failed (%v), retrying basic counters", err)
		if err := f.store.InsertStatsBasic(ctx, &snap); err != nil {
			log.Printf("[Stats] Failed to persist snapshot: %v", err)
		}
	}
}

// Stop ends the loop after a final flush.
func (f *Flusher) Stop() {
	close(f.done)
	f.wg.Wait()
	f.Flush()
}
