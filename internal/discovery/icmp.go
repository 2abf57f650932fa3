package discovery

import (
	"context"
	"sync"
	"time"

	probing "github.com/prometheus-community/pro-bing"
)

// pingHostFunc probes one address; a var so tests can avoid real sockets.
var pingHostFunc = func(ip string) bool {
	pinger, err := probing.NewPinger(ip)
	if err != nil {
		return false
	}
	pinger.Count = 1
	pinger.Timeout = 1 * time.Second
	pinger.SetPrivileged(false)

	if err := pinger.Run(); err != nil {
		return false
	}
	return pinger.Statistics().PacketsRecv > 0
}

// PingSweep probes every address with a bounded worker pool and returns the
// ones that answered. Best-effort: a cancelled context returns the partial
// result collected so far.
func PingSweep(ctx context.Context, ips []string, concurrency int) []string {
	if concurrency <= 0 {
		concurrency = 50
	}
	jobs := make(chan string)
	var mu sync.Mutex
	var alive []string

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ip := range jobs {
				if pingHostFunc(ip) {
					mu.Lock()
					alive = append(alive, ip)
					mu.Unlock()
				}
			}
		}()
	}

	for _, ip := range ips {
		select {
		case jobs <- ip:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return alive
		}
	}
	close(jobs)
	wg.Wait()
	return alive
}
