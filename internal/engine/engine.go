// Package engine wires capture, decoding, flow tracking, app-layer parsing,
// rule matching and alerting into the live detection pipeline.
package engine

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"NetSentra/internal/alert"
	"NetSentra/internal/applayer"
	"NetSentra/internal/capture"
	"NetSentra/internal/config"
	"NetSentra/internal/flow"
	"NetSentra/internal/model"
	"NetSentra/internal/rules"
	"NetSentra/internal/stats"
)

const (
	synScanThreshold = 20
	rateThreshold    = 100

	captureRetries = 3
)

// Engine owns the capture goroutine and everything it runs per packet.
// HandlePacket is synchronous: all alerts from one packet are enqueued
// before the next packet is read.
type Engine struct {
	cfg             *config.Config
	store           model.Store
	matcher         *rules.Matcher
	thresholds      *rules.ThresholdManager
	classifications *config.ClassificationMap
	flows           *flow.Tracker
	collector       *stats.Collector
	emitter         *alert.Emitter

	// Heuristic counters, owned by the capture goroutine.
	synCounts  map[string]int
	rateCounts map[string]int

	source       *capture.Source
	decodeErrors uint64

	stopChan chan struct{}
	wg       sync.WaitGroup
}

func New(cfg *config.Config, store model.Store, matcher *rules.Matcher,
	classifications *config.ClassificationMap, collector *stats.Collector,
	emitter *alert.Emitter) *Engine {
	return &Engine{
		cfg:             cfg,
		store:           store,
		matcher:         matcher,
		thresholds:      rules.NewThresholdManager(),
		classifications: classifications,
		flows:           flow.NewTracker(),
		collector:       collector,
		emitter:         emitter,
		synCounts:       make(map[string]int),
		rateCounts:      make(map[string]int),
		stopChan:        make(chan struct{}),
	}
}

// Start opens the capture source and launches the pipeline goroutine. A
// capture failure here is fatal to startup.
func (e *Engine) Start() error {
	src, err := capture.Open(e.cfg.Capture)
	if err != nil {
		return fmt.Errorf("failed to open capture source: %w", err)
	}
	e.source = src
	log.Printf("[Engine] Capturing on interface %s", src.Interface())

	e.recordStatus("running")
	e.systemEvent("Monitoring started on " + src.Interface())

	e.wg.Add(1)
	go e.run()
	return nil
}

func (e *Engine) run() {
	defer e.wg.Done()
	packets := e.source.Packets()
	for {
		select {
		case pkt, ok := <-packets:
			if !ok {
				if !e.reopen() {
					log.Println("[Engine] Capture source lost, giving up")
					e.systemEvent("Capture source lost")
					return
				}
				packets = e.source.Packets()
				continue
			}
			info, err := capture.Decode(pkt)
			if err != nil {
				e.decodeErrors++
				continue
			}
			e.HandlePacket(info)
		case <-e.stopChan:
			return
		}
	}
}

// reopen retries the capture source with backoff after a mid-run loss.
func (e *Engine) reopen() bool {
	e.source.Close()
	backoff := time.Second
	for attempt := 1; attempt <= captureRetries; attempt++ {
		select {
		case <-e.stopChan:
			return false
		case <-time.After(backoff):
		}
		src, err := capture.Open(e.cfg.Capture)
		if err == nil {
			e.source = src
			log.Printf("[Engine] Capture reopened on %s (attempt %d)", src.Interface(), attempt)
			return true
		}
		log.Printf("[Engine] Capture reopen attempt %d failed: %v", attempt, err)
		backoff *= 2
	}
	return false
}

// HandlePacket runs the full per-packet pipeline: stats, heuristics, flow
// update, app-layer parsing, rule matching, thresholding, alert emission.
func (e *Engine) HandlePacket(pkt *model.PacketInfo) {
	e.collector.Update(pkt)
	e.runHeuristics(pkt)

	flowState := e.flows.Update(pkt)

	if len(pkt.Payload) > 0 {
		switch pkt.FiveTuple.Protocol {
		case model.ProtoTCP:
			pkt.HTTP = applayer.ParseHTTP(pkt.Payload)
		case model.ProtoUDP:
			pkt.DNS = applayer.ParseDNS(pkt.Payload)
		}
	}

	match := e.matcher.Match(pkt, flowState)
	if match == nil || match.Rule.Action != rules.ActionAlert {
		return
	}
	src := pkt.FiveTuple.SrcIP.String()
	dst := pkt.FiveTuple.DstIP.String()
	if !e.thresholds.Allow(match.Rule, src, dst) {
		return
	}

	severity := model.SeverityLow
	alertType := "Signature Match"
	if match.Classtype != "" {
		priority, description := e.classifications.Lookup(match.Classtype)
		severity = config.SeverityFromPriority(priority)
		alertType = description
	}
	e.emitter.Enqueue(&model.Alert{
		SourceIP:      src,
		DestinationIP: dst,
		Protocol:      model.ProtoName(pkt.FiveTuple.Protocol),
		AlertType:     alertType,
		Severity:      severity,
		Description:   match.Msg,
		SID:           match.SID,
		CreatedAt:     pkt.Timestamp,
	})
}

// runHeuristics maintains the coarse per-source counters that fire without
// any rule: SYN-only packets above 20 and total packet rate above 100, each
// resetting after its alert.
func (e *Engine) runHeuristics(pkt *model.PacketInfo) {
	src := pkt.FiveTuple.SrcIP.String()

	if pkt.HasTCP && pkt.TCPFlags.SYN && !pkt.TCPFlags.ACK {
		e.synCounts[src]++
		if e.synCounts[src] > synScanThreshold {
			e.synCounts[src] = 0
			e.emitter.Enqueue(&model.Alert{
				SourceIP:      src,
				DestinationIP: pkt.FiveTuple.DstIP.String(),
				Protocol:      "TCP",
				AlertType:     "Port Scan Detected",
				Severity:      model.SeverityHigh,
				Description:   fmt.Sprintf("More than %d SYN packets from %s", synScanThreshold, src),
				CreatedAt:     pkt.Timestamp,
			})
		}
	}

	e.rateCounts[src]++
	if e.rateCounts[src] > rateThreshold {
		e.rateCounts[src] = 0
		e.emitter.Enqueue(&model.Alert{
			SourceIP:      src,
			DestinationIP: pkt.FiveTuple.DstIP.String(),
			Protocol:      model.ProtoName(pkt.FiveTuple.Protocol),
			AlertType:     "High Traffic Volume",
			Severity:      model.SeverityMedium,
			Description:   fmt.Sprintf("More than %d packets from %s", rateThreshold, src),
			CreatedAt:     pkt.Timestamp,
		})
	}
}

func (e *Engine) recordStatus(status string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	iface := ""
	if e.source != nil {
		iface = e.source.Interface()
	}
	if err := e.store.UpdateStatus(ctx, status, iface); err != nil {
		log.Printf("[Engine] Failed to record status: %v", err)
	}
}

// systemEvent records a non-security event as a Low alert.
func (e *Engine) systemEvent(description string) {
	e.emitter.Enqueue(&model.Alert{
		Protocol:    "System",
		AlertType:   "System",
		Severity:    model.SeverityLow,
		Description: description,
		CreatedAt:   time.Now(),
	})
}

// Stop ends the capture goroutine and records the shutdown.
func (e *Engine) Stop() {
	close(e.stopChan)
	e.wg.Wait()
	if e.source != nil {
		e.source.Close()
	}
	if e.decodeErrors > 0 {
		log.Printf("[Engine] %d packet(s) skipped on decode errors", e.decodeErrors)
	}
	e.systemEvent("Monitoring stopped")
	e.recordStatus("stopped")
}
