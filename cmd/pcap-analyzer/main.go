package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"NetSentra/internal/alert"
	"NetSentra/internal/config"
	"NetSentra/internal/engine"
	"NetSentra/internal/model"
	"NetSentra/internal/rules"
	"NetSentra/internal/stats"
	"NetSentra/internal/storage/memory"
	"NetSentra/pkg/pcap"
)

// pcap-analyzer replays a capture file through the detection pipeline and
// prints the resulting alerts and traffic summary.
func main() {
	// 1. Get pcap file path from command-line arguments
	if len(os.Args) < 2 {
		fmt.Println("Usage: pcap-analyzer <path_to_pcap_file>")
		os.Exit(1)
	}
	pcapFilePath := os.Args[1]

	// 2. Load configuration and rules
	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	var ruleSet []*rules.Rule
	for _, name := range cfg.Rules.RuleFiles {
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.Rules.DefaultRulePath, name)
		}
		ruleSet, err = rules.ParseFile(path, ruleSet)
		if err != nil {
			log.Fatalf("Failed to load rule file %s: %v", path, err)
		}
	}
	log.Printf("Loaded %d rules", len(ruleSet))

	// 3. Build the pipeline on an in-memory store; nothing is persisted
	store := memory.NewStore()
	emitter := alert.NewEmitter(store, nil, nil, cfg.Alerts.QueueSize)
	collector := stats.NewCollector()
	eng := engine.New(cfg, store, rules.NewMatcher(ruleSet),
		config.LoadClassification(cfg.Rules.Classification), collector, emitter)

	reader, err := pcap.NewReader(pcapFilePath)
	if err != nil {
		log.Fatalf("Failed to open pcap file: %v", err)
	}
	defer reader.Close()
	log.Printf("Reading packets from '%s'...", pcapFilePath)

	// 4. Replay every packet through the pipeline
	packets := make(chan *model.PacketInfo, 256)
	go reader.ReadPackets(packets)
	for pkt := range packets {
		eng.HandlePacket(pkt)
	}
	emitter.Stop()

	// 5. Print the results
	snap := collector.Snapshot()
	fmt.Printf("\nTraffic summary: %d packets (%d TCP, %d UDP, %d ICMP)\n",
		snap.TotalPackets, snap.TCPPackets, snap.UDPPackets, snap.ICMPPackets)

	alerts, err := store.ListAlerts(context.Background(), model.AlertFilter{}, 0)
	if err != nil {
		log.Fatalf("Failed to read alerts: %v", err)
	}
	if len(alerts) == 0 {
		fmt.Println("No alerts.")
		return
	}
	fmt.Printf("%d alert(s):\n", len(alerts))
	for _, a := range alerts {
		fmt.Printf("  [%s] %s: %s (%s -> %s, sid %d)\n",
			a.Severity, a.AlertType, a.Description, a.SourceIP, a.DestinationIP, a.SID)
	}
}
