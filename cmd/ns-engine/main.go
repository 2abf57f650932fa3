package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"NetSentra/internal/alert"
	"NetSentra/internal/api"
	"NetSentra/internal/capture"
	"NetSentra/internal/config"
	"NetSentra/internal/discovery"
	"NetSentra/internal/engine"
	"NetSentra/internal/model"
	"NetSentra/internal/notification"
	"NetSentra/internal/rules"
	"NetSentra/internal/stats"
	"NetSentra/internal/storage"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the configuration file")
	flag.Parse()

	log.Println("Starting ns-engine...")

	// 1. Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Println("Configuration loaded successfully.")

	// 2. Load the rule set and classification table
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
	classifications := config.LoadClassification(cfg.Rules.Classification)

	// 3. Open the repository backend
	store, err := storage.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to open storage backend: %v", err)
	}
	defer store.Close()

	// 4. Wire the alert path: optional NATS egress, optional email notifier
	var publisher alert.Publisher
	if cfg.Alerts.NATS.Enabled {
		p, err := alert.NewNATSPublisher(cfg.Alerts.NATS.URL, cfg.Alerts.NATS.Subject)
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		publisher = p
		log.Printf("Publishing EVE alerts to subject %q", cfg.Alerts.NATS.Subject)
	}
	var notifier model.Notifier
	if cfg.SMTP.Host != "" {
		notifier = notification.NewEmailNotifier(cfg.SMTP)
		log.Println("Email notification enabled for high-severity alerts.")
	}
	emitter := alert.NewEmitter(store, publisher, notifier, cfg.Alerts.QueueSize)

	// 5. Start the stats flusher
	collector := stats.NewCollector()
	flusher := stats.NewFlusher(collector, store, cfg.StatsFlushInterval())
	flusher.Start()

	// 6. Start the detection engine. A capture failure here is fatal.
	eng := engine.New(cfg, store, rules.NewMatcher(ruleSet), classifications, collector, emitter)
	if err := eng.Start(); err != nil {
		log.Printf("Failed to start capture: %v", err)
		flusher.Stop()
		emitter.Stop()
		if publisher != nil {
			publisher.Close()
		}
		store.Close()
		os.Exit(2)
	}

	// 7. Start the discovery scheduler
	var scheduler *discovery.Scheduler
	if cfg.Discovery.Enabled {
		iface, err := capture.SelectInterface(cfg.Capture.Interface)
		if err != nil {
			log.Printf("Discovery disabled, no usable interface: %v", err)
		} else {
			orch := discovery.NewOrchestrator(store, cfg.Discovery, iface)
			scheduler = discovery.NewScheduler(orch, cfg.DiscoveryInterval())
			scheduler.Start()
		}
	}

	// 8. Start the operator API
	var apiServer *api.Server
	if cfg.API.Enabled {
		var scanner api.Scanner
		if scheduler != nil {
			scanner = scheduler
		}
		apiServer = api.NewServer(store, scanner, cfg.API.ListenAddr)
		apiServer.Start()
	}

	// 9. Wait for a shutdown signal for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	log.Println("Shutdown signal received, stopping...")
	if apiServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := apiServer.Shutdown(ctx); err != nil {
			log.Printf("API shutdown error: %v", err)
		}
		cancel()
	}
	if scheduler != nil {
		scheduler.Stop()
	}
	eng.Stop()
	flusher.Stop()
	emitter.Stop()
	if publisher != nil {
		publisher.Close()
	}
	log.Println("Shutdown complete.")
}
