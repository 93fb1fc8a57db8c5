package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/diretoriaja/monitor/internal/app"
	"github.com/diretoriaja/monitor/internal/config"
	"github.com/diretoriaja/monitor/internal/scheduler"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	runOnce := flag.String("run", "", "run one job by id and exit (news, social_posts, social_mentions, trending, retention, gazette)")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("building application: %v", err)
	}
	defer a.Close()

	if *runOnce != "" {
		runSingle(ctx, a.Scheduler, *runOnce)
		return
	}

	log.Printf("[Worker] starting scheduler loop")
	if err := a.Scheduler.Run(ctx); err != nil {
		log.Fatalf("scheduler: %v", err)
	}
}

// runSingle triggers one job and waits for it to drain.
func runSingle(ctx context.Context, sched *scheduler.Scheduler, id string) {
	logID, err := sched.RunNow(ctx, id)
	if err != nil {
		log.Fatalf("running %s: %v", id, err)
	}
	log.Printf("[Worker] job %s started, log %s", id, logID)

	if err := sched.Drain(); err != nil {
		log.Fatalf("waiting for %s: %v", id, err)
	}
	log.Printf("[Worker] job %s finished", id)
}
