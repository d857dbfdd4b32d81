package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"call-insights-go/internal/config"
	"call-insights-go/internal/conversation"
	"call-insights-go/internal/events"
	"call-insights-go/internal/hub"
	"call-insights-go/internal/llm"
	"call-insights-go/internal/logger"
	"call-insights-go/internal/metrics"
	"call-insights-go/internal/pipeline"
	"call-insights-go/internal/store"
)

func main() {
	_ = godotenv.Load() // loads .env

	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	workflow := flag.String("workflow", "all", "workflow to run: generate, analyze or all")
	flag.Parse()

	log := logger.New()
	log.WithField("service", "call-insights-go").WithField("workflow", *workflow).Info("starting pipeline")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(cfg.Database, log)
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		log.WithError(err).Fatal("failed to migrate schema")
	}

	pub, err := events.Connect(cfg.Events)
	if err != nil {
		log.WithError(err).Fatal("failed to connect event broker")
	}
	defer pub.Close()

	if cfg.Metrics.Enabled {
		metrics.Serve(cfg.Metrics.Addr)
		log.WithField("addr", cfg.Metrics.Addr).Info("metrics endpoint up")
	}

	conv, err := conversation.New(llm.New(cfg.LLM), cfg.Generation)
	if err != nil {
		log.WithError(err).Fatal("invalid generation config")
	}
	runner := pipeline.NewRunner(db, hub.New(cfg.Hub), conv, cfg, pub)

	switch *workflow {
	case "generate":
		res, err := runner.Generation(ctx)
		if err != nil {
			log.WithError(err).Fatal("generation workflow failed")
		}
		if _, err := db.InsertCalls(ctx, res.Calls); err != nil {
			log.WithError(err).Fatal("failed to store generated calls")
		}
		log.WithField("calls", len(res.Calls)).WithField("gaps", len(res.Gaps)).Info("generation done")

	case "analyze":
		res, err := runner.AnalyzePending(ctx)
		if err != nil {
			log.WithError(err).Fatal("analysis workflow failed")
		}
		log.WithField("analyzed", res.Analyzed).WithField("failed", len(res.Failures)).Info("analysis done")

	case "all":
		gen, err := runner.Generation(ctx)
		if err != nil {
			log.WithError(err).Fatal("generation workflow failed")
		}
		res, err := runner.Analysis(ctx, gen.Calls)
		if err != nil {
			log.WithError(err).Fatal("analysis workflow failed")
		}
		log.WithField("calls", len(gen.Calls)).WithField("gaps", len(gen.Gaps)).
			WithField("analyzed", res.Analyzed).WithField("failed", len(res.Failures)).Info("pipeline done")

	default:
		log.WithField("workflow", *workflow).Fatal("unknown workflow, use generate, analyze or all")
	}
}
