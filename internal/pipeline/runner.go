// Package pipeline sequences the call center workflows. The runner
// owns ordering and status bookkeeping: every stage writes its status
// back to the store, and a per-call failure marks that call without
// sinking the batch.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"call-insights-go/internal/config"
	"call-insights-go/internal/conversation"
	"call-insights-go/internal/events"
	"call-insights-go/internal/generator"
	"call-insights-go/internal/logger"
	"call-insights-go/internal/metrics"
	"call-insights-go/internal/store"
	"call-insights-go/internal/types"
)

// Store is the persistence dependency (satisfied by store.Store).
type Store interface {
	InsertAgents(ctx context.Context, agents []types.Agent) error
	InsertClients(ctx context.Context, clients []types.Client) error
	InsertCalls(ctx context.Context, calls []types.Call) ([]string, error)
	GetAgents(ctx context.Context) ([]types.Agent, error)
	GetClients(ctx context.Context) ([]types.Client, error)
	GetCalls(ctx context.Context, filter store.CallFilter) ([]types.Call, error)
	UpdateCalls(ctx context.Context, status types.CallStatus, keyColumn string, updates []store.CallUpdate) error
}

// Hub bundles the hub-hosted processing functions (satisfied by
// hub.Client).
type Hub interface {
	SynthesizeAudio(ctx context.Context, textFile string) (string, error)
	Diarize(ctx context.Context, audioFile string) (string, error)
	Transcribe(ctx context.Context, audioFile, diarizationFile string) (string, error)
	Anonymize(ctx context.Context, transcriptionFile string) (string, error)
	AnswerQuestions(ctx context.Context, anonymizedFile string, questions []string) (string, error)
}

type Runner struct {
	store  Store
	hub    Hub
	conv   *conversation.Generator
	cfg    *config.Config
	events *events.Publisher
	log    *logger.Logger
}

func NewRunner(s Store, h Hub, conv *conversation.Generator, cfg *config.Config, pub *events.Publisher) *Runner {
	return &Runner{
		store:  s,
		hub:    h,
		conv:   conv,
		cfg:    cfg,
		events: pub,
		log:    logger.New(),
	}
}

// GenerationResult is what the generation workflow hands to the
// analysis workflow: ready call rows plus the pairs that fell out.
type GenerationResult struct {
	Calls []types.Call
	Gaps  []conversation.Gap
}

// Generation runs the first workflow: profiles into the store,
// one scripted dialogue per pair, audio synthesis in batches, and the
// join into an analysis-ready call batch.
func (r *Runner) Generation(ctx context.Context) (*GenerationResult, error) {
	log := r.log.WithRun("calls-generation")

	agents, clients, err := r.ensureProfiles(ctx)
	if err != nil {
		return nil, err
	}
	log.WithField("agents", len(agents)).WithField("clients", len(clients)).Info("profiles ready")

	pairs, err := r.conv.Pairs(agents, clients, r.cfg.Generation.Amount)
	if err != nil {
		return nil, err
	}
	res, err := r.conv.Generate(ctx, pairs)
	if err != nil {
		return nil, fmt.Errorf("conversation generation: %w", err)
	}
	metrics.DialoguesGenerated.Add(float64(len(res.Conversations)))
	metrics.GenerationGaps.Add(float64(len(res.Gaps)))
	r.publish("calls-generation", "conversation-generation", "", len(res.Conversations), len(res.Gaps))

	// Synthesize audio batch by batch; a failed synthesis drops the
	// pair out of the join below, it never shifts another pair's slot.
	audioByTextFile := make(map[string]string, len(res.Conversations))
	synthFailures := 0
	for _, batch := range conversation.Batch(res.Conversations, r.cfg.Generation.BatchSize) {
		for _, conv := range batch {
			audio, err := r.hub.SynthesizeAudio(ctx, filepath.Join(res.OutputDir, conv.TextFile))
			if err != nil {
				synthFailures++
				metrics.StageFailed.WithLabelValues("text-to-audio").Inc()
				log.WithError(err).WithField("call_id", conv.CallID).Warn("audio synthesis failed")
				continue
			}
			metrics.StageCompleted.WithLabelValues("text-to-audio").Inc()
			audioByTextFile[conv.TextFile] = audio
		}
	}
	r.publish("calls-generation", "text-to-audio", "", len(audioByTextFile), synthFailures)

	calls, joinGaps := conversation.AnalysisBatch(res.Conversations, audioByTextFile)
	gaps := append(res.Gaps, joinGaps...)
	log.WithField("calls", len(calls)).WithField("gaps", len(gaps)).Info("analysis batch ready")
	r.publish("calls-generation", "batch-creation", "", len(calls), len(joinGaps))

	return &GenerationResult{Calls: calls, Gaps: gaps}, nil
}

// ensureProfiles loads or generates agents and clients. Profiles
// already in the store are reused: they are write-once per run.
func (r *Runner) ensureProfiles(ctx context.Context) ([]types.Agent, []types.Client, error) {
	agents, err := r.store.GetAgents(ctx)
	if err != nil {
		return nil, nil, err
	}
	clients, err := r.store.GetClients(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(agents) > 0 && len(clients) > 0 {
		return agents, clients, nil
	}

	if r.cfg.Generation.SeedWorkbook != "" {
		agents, clients, err = generator.LoadSeedWorkbook(r.cfg.Generation.SeedWorkbook)
		if err != nil {
			return nil, nil, fmt.Errorf("load seed workbook: %w", err)
		}
	} else {
		g := generator.New(r.cfg.Generation.RandomSeed)
		agents = g.Agents(r.cfg.Generation.NumAgents)
		clients = g.Clients(r.cfg.Generation.NumClients)
	}

	if err := r.store.InsertAgents(ctx, agents); err != nil {
		return nil, nil, err
	}
	if err := r.store.InsertClients(ctx, clients); err != nil {
		return nil, nil, err
	}
	return agents, clients, nil
}

func (r *Runner) publish(workflow, stage string, status types.CallStatus, calls, failures int) {
	r.events.Publish(events.StageEvent{
		Workflow: workflow,
		Stage:    stage,
		Status:   status,
		Calls:    calls,
		Failures: failures,
	})
}
