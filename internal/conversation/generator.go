// Package conversation drives the external text generation service to
// script one synthetic dialogue per agent/client pair, and groups the
// results into fixed-size batches for the audio synthesis stage.
package conversation

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"call-insights-go/internal/config"
	"call-insights-go/internal/generator"
	"call-insights-go/internal/logger"
	"call-insights-go/internal/types"
)

// Completer is the text generation dependency (satisfied by llm.Client).
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Pair is one agent/client pairing a dialogue is generated for.
type Pair struct {
	Agent  types.Agent
	Client types.Client
}

// Conversation is the metadata of one generated dialogue, traceable
// back to its originating pair via AgentID/ClientID.
type Conversation struct {
	CallID   string
	TextFile string
	AgentID  string
	ClientID string
	CallTime time.Time
	Script   Script
}

// Gap records a pair whose generation failed and was excluded, so a
// missing dialogue never shows up as a misaligned batch slot.
type Gap struct {
	AgentID  string
	ClientID string
	Reason   string
}

// Result of one generation run.
type Result struct {
	OutputDir     string
	Conversations []Conversation
	Gaps          []Gap
}

type Generator struct {
	llm Completer
	cfg config.GenerationConfig
	rnd *rand.Rand
	log *logger.Logger

	minDate, maxDate time.Time
	minTime, maxTime time.Time
}

func New(c Completer, cfg config.GenerationConfig) (*Generator, error) {
	minDate, err := time.Parse("01.02.2006", cfg.FromDate)
	if err != nil {
		return nil, fmt.Errorf("parse from_date: %w", err)
	}
	maxDate, err := time.Parse("01.02.2006", cfg.ToDate)
	if err != nil {
		return nil, fmt.Errorf("parse to_date: %w", err)
	}
	minTime, err := time.Parse("15:04", cfg.FromTime)
	if err != nil {
		return nil, fmt.Errorf("parse from_time: %w", err)
	}
	maxTime, err := time.Parse("15:04", cfg.ToTime)
	if err != nil {
		return nil, fmt.Errorf("parse to_time: %w", err)
	}

	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		llm:     c,
		cfg:     cfg,
		rnd:     rand.New(rand.NewSource(seed)),
		log:     logger.New(),
		minDate: minDate,
		maxDate: maxDate,
		minTime: minTime,
		maxTime: maxTime,
	}, nil
}

// Pairs picks n random agent/client pairings.
func (g *Generator) Pairs(agents []types.Agent, clients []types.Client, n int) ([]Pair, error) {
	if len(agents) == 0 || len(clients) == 0 {
		return nil, fmt.Errorf("need at least one agent and one client")
	}
	pairs := make([]Pair, 0, n)
	for i := 0; i < n; i++ {
		pairs = append(pairs, Pair{
			Agent:  agents[g.rnd.Intn(len(agents))],
			Client: clients[g.rnd.Intn(len(clients))],
		})
	}
	return pairs, nil
}

// Generate produces one dialogue per pair. A pair whose generation
// fails is recorded as a gap when on_error is "skip" and fails the
// run when it is "retry" (the completer has already retried with
// backoff by the time the error reaches here).
func (g *Generator) Generate(ctx context.Context, pairs []Pair) (*Result, error) {
	outputDir := g.cfg.OutputDir
	if outputDir == "" {
		dir, err := os.MkdirTemp("", "conversations-")
		if err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
		outputDir = dir
	} else if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	minWords := wordsPerMinute * g.cfg.MinMinutes
	maxWords := wordsPerMinute * g.cfg.MaxMinutes

	log := g.log.WithField("component", "conversation-generator")
	res := &Result{OutputDir: outputDir}

	for i, p := range pairs {
		script := randomScript(g.rnd)
		prompt := BuildPrompt(p.Agent, p.Client, g.cfg.Language, minWords, maxWords, script)

		text, err := g.llm.Complete(ctx, prompt)
		if err != nil {
			if g.cfg.OnError == "retry" {
				return nil, fmt.Errorf("generate dialogue %d/%d: %w", i+1, len(pairs), err)
			}
			log.WithError(err).WithField("agent_id", p.Agent.AgentID).WithField("client_id", p.Client.ClientID).
				Warn("dialogue generation failed, recording gap")
			res.Gaps = append(res.Gaps, Gap{
				AgentID:  p.Agent.AgentID,
				ClientID: p.Client.ClientID,
				Reason:   err.Error(),
			})
			continue
		}

		callID := generator.NewID()
		textFile := callID + ".txt"
		if err := os.WriteFile(filepath.Join(outputDir, textFile), []byte(stripBlankLines(text)), 0o644); err != nil {
			return nil, fmt.Errorf("write dialogue %s: %w", textFile, err)
		}

		res.Conversations = append(res.Conversations, Conversation{
			CallID:   callID,
			TextFile: textFile,
			AgentID:  p.Agent.AgentID,
			ClientID: p.Client.ClientID,
			CallTime: g.randomCallTime(),
			Script:   script,
		})
	}

	log.WithField("generated", len(res.Conversations)).WithField("gaps", len(res.Gaps)).
		Info("conversation generation done")
	return res, nil
}

func (g *Generator) randomCallTime() time.Time {
	date := g.minDate.AddDate(0, 0, g.rnd.Intn(int(g.maxDate.Sub(g.minDate).Hours()/24)+1))

	minT, maxT := g.minTime, g.maxTime
	if !maxT.After(minT) {
		maxT = maxT.AddDate(0, 0, 1)
	}
	offset := time.Duration(g.rnd.Int63n(int64(maxT.Sub(minT)) + 1))
	t := minT.Add(offset)

	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

func stripBlankLines(text string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
