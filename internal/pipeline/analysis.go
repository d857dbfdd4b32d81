package pipeline

import (
	"context"
	"fmt"

	"call-insights-go/internal/metrics"
	"call-insights-go/internal/postprocess"
	"call-insights-go/internal/store"
	"call-insights-go/internal/types"
)

// StageFailure records one call that fell out of the pipeline at a
// stage. The call row keeps the status of its last completed stage.
type StageFailure struct {
	CallID string
	Stage  string
	Reason string
}

type AnalysisResult struct {
	Analyzed int
	Failures []StageFailure
}

// analysisItem tracks one call's artifacts across the stages.
type analysisItem struct {
	call          types.Call
	diarization   string
	transcription string
	anonymized    string
	failed        bool
}

// Analysis runs the second workflow over a fresh call batch: ingest
// the rows, then diarize, transcribe, anonymize, answer questions and
// post-process, advancing each call's status as its stages complete.
func (r *Runner) Analysis(ctx context.Context, calls []types.Call) (*AnalysisResult, error) {
	if len(calls) == 0 {
		return &AnalysisResult{}, nil
	}
	if _, err := r.store.InsertCalls(ctx, calls); err != nil {
		return nil, fmt.Errorf("ingest call batch: %w", err)
	}
	metrics.CallsInserted.Add(float64(len(calls)))
	r.publish("calls-analysis", "insert-calls", types.StatusCreated, len(calls), 0)

	return r.analyze(ctx, calls)
}

// AnalyzePending picks up calls that were ingested but never analyzed
// (an earlier run died, or ingestion happened elsewhere) and runs the
// stages over them.
func (r *Runner) AnalyzePending(ctx context.Context) (*AnalysisResult, error) {
	calls, err := r.store.GetCalls(ctx, store.CallFilter{Status: types.StatusCreated})
	if err != nil {
		return nil, err
	}
	if len(calls) == 0 {
		r.log.Info("no pending calls to analyze")
		return &AnalysisResult{}, nil
	}
	return r.analyze(ctx, calls)
}

func (r *Runner) analyze(ctx context.Context, calls []types.Call) (*AnalysisResult, error) {
	log := r.log.WithRun("calls-analysis")
	res := &AnalysisResult{}

	items := make([]*analysisItem, 0, len(calls))
	for _, c := range calls {
		items = append(items, &analysisItem{call: c})
	}

	fail := func(it *analysisItem, stage string, err error) {
		it.failed = true
		metrics.StageFailed.WithLabelValues(stage).Inc()
		res.Failures = append(res.Failures, StageFailure{CallID: it.call.CallID, Stage: stage, Reason: err.Error()})
		log.WithField("call_id", it.call.CallID).WithField("stage", stage).WithError(err).
			Warn("stage failed for call")
	}

	// Audio validation. A row ingested without its audio cannot enter
	// the stages.
	var updates []store.CallUpdate
	for _, it := range items {
		if it.call.AudioFile == "" {
			fail(it, "audio-validation", fmt.Errorf("call has no audio file"))
			continue
		}
		updates = append(updates, store.CallUpdate{Key: it.call.CallID})
	}
	if err := r.store.UpdateCalls(ctx, types.StatusAudioProcessed, "call_id", updates); err != nil {
		return nil, err
	}
	r.publish("calls-analysis", "audio-validation", types.StatusAudioProcessed, len(updates), len(items)-len(updates))

	// Speech diarization. Keyed by call id; the artifact only feeds
	// the transcription stage, no column to write yet.
	updates = updates[:0]
	for _, it := range items {
		if it.failed {
			continue
		}
		d, err := r.hub.Diarize(ctx, it.call.AudioFile)
		if err != nil {
			fail(it, "diarization", err)
			continue
		}
		it.diarization = d
		metrics.StageCompleted.WithLabelValues("diarization").Inc()
		updates = append(updates, store.CallUpdate{Key: it.call.CallID})
	}
	if err := r.store.UpdateCalls(ctx, types.StatusSpeechDiarized, "call_id", updates); err != nil {
		return nil, err
	}
	r.publish("calls-analysis", "diarization", types.StatusSpeechDiarized, len(updates), len(items)-len(updates))

	// Transcription, keyed by the audio file.
	updates = updates[:0]
	for _, it := range items {
		if it.failed {
			continue
		}
		t, err := r.hub.Transcribe(ctx, it.call.AudioFile, it.diarization)
		if err != nil {
			fail(it, "transcription", err)
			continue
		}
		it.transcription = t
		metrics.StageCompleted.WithLabelValues("transcription").Inc()
		updates = append(updates, store.CallUpdate{
			Key:    it.call.AudioFile,
			Fields: map[string]interface{}{"transcription_file": t},
		})
	}
	if err := r.store.UpdateCalls(ctx, types.StatusTranscribed, "audio_file", updates); err != nil {
		return nil, err
	}
	r.publish("calls-analysis", "transcription", types.StatusTranscribed, len(updates), 0)

	// PII anonymization, keyed by the transcription file.
	updates = updates[:0]
	for _, it := range items {
		if it.failed {
			continue
		}
		a, err := r.hub.Anonymize(ctx, it.transcription)
		if err != nil {
			fail(it, "pii-recognition", err)
			continue
		}
		it.anonymized = a
		metrics.StageCompleted.WithLabelValues("pii-recognition").Inc()
		updates = append(updates, store.CallUpdate{
			Key:    it.transcription,
			Fields: map[string]interface{}{"anonymized_file": a},
		})
	}
	if err := r.store.UpdateCalls(ctx, types.StatusAnonymized, "transcription_file", updates); err != nil {
		return nil, err
	}
	r.publish("calls-analysis", "pii-recognition", types.StatusAnonymized, len(updates), 0)

	// Question answering plus post-processing, keyed by the anonymized
	// file. Garbled answers degrade to sentinel columns, they do not
	// fail the call.
	updates = updates[:0]
	for _, it := range items {
		if it.failed {
			continue
		}
		primary, err := r.hub.AnswerQuestions(ctx, it.anonymized, PrimaryQuestions())
		if err != nil {
			fail(it, "question-answering", err)
			continue
		}
		secondary, err := r.hub.AnswerQuestions(ctx, it.anonymized, SecondaryQuestions())
		if err != nil {
			fail(it, "question-answering", err)
			continue
		}
		analysis := postprocess.Parse(primary, secondary)
		metrics.StageCompleted.WithLabelValues("question-answering").Inc()
		updates = append(updates, store.CallUpdate{
			Key:    it.anonymized,
			Fields: analysis.UpdateFields(),
		})
	}
	if err := r.store.UpdateCalls(ctx, types.StatusAnalyzed, "anonymized_file", updates); err != nil {
		return nil, err
	}
	r.publish("calls-analysis", "question-answering", types.StatusAnalyzed, len(updates), 0)

	res.Analyzed = len(updates)
	log.WithField("analyzed", res.Analyzed).WithField("failed", len(res.Failures)).Info("analysis workflow done")
	return res, nil
}
