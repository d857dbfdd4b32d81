package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"call-insights-go/internal/config"
	"call-insights-go/internal/conversation"
	"call-insights-go/internal/store"
	"call-insights-go/internal/types"
)

type fakeStore struct {
	agents  []types.Agent
	clients []types.Client
	calls   []types.Call
	updates []stageUpdate
}

type stageUpdate struct {
	status    types.CallStatus
	keyColumn string
	rows      []store.CallUpdate
}

func (f *fakeStore) InsertAgents(ctx context.Context, agents []types.Agent) error {
	f.agents = append(f.agents, agents...)
	return nil
}

func (f *fakeStore) InsertClients(ctx context.Context, clients []types.Client) error {
	f.clients = append(f.clients, clients...)
	return nil
}

func (f *fakeStore) InsertCalls(ctx context.Context, calls []types.Call) ([]string, error) {
	f.calls = append(f.calls, calls...)
	audio := make([]string, 0, len(calls))
	for _, c := range calls {
		audio = append(audio, c.AudioFile)
	}
	return audio, nil
}

func (f *fakeStore) GetAgents(ctx context.Context) ([]types.Agent, error) {
	return f.agents, nil
}

func (f *fakeStore) GetClients(ctx context.Context) ([]types.Client, error) {
	return f.clients, nil
}

func (f *fakeStore) GetCalls(ctx context.Context, filter store.CallFilter) ([]types.Call, error) {
	var out []types.Call
	for _, c := range f.calls {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeStore) UpdateCalls(ctx context.Context, status types.CallStatus, keyColumn string, updates []store.CallUpdate) error {
	f.updates = append(f.updates, stageUpdate{status: status, keyColumn: keyColumn, rows: updates})
	return nil
}

// fakeHub chains deterministic file names, mirroring the mock-mode
// conventions of the real client.
type fakeHub struct {
	failFirstSynth bool
	failDiarizeFor string
	synthCalls     int
}

func (f *fakeHub) SynthesizeAudio(ctx context.Context, textFile string) (string, error) {
	f.synthCalls++
	if f.failFirstSynth && f.synthCalls == 1 {
		return "", fmt.Errorf("synthesis rejected")
	}
	return strings.TrimSuffix(textFile, ".txt") + ".wav", nil
}

func (f *fakeHub) Diarize(ctx context.Context, audioFile string) (string, error) {
	if f.failDiarizeFor != "" && strings.Contains(audioFile, f.failDiarizeFor) {
		return "", fmt.Errorf("diarization rejected")
	}
	return audioFile + ".diarization.json", nil
}

func (f *fakeHub) Transcribe(ctx context.Context, audioFile, diarizationFile string) (string, error) {
	return audioFile + ".transcript.txt", nil
}

func (f *fakeHub) Anonymize(ctx context.Context, transcriptionFile string) (string, error) {
	return transcriptionFile + ".anonymized.txt", nil
}

func (f *fakeHub) AnswerQuestions(ctx context.Context, anonymizedFile string, questions []string) (string, error) {
	if len(questions) <= 5 {
		return "1. Internet connection problems\n2. The client reported an outage and the agent walked them through a router reset.\n3. Yes, the concern was addressed.\n4. negative\n5. positive\n", nil
	}
	return "1. Yes\n2. No\n3. 4\n4. 5\n5. 3\n6. 4\n7. 5\n8. 4\n", nil
}

type scriptedCompleter struct{}

func (scriptedCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return "Agent: Thank you for calling, how can I help?\nClient: My internet keeps dropping.\nAgent: Let me look into that for you.\n", nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Database.Backend = "sqlite"
	cfg.Database.Path = filepath.Join(t.TempDir(), "calls.sqlite")
	cfg.LLM.Mock = true
	cfg.Hub.Mock = true
	cfg.Generation.Amount = 3
	cfg.Generation.NumAgents = 2
	cfg.Generation.NumClients = 2
	cfg.Generation.BatchSize = 2
	cfg.Generation.RandomSeed = 7
	cfg.Generation.OutputDir = t.TempDir()
	require.NoError(t, cfg.Validate())
	return cfg
}

func testRunner(t *testing.T, fs *fakeStore, fh *fakeHub, cfg *config.Config) *Runner {
	t.Helper()
	conv, err := conversation.New(scriptedCompleter{}, cfg.Generation)
	require.NoError(t, err)
	return NewRunner(fs, fh, conv, cfg, nil)
}

func TestGenerationWorkflow(t *testing.T) {
	cfg := testConfig(t)
	fs := &fakeStore{}
	r := testRunner(t, fs, &fakeHub{}, cfg)

	res, err := r.Generation(context.Background())
	require.NoError(t, err)

	assert.Len(t, fs.agents, 2, "profiles should be generated and stored")
	assert.Len(t, fs.clients, 2)
	assert.Len(t, res.Calls, 3)
	assert.Empty(t, res.Gaps)

	for _, c := range res.Calls {
		assert.Equal(t, types.StatusCreated, c.Status)
		assert.NotEmpty(t, c.AgentID)
		assert.NotEmpty(t, c.ClientID)
		assert.True(t, strings.HasSuffix(c.AudioFile, ".wav"))
		assert.False(t, c.CallTime.IsZero())
	}
}

func TestGenerationReusesStoredProfiles(t *testing.T) {
	cfg := testConfig(t)
	fs := &fakeStore{
		agents:  []types.Agent{{AgentID: "a1", FirstName: "Dana", LastName: "Reed"}},
		clients: []types.Client{{ClientID: "c1", FirstName: "Lee", LastName: "Park"}},
	}
	r := testRunner(t, fs, &fakeHub{}, cfg)

	res, err := r.Generation(context.Background())
	require.NoError(t, err)

	assert.Len(t, fs.agents, 1, "existing profiles must not be regenerated")
	assert.Len(t, fs.clients, 1)
	for _, c := range res.Calls {
		assert.Equal(t, "a1", c.AgentID)
		assert.Equal(t, "c1", c.ClientID)
	}
}

func TestGenerationSynthesisFailureBecomesGap(t *testing.T) {
	cfg := testConfig(t)
	fs := &fakeStore{}
	r := testRunner(t, fs, &fakeHub{failFirstSynth: true}, cfg)

	res, err := r.Generation(context.Background())
	require.NoError(t, err)

	// The failing pair drops out as a gap; nothing shifts into its slot.
	assert.Len(t, res.Calls, cfg.Generation.Amount-1)
	require.Len(t, res.Gaps, 1)
	assert.NotEmpty(t, res.Gaps[0].AgentID)
	assert.NotEmpty(t, res.Gaps[0].Reason)
}

func TestAnalysisStageSequence(t *testing.T) {
	cfg := testConfig(t)
	fs := &fakeStore{}
	r := testRunner(t, fs, &fakeHub{}, cfg)

	calls := []types.Call{
		{CallID: "call-1", AgentID: "a1", ClientID: "c1", AudioFile: "call-1.wav", Status: types.StatusCreated},
		{CallID: "call-2", AgentID: "a1", ClientID: "c1", AudioFile: "call-2.wav", Status: types.StatusCreated},
	}
	res, err := r.Analysis(context.Background(), calls)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Analyzed)
	assert.Empty(t, res.Failures)

	require.Len(t, fs.updates, 5)

	assert.Equal(t, types.StatusAudioProcessed, fs.updates[0].status)
	assert.Equal(t, "call_id", fs.updates[0].keyColumn)
	assert.Len(t, fs.updates[0].rows, 2)

	assert.Equal(t, types.StatusSpeechDiarized, fs.updates[1].status)
	assert.Equal(t, "call_id", fs.updates[1].keyColumn)
	assert.Len(t, fs.updates[1].rows, 2)

	assert.Equal(t, types.StatusTranscribed, fs.updates[2].status)
	assert.Equal(t, "audio_file", fs.updates[2].keyColumn)
	assert.Equal(t, "call-1.wav.transcript.txt", fs.updates[2].rows[0].Fields["transcription_file"])

	assert.Equal(t, types.StatusAnonymized, fs.updates[3].status)
	assert.Equal(t, "transcription_file", fs.updates[3].keyColumn)
	assert.Equal(t, "call-1.wav.transcript.txt", fs.updates[3].rows[0].Key)

	assert.Equal(t, types.StatusAnalyzed, fs.updates[4].status)
	assert.Equal(t, "anonymized_file", fs.updates[4].keyColumn)
	fields := fs.updates[4].rows[0].Fields
	assert.Equal(t, "Internet connection problems", fields["topic"])
	assert.Equal(t, true, fields["concern_addressed"])
	assert.Equal(t, "Negative", fields["client_tone"])
	assert.Equal(t, 5, fields["professionalism"])
}

func TestAnalysisFailedCallDoesNotSinkBatch(t *testing.T) {
	cfg := testConfig(t)
	fs := &fakeStore{}
	r := testRunner(t, fs, &fakeHub{failDiarizeFor: "call-1"}, cfg)

	calls := []types.Call{
		{CallID: "call-1", AgentID: "a1", ClientID: "c1", AudioFile: "call-1.wav", Status: types.StatusCreated},
		{CallID: "call-2", AgentID: "a1", ClientID: "c1", AudioFile: "call-2.wav", Status: types.StatusCreated},
	}
	res, err := r.Analysis(context.Background(), calls)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Analyzed)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "call-1", res.Failures[0].CallID)
	assert.Equal(t, "diarization", res.Failures[0].Stage)

	// The failed call passed audio validation but must not appear in
	// any update from the failed stage on.
	for _, u := range fs.updates[1:] {
		for _, row := range u.rows {
			assert.NotContains(t, row.Key, "call-1")
		}
	}
}

func TestAnalysisRejectsCallWithoutAudio(t *testing.T) {
	cfg := testConfig(t)
	fs := &fakeStore{}
	r := testRunner(t, fs, &fakeHub{}, cfg)

	calls := []types.Call{
		{CallID: "call-1", AgentID: "a1", ClientID: "c1", Status: types.StatusCreated},
		{CallID: "call-2", AgentID: "a1", ClientID: "c1", AudioFile: "call-2.wav", Status: types.StatusCreated},
	}
	res, err := r.Analysis(context.Background(), calls)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Analyzed)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "audio-validation", res.Failures[0].Stage)
}

func TestAnalyzePending(t *testing.T) {
	cfg := testConfig(t)
	fs := &fakeStore{calls: []types.Call{
		{CallID: "call-9", AgentID: "a1", ClientID: "c1", AudioFile: "call-9.wav", Status: types.StatusCreated},
		{CallID: "done", AgentID: "a1", ClientID: "c1", AudioFile: "done.wav", Status: types.StatusAnalyzed},
	}}
	r := testRunner(t, fs, &fakeHub{}, cfg)

	res, err := r.AnalyzePending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Analyzed)

	empty := &fakeStore{}
	r2 := testRunner(t, empty, &fakeHub{}, cfg)
	res2, err := r2.AnalyzePending(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res2.Analyzed)
	assert.Empty(t, empty.updates)
}
