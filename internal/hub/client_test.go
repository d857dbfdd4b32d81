package hub

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"call-insights-go/internal/config"
)

func testHubConfig() config.HubConfig {
	return config.HubConfig{
		PollIntervalMillis: 1,
		PollAttempts:       10,
	}
}

// fakeHub mimics one hub function: accepts a publish, reports
// Processing once, then Success with a result URL.
func fakeHub(t *testing.T, resultBody string) *httptest.Server {
	t.Helper()
	var polls int32
	mux := http.NewServeMux()
	var srv *httptest.Server

	mux.HandleFunc("/process", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		fmt.Fprint(w, `{"code":200,"data":{"job_id":"job-1","status":"Queued"}}`)
	})
	mux.HandleFunc("/getstatus", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "job-1", r.URL.Query().Get("jobId"))
		if atomic.AddInt32(&polls, 1) < 2 {
			fmt.Fprint(w, `{"code":200,"data":{"job_id":"job-1","status":"Processing"}}`)
			return
		}
		fmt.Fprintf(w, `{"code":200,"data":{"job_id":"job-1","status":"Success","result_url":"%s/result"}}`, srv.URL)
	})
	mux.HandleFunc("/result", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, resultBody)
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRunPublishPollResult(t *testing.T) {
	srv := fakeHub(t, "artifact")

	cfg := testHubConfig()
	cfg.TranscribeURL = srv.URL
	c := New(cfg)

	out, err := c.Transcribe(context.Background(), "call-1.wav", "call-1.diarization.json")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/result", out)
}

func TestRunCachedResultSkipsPolling(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/process", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":200,"data":{"status":"Success","result_url":"http://hub.local/cached"}}`)
	})
	mux.HandleFunc("/getstatus", func(w http.ResponseWriter, r *http.Request) {
		t.Error("getstatus should not be called for a cached result")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := testHubConfig()
	cfg.DiarizeURL = srv.URL
	c := New(cfg)

	out, err := c.Diarize(context.Background(), "call-1.wav")
	require.NoError(t, err)
	assert.Equal(t, "http://hub.local/cached", out)
}

func TestRunFailedJob(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/process", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":200,"data":{"job_id":"job-1","status":"Queued"}}`)
	})
	mux.HandleFunc("/getstatus", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":200,"data":{"job_id":"job-1","status":"Failed"},"reason":"corrupt audio"}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := testHubConfig()
	cfg.AnonymizeURL = srv.URL
	c := New(cfg)

	_, err := c.Anonymize(context.Background(), "call-1.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt audio")
}

func TestRunPublishRejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/process", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":422,"reason":"unsupported format"}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := testHubConfig()
	cfg.TextToAudioURL = srv.URL
	c := New(cfg)

	_, err := c.SynthesizeAudio(context.Background(), "call-1.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestRunUnconfiguredFunction(t *testing.T) {
	c := New(testHubConfig())
	_, err := c.Diarize(context.Background(), "call-1.wav")
	require.Error(t, err)
}

func TestAnswerQuestionsDownloadsAnswers(t *testing.T) {
	srv := fakeHub(t, "1. billing discrepancies\n2. summary\n3. Yes\n4. Neutral\n5. Neutral")

	cfg := testHubConfig()
	cfg.QuestionAnswerURL = srv.URL
	c := New(cfg)

	answers, err := c.AnswerQuestions(context.Background(), "call-1.anonymized.txt", []string{"q1", "q2"})
	require.NoError(t, err)
	assert.Contains(t, answers, "billing discrepancies")
}

func TestMockMode(t *testing.T) {
	c := New(config.HubConfig{Mock: true})
	ctx := context.Background()

	audio, err := c.SynthesizeAudio(ctx, "abc.txt")
	require.NoError(t, err)
	assert.Equal(t, "abc.wav", audio)

	d, err := c.Diarize(ctx, audio)
	require.NoError(t, err)
	assert.Equal(t, "abc.wav.diarization.json", d)

	tr, err := c.Transcribe(ctx, audio, d)
	require.NoError(t, err)
	assert.Equal(t, "abc.wav.transcript.txt", tr)

	an, err := c.Anonymize(ctx, tr)
	require.NoError(t, err)
	assert.Equal(t, "abc.wav.transcript.txt.anonymized.txt", an)

	primary, err := c.AnswerQuestions(ctx, an, make([]string, 5))
	require.NoError(t, err)
	assert.Contains(t, primary, "1. billing discrepancies")

	secondary, err := c.AnswerQuestions(ctx, an, make([]string, 8))
	require.NoError(t, err)
	assert.Contains(t, secondary, "8. 3")
}
