// Package hub invokes the hub-hosted processing functions (audio
// synthesis, diarization, transcription, PII anonymization, question
// answering). Each function is an opaque HTTP collaborator with the
// same job shape: publish an artifact, poll until the job settles,
// download the result.
package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"call-insights-go/internal/config"
	"call-insights-go/internal/logger"
)

type Client struct {
	cfg  config.HubConfig
	http *http.Client
	log  *logger.Logger
}

func New(cfg config.HubConfig) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 12 * time.Second},
		log:  logger.New(),
	}
}

type jobData struct {
	JobID     string `json:"job_id"`
	Status    string `json:"status"`
	ResultURL string `json:"result_url"`
}

type jobResponse struct {
	Code   int     `json:"code"`
	Data   jobData `json:"data"`
	Reason string  `json:"reason,omitempty"`
}

// publish submits one artifact to a hub function as a multipart form.
// Returns the job id, or the result URL right away when the function
// had the artifact cached.
func (c *Client) publish(ctx context.Context, host string, fields map[string]string) (string, string, error) {
	endpoint := strings.TrimRight(host, "/") + "/process"
	var b bytes.Buffer
	w := multipart.NewWriter(&b)
	for k, v := range fields {
		w.WriteField(k, v)
	}
	_ = w.Close()

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(b.Bytes()))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var resp jobResponse
	if err := c.doJSON(req, &resp); err != nil {
		return "", "", err
	}
	if resp.Code != 200 {
		return "", "", fmt.Errorf("hub publish error: code=%d reason=%s", resp.Code, resp.Reason)
	}
	if resp.Data.ResultURL != "" && strings.ToLower(resp.Data.Status) == "success" {
		return "", resp.Data.ResultURL, nil
	}
	return resp.Data.JobID, "", nil
}

// poll waits for a published job to settle.
func (c *Client) poll(ctx context.Context, host, jobID string) (string, error) {
	base := strings.TrimRight(host, "/") + "/getstatus"
	interval := time.Duration(c.cfg.PollIntervalMillis) * time.Millisecond

	for i := 0; i < c.cfg.PollAttempts; i++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(interval):
		}

		u, _ := url.Parse(base)
		q := u.Query()
		q.Set("jobId", jobID)
		u.RawQuery = q.Encode()
		req, _ := http.NewRequestWithContext(ctx, "GET", u.String(), nil)

		var s jobResponse
		if err := c.doJSON(req, &s); err != nil {
			continue
		}
		switch s.Data.Status {
		case "Success":
			return s.Data.ResultURL, nil
		case "Queued", "Processing":
			continue
		case "Failed":
			return "", fmt.Errorf("hub job failed: %s", s.Reason)
		}
	}
	return "", fmt.Errorf("hub job timeout")
}

func (c *Client) download(ctx context.Context, rawurl string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", rawurl, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("download failed: %s", string(b))
	}
	b, _ := io.ReadAll(resp.Body)
	return string(b), nil
}

func (c *Client) doJSON(req *http.Request, target interface{}) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 12 * time.Second
	var lastErr error
	op := func() error {
		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			return err
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error: %s", string(body))
			return lastErr
		}
		if len(body) == 0 {
			lastErr = fmt.Errorf("empty body")
			return lastErr
		}
		if err := json.Unmarshal(body, target); err != nil {
			lastErr = fmt.Errorf("json decode error: %v body=%s", err, string(body))
			return lastErr
		}
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(bo, req.Context())); err != nil {
		return lastErr
	}
	return nil
}

// run is the publish -> poll -> result flow shared by every function.
func (c *Client) run(ctx context.Context, host string, fields map[string]string) (string, error) {
	if host == "" {
		return "", fmt.Errorf("hub function url not configured")
	}
	jobID, resultURL, err := c.publish(ctx, host, fields)
	if err != nil {
		return "", err
	}
	if resultURL == "" {
		resultURL, err = c.poll(ctx, host, jobID)
		if err != nil {
			return "", err
		}
	}
	return resultURL, nil
}
