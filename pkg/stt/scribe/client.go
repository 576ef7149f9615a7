// Package scribe implements the stt.Engine against a job-based
// diarization HTTP API: one multipart submit creates a job, the job is
// polled until it settles, progress percents ride on the poll
// responses.
package scribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/xpanvictor/diarize/pkg/Logger"
	"github.com/xpanvictor/diarize/pkg/stt"
)

type Config struct {
	BaseURL        string
	APIKey         string
	Tier           string
	PollInterval   time.Duration
	RequestTimeout time.Duration
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *Logger.Logger
}

var _ stt.Engine = (*Client)(nil)

func New(cfg Config, logger *Logger.Logger) *Client {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		logger: logger,
	}
}

// Configured implements stt.Engine.
func (c *Client) Configured() error {
	if c.cfg.APIKey == "" {
		return stt.ErrMissingAPIKey
	}
	return nil
}

// createResponse is the submit acknowledgement.
type createResponse struct {
	ID string `json:"id"`
}

// jobResponse is the poll payload. Utterances are only present once
// Status is "completed".
type jobResponse struct {
	Status     string     `json:"status"`
	Progress   float64    `json:"progress"`
	Utterances []rawEntry `json:"utterances"`
	Error      string     `json:"error"`
}

type rawEntry struct {
	Speaker int    `json:"speaker"`
	Text    string `json:"text"`
}

const (
	statusCompleted = "completed"
	statusError     = "error"
)

// Transcribe implements stt.Engine. It blocks until the job reaches a
// terminal status. Progress values forwarded to onProgress are
// strictly increasing; the final 100 is the caller's responsibility
// once the call settles.
func (c *Client) Transcribe(ctx context.Context, req stt.Request, onProgress stt.ProgressFunc) ([]stt.RawUtterance, error) {
	if err := c.Configured(); err != nil {
		return nil, err
	}

	jobID, err := c.createJob(ctx, req)
	if err != nil {
		return nil, err
	}
	c.logger.Infof("transcription job %s created for %s", jobID, req.FileName)

	lastProgress := -1.0
	report := func(p float64) {
		if onProgress == nil || p <= lastProgress {
			return
		}
		lastProgress = p
		onProgress(p)
	}

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		job, err := c.pollJob(ctx, jobID)
		if err != nil {
			return nil, err
		}

		switch job.Status {
		case statusError:
			return nil, &stt.ServiceError{Message: job.Error}

		case statusCompleted:
			if len(job.Utterances) == 0 {
				return nil, stt.ErrEmptyResult
			}
			report(job.Progress)
			return normalize(job.Utterances), nil

		default:
			report(job.Progress)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for job %s: %w", jobID, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *Client) createJob(ctx context.Context, req stt.Request) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("diarize", "true"); err != nil {
		return "", fmt.Errorf("build submit payload: %w", err)
	}
	if err := mw.WriteField("tier", c.cfg.Tier); err != nil {
		return "", fmt.Errorf("build submit payload: %w", err)
	}

	fw, err := mw.CreateFormFile("audio", req.FileName)
	if err != nil {
		return "", fmt.Errorf("build submit payload: %w", err)
	}
	if _, err := io.Copy(fw, req.Audio); err != nil {
		return "", fmt.Errorf("read audio payload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("build submit payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/transcripts", &body)
	if err != nil {
		return "", fmt.Errorf("build submit request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("submit transcription: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		detail, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("submit transcription: service returned %d: %s", resp.StatusCode, detail)
	}

	var created createResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("decode submit response: %w", err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("submit transcription: service returned no job id")
	}
	return created.ID, nil
}

func (c *Client) pollJob(ctx context.Context, jobID string) (*jobResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/v1/transcripts/"+jobID, nil)
	if err != nil {
		return nil, fmt.Errorf("build poll request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("poll job %s: %w", jobID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("poll job %s: service returned %d: %s", jobID, resp.StatusCode, detail)
	}

	var job jobResponse
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", jobID, err)
	}
	return &job, nil
}

// normalize maps service entries to the fixed speaker alphabet,
// keeping the service's chronological order in the positional ids.
func normalize(entries []rawEntry) []stt.RawUtterance {
	out := make([]stt.RawUtterance, len(entries))
	for i, e := range entries {
		out[i] = stt.RawUtterance{
			ID:      fmt.Sprintf("utterance-%d", i),
			Speaker: stt.SpeakerLabel(e.Speaker),
			Text:    e.Text,
		}
	}
	return out
}
