// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cloud provides components for interacting with external services.
// This file implements the REST client for the text-to-video generation
// backend. The backend runs scene jobs remotely: a submission returns an
// opaque job id immediately and the client polls job status until the job
// reaches a terminal state, then downloads the rendered artifact.
//
// Submissions are rate limited the same way the GenAI models are, because
// the constrained resource is the remote service's concurrent job slots.
package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/model"
)

// Generation backend defaults, applied when the configuration leaves the
// corresponding field unset.
const (
	DefaultSoraModel        = "sora-2-pro"
	DefaultSoraSize         = "1792x1024"
	DefaultSoraDuration     = 12
	DefaultPollInterval     = 15 * time.Second
	DefaultMaxPollDuration  = 10 * time.Minute
	defaultSubmitRateLimit  = 2
	defaultHTTPTimeout      = 2 * time.Minute
	defaultDownloadTimeout  = 10 * time.Minute
	maxSubmitRetries        = 3
	submitRetryDelay        = 5 * time.Second
	EnvGenerationBackendKey = "SORA_API_KEY" // Environment fallback for the API key.
)

// SoraClient is the HTTP client for the generation backend.
type SoraClient struct {
	baseURL        string
	apiKey         string
	model          string
	size           string
	duration       int
	pollInterval   time.Duration
	maxPoll        time.Duration
	limiter        *rate.Limiter
	httpClient     *http.Client
	downloadClient *http.Client
}

// NewSoraClient creates a client from the backend configuration, filling in
// defaults for any unset field. The API key falls back to the SORA_API_KEY
// environment variable when the config does not carry one.
func NewSoraClient(cfg *GenerationBackend) *SoraClient {
	c := &SoraClient{
		baseURL:        cfg.BaseURL,
		apiKey:         cfg.APIKey,
		model:          cfg.Model,
		size:           cfg.Size,
		duration:       cfg.DurationSeconds,
		pollInterval:   time.Duration(cfg.PollIntervalSeconds) * time.Second,
		maxPoll:        time.Duration(cfg.MaxPollSeconds) * time.Second,
		httpClient:     &http.Client{Timeout: defaultHTTPTimeout},
		downloadClient: &http.Client{Timeout: defaultDownloadTimeout},
	}
	if c.apiKey == "" {
		c.apiKey = os.Getenv(EnvGenerationBackendKey)
	}
	if c.model == "" {
		c.model = DefaultSoraModel
	}
	if c.size == "" {
		c.size = DefaultSoraSize
	}
	if c.duration <= 0 {
		c.duration = DefaultSoraDuration
	}
	if c.pollInterval <= 0 {
		c.pollInterval = DefaultPollInterval
	}
	if c.maxPoll <= 0 {
		c.maxPoll = DefaultMaxPollDuration
	}
	limit := cfg.RateLimit
	if limit <= 0 {
		limit = defaultSubmitRateLimit
	}
	c.limiter = rate.NewLimiter(rate.Limit(limit), limit)
	return c
}

// PollInterval returns the configured delay between status sweeps.
func (c *SoraClient) PollInterval() time.Duration { return c.pollInterval }

// MaxPollDuration returns how long a job may stay pending before the caller
// should force it into a failed state with a timeout error.
func (c *SoraClient) MaxPollDuration() time.Duration { return c.maxPoll }

// CreateVideo submits one scene prompt as a remote job. It returns as soon as
// the backend acknowledges the job; rendering happens asynchronously.
// Transient submission failures are retried a bounded number of times, the
// same policy the generative model wrapper applies.
func (c *SoraClient) CreateVideo(ctx context.Context, prompt string) (*model.JobHandle, error) {
	var handle *model.JobHandle
	var err error
	for attempt := 0; attempt <= maxSubmitRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(submitRetryDelay):
			}
		}
		handle, err = c.submitVideo(ctx, prompt)
		if err == nil {
			return handle, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("job submission failed after %d attempts: %w", maxSubmitRetries+1, err)
}

func (c *SoraClient) submitVideo(ctx context.Context, prompt string) (*model.JobHandle, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(map[string]any{
		"model":   c.model,
		"prompt":  prompt,
		"size":    c.size,
		"seconds": c.duration,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/videos", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.statusError("video submission", resp)
	}

	handle := &model.JobHandle{}
	if err := json.NewDecoder(resp.Body).Decode(handle); err != nil {
		return nil, fmt.Errorf("failed to decode submission response: %w", err)
	}
	if handle.ID == "" {
		return nil, fmt.Errorf("backend returned no job id")
	}
	return handle, nil
}

// GetVideoStatus fetches the current state of a job. Status strings outside
// the known vocabulary are returned as-is; callers treat them as pending.
func (c *SoraClient) GetVideoStatus(ctx context.Context, jobID string) (*model.JobState, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/videos/"+jobID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.statusError("status check", resp)
	}

	state := &model.JobState{}
	if err := json.NewDecoder(resp.Body).Decode(state); err != nil {
		return nil, fmt.Errorf("failed to decode status response: %w", err)
	}
	return state, nil
}

// DownloadVideo streams a completed job's artifact to destPath.
func (c *SoraClient) DownloadVideo(ctx context.Context, jobID string, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/videos/"+jobID+"/content", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.downloadClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError("artifact download", resp)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to write artifact to %s: %w", destPath, err)
	}
	return out.Close()
}

func (c *SoraClient) statusError(op string, resp *http.Response) error {
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return fmt.Errorf("%s failed with status %d: %s", op, resp.StatusCode, string(detail))
}
