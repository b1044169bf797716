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

// Package cloud provides components for interacting with Google Cloud services.
// This file decorates the Generative AI client with quota awareness. A single
// cloning run makes several model calls in a burst: one video analysis, one
// scenario generation, and up to four variant evaluations. Undecorated, those
// bursts trip Vertex AI per-minute quotas, and a quota error mid-run fails the
// whole run. The wrapper pre-throttles with a token bucket and retries
// transient failures before the error is allowed to surface to the chain.
//
// Structs:
//   - QuotaAwareGenerativeAIModel: One named model plus its content config
//     and rate limiter. The workflow holds one per role (analyzer, creative,
//     evaluator), each throttled independently.
//
// Functions:
//   - NewQuotaAwareModel: Builds the decorated model.
//   - GenerateContent: The throttled, retrying generation call.
package cloud

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// generationRetryKey is the context key carrying the attempt number across a
// retried generation call. Unexported typed key; the count stays internal to
// this wrapper.
type generationRetryKey struct{}

// maxGenerateRetries bounds how many times one generation call is retried
// before its error reaches the chain and fails the run's stage.
const maxGenerateRetries = 3

// QuotaAwareGenerativeAIModel pairs one named Vertex AI model with its
// generation config and a rate limiter. The pipeline never calls the raw
// client; every analysis, scenario, and evaluation request goes through a
// wrapper so quota pressure is absorbed here instead of failing runs.
type QuotaAwareGenerativeAIModel struct {
	GenerativeContentConfig *genai.GenerateContentConfig // Generation parameters shared by every call to this model.
	ModelName               string
	ModelHandle             *genai.Models
	RateLimit               rate.Limiter // Token bucket sized from the model's configured rate limit.
}

// NewQuotaAwareModel builds the decorated model from its generation config,
// name, client handle, and the requests-per-second figure configured for
// that model role.
//
// Inputs:
//   - wrapped: The generation config applied to every call.
//   - name: The Vertex AI model name (e.g. the analyzer model).
//   - ModelHand: The shared *genai.Models client handle.
//   - requestsPerSecond: The burst size of the token bucket.
//
// Outputs:
//   - *QuotaAwareGenerativeAIModel: A pointer to the newly created wrapper.
func NewQuotaAwareModel(wrapped *genai.GenerateContentConfig, name string, ModelHand *genai.Models, requestsPerSecond int) *QuotaAwareGenerativeAIModel {
	return &QuotaAwareGenerativeAIModel{
		GenerativeContentConfig: wrapped,
		ModelName:               name,
		ModelHandle:             ModelHand,
		// Bursts up to requestsPerSecond, refilled one token per second.
		RateLimit: *rate.NewLimiter(rate.Every(time.Second/1), requestsPerSecond),
	}
}

// GenerateContent is the throttled generation call the pipeline uses for all
// of its model requests.
//
// Logic Flow:
//  1. Ask the limiter for a token without blocking.
//  2. With a token, call the model. A failure re-enters this method with the
//     attempt count carried in the context; after the retry budget is spent,
//     the error surfaces and the chain marks the stage failed.
//  3. Without a token, back off briefly and re-enter to ask again. The
//     evaluation burst at the end of a run is what usually lands here.
//
// Inputs:
//   - ctx: The run's context; it also carries the retry attempt count.
//   - content: The multi-modal request (prompt text, gs:// video parts).
//
// Outputs:
//   - *genai.GenerateContentResponse: The model's response on success.
//   - error: The final error once the retry budget is exhausted.
func (q *QuotaAwareGenerativeAIModel) GenerateContent(ctx context.Context, content []*genai.Content) (resp *genai.GenerateContentResponse, err error) {
	if q.RateLimit.Allow() {
		resp, err = q.ModelHandle.GenerateContent(ctx, q.ModelName, content, q.GenerativeContentConfig)
		if err != nil {
			retryCount, ok := ctx.Value(generationRetryKey{}).(int)
			if !ok {
				retryCount = 0
			}
			if retryCount > maxGenerateRetries {
				return nil, errors.New("failed generation on max retries")
			}
			// Quota errors clear on the next quota window, so the wait
			// between attempts is a full minute.
			errCtx := context.WithValue(ctx, generationRetryKey{}, retryCount+1)
			time.Sleep(time.Minute * 1)
			return q.GenerateContent(errCtx, content)
		}
		return resp, err
	}
	// No token available: pause this request and re-enter the queue.
	time.Sleep(time.Second * 5)
	return q.GenerateContent(ctx, content)
}
