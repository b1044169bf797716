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
// This file defines the Pub/Sub listener that turns source-ad uploads into
// cloning runs. An ad dropped into the upload bucket produces a GCS
// object-finalize notification; the listener hands the raw notification JSON
// to the head of the cloning chain as its trigger message.
//
// Logic Flow:
//  1. A listener is bound to the upload-notification subscription at startup.
//  2. The cloning chain is attached as the listener's command once assembled.
//  3. `Listen` starts a background receive loop scoped to the server context.
//  4. Each notification spawns one chain execution, which is one cloning run.
//  5. The notification is acknowledged only when the full run finishes
//     without chain errors. A failed run leaves the message unacknowledged,
//     so the subscription's retry policy redelivers it and the run is
//     attempted again.
//
// Each run is traced as a single span carrying the triggering object name,
// so a slow or failed run can be tied back to the ad that caused it.
package cloud

import (
	"context"
	"log/slog"

	"cloud.google.com/go/pubsub"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/cor"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PubSubListener binds one subscription to one processing chain. Listeners
// outlive any single run, so they live with the other long-lived cloud
// clients rather than with per-request state.
type PubSubListener struct {
	client       *pubsub.Client
	subscription *pubsub.Subscription // The upload-notification subscription this listener drains.
	command      cor.Command          // The cloning chain executed once per notification.
}

// NewPubSubListener binds a listener to the named subscription. The command
// may be nil at construction time; configuration declares the listeners
// before the chain they feed exists.
//
// Inputs:
//   - pubsubClient: An authenticated *pubsub.Client.
//   - subscriptionID: The subscription carrying the bucket's notifications.
//   - command: The chain to run per notification, or nil to attach later.
//
// Outputs:
//   - *PubSubListener: The configured listener.
//   - error: Reserved for construction failures; currently always nil.
func NewPubSubListener(
	pubsubClient *pubsub.Client,
	subscriptionID string,
	command cor.Command,
) (cmd *PubSubListener, err error) {
	cmd = &PubSubListener{
		client:       pubsubClient,
		subscription: pubsubClient.Subscription(subscriptionID),
		command:      command,
	}
	return cmd, nil
}

// SetCommand attaches the cloning chain to a listener that was declared
// before the chain was assembled. A command already in place is never
// overwritten; the first wiring wins.
//
// Inputs:
//   - command: The cor.Command to execute for each notification.
func (m *PubSubListener) SetCommand(command cor.Command) {
	if m.command == nil {
		m.command = command
	}
}

// Listen starts draining the subscription in a background goroutine so the
// HTTP server keeps serving while runs execute. Cancelling ctx stops the
// receive loop, which is how graceful shutdown reaches the listener.
//
// Inputs:
//   - ctx: The server's root context; its cancellation ends the loop.
func (m *PubSubListener) Listen(ctx context.Context) {
	slog.InfoContext(ctx, "listening for source-ad uploads", "subscription", m.subscription.String())

	go func() {
		tracer := otel.Tracer("source-ad-listener")

		// Receive blocks until ctx is cancelled, invoking the callback once
		// per delivered notification.
		err := m.subscription.Receive(ctx, func(_ context.Context, msg *pubsub.Message) {
			// One span per cloning run, carrying the trigger payload so a
			// failed run points back at the ad that caused it.
			spanCtx, span := tracer.Start(ctx, "clone-source-ad")
			span.SetAttributes(attribute.String("trigger.notification", string(msg.Data)))
			slog.InfoContext(spanCtx, "source-ad notification received")

			// Seed a fresh chain context with the raw notification JSON; the
			// trigger parser at the head of the chain takes it from there.
			chainCtx := cor.NewBaseContext()
			chainCtx.SetContext(spanCtx)
			chainCtx.Add(cor.CtxIn, string(msg.Data))

			m.command.Execute(chainCtx)

			if !chainCtx.HasErrors() {
				span.SetStatus(codes.Ok, "run complete")
				// Ack only after the whole run succeeded. Anything short of
				// that leaves the message for redelivery.
				msg.Ack()
			} else {
				span.SetStatus(codes.Error, "run failed")
				for _, e := range chainCtx.GetErrors() {
					slog.ErrorContext(spanCtx, "cloning run failed", "error", e)
				}
			}

			span.End()
		})

		if err != nil {
			slog.ErrorContext(ctx, "subscription receive ended", "subscription", m.subscription.String(), "error", err)
		}
	}()
}
