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

// Package telemetry configures the observability for the ad-cloning service:
// logging, tracing, and metrics. This file sets up the structured logger the
// whole pipeline writes through. A cloning run spans minutes and many stages,
// so every log line carries the active trace context in the shape Cloud
// Logging correlates automatically; finding all the lines of one run is a
// single trace filter in the console.
package telemetry

import (
	"context"
	"io"
	"log"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
)

// LogFileName is the local sidecar copy of the service log. Cloud Logging
// ingests stdout; the file exists for debugging a container that never made
// it far enough to ship logs.
const LogFileName = "ad-cloner.log"

// spanContextLogHandler wraps another slog.Handler and stamps each record
// with the OpenTelemetry trace and span identifiers found in the context.
// This is what ties a run's log lines to its trace.
type spanContextLogHandler struct {
	slog.Handler
}

func handlerWithSpanContext(handler slog.Handler) *spanContextLogHandler {
	return &spanContextLogHandler{Handler: handler}
}

// Handle injects the trace attributes under the special field names Cloud
// Logging uses for log-trace correlation, then delegates to the wrapped
// handler.
// See: https://cloud.google.com/logging/docs/structured-logging#special-payload-fields
func (t *spanContextLogHandler) Handle(ctx context.Context, record slog.Record) error {
	if s := trace.SpanContextFromContext(ctx); s.IsValid() {
		record.AddAttrs(
			slog.Any("logging.googleapis.com/trace", s.TraceID()),
		)
		record.AddAttrs(
			slog.Any("logging.googleapis.com/spanId", s.SpanID()),
		)
		record.AddAttrs(
			slog.Bool("logging.googleapis.com/trace_sampled", s.TraceFlags().IsSampled()),
		)
	}
	return t.Handler.Handle(ctx, record)
}

// replacer renames slog's default attribute keys to the keys Cloud Logging
// parses ("severity", "timestamp", "message"), so pipeline logs land with
// the right severity and time instead of as opaque JSON payloads.
func replacer(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.LevelKey:
		a.Key = "severity"
		// slog says "WARN", the LogSeverity enum says "WARNING".
		// https://cloud.google.com/logging/docs/reference/v2/rest/v2/LogEntry#LogSeverity
		if level := a.Value.Any().(slog.Level); level == slog.LevelWarn {
			a.Value = slog.StringValue("WARNING")
		}
	case slog.TimeKey:
		a.Key = "timestamp"
	case slog.MessageKey:
		a.Key = "message"
	}
	return a
}

// SetupLogging installs the service-wide loggers: the standard `log` package
// for the few libraries that still use it, and a JSON slog handler with trace
// injection as the process default. Output goes to stdout and to the local
// sidecar file simultaneously. Runs before the cloud clients are built so
// their startup lines are already structured.
func SetupLogging() {
	file, _ := os.Create(LogFileName)
	multiWriter := io.MultiWriter(os.Stdout, file)

	// Legacy `log` callers share the writer and get a recognizable prefix.
	log.SetOutput(multiWriter)
	log.SetPrefix("[INFO] ")
	log.SetFlags(log.Ldate | log.Ltime)

	// JSON for Cloud Logging, wrapped so trace context rides along, then
	// installed as the global default at Info level.
	jsonHandler := slog.NewJSONHandler(multiWriter, &slog.HandlerOptions{ReplaceAttr: replacer})
	instrumentedHandler := handlerWithSpanContext(jsonHandler)
	slog.SetDefault(slog.New(instrumentedHandler))
	slog.SetLogLoggerLevel(slog.LevelInfo)
}
