// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
// *****************************************************************************************************//
// Package main is the entry point for the ad-cloner backend server.
//
// This application sets up and runs a web server using the Gin framework. It provides a REST API
// for run history, pipeline progress, and source advertisement uploads. The server is instrumented
// with OpenTelemetry for logging, tracing, and metrics, providing observability into the
// application's performance.
//
// The main function initializes the application's configuration, sets up logging and telemetry,
// and initializes the application state, including clients for Google Cloud services. It defines
// API routes for starting and listing runs, fetching run detail and progress, streaming assembled
// variants, and uploading ads.
//
// The server also sets up and manages a background listener for the source-ad Pub/Sub topic, which
// triggers the cloning workflow when a new advertisement is uploaded to Google Cloud Storage.
//
// Functions:
//   - main: The main entry point of the application. It sets up the server, configures routes,
//     initializes services, and handles graceful shutdown.
//   - RunsRouter: Sets up the API routes related to cloning runs, such as listing run history,
//     retrieving a specific run and variant, and generating signed URLs for streaming.
//   - ProgressRouter: Exposes the live pipeline progress feed.
//   - AdUpload: Configures the API endpoint for handling multipart/form-data ad uploads,
//     saving the uploaded files to the source-ad Google Cloud Storage bucket.
package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/h2non/filetype"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/jaycherian/gcp-go-ad-cloner/internal/cloud"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/cor"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/model"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/telemetry"
)

// main is the primary entry point for the application.
// It orchestrates the setup of logging, telemetry, configuration, cloud services,
// the web server, API routes, and background listeners. It also handles graceful
// shutdown of the server upon receiving an interrupt signal.
func main() {
	// Initialize structured logging for the application.
	telemetry.SetupLogging()
	slog.Info("Logging initialized")

	// Create a new context that can be cancelled. This is the root context for the application.
	ctx, cancel := context.WithCancel(context.Background())
	// Defer the cancel function to be called when main exits, ensuring all child contexts are cancelled.
	defer cancel()

	// Load application configuration from TOML files.
	config := GetConfig()

	// Initialize OpenTelemetry for distributed tracing and metrics.
	_, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("Failed to setup OpenTelemetry", "error", err)
		log.Fatal(err)
	}
	slog.Info("Tracing initialized")

	// Initialize the application's state, including all necessary service clients.
	InitState(ctx)
	slog.Info("Initialized State")

	// Set up the Gin web server with default middleware.
	r := gin.Default()

	// Add OpenTelemetry middleware to the Gin router to trace incoming requests.
	// This will automatically create spans for each request.
	r.Use(otelgin.Middleware("ad-cloner-server"))

	// Configure Cross-Origin Resource Sharing (CORS) middleware.
	// Using cors.Default() provides a permissive configuration suitable for development,
	// allowing requests from any origin.
	r.Use(cors.Default())

	// Group routes under the "/api/v1" prefix.
	apiV1 := r.Group("/api/v1")
	{
		// Register the routes for run history, progress, and ad uploads.
		RunsRouter(apiV1)
		ProgressRouter(apiV1)
		AdUpload(apiV1)
	}

	// Configure the HTTP server with the address and handler.
	srv := &http.Server{
		Addr:         ":8080",
		Handler:      r,
		ReadTimeout:  20 * time.Second,
		WriteTimeout: 20 * time.Second,
	}

	// Start the HTTP server in a separate goroutine so it doesn't block the main thread.
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to listen: ", "error", err)
		}
	}()
	slog.Info("Server Ready on port 8080")

	// Set up a channel to listen for OS interrupt signals (e.g., Ctrl+C).
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	// Block until a signal is received on the quit channel.
	<-quit
	slog.Info("Shutdown Server ...")

	// Create a context with a timeout for the graceful shutdown.
	// This gives active requests 5 seconds to complete.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	// Attempt to gracefully shut down the server.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server Shutdown Failed:", "error", err)
	}

	log.Println("Server exiting")
}

// RunsRouter sets up the API routes for cloning-run actions.
//
// Inputs:
//   - r: A *gin.RouterGroup to which the run routes will be added. This allows
//     nesting routes under a common path prefix (e.g., "/api/v1").
//
// Outputs:
//   - This function does not return any values. It modifies the provided *gin.RouterGroup
//     by adding new route handlers.
//
// This function defines the following endpoints:
//   - POST /runs: Starts a clone run directly for an ad already in the upload bucket.
//   - GET /runs: Lists recent runs, newest first.
//   - GET /runs/:id: Retrieves the full details of a specific run by its id.
//   - GET /runs/:id/progress: Returns the progress events recorded for one run.
//   - GET /runs/:id/variants/:level: Fetches the outcome of one aggression variant of a run.
//   - GET /runs/:id/variants/:level/stream: Generates a time-limited, signed URL for
//     securely streaming an assembled variant video.
func RunsRouter(r *gin.RouterGroup) {
	// Group all run-related routes under the "/runs" path.
	runs := r.Group("/runs")
	{
		// Handler for POST /runs
		// Starts the cloning pipeline for an advertisement that is already in
		// the source-ad bucket, without waiting for a Pub/Sub notification.
		runs.POST("", func(c *gin.Context) {
			var req struct {
				Bucket string `json:"bucket"`
				Object string `json:"object" binding:"required"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if req.Bucket == "" {
				req.Bucket = state.config.Storage.SourceAdBucket
			}

			// Feed the pipeline the same notification shape GCS would publish
			// for this object, so both trigger paths share one entry point.
			notification, err := json.Marshal(&cloud.GCSPubSubNotification{
				Kind:        "storage#object",
				Name:        req.Object,
				Bucket:      req.Bucket,
				ContentType: "video/mp4",
			})
			if err != nil {
				c.Status(http.StatusInternalServerError)
				return
			}

			// Run the pipeline in the background on the application's root
			// context. The HTTP request finishes immediately; clients follow
			// the run through the progress endpoints.
			go func() {
				chainCtx := cor.NewBaseContext()
				chainCtx.SetContext(state.rootCtx)
				chainCtx.Add(cor.CtxIn, string(notification))
				state.adCloner.Execute(chainCtx)
				if chainCtx.HasErrors() {
					for _, e := range chainCtx.GetErrors() {
						log.Printf("error executing cloning run: %v", e)
					}
				}
			}()

			c.JSON(http.StatusAccepted, gin.H{"status": "accepted", "object": req.Object})
		})

		// Handler for GET /runs?count=<n>
		runs.GET("", func(c *gin.Context) {
			// Get the 'count' parameter, defaulting to 20 if not provided or invalid.
			count, err := strconv.Atoi(c.DefaultQuery("count", "20"))
			if err != nil {
				count = 20
			}
			out, err := state.runService.List(c, count)
			if err != nil {
				log.Printf("Error listing runs: %v\n", err)
				c.Status(http.StatusInternalServerError)
				return
			}
			// Return the run rows as a JSON array.
			c.JSON(http.StatusOK, out)
		})

		// Handler for GET /runs/:id
		runs.GET("/:id", func(c *gin.Context) {
			// Get the run id from the URL path.
			id := c.Param("id")
			// Fetch the run row by its id.
			out, err := state.runService.Get(c, id)
			if err != nil {
				// If not found, return a 404 status.
				c.Status(http.StatusNotFound)
				return
			}
			// Return the run object as JSON.
			c.JSON(http.StatusOK, out)
		})

		// Handler for GET /runs/:id/progress
		// Replays the progress events attributed to one run so clients can
		// render its stage history even after the run has finished.
		runs.GET("/:id/progress", func(c *gin.Context) {
			c.JSON(http.StatusOK, state.progressSink.RunEvents(c.Param("id")))
		})

		// Handler for GET /runs/:id/variants/:level
		runs.GET("/:id/variants/:level", func(c *gin.Context) {
			id := c.Param("id")
			level := model.AggressionLevel(c.Param("level"))
			// Reject levels outside the closed set before touching BigQuery.
			if !level.Valid() {
				c.Status(http.StatusBadRequest)
				return
			}
			out, err := state.runService.GetVariant(c, id, string(level))
			if err != nil {
				c.Status(http.StatusNotFound)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		// Handler for GET /runs/:id/variants/:level/stream
		// This endpoint provides a secure, time-limited URL for clients to
		// stream an assembled variant video.
		runs.GET("/:id/variants/:level/stream", func(c *gin.Context) {
			id := c.Param("id")
			level := model.AggressionLevel(c.Param("level"))
			if !level.Valid() {
				c.Status(http.StatusBadRequest)
				return
			}
			variant, err := state.runService.GetVariant(c, id, string(level))
			if err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "Variant not found"})
				return
			}
			if variant.AssembledURI == "" {
				c.JSON(http.StatusNotFound, gin.H{"error": "Variant has no assembled video"})
				return
			}

			// Generate a signed URL valid for 15 minutes for the variant file.
			signedURL, err := state.runService.GenerateSignedURL(c, variant.AssembledURI, 15*time.Minute)
			if err != nil {
				log.Printf("Error generating signed URL: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate streaming URL"})
				return
			}
			// Return the signed URL in the JSON response.
			c.JSON(http.StatusOK, gin.H{"url": signedURL})
		})
	}
}

// ProgressRouter exposes the pipeline's live progress feed.
//
// Inputs:
//   - r: A *gin.RouterGroup to which the progress route will be added.
//
// The source-ad listener processes uploads one at a time, so the feed is a
// single ordered event log. Clients poll it to render stage and variant
// progress while a run is active; GET /runs/:id/progress serves the same
// events scoped to one run.
func ProgressRouter(r *gin.RouterGroup) {
	prog := r.Group("/progress")
	{
		// Handler for GET /progress
		prog.GET("", func(c *gin.Context) {
			c.JSON(http.StatusOK, state.progressSink.Events())
		})
	}
}

// AdUpload sets up the route for handling source advertisement uploads.
//
// Inputs:
//   - r: A *gin.RouterGroup to which the upload route will be added.
//
// Outputs:
//   - This function does not return any values. It registers a POST route on the
//     provided router group.
//
// This function configures a POST endpoint at "/ads" that accepts multipart/form-data.
// It processes one or more files sent under the "files" form field, saves them
// temporarily to the local disk, sniffs their MIME type, and then uploads them to
// the source-ad Google Cloud Storage bucket before deleting the local temporary
// file. The GCS notification on that bucket is what triggers the cloning pipeline.
func AdUpload(r *gin.RouterGroup) {
	// Group the upload route under "/ads".
	upload := r.Group("/ads")
	{
		// Handler for POST /ads
		upload.POST("", func(c *gin.Context) {
			// Parse the multipart form from the request.
			form, err := c.MultipartForm()
			if err != nil {
				c.String(http.StatusBadRequest, "get form err: %s", err.Error())
				return
			}
			// Get all files associated with the "files" field.
			files := form.File["files"]
			// Get a handle to the configured GCS bucket for source advertisements.
			bucket := state.cloud.StorageClient.Bucket(state.config.Storage.SourceAdBucket)

			// Loop through all the uploaded files.
			for _, file := range files {
				// Define a temporary local path to save the file.
				localPath := filepath.Join(os.TempDir(), file.Filename)
				// Save the uploaded file to the local temporary path.
				if err := c.SaveUploadedFile(file, localPath); err != nil {
					c.String(http.StatusBadRequest, "upload file err: %s", err.Error())
					return
				}

				// Read the file content from the local path.
				content, err := os.ReadFile(localPath)
				if err != nil {
					log.Println(err)
					c.Status(http.StatusInternalServerError)
					return
				}

				// Sniff the MIME type from the file's magic bytes instead of
				// trusting the client-supplied extension.
				contentType := "video/mp4"
				if kind, err := filetype.Match(content); err == nil && kind.MIME.Value != "" {
					contentType = kind.MIME.Value
				}

				// Get a writer for the new object in the GCS bucket.
				wc := bucket.Object(file.Filename).NewWriter(c)
				// Set the content type for the GCS object.
				wc.ContentType = contentType
				// Write the file content to the GCS object.
				if _, err = wc.Write(content); err != nil {
					c.String(http.StatusInternalServerError, "write file to bucket err: %s", err.Error())
					return
				}
				// Close the GCS writer to finalize the upload.
				if err := wc.Close(); err != nil {
					log.Printf("failed to close bucket handle: %v\n", err)
				}
				// Remove the temporary local file after successful upload.
				if err := os.Remove(localPath); err != nil {
					log.Printf("failed to remove file from server: %v\n", err)
				}
			}
			// Respond with a success message.
			c.String(http.StatusOK, "Uploaded successfully %d files.", len(files))
		})
	}
}
