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

// Package workflow defines the high-level business logic orchestrations,
// combining various commands into coherent pipelines. This file implements
// the advertisement cloning workflow, the system's primary pipeline.
package workflow

import (
	"log/slog"
	"strings"
	"text/template"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/storage"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/cloud"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/commands"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/cor"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/generation"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/model"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/progress"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/transform"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/variants"
)

// DefaultFfmpegCommand defines the default command to execute FFmpeg.
// It assumes `ffmpeg` is available in the system's PATH.
const DefaultFfmpegCommand = "ffmpeg"

// Pipeline stage names, in execution order. Progress events reference these.
const (
	StageAnalysis   = "analysis"
	StageTransform  = "transform"
	StageVariants   = "variants"
	StagePrompts    = "prompts"
	StageGeneration = "generation"
	StageAssembly   = "assembly"
	StageEvaluation = "evaluation"
	StagePersist    = "persist"
)

// AdClonerWorkflow orchestrates the entire process of cloning a source
// advertisement: analysis of the uploaded ad, structure transform, variant
// fan-out, prompt building, parallel video generation, assembly, evaluation,
// and persistence of the run's outcome.
//
// This workflow is triggered by a Pub/Sub message indicating that a new
// source advertisement has landed in the upload bucket.
type AdClonerWorkflow struct {
	cor.BaseCommand
	config             *cloud.Config
	bigqueryClient     *bigquery.Client
	storageClient      *storage.Client
	analyzerModel      *cloud.QuotaAwareGenerativeAIModel
	evaluatorModel     *cloud.QuotaAwareGenerativeAIModel
	backend            generation.Backend
	reporter           progress.Reporter
	ffmpegCommand      string
	numberOfWorkers    int
	analysisTemplate   *template.Template
	scenarioTemplate   *template.Template
	evaluationTemplate *template.Template
	chain              cor.Chain // The underlying chain of commands to be executed.
}

// Execute runs the entire cloning workflow by invoking the underlying chain.
// It passes the context, which contains the initial trigger message and will
// be used to pass state between commands.
//
// Inputs:
//   - context: The chain of responsibility context for this execution.
func (m *AdClonerWorkflow) Execute(context cor.Context) {
	m.chain.Execute(context)
}

// initializeChain builds the sequence of commands that make up this workflow.
// Each command is an atomic unit of work. The output of one command often
// serves as the input for the next, creating a processing pipeline. Stage
// fatality follows the per-stage rules: analysis, variants, and prompts stop
// the run when they fail; transform falls back to the untransformed analysis
// inside its own command; generation, assembly, and evaluation isolate
// failures per variant and never stop the chain.
func (m *AdClonerWorkflow) initializeChain() {
	// Create the chain that will hold all the command steps.
	out := cor.NewBaseChain(m.GetName())

	// Step 1: Mint the run identifier and record the start time.
	out.AddCommand(commands.NewRunInit("run-init"))

	// Step 2: Parse the incoming Pub/Sub message (which is in JSON format)
	// and extract a structured GCS object reference from it.
	out.AddCommand(commands.NewSourceAdTriggerToGCSObject("source-ad-trigger"))

	// Step 3: Build the generative model's file reference from the GCS
	// location. The model reads video straight from the bucket, so the ad is
	// never copied locally.
	out.AddCommand(commands.NewSourceAdReference("source-ad-reference"))

	// Step 4: Analyze the ad with Gemini. This produces a JSON string with
	// the transcript, spokesperson, product, and scene breakdown.
	out.AddCommand(m.stage(StageAnalysis,
		commands.NewAdAnalysisCreator("analyze-source-ad", m.config, m.analyzerModel, m.analysisTemplate)))

	// Step 5: Parse and normalize the analysis. After this step every
	// downstream command sees exactly one spokesperson record and a non-nil
	// script, stored under the well-known analysis key.
	out.AddCommand(m.stage(StageAnalysis,
		commands.NewAnalysisJSONToStruct("normalize-analysis", commands.GetAnalysisName())))

	// Step 6: Detect the vertical and swap the opening scene for a scripted
	// extreme-hook scenario. A transform failure is absorbed inside the
	// command, so this step never stops the run.
	scenarioProvider := transform.NewGenAIScenarioProvider(m.analyzerModel, m.scenarioTemplate)
	transformer := transform.NewTransformer(time.Now().UnixNano(), scenarioProvider)
	out.AddCommand(m.stage(StageTransform,
		commands.NewStructureTransformer("transform-structure", m.config, transformer)))

	// Step 7: Fan out into the four aggression variants.
	generator := variants.NewGenerator(presetsFromConfig(m.config))
	out.AddCommand(m.stage(StageVariants,
		commands.NewVariantGenerator("generate-variants", generator)))

	// Step 8: Build and validate one video prompt per scene per variant, and
	// save the prompt set to the run's output directory.
	out.AddCommand(m.stage(StagePrompts,
		commands.NewPromptBuilder("build-prompts", m.config)))

	// Step 9: Render every variant through the text-to-video backend. Each
	// variant's scene jobs are submitted up front and polled to completion;
	// variants render concurrently in a worker pool.
	coordinator := generation.NewCoordinator(m.backend, m.reporter, slog.Default(), m.config.Application.OutputDir)
	out.AddCommand(m.stage(StageGeneration,
		commands.NewVariantRenderer("render-variants", coordinator, m.reporter, m.numberOfWorkers)))

	// Step 10: Stitch each fully rendered variant's clips into one video
	// using FFmpeg's concat demuxer.
	out.AddCommand(m.stage(StageAssembly,
		commands.NewVariantAssembler("assemble-variants", m.ffmpegCommand, m.config)))

	// Step 11: Upload the assembled videos to the render bucket, keyed by
	// run id.
	out.AddCommand(m.stage(StageAssembly,
		commands.NewRenderUpload("upload-variants", m.storageClient, m.config.Storage.RenderBucket)))

	// Step 12: Score each uploaded variant with the evaluator model.
	out.AddCommand(m.stage(StageEvaluation,
		commands.NewVariantEvaluator("evaluate-variants", m.evaluatorModel, m.evaluationTemplate)))

	// Step 13: Persist the run's outcome to the runs table in BigQuery so
	// the run-history API can serve it.
	out.AddCommand(m.stage(StagePersist, commands.NewRunPersistToBigQuery(
		"write-run-to-bigquery",
		m.bigqueryClient,
		m.config.BigQueryDataSource.DatasetName,
		m.config.BigQueryDataSource.RunTable)))

	// Step 14: Delete the local scratch files registered during the run.
	out.AddCommand(commands.NewWorkspaceCleanup("cleanup-file-system"))

	// Assign the fully constructed chain to the workflow instance.
	m.chain = out
}

// stage wraps a command with progress events so every API client sees the
// pipeline advance through its stages.
func (m *AdClonerWorkflow) stage(name string, command cor.Command) cor.Command {
	return &stageCommand{Command: command, stage: name, reporter: m.reporter}
}

// stageCommand decorates one command with stage start, complete, and fail
// events. A command that records an error on the context marks the stage
// failed; everything else marks it complete.
type stageCommand struct {
	cor.Command
	stage    string
	reporter progress.Reporter
}

func (s *stageCommand) Execute(context cor.Context) {
	// Attribute every event from this stage, including variant updates
	// emitted deeper in the command, to the current run.
	if runID, ok := context.Get(commands.GetRunIDName()).(string); ok {
		context.SetContext(progress.WithRunID(context.GetContext(), runID))
	}
	s.reporter.StageStart(context.GetContext(), s.stage, s.Command.GetName())

	before := len(context.GetErrors())
	s.Command.Execute(context)

	if len(context.GetErrors()) > before {
		var firstErr error
		for _, err := range context.GetErrors() {
			firstErr = err
			break
		}
		s.reporter.StageFail(context.GetContext(), s.stage, firstErr)
		return
	}
	s.reporter.StageComplete(context.GetContext(), s.stage, s.Command.GetName())
}

// presetsFromConfig converts the TOML preset overrides into the model shape
// the variant generator merges with its built-in defaults.
func presetsFromConfig(config *cloud.Config) map[model.AggressionLevel]*model.AggressionPreset {
	out := make(map[model.AggressionLevel]*model.AggressionPreset, len(config.AggressionPresets))
	for key, preset := range config.AggressionPresets {
		level := model.AggressionLevel(key)
		if !level.Valid() {
			continue
		}
		out[level] = &model.AggressionPreset{
			Name:            preset.Name,
			Description:     preset.Description,
			Intensity:       preset.Intensity,
			Lighting:        preset.Lighting,
			Tone:            preset.Tone,
			Pacing:          preset.Pacing,
			CameraMovement:  preset.CameraMovement,
			Music:           preset.Music,
			EnergyLevel:     preset.EnergyLevel,
			ColorPalette:    preset.ColorPalette,
			Transitions:     preset.Transitions,
			CallToAction:    preset.CallToAction,
			EmotionKeywords: preset.EmotionKeywords,
		}
	}
	return out
}

// NewAdClonerPipeline is the constructor for the AdClonerWorkflow. It sets up
// all dependencies, compiles the prompt templates, and initializes the
// command chain.
//
// Inputs:
//   - config: The application's overall configuration.
//   - serviceClients: A struct containing initialized clients for GCP services.
//   - reporter: The progress sink receiving stage and variant events.
//   - analyzerModelName: The agent model config used for analysis and scenarios.
//   - evaluatorModelName: The agent model config used for variant evaluation.
//   - ffmpegCommand: The path to the FFmpeg executable. If empty, a default is used.
//
// Returns:
//   - A pointer to a newly created and fully initialized AdClonerWorkflow.
func NewAdClonerPipeline(
	config *cloud.Config,
	serviceClients *cloud.ServiceClients,
	reporter progress.Reporter,
	analyzerModelName string,
	evaluatorModelName string,
	ffmpegCommand string) *AdClonerWorkflow {

	// Parse the prompt templates from the configuration file. Panic on
	// failure, as the app cannot run without valid templates.
	analysisTemplate, err := template.New("analysis-template").Parse(config.PromptTemplates.AnalysisPrompt)
	if err != nil {
		panic(err)
	}
	scenarioTemplate, err := template.New("scenario-template").Parse(config.PromptTemplates.ScenarioPrompt)
	if err != nil {
		panic(err)
	}
	evaluationTemplate, err := template.New("evaluation-template").Parse(config.PromptTemplates.EvaluationPrompt)
	if err != nil {
		panic(err)
	}

	// If no FFmpeg command path is provided, use the default "ffmpeg"
	// command, assuming it's in the system's PATH.
	if len(strings.Trim(ffmpegCommand, " ")) == 0 {
		ffmpegCommand = DefaultFfmpegCommand
	}

	// Create the AdClonerWorkflow instance with all its dependencies.
	pipeline := &AdClonerWorkflow{
		BaseCommand:        *cor.NewBaseCommand("ad-cloner-pipeline"),
		config:             config,
		bigqueryClient:     serviceClients.BigQueryClient,
		storageClient:      serviceClients.StorageClient,
		analyzerModel:      serviceClients.AgentModels[analyzerModelName],
		evaluatorModel:     serviceClients.AgentModels[evaluatorModelName],
		backend:            serviceClients.SoraClient,
		reporter:           reporter,
		ffmpegCommand:      ffmpegCommand,
		numberOfWorkers:    config.Application.ThreadPoolSize,
		analysisTemplate:   analysisTemplate,
		scenarioTemplate:   scenarioTemplate,
		evaluationTemplate: evaluationTemplate,
	}
	// Build the command chain for the new pipeline instance.
	pipeline.initializeChain()
	return pipeline
}
