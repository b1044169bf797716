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

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface. This file defines the
// command for executing FFmpeg to assemble rendered scene clips into a final
// variant video.
//
// Logic Flow:
// The `VariantAssembler` runs after rendering. Every fully rendered variant
// has one MP4 clip per scene on local disk, downloaded by the generation
// coordinator in scene order.
//
//  1. For each successful variant, a concat manifest is written listing the
//     scene clips in scene-number order.
//  2. FFmpeg is invoked with the concat demuxer and stream copy, so clips are
//     stitched without re-encoding.
//  3. The assembled file lands in the run's output directory and its path is
//     recorded on the variant result.
//  4. An assembly failure is recorded on that variant's result only. Sibling
//     variants still assemble, and partially failed variants are skipped
//     rather than stitched with gaps.
package commands

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/jaycherian/gcp-go-ad-cloner/internal/cloud"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/cor"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/model"
)

// Constants used for the FFmpeg command execution.
const (
	// DefaultConcatArgs is a format string for the FFmpeg concat invocation.
	// -y: Overwrite output files without asking.
	// -hide_banner: Suppresses the printing of the FFmpeg banner.
	// -f concat -safe 0 -i %s: Reads the clip list from a concat manifest file.
	//   `-safe 0` permits absolute paths inside the manifest.
	// -c copy: Stream copy. Clips share a codec and resolution, so stitching
	//   needs no re-encode.
	// -f mp4 %s: Forces the output format to MP4 and specifies the output file path.
	DefaultConcatArgs = "-y -hide_banner -f concat -safe 0 -i %s -c copy -f mp4 %s"
	TempFilePrefix    = "concat-manifest-"
	CommandSeparator  = " "
)

// VariantAssembler is a command implementation that wraps the execution of
// the FFmpeg tool. It stitches the per-scene clips of each rendered variant
// into a single deliverable video.
type VariantAssembler struct {
	cor.BaseCommand        // Embeds the BaseCommand for common functionality like naming and metrics.
	commandPath     string // The path to the FFmpeg executable (e.g., "/usr/bin/ffmpeg").
	config          *cloud.Config
}

// NewVariantAssembler is the constructor for creating a new VariantAssembler.
//
// Inputs:
//   - name: A string name for this command instance, used for logging and telemetry.
//   - commandPath: The file system path to the FFmpeg executable.
//   - config: The application's configuration object.
//
// Outputs:
//   - *VariantAssembler: A pointer to the newly instantiated command.
func NewVariantAssembler(name string, commandPath string, config *cloud.Config) *VariantAssembler {
	return &VariantAssembler{
		BaseCommand: *cor.NewBaseCommand(name),
		commandPath: commandPath,
		config:      config}
}

// IsExecutable checks that the variant results are present in the context.
func (c *VariantAssembler) IsExecutable(context cor.Context) bool {
	return context != nil && context.Get(c.GetInputParam()) != nil
}

// Execute assembles each successful variant's clips into one video file.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (c *VariantAssembler) Execute(context cor.Context) {
	results := context.Get(c.GetInputParam()).(map[model.AggressionLevel]*model.VariantResult)

	assembled := 0
	for _, level := range model.AggressionLevels() {
		result, ok := results[level]
		if !ok {
			continue
		}
		if !result.Success {
			log.Printf("skipping assembly for incomplete variant '%s'", level)
			continue
		}

		outputFile, err := c.assembleVariant(context, result)
		if err != nil {
			result.Success = false
			result.Error = fmt.Sprintf("assembly failed: %v", err)
			log.Printf("failed to assemble variant '%s': %v", level, err)
			continue
		}
		result.AssembledURI = outputFile
		assembled++
	}
	log.Printf("assembled %d variant video(s)", assembled)

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), results)
}

// assembleVariant writes the concat manifest for one variant and runs FFmpeg.
func (c *VariantAssembler) assembleVariant(context cor.Context, result *model.VariantResult) (string, error) {
	manifest, err := os.CreateTemp("", TempFilePrefix)
	if err != nil {
		return "", fmt.Errorf("could not create concat manifest: %w", err)
	}
	context.AddTempFile(manifest.Name())

	// Scene results are already sorted by scene number.
	var list strings.Builder
	for _, scene := range result.SceneResults {
		if scene.OutputFile == "" {
			return "", fmt.Errorf("scene %d has no rendered clip", scene.SceneNumber)
		}
		fmt.Fprintf(&list, "file '%s'\n", scene.OutputFile)
	}
	if _, err := manifest.WriteString(list.String()); err != nil {
		return "", fmt.Errorf("could not write concat manifest: %w", err)
	}
	if err := manifest.Close(); err != nil {
		return "", fmt.Errorf("could not close concat manifest: %w", err)
	}

	outputFile := filepath.Join(c.config.Application.OutputDir, fmt.Sprintf("%s_final.mp4", result.Level))

	args := fmt.Sprintf(DefaultConcatArgs, manifest.Name(), outputFile)
	cmd := exec.CommandContext(context.GetContext(), c.commandPath, strings.Split(args, CommandSeparator)...)
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("error running ffmpeg: %w", err)
	}
	return outputFile, nil
}
