package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/arvision/internal/core/domain"
	"github.com/custodia-labs/arvision/internal/core/ports/driven"
	"github.com/custodia-labs/arvision/internal/logger"
)

var (
	recognizeFormat    string
	recognizeThreshold float64
	recognizeLocator   string
	recognizeCamera    bool
	recognizeJSON      bool
)

var recognizeCmd = &cobra.Command{
	Use:   "recognize [image] [candidate-file]",
	Short: "Score a candidate image against a reference descriptor",
	Long: `Compares a candidate against one descriptor of a reference image and reports
the similarity and whether it exceeds the threshold.

The candidate is a local file, a locator resolved through the descriptor
source (--locator), or a frame captured from the camera (--camera).`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runRecognize,
}

func init() {
	recognizeCmd.Flags().StringVarP(&recognizeFormat, "format", "f", "fset", "descriptor format to compare against")
	recognizeCmd.Flags().Float64VarP(&recognizeThreshold, "threshold", "t", domain.DefaultSimilarityThreshold, "acceptance threshold for this comparison")
	recognizeCmd.Flags().StringVar(&recognizeLocator, "locator", "", "candidate locator resolved through the descriptor source")
	recognizeCmd.Flags().BoolVar(&recognizeCamera, "camera", false, "capture the candidate from the camera")
	recognizeCmd.Flags().BoolVar(&recognizeJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(recognizeCmd)
}

func runRecognize(cmd *cobra.Command, args []string) error {
	if recognitionService == nil {
		return errors.New("recognition service not configured")
	}
	format, err := domain.ParseDescriptorFormat(recognizeFormat)
	if err != nil {
		return err
	}

	candidate, err := resolveCandidate(cmd.Context(), args[1:])
	if err != nil {
		return err
	}

	var threshold *float64
	if cmd.Flags().Changed("threshold") {
		threshold = &recognizeThreshold
	}

	result := recognitionService.Recognize(cmd.Context(), candidate, args[0], format, threshold)

	if recognizeJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if !result.Success {
		return fmt.Errorf("recognition failed: %s", result.Error)
	}
	verdict := "No match"
	if result.Match {
		verdict = "Match"
	}
	cmd.Printf("%s: %s (%s) similarity %.4f, threshold %.2f\n",
		verdict, result.ImageName, result.Format, result.Similarity, result.Threshold)
	return nil
}

// resolveCandidate picks exactly one of a file argument, --locator or --camera.
func resolveCandidate(ctx context.Context, files []string) (domain.Candidate, error) {
	sources := len(files)
	if recognizeLocator != "" {
		sources++
	}
	if recognizeCamera {
		sources++
	}
	if sources != 1 {
		return domain.Candidate{}, fmt.Errorf("%w: give exactly one of a candidate file, --locator or --camera",
			domain.ErrInvalidInput)
	}

	switch {
	case recognizeLocator != "":
		return domain.CandidateLocator(recognizeLocator), nil
	case recognizeCamera:
		data, err := captureFrame(ctx)
		if err != nil {
			return domain.Candidate{}, err
		}
		return domain.CandidateBytes(data), nil
	default:
		data, err := os.ReadFile(files[0])
		if err != nil {
			return domain.Candidate{}, fmt.Errorf("reading candidate: %w", err)
		}
		return domain.CandidateBytes(data), nil
	}
}

// captureFrame grabs one JPEG frame from the configured camera.
func captureFrame(ctx context.Context) ([]byte, error) {
	if camera == nil {
		return nil, fmt.Errorf("camera not configured: %w", domain.ErrCameraNotFound)
	}
	constraints := domain.DefaultAppSettings().Camera.Constraints(domain.FacingEnvironment)
	if settingsService != nil {
		if s, err := settingsService.Get(); err == nil {
			constraints = s.Camera.Constraints(domain.FacingEnvironment)
		}
	}

	stream, err := camera.Acquire(ctx, constraints)
	if err != nil {
		return nil, fmt.Errorf("acquiring camera: %w", err)
	}
	defer func() {
		for _, t := range stream.Tracks() {
			if err := t.Stop(); err != nil {
				logger.Warn("stopping camera track: %v", err)
			}
		}
	}()

	frames, ok := stream.(driven.FrameSource)
	if !ok {
		return nil, fmt.Errorf("%w: camera stream cannot capture frames", domain.ErrNotImplemented)
	}
	return frames.Frame(ctx)
}
