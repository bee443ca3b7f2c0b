package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/arvision/internal/core/domain"
)

var imagesJSON bool

var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "List reference images",
	Long:  `Lists the reference images of the catalog in declaration order, with their descriptor formats.`,
	Args:  cobra.NoArgs,
	RunE:  runImages,
}

func init() {
	imagesCmd.Flags().BoolVar(&imagesJSON, "json", false, "output images as JSON")
	rootCmd.AddCommand(imagesCmd)
}

// imageRow is one catalog entry as printed by images.
type imageRow struct {
	Name        string                    `json:"name"`
	DisplayName string                    `json:"displayName"`
	Formats     []domain.DescriptorFormat `json:"formats"`
}

func runImages(cmd *cobra.Command, _ []string) error {
	if recognitionService == nil {
		return errors.New("recognition service not configured")
	}

	var rows []imageRow
	for img := range recognitionService.ListAvailableImages() {
		info, err := recognitionService.DescriptorInfo(img.Name)
		if err != nil {
			return fmt.Errorf("describing %s: %w", img.Name, err)
		}
		rows = append(rows, imageRow{Name: img.Name, DisplayName: img.DisplayName, Formats: info.Available})
	}

	if imagesJSON {
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal images: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(rows) == 0 {
		cmd.Println("No reference images.")
		return nil
	}
	cmd.Println("Reference images:")
	cmd.Println()
	for _, r := range rows {
		cmd.Printf("  %-18s %-20s %s\n", r.Name, r.DisplayName, joinFormats(r.Formats))
	}
	return nil
}

func joinFormats(formats []domain.DescriptorFormat) string {
	parts := make([]string, len(formats))
	for i, f := range formats {
		parts[i] = f.String()
	}
	return strings.Join(parts, ", ")
}
