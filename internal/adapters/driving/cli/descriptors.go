package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/arvision/internal/core/domain"
)

var descriptorFormat string

var descriptorsCmd = &cobra.Command{
	Use:   "descriptors",
	Short: "Load, inspect and import descriptor files",
}

var descriptorsLoadCmd = &cobra.Command{
	Use:   "load [image]",
	Short: "Fetch descriptors for a reference image",
	Long: `Fetches descriptor payloads for a reference image from the configured source.
Without --format every format the image declares is loaded; missing ones are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runDescriptorsLoad,
}

var descriptorsInfoCmd = &cobra.Command{
	Use:   "info [image]",
	Short: "Show the descriptor formats of a reference image",
	Args:  cobra.ExactArgs(1),
	RunE:  runDescriptorsInfo,
}

var descriptorsImportCmd = &cobra.Command{
	Use:   "import [dir]",
	Short: "Import descriptor files into the descriptor database",
	Long: `Copies <image>.<format> files for every catalog image from dir into the
descriptor database, where the sqlite descriptor source reads them.`,
	Args: cobra.ExactArgs(1),
	RunE: runDescriptorsImport,
}

func init() {
	descriptorsLoadCmd.Flags().StringVarP(&descriptorFormat, "format", "f", "", "descriptor format (fset, fset3, iset, mind)")
	descriptorsCmd.AddCommand(descriptorsLoadCmd)
	descriptorsCmd.AddCommand(descriptorsInfoCmd)
	descriptorsCmd.AddCommand(descriptorsImportCmd)
	rootCmd.AddCommand(descriptorsCmd)
}

func runDescriptorsLoad(cmd *cobra.Command, args []string) error {
	if recognitionService == nil {
		return errors.New("recognition service not configured")
	}
	name := args[0]

	var payloads []*domain.DescriptorPayload
	if descriptorFormat != "" {
		format, err := domain.ParseDescriptorFormat(descriptorFormat)
		if err != nil {
			return err
		}
		p, err := recognitionService.LoadDescriptor(cmd.Context(), name, format)
		if err != nil {
			return fmt.Errorf("load failed: %w", err)
		}
		payloads = append(payloads, p)
	} else {
		all, err := recognitionService.LoadAllDescriptors(cmd.Context(), name)
		if err != nil {
			return fmt.Errorf("load failed: %w", err)
		}
		payloads = all
	}

	if len(payloads) == 0 {
		cmd.Printf("No descriptors loaded for %s.\n", name)
		return nil
	}
	for _, p := range payloads {
		cmd.Printf("Loaded %s %s (%d bytes)\n", p.ImageName, p.Format, p.Size())
	}
	return nil
}

func runDescriptorsInfo(cmd *cobra.Command, args []string) error {
	if recognitionService == nil {
		return errors.New("recognition service not configured")
	}
	info, err := recognitionService.DescriptorInfo(args[0])
	if err != nil {
		return err
	}

	cmd.Printf("Image: %s\n", info.Image.Name)
	cmd.Printf("Name: %s\n", info.Image.DisplayName)
	cmd.Println("Formats:")
	for _, f := range info.Available {
		locator, _ := info.Image.Locator(f)
		cmd.Printf("  %-6s %s\n", f, locator)
	}
	if len(info.Loaded) == 0 {
		cmd.Println("Loaded: none")
	} else {
		cmd.Println("Loaded:")
		for _, key := range info.Loaded {
			cmd.Printf("  %s\n", key)
		}
	}
	return nil
}

func runDescriptorsImport(cmd *cobra.Command, args []string) error {
	if recognitionService == nil {
		return errors.New("recognition service not configured")
	}
	if descriptorStore == nil {
		return errors.New("descriptor database not configured")
	}
	dir := args[0]
	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, dir)
	}

	imported := 0
	for img := range recognitionService.ListAvailableImages() {
		info, err := recognitionService.DescriptorInfo(img.Name)
		if err != nil {
			return err
		}
		for _, f := range info.Available {
			path := filepath.Join(dir, img.Name+f.Extension())
			data, err := os.ReadFile(path)
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			locator, _ := info.Image.Locator(f)
			if err := descriptorStore.Put(cmd.Context(), locator, data); err != nil {
				return fmt.Errorf("storing %s: %w", locator, err)
			}
			cmd.Printf("Imported %s\n", locator)
			imported++
		}
	}
	cmd.Printf("%d descriptor files imported.\n", imported)
	return nil
}
