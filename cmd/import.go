package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anupam/lessontrack/internal/course"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import progress from an exported JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open import file: %w", err)
		}
		defer f.Close()

		if err := e.tracker.Import(cmd.Context(), f); err != nil {
			if errors.Is(err, course.ErrMalformedDocument) {
				return fmt.Errorf("import failed, existing progress is untouched: %w", err)
			}
			return err
		}

		stats := e.tracker.Stats(cmd.Context())
		fmt.Printf("Progress imported: %d/%d units completed.\n", stats.Completed, stats.Total)
		return nil
	},
}
