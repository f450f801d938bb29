package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export progress to a JSON file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		path := ""
		if len(args) == 1 {
			path = args[0]
		} else {
			path = fmt.Sprintf("lessontrack-%s-progress-%s.json",
				e.cfg.Course.ID, time.Now().Format("2006-01-02"))
		}

		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		defer f.Close()

		if err := e.tracker.Export(cmd.Context(), f); err != nil {
			return err
		}
		fmt.Printf("Progress exported to %s\n", path)
		return nil
	},
}
