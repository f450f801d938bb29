package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/anupam/lessontrack/internal/course"
)

var startCmd = &cobra.Command{
	Use:   "start <unit>",
	Short: "Mark a unit as in progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		unit, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid unit number %q", args[0])
		}

		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		e.tracker.Start(cmd.Context(), unit)

		doc := e.tracker.Document(cmd.Context())
		if u, ok := doc.Units[unit]; ok {
			switch u.Status {
			case course.StatusInProgress:
				fmt.Printf("Unit %d is in progress.\n", unit)
			case course.StatusLocked:
				fmt.Printf("Unit %d is locked. Complete the previous unit's quiz to unlock it.\n", unit)
			default:
				fmt.Printf("Unit %d is %s.\n", unit, u.Status)
			}
		} else {
			fmt.Printf("Unit %d is not part of this course.\n", unit)
		}
		return nil
	},
}
