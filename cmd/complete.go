package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var completeCmd = &cobra.Command{
	Use:   "complete <unit>",
	Short: "Mark a unit as completed",
	Long: "Marks a unit completed with the given quiz score and unlocks the next unit.\n" +
		"Normally the quiz command does this for you on a passing score.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		unit, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid unit number %q", args[0])
		}
		score, _ := cmd.Flags().GetInt("score")
		if score < 0 || score > 100 {
			return fmt.Errorf("score must be between 0 and 100, got %d", score)
		}

		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		e.tracker.OnUnitCompleted(func(n, s int) {
			fmt.Printf("Unit %d completed with a score of %d%%.\n", n, s)
		})
		e.tracker.Complete(cmd.Context(), unit, score)

		stats := e.tracker.Stats(cmd.Context())
		fmt.Printf("Course progress: %d/%d units (%d%%).\n", stats.Completed, stats.Total, stats.Percent)
		return nil
	},
}

func init() {
	completeCmd.Flags().Int("score", 100, "Quiz score percentage to record")
}
