package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/anupam/lessontrack/internal/course"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show course progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		doc := e.tracker.Document(cmd.Context())
		stats := doc.Stats()

		fmt.Printf("Course %s: %d/%d units completed (%d%%)\n",
			doc.CourseID, stats.Completed, stats.Total, stats.Percent)
		if stats.Completed < stats.Total {
			fmt.Printf("Next up: unit %d\n", doc.NextUnit())
		}
		fmt.Println()

		indices := make([]int, 0, len(doc.Units))
		for i := range doc.Units {
			indices = append(indices, i)
		}
		sort.Ints(indices)

		for _, i := range indices {
			u := doc.Units[i]
			line := fmt.Sprintf("  %2d  %-12s", i, u.Status)
			if u.QuizScore != nil {
				line += fmt.Sprintf("  score %3d%%  attempts %d", *u.QuizScore, u.QuizAttempts)
			}
			if u.Status == course.StatusCompleted && u.CompletedAt != nil {
				line += "  " + u.CompletedAt.Format("2006-01-02")
			}
			fmt.Println(line)
		}
		return nil
	},
}
