package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anupam/lessontrack/internal/quiz"
)

var quizCmd = &cobra.Command{
	Use:   "quiz <unit>",
	Short: "Take the quiz for a unit",
	Long: "Loads the unit's quiz, grades your answers, and on a passing score marks the\n" +
		"unit completed, unlocking the next one.",
	Args: cobra.ExactArgs(1),
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

		if e.cfg.Course.QuizBaseURL == "" {
			return fmt.Errorf("course.quizBaseUrl is not configured")
		}

		fetcher := quiz.NewFetcher(e.cfg.Course.QuizBaseURL, e.log)
		def, err := fetcher.Fetch(cmd.Context(), unit)
		if err != nil {
			var loadErr *quiz.LoadError
			if errors.As(err, &loadErr) {
				// The one hard failure surfaced directly to the learner.
				return fmt.Errorf("could not load the quiz for unit %d: %w", unit, loadErr.Err)
			}
			return err
		}

		engine := quiz.NewEngine(def, unit)
		engine.OnPassed(func(n, percent int) {
			e.tracker.Complete(cmd.Context(), n, percent)
		})

		in := bufio.NewScanner(os.Stdin)
		for {
			runQuiz(engine, in)
			summary := engine.Result()

			fmt.Println()
			if summary.Passed {
				fmt.Printf("Passed! %d/%d correct (%d%%).\n", summary.Correct, summary.Total, summary.Percent)
				fmt.Printf("Unit %d completed. Unit %d is now available.\n", unit, unit+1)
				return nil
			}

			fmt.Printf("Not quite: %d/%d correct (%d%%), %d%% needed to pass.\n",
				summary.Correct, summary.Total, summary.Percent, engine.PassScore())
			fmt.Print("Try again? [y/N] ")
			if !in.Scan() || strings.ToLower(strings.TrimSpace(in.Text())) != "y" {
				return nil
			}
			engine.Retry()
			fmt.Println()
		}
	},
}

// runQuiz walks every question once, reading answers from in.
func runQuiz(engine *quiz.Engine, in *bufio.Scanner) {
	for qi, q := range engine.Questions() {
		fmt.Printf("\nQuestion %d: %s\n", qi+1, q.Prompt)

		switch q.Type {
		case quiz.TypeMultipleSelect:
			askMultipleSelect(engine, q, in)
		case quiz.TypeDragOrder:
			askDragOrder(engine, q, in)
		}

		result, _ := engine.CheckAnswer(q.ID)
		if result.Correct {
			fmt.Println("Correct!")
		} else {
			fmt.Println("Incorrect.")
			if len(result.PerItem) > 0 {
				for i, ok := range result.PerItem {
					mark := "✗"
					if ok {
						mark = "✓"
					}
					fmt.Printf("  position %d: %s\n", i+1, mark)
				}
			}
		}
		if q.Explanation != "" {
			fmt.Println(" ", q.Explanation)
		}

		running := engine.RunningScore()
		fmt.Printf("Score so far: %d/%d (%d%%)\n", running.Correct, running.Total, running.Percent)
	}
}

func askMultipleSelect(engine *quiz.Engine, q quiz.Question, in *bufio.Scanner) {
	fmt.Println("Select all that apply (comma-separated numbers):")
	for i, o := range q.Options {
		fmt.Printf("  %d) %s\n", i+1, o.Text)
	}
	fmt.Print("> ")
	if !in.Scan() {
		return
	}
	for _, tok := range strings.Split(in.Text(), ",") {
		n, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil || n < 1 || n > len(q.Options) {
			continue
		}
		engine.ToggleOption(q.ID, q.Options[n-1].ID)
	}
}

func askDragOrder(engine *quiz.Engine, q quiz.Question, in *bufio.Scanner) {
	display := engine.DisplayOrder(q.ID)
	texts := make(map[string]string, len(q.Items))
	for _, it := range q.Items {
		texts[it.ID] = it.Text
	}

	fmt.Println("Put these in order (e.g. 3,1,2):")
	for i, id := range display {
		fmt.Printf("  %d) %s\n", i+1, texts[id])
	}
	fmt.Print("> ")
	if !in.Scan() {
		return
	}

	order := make([]string, 0, len(display))
	for _, tok := range strings.Split(in.Text(), ",") {
		n, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil || n < 1 || n > len(display) {
			continue
		}
		order = append(order, display[n-1])
	}
	if len(order) == len(display) {
		engine.SetOrder(q.ID, order)
	}
}
