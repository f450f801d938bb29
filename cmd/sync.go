package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anupam/lessontrack/internal/course"
	coursesync "github.com/anupam/lessontrack/internal/sync"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile progress with the cloud",
	Long: "Pulls the remote progress document, decides a winner (more progress wins,\n" +
		"then more recent wins), and republishes the outcome to whichever side is stale.",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		engine := e.engine()
		if !engine.Enabled() {
			fmt.Println("Sync is disabled: no remote project configured, or sync is turned off in privacy settings.")
			return nil
		}

		engine.OnProgressRestored(func(doc *course.Document) {
			fmt.Printf("Progress restored from the cloud (%d units completed).\n", doc.CompletedCount())
		})

		sess := e.session(cmd)
		if err := engine.SetIdentity(cmd.Context(), sess); err != nil {
			if errors.Is(err, coursesync.ErrIdentityConflict) {
				return fmt.Errorf("this identity is already linked to another learner; sign in instead of linking")
			}
			return fmt.Errorf("sync failed, changes remain saved locally: %w", err)
		}

		if force {
			if err := engine.ForcePull(cmd.Context()); err != nil {
				if errors.Is(err, coursesync.ErrNotFound) {
					fmt.Println("No cloud progress found for this learner.")
					return nil
				}
				return fmt.Errorf("force pull failed: %w", err)
			}
		}

		fmt.Printf("Sync status: %s\n", engine.Status())
		return nil
	},
}

func init() {
	syncCmd.Flags().Bool("force", false, "Adopt the cloud document unconditionally")
}
