package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/anupam/lessontrack/internal/config"
	"github.com/anupam/lessontrack/internal/logging"
	"github.com/anupam/lessontrack/internal/progress"
	"github.com/anupam/lessontrack/internal/store"
	coursesync "github.com/anupam/lessontrack/internal/sync"
)

var rootCmd = &cobra.Command{
	Use:   "lessontrack",
	Short: "Track self-paced course progress",
	Long: "Lessontrack — tracks which course units you have unlocked, started, and completed,\n" +
		"grades unit quizzes, and keeps progress in sync across devices.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides LESSONTRACK_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default lessontrack.yaml)")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// env bundles the dependencies every command needs.
type env struct {
	cfg     *config.Config
	log     *zap.Logger
	st      *store.Store
	tracker *progress.Tracker
}

// newEnv loads configuration, opens the store, and builds the tracker.
func newEnv(cmd *cobra.Command) (*env, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath, log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	return &env{
		cfg:     cfg,
		log:     log,
		st:      st,
		tracker: progress.New(st, cfg.Course.ID, cfg.Course.Units, log),
	}, nil
}

func (e *env) Close() {
	_ = e.st.Close()
	_ = e.log.Sync()
}

// engine builds the sync engine; remote is nil when the project is
// unconfigured, which leaves the engine disabled.
func (e *env) engine() *coursesync.Engine {
	var remote coursesync.Remote
	if e.cfg.Remote.Configured() {
		remote = coursesync.NewRemote(e.cfg.Remote, e.log)
	}
	return coursesync.New(e.st, remote, e.cfg, e.log)
}

// session resolves the identity to sync under: the one recorded in the
// document, or a fresh anonymous identity.
func (e *env) session(cmd *cobra.Command) coursesync.Session {
	doc := e.tracker.Document(cmd.Context())
	if doc.UserID != "" {
		return coursesync.Session{UID: doc.UserID}
	}
	return coursesync.NewAnonymousSession()
}

// resolveDBPath returns the database path using --db flag (highest
// priority), then LESSONTRACK_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
