package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/coursetrail/internal/config"
	"github.com/abhisek/coursetrail/internal/logging"
	"github.com/abhisek/coursetrail/internal/statement"
	"github.com/abhisek/coursetrail/internal/store"
)

// env is the per-invocation state shared by commands.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
}

func loadEnv(cmd *cobra.Command) (*env, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger}, nil
}

// openStore opens the database using the --db flag (highest priority),
// then COURSETRAIL_DB, then the default XDG path.
func (e *env) openStore() (*store.Store, error) {
	path := e.cfg.DB
	if path != "" {
		if err := store.EnsureDir(path); err != nil {
			return nil, errors.Wrap(err, "create database directory")
		}
	} else {
		var err error
		if path, err = store.DefaultDBPath(); err != nil {
			return nil, err
		}
	}
	return store.Open(path, e.logger.Named("store"))
}

// actor returns the configured learner identity. It is never defaulted.
func (e *env) actor() (statement.Actor, error) {
	if e.cfg.Actor == "" {
		return statement.Actor{}, errors.Wrap(statement.ErrInvalidActor,
			"no actor configured: pass --actor or set COURSETRAIL_ACTOR")
	}
	return statement.ParseActor([]byte(e.cfg.Actor))
}

// run loads the environment and calls fn, syncing the logger afterwards.
func run(fn func(cmd *cobra.Command, args []string, e *env) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer e.logger.Sync() //nolint:errcheck
		return fn(cmd, args, e)
	}
}

// withStore is run with an open store.
func withStore(fn func(cmd *cobra.Command, args []string, e *env, st *store.Store) error) func(*cobra.Command, []string) error {
	return run(func(cmd *cobra.Command, args []string, e *env) error {
		st, err := e.openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		return fn(cmd, args, e, st)
	})
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode output")
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
