package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/congo-pay/authstate/internal/authstate"
	"github.com/congo-pay/authstate/internal/config"
	"github.com/congo-pay/authstate/internal/kv"
	"github.com/congo-pay/authstate/internal/logging"
)

// options holds the persistent flags and the store opened from them.
type options struct {
	backend  string
	path     string
	logLevel string

	store kv.Store
	svc   *authstate.Service
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "authstate",
		Short:         "Inspect and edit local auth bootstrap state",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.open(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.store == nil {
				return nil
			}
			return kv.Close(opts.store)
		},
	}

	root.PersistentFlags().StringVar(&opts.backend, "store", config.BackendFile, "store backend: file or sqlite")
	root.PersistentFlags().StringVar(&opts.path, "path", "", "store location (default ~/.authstate/state.json or state.db)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "diagnostic log level")

	root.AddCommand(
		statusCmd(opts),
		onboardingCmd(opts),
		pinCmd(opts),
		profileCmd(opts),
		returningCmd(opts),
		resetCmd(opts),
		demoCmd(opts),
	)
	return root
}

func (o *options) open(cmd *cobra.Command) error {
	path := o.path
	if path == "" {
		dir, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		name := "state.json"
		if o.backend == config.BackendSQLite {
			name = "state.db"
		}
		path = filepath.Join(dir, ".authstate", name)
	}

	var (
		store kv.Store
		err   error
	)
	switch o.backend {
	case config.BackendFile:
		store, err = kv.NewFile(path)
	case config.BackendSQLite:
		if err = os.MkdirAll(filepath.Dir(path), 0o700); err == nil {
			store, err = kv.NewSQLite(path)
		}
	default:
		return fmt.Errorf("unsupported --store %q (want file or sqlite)", o.backend)
	}
	if err != nil {
		return fmt.Errorf("open %s store: %w", o.backend, err)
	}

	o.store = store
	o.svc = authstate.NewService(store, logging.NewWithWriter(cmd.ErrOrStderr(), o.logLevel, "text"))
	return nil
}
