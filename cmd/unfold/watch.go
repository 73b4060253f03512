package main

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/unfold/internal/config"
	"github.com/dshills/unfold/internal/document"
	"github.com/dshills/unfold/internal/script"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] <file>",
	Short: "Re-run a script whenever the configuration file changes",
	Long: `Watch applies a script like run, then applies it again to a fresh copy of
the file every time the configuration file is saved. The file itself is never
written. Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringP("script", "s", "", "path to the script of steps to apply")
	_ = watchCmd.MarkFlagRequired("script")
}

func runWatch(cmd *cobra.Command, args []string) error {
	scriptPath, err := cmd.Flags().GetString("script")
	if err != nil {
		return err
	}

	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	sc, err := script.Load(scriptPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	report := cmd.ErrOrStderr()

	var mu sync.Mutex
	apply := func(cfg *config.Config) {
		mu.Lock()
		defer mu.Unlock()

		if !s.levelOverride {
			s.logger.SetLevel(cfg.LogLevel())
		}

		m := document.NewManager(
			document.WithManagerLogger(s.logger),
			document.WithDocumentOptions(documentOptions(cfg)...),
		)
		if err := execute(m, args[0], sc.Steps, out, report); err != nil {
			errorColor.Fprintf(report, "Error: %v\n", err)
		}
		if err := m.CloseAll(); err != nil {
			errorColor.Fprintf(report, "Error: %v\n", err)
		}
	}

	apply(s.cfg)

	w, err := config.NewWatcher(s.configPath, apply,
		config.WithWatcherLogger(s.logger),
		config.WithErrorHandler(func(err error) {
			warnColor.Fprintf(report, "config: %v\n", err)
		}),
	)
	if err != nil {
		return err
	}
	defer w.Close()

	s.logger.Info("watching %s", w.Path())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	return nil
}
