package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dshills/unfold/internal/document"
	"github.com/dshills/unfold/internal/script"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] <file>",
	Short: "Apply an expansion script to a file",
	Long: `Run opens a file, applies the steps of a TOML script to it, and prints the
resulting text. With --write the expanded text is saved back to the file.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringP("script", "s", "", "path to the script of steps to apply")
	runCmd.Flags().Bool("write", false, "write the expanded text back to the file")
	runCmd.Flags().BoolP("quiet", "q", false, "do not report each step")
	_ = runCmd.MarkFlagRequired("script")
}

func runRun(cmd *cobra.Command, args []string) error {
	scriptPath, err := cmd.Flags().GetString("script")
	if err != nil {
		return err
	}
	write, err := cmd.Flags().GetBool("write")
	if err != nil {
		return err
	}
	quiet, err := cmd.Flags().GetBool("quiet")
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

	m := document.NewManager(
		document.WithManagerLogger(s.logger),
		document.WithDocumentOptions(documentOptions(s.cfg)...),
		document.WithWriteOnClose(write || s.cfg.Document.WriteOnClose),
	)
	if write {
		m.SetRetain(true)
	}

	var report io.Writer = cmd.ErrOrStderr()
	if quiet {
		report = io.Discard
	}

	runErr := execute(m, args[0], sc.Steps, cmd.OutOrStdout(), report)
	if runErr != nil {
		// Never save a half-applied script.
		m.SetWriteOnClose(false)
	}
	return errors.Join(runErr, m.CloseAll())
}

// execute opens path in m, applies steps, reports them to report and
// prints the resulting text to out.
func execute(m *document.Manager, path string, steps []script.Step, out, report io.Writer) error {
	doc, err := m.Open(path)
	if err != nil {
		return err
	}

	results, err := script.Run(doc, steps)
	printResults(report, results)
	if err != nil {
		return fmt.Errorf("%s: %w", doc.Name(), err)
	}

	_, err = io.WriteString(out, doc.Text())
	return err
}
