// File: cmd/record.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mvoss9000/agentlens/internal/browser"
	"github.com/mvoss9000/agentlens/internal/host"
	"github.com/mvoss9000/agentlens/internal/recorder"
)

var recordCmd = &cobra.Command{
	Use:   "record <url> [url...]",
	Short: "Visit each URL with a headless browser and record every step.",
	Long: `Record drives the bundled browser session through the given URLs, one
navigation per step, with the recorder plugin attached. It is a smoke and
demo driver for the recording pipeline; the artifacts land under the
configured base directory.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		session, err := browser.NewSession(ctx, cfg.Browser, logger)
		if err != nil {
			return err
		}
		defer session.Close()

		scripted := host.NewScripted(session, logger)
		rec, err := recorder.Attach(scripted, cfg.Recorder, logger)
		if err != nil {
			return err
		}

		if err := scripted.Run(ctx, args); err != nil {
			return err
		}

		logger.Info("Recording finished",
			zap.String("run_id", rec.RunID()),
			zap.Int("steps", len(args)))
		fmt.Fprintf(cmd.OutOrStdout(), "Recorded %d step(s) under %s\n", len(args), cfg.Recorder.BaseDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recordCmd)
}
