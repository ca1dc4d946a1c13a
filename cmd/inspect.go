// File: cmd/inspect.go
package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mvoss9000/agentlens/internal/recorder"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [run-dir]",
	Short: "Summarize the artifacts of a recorded run directory.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		baseDir := cfg.Recorder.BaseDir
		if len(args) == 1 {
			baseDir = args[0]
		}

		summary, err := recorder.InspectRun(baseDir)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Run directory: %s\n", summary.BaseDir)

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "STEP\tPLAN\tACTIONS\tRESULTS\tERRORS\tSCREENSHOTS\tDIR")
		for _, step := range summary.Steps {
			plan := "-"
			if step.HasPlan {
				plan = "yes"
			}
			fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%d\t%s\n",
				step.StepNumber, plan, step.Actions, step.Results, step.Errors, step.Screenshots, step.Dir)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		for _, dump := range summary.PlanDumps {
			fmt.Fprintf(out, "Plan dump: %s\n", dump)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
