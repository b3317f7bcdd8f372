package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Appa019/Coleta-dados-faturas/internal/common"
	"github.com/Appa019/Coleta-dados-faturas/internal/pipeline"
)

var (
	listLimit int
	rerender  bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect recorded extraction runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := newServices(cmd.Context(), cfg, pipeline.Options{}, true, logger)
		if err != nil {
			return err
		}
		defer svc.Close()

		runs, err := svc.runs.ListRuns(cmd.Context(), listLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			cmd.Println("no runs recorded")
			return nil
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tSTARTED\tSOURCE\tDOCUMENTS\tFAILURES\tEXCLUDED")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\n",
				r.Run.ID, r.Run.StartedAt.Format("2006-01-02 15:04:05"), r.Run.Source, r.Documents, r.Failures, r.Run.Excluded)
		}
		return tw.Flush()
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the results of one run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return common.NewAppError(common.CodeConfig, "invalid run id", fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
		}
		svc, err := newServices(cmd.Context(), cfg, pipeline.Options{
			OutputDir: cfg.Output.Dir,
			WriteJSON: cfg.Output.WriteJSON,
		}, true, logger)
		if err != nil {
			return err
		}
		defer svc.Close()

		run, err := svc.runs.GetRun(cmd.Context(), id)
		if err != nil {
			return err
		}
		rep := &pipeline.Report{Run: run, Summary: run.Summary()}
		if rerender {
			if rep, err = svc.pipeline.Rerender(cmd.Context(), run); err != nil {
				return err
			}
		}
		printReport(cmd.OutOrStdout(), rep)
		return nil
	},
}

func init() {
	runsListCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "maximum runs to list")
	runsShowCmd.Flags().BoolVar(&rerender, "render", false, "write the XLSX report again")
	runsCmd.AddCommand(runsListCmd, runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}
