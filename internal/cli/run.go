package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Appa019/Coleta-dados-faturas/internal/pipeline"
)

var (
	outputDir  string
	reportName string
	writeJSON  bool
	marker     string
	dedup      string
	noStore    bool
)

var runCmd = &cobra.Command{
	Use:   "run <path>...",
	Short: "Extract invoices from PDF files, zip bundles or directories",
	Long: `Collects every PDF and zip bundle under the given paths, extracts each
invoice and writes one XLSX report for the whole batch. Zip entries are
filtered by the archive marker (--marker, default DIST_EE).`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openServices(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		rep, err := svc.pipeline.RunPaths(cmd.Context(), args)
		if err != nil {
			return err
		}
		for _, f := range rep.Files {
			if f.Err != "" {
				cmd.PrintErrf("skipped %s: %s\n", f.Path, f.Err)
			}
		}
		printReport(cmd.OutOrStdout(), rep)
		return nil
	},
}

func init() {
	addOutputFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory for the report (default from config)")
	cmd.Flags().StringVar(&reportName, "name", "", "report file name (default faturas_<run>.xlsx)")
	cmd.Flags().BoolVar(&writeJSON, "json", false, "also write the results as JSON")
	cmd.Flags().StringVar(&marker, "marker", "", "substring a zip entry name must contain; empty keeps all")
	cmd.Flags().StringVar(&dedup, "dedup", "", "line item dedup policy: item|item_unit|none")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "do not record the run in the database")
}

// openServices applies command flags over the loaded config.
func openServices(cmd *cobra.Command) (*services, error) {
	c := *cfg
	if cmd.Flags().Changed("marker") {
		c.Extraction.ArchiveMarker = marker
	}
	if dedup != "" {
		c.Extraction.DedupPolicy = dedup
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}
	opts := pipeline.Options{
		OutputDir:  c.Output.Dir,
		ReportName: c.Output.ReportName,
		WriteJSON:  c.Output.WriteJSON || writeJSON,
		Marker:     c.Extraction.ArchiveMarker,
	}
	if outputDir != "" {
		opts.OutputDir = outputDir
	}
	if reportName != "" {
		opts.ReportName = reportName
	}
	return newServices(cmd.Context(), &c, opts, !noStore, logger)
}

func printReport(w io.Writer, rep *pipeline.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tINSTALLATION\tPERIOD\tITEMS\tTOTAL\tSTATUS")
	for _, r := range rep.Run.Results {
		status := string(r.Status())
		if r.Failed() {
			status += ": " + r.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			r.FileName, r.InstallationID, r.BillingPeriod, len(r.LineItems), r.TotalValue().StringFixed(2), status)
	}
	tw.Flush()

	s := rep.Summary
	fmt.Fprintf(w, "\nrun %s: %d documents, %d ok, %d failed, %d excluded, total %s\n",
		rep.Run.ID, s.Documents, s.Successes, s.Failures, rep.Run.Excluded, s.GrandTotal.StringFixed(2))
	if rep.XLSXPath != "" {
		fmt.Fprintf(w, "report: %s\n", rep.XLSXPath)
	}
	if rep.JSONPath != "" {
		fmt.Fprintf(w, "json: %s\n", rep.JSONPath)
	}
}
