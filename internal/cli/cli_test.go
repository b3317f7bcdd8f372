package cli

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Appa019/Coleta-dados-faturas/internal/common"
	"github.com/Appa019/Coleta-dados-faturas/internal/entity"
	"github.com/Appa019/Coleta-dados-faturas/internal/numeric"
	"github.com/Appa019/Coleta-dados-faturas/internal/pipeline"
)

type stubProcessor struct{}

func (stubProcessor) Process(_ context.Context, doc entity.RawDocument) entity.ExtractionResult {
	return entity.ExtractionResult{
		FileName:       doc.Name,
		InstallationID: "3001234567",
		BillingPeriod:  "03/2024",
		LineItems: []entity.LineItem{
			{Item: "Consumo TUSD", Unit: "kWh", TotalValue: numeric.ParseNull("125,40")},
		},
	}
}

func stubServices(t *testing.T) {
	t.Helper()
	orig := newServices
	t.Cleanup(func() { newServices = orig })
	newServices = func(ctx context.Context, c *common.Config, opts pipeline.Options, withStore bool, l *slog.Logger) (*services, error) {
		s := &services{}
		if withStore {
			runs, closeFn, err := OpenRunStore(ctx, c, l)
			if err != nil {
				return nil, err
			}
			s.runs, s.close = runs, closeFn
		}
		s.pipeline = pipeline.NewDefaultService(stubProcessor{}, s.runs, opts, l)
		return s, nil
	}
}

func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	outputDir, reportName, writeJSON, dedup, noStore = "", "", false, "", false
	listLimit, rerender = 20, false
	configPath, logLevel, logFormat = "", "", ""

	out := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errBuf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), errBuf.String(), err
}

func TestVersionCommand(t *testing.T) {
	orig := version
	version = "1.2.3"
	defer func() { version = orig }()

	out, _, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "faturas version 1.2.3")
}

func TestRootCommand_Subcommands(t *testing.T) {
	assert.Equal(t, "faturas", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)

	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"run", "archive", "runs", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}

	sub := map[string]bool{}
	for _, c := range runsCmd.Commands() {
		sub[c.Name()] = true
	}
	assert.True(t, sub["list"])
	assert.True(t, sub["show"])
}

func TestCommands_ArgValidation(t *testing.T) {
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "runs.db"))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"run without paths", []string{"run"}, "requires at least 1 arg(s)"},
		{"archive without file", []string{"archive"}, "accepts 1 arg(s)"},
		{"show without id", []string{"runs", "show"}, "accepts 1 arg(s)"},
		{"show bad id", []string{"runs", "show", "not-a-uuid"}, "invalid run id"},
		{"bad dedup", []string{"run", "--dedup", "sideways", "."}, "dedup"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := executeCommand(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRunCommand_WritesReportAndRecordsRun(t *testing.T) {
	stubServices(t)
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "runs.db"))
	t.Setenv("LOG_LEVEL", "error")

	in := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(in, "fatura_marco.pdf"), []byte("%PDF-1.4"), 0o644))
	outDir := t.TempDir()

	out, _, err := executeCommand(t, "run", in, "-o", outDir, "--name", "report.xlsx", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, "fatura_marco.pdf")
	assert.Contains(t, out, "3001234567")
	assert.Contains(t, out, "125.40")
	assert.Contains(t, out, "1 documents, 1 ok, 0 failed")
	assert.FileExists(t, filepath.Join(outDir, "report.xlsx"))
	assert.FileExists(t, filepath.Join(outDir, "report.json"))

	m := regexp.MustCompile(`run ([0-9a-f-]{36}):`).FindStringSubmatch(out)
	require.Len(t, m, 2)

	out, _, err = executeCommand(t, "runs", "list")
	require.NoError(t, err)
	assert.Contains(t, out, m[1])
	assert.Contains(t, out, in)

	out, _, err = executeCommand(t, "runs", "show", m[1])
	require.NoError(t, err)
	assert.Contains(t, out, "fatura_marco.pdf")
	assert.NotContains(t, out, "report:")
}

func TestRunCommand_DefaultReportNamePerRun(t *testing.T) {
	stubServices(t)
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "runs.db"))
	t.Setenv("LOG_LEVEL", "error")

	in := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(in, "fatura.pdf"), []byte("%PDF-1.4"), 0o644))
	outDir := t.TempDir()

	for i := 0; i < 2; i++ {
		_, _, err := executeCommand(t, "run", in, "-o", outDir, "--no-store")
		require.NoError(t, err)
	}

	reports, err := filepath.Glob(filepath.Join(outDir, "faturas_*.xlsx"))
	require.NoError(t, err)
	assert.Len(t, reports, 2)
}

func TestRunsList_Empty(t *testing.T) {
	stubServices(t)
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "runs.db"))

	out, _, err := executeCommand(t, "runs", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "no runs recorded")
}
