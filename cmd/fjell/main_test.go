package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sourceCSV = "Navn;Moh;Kartblad M711;Koordinater grad, min, sek;Koordinater UTM 32V;Index\n" +
	"Galdhøpiggen;2469;1518 II;61°38′06″N 8°18′45″E;462384 6838471;1\n"

func setupEnv(t *testing.T, source string) (input, output string) {
	t.Helper()
	dir := t.TempDir()
	input = filepath.Join(dir, "fjell.csv")
	output = filepath.Join(dir, "fjell.json")
	if source != "" {
		require.NoError(t, os.WriteFile(input, []byte(source), 0o644))
	}
	t.Setenv("INPUT_PATH", input)
	t.Setenv("OUTPUT_PATH", output)
	t.Setenv("LOG_LEVEL", "error")

	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	return input, output
}

// captureDefaultLog points the default logger at a buffer for the test.
func captureDefaultLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestRootCmd_WritesOutput(t *testing.T) {
	_, output := setupEnv(t, sourceCSV)
	metricsPath := filepath.Join(t.TempDir(), "fjell.prom")
	t.Setenv("METRICS_TEXTFILE", metricsPath)

	cmd := newRootCmd()
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name": "Galdhøpiggen"`)
	assert.Contains(t, string(data), `"latitude": "61.67760"`)

	prom, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "fjell_etl_records_written_total 1")
}

func TestRootCmd_RejectsArguments(t *testing.T) {
	_, output := setupEnv(t, sourceCSV)

	cmd := newRootCmd()
	cmd.SetArgs([]string{"extra.csv"})
	require.Error(t, cmd.ExecuteContext(context.Background()))

	_, err := os.Stat(output)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRootCmd_MissingInput(t *testing.T) {
	_, output := setupEnv(t, "")

	cmd := newRootCmd()
	cmd.SetArgs([]string{})
	require.Error(t, cmd.ExecuteContext(context.Background()))

	_, err := os.Stat(output)
	assert.ErrorIs(t, err, os.ErrNotExist, "no output may be written when the source is missing")
}

func TestRootCmd_InvalidConfig(t *testing.T) {
	setupEnv(t, sourceCSV)
	t.Setenv("UTM_ZONE_NUMBER", "99")

	cmd := newRootCmd()
	cmd.SetArgs([]string{})
	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UTM_ZONE_NUMBER")
}

func TestExecute_ReportsArgumentError(t *testing.T) {
	_, output := setupEnv(t, sourceCSV)
	logs := captureDefaultLog(t)

	code := execute(context.Background(), []string{"extra.csv"})

	assert.Equal(t, 1, code)
	assert.Contains(t, logs.String(), "fjell failed")
	assert.Contains(t, logs.String(), "extra.csv")
	assert.NoFileExists(t, output)
}

func TestExecute_ReportsConfigError(t *testing.T) {
	setupEnv(t, sourceCSV)
	t.Setenv("LOG_FORMAT", "xml")
	logs := captureDefaultLog(t)

	code := execute(context.Background(), []string{})

	assert.Equal(t, 1, code)
	assert.Contains(t, logs.String(), "LOG_FORMAT")
}

func TestExecute_Success(t *testing.T) {
	_, output := setupEnv(t, sourceCSV)

	assert.Equal(t, 0, execute(context.Background(), []string{}))
	assert.FileExists(t, output)
}
