package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunBuild_LogsBuildStartOnce(t *testing.T) {
	srcDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "home.md"), []byte("# Home\n\nHello.\n"), 0o644))

	outDir := filepath.Join(t.TempDir(), "site")
	cfgPath := filepath.Join(srcDir, "sitegen.yaml")
	cfgYAML := "index: " + filepath.Join(srcDir, "home.md") + "\noutput:\n  directory: " + outDir + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgYAML), 0o644))

	prevConfig, prevOutput := CLI.Config, CLI.Build.Output
	CLI.Config, CLI.Build.Output = cfgPath, ""
	t.Cleanup(func() { CLI.Config, CLI.Build.Output = prevConfig, prevOutput })

	var buf bytes.Buffer
	prevLogger := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prevLogger) })

	require.NoError(t, runBuild())
	require.FileExists(t, filepath.Join(outDir, "index.html"))
	require.Equal(t, 1, strings.Count(buf.String(), "Starting site build"))
}
