package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// runCLI executes the CLI against the configuration directory dir with stdin
// and returns stdout, stderr and the exit code.
func runCLI(t *testing.T, dir, stdin string, args ...string) (string, string, int) {
	t.Helper()
	t.Setenv("EVIDENCE_LOG_LEVEL", "error")
	t.Setenv("EVIDENCE_LOG_FORMAT", "text")

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	code := Execute(context.Background(),
		append([]string{"--config-dir", dir}, args...),
		strings.NewReader(stdin), stdout, stderr)
	return stdout.String(), stderr.String(), code
}

// mustRun runs the CLI and fails the test on a non-zero exit code.
func mustRun(t *testing.T, dir, stdin string, args ...string) string {
	t.Helper()
	stdout, stderr, code := runCLI(t, dir, stdin, args...)
	require.Equal(t, ExitSuccess, code, "stderr: %s", stderr)
	return stdout
}

// decodeData unmarshals the data field of a JSON CLI response into v.
func decodeData(t *testing.T, out string, v any) {
	t.Helper()
	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	require.Equal(t, "ok", resp.Status, out)
	require.NoError(t, json.Unmarshal(resp.Data, v))
}
