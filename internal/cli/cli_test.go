package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/kbukum/execkit/errors"
)

const quietConfig = `
name: execkit
logging:
  level: disabled
process:
  regular_exit_codes: [0]
`

type result struct {
	code   int
	stdout string
	stderr string
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "execkit.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, cfg string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--config", writeConfig(t, cfg)}, args...)
	code := Main(context.Background(), full, strings.NewReader(""), &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestRunRegular(t *testing.T) {
	res := execute(t, quietConfig, "run", "--", "/bin/true")
	assert.Equal(t, 0, res.code)
	assert.Empty(t, res.stderr)
}

func TestRunPassesStdout(t *testing.T) {
	res := execute(t, quietConfig, "run", "--", "/bin/echo", "hello", "world")
	require.Equal(t, 0, res.code)
	assert.Equal(t, "hello world\n", res.stdout)
}

func TestRunFailureUsesProgramStatus(t *testing.T) {
	res := execute(t, quietConfig, "run", "--", "/bin/sh", "-c", "echo '  oops ' >&2; exit 3")
	assert.Equal(t, 3, res.code)
	assert.Equal(t, "oops\n", res.stderr)
}

func TestRunFailureWithoutStderr(t *testing.T) {
	res := execute(t, quietConfig, "run", "--", "/bin/false")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, string(apperrors.ErrCodeExecutionFailed))
}

func TestRunOkFlagOverridesConfig(t *testing.T) {
	res := execute(t, quietConfig, "run", "--ok", "0,3", "--", "/bin/sh", "-c", "exit 3")
	assert.Equal(t, 0, res.code)

	res = execute(t, quietConfig, "run", "--ok", "3", "--", "/bin/true")
	assert.Equal(t, apperrors.ExitStatusFailure, res.code)
}

func TestRunInvalidOkFlag(t *testing.T) {
	res := execute(t, quietConfig, "run", "--ok", "300", "--", "/bin/true")
	assert.Equal(t, apperrors.ExitStatusUsage, res.code)
}

func TestRunMissingProgram(t *testing.T) {
	res := execute(t, quietConfig, "run", "--", "/no/such/path")
	assert.Equal(t, apperrors.ExitStatusNotFound, res.code)
	assert.Contains(t, res.stderr, "/no/such/path")
}

func TestRunWithoutProgram(t *testing.T) {
	res := execute(t, quietConfig, "run")
	assert.Equal(t, apperrors.ExitStatusUsage, res.code)
}

func TestRunBareNameUsesSearchPath(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "hello.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho from-script\n"), 0o755))
	t.Setenv("EXECKIT_CLI_TEST_PATH", dir)

	cfg := quietConfig + "  search_path_var: EXECKIT_CLI_TEST_PATH\n"
	res := execute(t, cfg, "run", "--", "hello")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "from-script\n", res.stdout)

	res = execute(t, cfg, "run", "--", "nothing-by-that-name")
	assert.Equal(t, apperrors.ExitStatusNotFound, res.code)
}

func TestRunExtraArgs(t *testing.T) {
	res := execute(t, quietConfig, "run", "--args", `-c 'echo "a b"'`, "--", "/bin/sh")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "a b\n", res.stdout)

	res = execute(t, quietConfig, "run", "--args", `'unterminated`, "--", "/bin/sh")
	assert.Equal(t, apperrors.ExitStatusUsage, res.code)
}

func TestRunDenied(t *testing.T) {
	cfg := quietConfig + "  deny: [rm]\n"
	res := execute(t, cfg, "run", "--", "/bin/rm", "/nonexistent-file")
	assert.Equal(t, apperrors.ExitStatusDenied, res.code)
}

func TestRunAsync(t *testing.T) {
	res := execute(t, quietConfig, "run", "--async", "--", "/bin/true")
	assert.Equal(t, 0, res.code)

	res = execute(t, quietConfig, "run", "--async", "--", "/bin/sh", "-c", "exit 4")
	assert.Equal(t, 4, res.code)
}

func TestRunAsyncWaitTimeout(t *testing.T) {
	res := execute(t, quietConfig, "run", "--async", "--wait-timeout", "50ms", "--", "/bin/sh", "-c", "sleep 1")
	assert.Equal(t, apperrors.ExitStatusUnavailable, res.code)
	assert.Contains(t, res.stderr, string(apperrors.ErrCodeWaitTimeout))
	assert.NotContains(t, res.stderr, string(apperrors.ErrCodeNotExecuted))
}

func TestRunJSON(t *testing.T) {
	res := execute(t, quietConfig, "--json", "run", "--", "/bin/sh", "-c", "echo out; echo err >&2; exit 2")
	assert.Equal(t, 2, res.code)

	var out runResult
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &out), res.stdout)
	assert.Equal(t, "/bin/sh", out.Program)
	assert.Equal(t, 2, out.ExitCode)
	assert.False(t, out.Regular)
	assert.Equal(t, "err", out.Stderr)

	// program output goes to stderr so stdout stays parseable
	assert.Contains(t, res.stderr, "out\n")
	assert.Contains(t, res.stderr, `"code": "EXECUTION_FAILED"`)
}

func TestWhich(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tool"), []byte("#!/bin/sh\n"), 0o755))
	t.Setenv("EXECKIT_CLI_TEST_PATH", dir)
	cfg := quietConfig + "  search_path_var: EXECKIT_CLI_TEST_PATH\n"

	res := execute(t, cfg, "which", "tool")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, filepath.Join(dir, "tool")+"\n", res.stdout)

	res = execute(t, cfg, "which", "tool", "missing")
	assert.Equal(t, apperrors.ExitStatusNotFound, res.code)
	assert.Contains(t, res.stderr, "missing")

	res = execute(t, cfg, "--json", "which", "tool")
	require.Equal(t, 0, res.code)
	var found map[string]string
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &found))
	assert.Equal(t, filepath.Join(dir, "tool"), found["tool"])
}

func TestConfigCommand(t *testing.T) {
	cfg := quietConfig + "  max_concurrent: 2\n  max_wait: 3s\n"
	res := execute(t, cfg, "config")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "max_concurrent: 2")
	assert.Contains(t, res.stdout, "max_wait: 3s")
	assert.Contains(t, res.stdout, "search_path_var: PATH")
}

func TestConfigEnvOverride(t *testing.T) {
	t.Setenv("EXECKIT_PROCESS_MAX_CONCURRENT", "5")
	res := execute(t, quietConfig, "config")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "max_concurrent: 5")
}

func TestInvalidConfig(t *testing.T) {
	res := execute(t, quietConfig+"  max_concurrent: -1\n", "config")
	assert.Equal(t, apperrors.ExitStatusUsage, res.code)
	assert.Contains(t, res.stderr, "max_concurrent")
}

func TestVersionCommand(t *testing.T) {
	res := execute(t, quietConfig, "version")
	require.Equal(t, 0, res.code)
	assert.True(t, strings.HasPrefix(res.stdout, "execkit "))

	res = execute(t, quietConfig, "--json", "version")
	require.Equal(t, 0, res.code)
	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &info))
	assert.Contains(t, info, "version")
	assert.Contains(t, info, "platform")
}

func TestExitStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain error", errors.New("boom"), apperrors.ExitStatusFailure},
		{"not found", apperrors.ExecutableNotFound("/x"), apperrors.ExitStatusNotFound},
		{"denied", apperrors.ExecDenied("/x", ""), apperrors.ExitStatusDenied},
		{"execution failed", apperrors.ExecutionFailed("", 42), 42},
		{"signalled", apperrors.ExecutionFailed("", -1), apperrors.ExitStatusFailure},
		{"spawn failed", apperrors.SpawnFailed("/x", errors.New("io")), apperrors.ExitStatusOSError},
		{"zero status", &apperrors.AppError{Code: apperrors.ErrCodeInternal}, apperrors.ExitStatusFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitStatus(tt.err))
		})
	}
}
