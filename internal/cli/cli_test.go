package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree drops a tree file into a temp dir and returns its path.
func writeTree(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tree.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// execute runs the CLI with args and returns its stdout.
func execute(args ...string) (string, error) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidate_OK(t *testing.T) {
	path := writeTree(t, `[sequence, [counter!, {key: n}], [less-than?, {key: n, val: 5}]]`)

	out, err := execute("validate", path)
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)
}

func TestValidate_UnknownTag(t *testing.T) {
	path := writeTree(t, `[sequence, [wat]]`)

	out, err := execute("validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "invalid:")
	assert.Contains(t, out, "[E101]")
	assert.Contains(t, out, "sequence/wat[0]")
}

func TestValidate_MissingFile(t *testing.T) {
	_, err := execute("validate", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestDump_CompiledForm(t *testing.T) {
	path := writeTree(t, `[sequence, [success], [failure]]`)

	out, err := execute("dump", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"tag": "sequence"`)
	assert.Contains(t, out, `"id"`)
	assert.Contains(t, out, `"tag": "success"`)
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestRun_PrintsStatusAndState(t *testing.T) {
	path := writeTree(t, `[sequence, [counter!, {key: n}], [counter!, {key: n}]]`)

	out, err := execute("run", path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "SUCCESS", lines[0])
	assert.JSONEq(t, `{"n": 2}`, lines[1])
}

func TestRun_MultipleTicks(t *testing.T) {
	path := writeTree(t, `[counter!, {key: n}]`)

	out, err := execute("run", path, "--ticks", "3")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"n": 3}`, lines[1], "state threads across evaluations")
}

func TestRun_FailureExitCode(t *testing.T) {
	path := writeTree(t, `[failure]`)

	out, err := execute("run", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "FAILURE")
}

func TestRun_RejectsZeroTicks(t *testing.T) {
	path := writeTree(t, `[success]`)

	_, err := execute("run", path, "--ticks", "0")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunAndTrace_WithDatabase(t *testing.T) {
	tmp := t.TempDir()
	treePath := filepath.Join(tmp, "tree.yaml")
	require.NoError(t, os.WriteFile(treePath,
		[]byte(`[sequence, [counter!, {key: n}], [success]]`), 0o644))
	dbPath := filepath.Join(tmp, "arbor.db")

	out, err := execute("run", treePath, "--db", dbPath, "--state", "guard")
	require.NoError(t, err)
	assert.Equal(t, "SUCCESS\n", out, "with a database the state goes to the snapshot, not stdout")

	// The snapshot persists: a second run resumes from n=1.
	out, err = execute("run", treePath, "--db", dbPath, "--state", "guard")
	require.NoError(t, err)
	assert.Equal(t, "SUCCESS\n", out)

	out, err = execute("trace", "--db", dbPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4, "header plus one line per tick")
	assert.Contains(t, lines[0], "run ")
	assert.Contains(t, lines[0], "success")
	assert.Contains(t, lines[1], "counter!")
	assert.Contains(t, lines[2], "success")
	assert.Contains(t, lines[3], "sequence")
}

func TestTrace_NoRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "arbor.db")

	_, err := execute("trace", "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError), "plain errors default to failure")
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))
	assert.Equal(t, ExitFailure, GetExitCode(WrapExitError(ExitFailure, "wrapped", assert.AnError)))
}
