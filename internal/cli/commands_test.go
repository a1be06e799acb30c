package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestVault lays out a vault and a config file pointing at it, and
// returns the config path.
func writeTestVault(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, text := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	}

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	cfg := fmt.Sprintf("vault: %s\ndataDir: %s\n", root, t.TempDir())
	require.NoError(t, os.WriteFile(configPath, []byte(cfg), 0o644))
	return configPath
}

// execute runs the CLI with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSyncCommand(t *testing.T) {
	configPath := writeTestVault(t, map[string]string{
		"alpha.md": "q::a <!--SR:!2020-01-01,1,250,card-1-->\n",
		"beta.md":  "links to [[alpha]]\n",
	})

	out, err := execute(t, "--config", configPath, "sync")
	require.NoError(t, err)
	assert.Contains(t, out, "Synced 2 document(s)")
	assert.Contains(t, out, "1 card(s)")
	assert.Contains(t, out, "1 due")
}

func TestSyncCommandAssignsIdentities(t *testing.T) {
	configPath := writeTestVault(t, map[string]string{
		"alpha.md": "q::a <!--SR:!2020-01-01,1,250-->\n",
	})

	out, err := execute(t, "--config", configPath, "sync")
	require.NoError(t, err)
	assert.Contains(t, out, "Assigned 1 new identit(ies)")

	out, err = execute(t, "--config", configPath, "sync")
	require.NoError(t, err)
	assert.NotContains(t, out, "Assigned")
}

func TestSyncCommandJSON(t *testing.T) {
	configPath := writeTestVault(t, map[string]string{
		"alpha.md": "q::a <!--SR:!2020-01-01,1,250,card-1-->\n",
	})

	out, err := execute(t, "--config", configPath, "--format", "json", "sync")
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "ok"`)
	assert.Contains(t, out, `"cards": 1`)
}

func TestDueCommand(t *testing.T) {
	configPath := writeTestVault(t, map[string]string{
		"alpha.md": "q::a <!--SR:!2020-01-01,1,250,card-1-->\n",
		"beta.md":  "q::a <!--SR:!2999-01-01,1,250,card-2-->\n",
	})

	out, err := execute(t, "--config", configPath, "due")
	require.NoError(t, err)
	assert.Contains(t, out, "1 item(s) due")
	assert.Contains(t, out, "alpha#card-1")
	assert.NotContains(t, out, "card-2")
}

func TestDueCommandEmpty(t *testing.T) {
	configPath := writeTestVault(t, map[string]string{
		"alpha.md": "no schedules here\n",
	})

	out, err := execute(t, "--config", configPath, "due")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing due")
}

func TestReviewCardCommand(t *testing.T) {
	configPath := writeTestVault(t, map[string]string{
		"alpha.md": "q::a <!--SR:!2020-01-01,1,250,card-1-->\n",
	})

	out, err := execute(t, "--config", configPath, "review", "alpha", "good", "--card", "card-1")
	require.NoError(t, err)
	assert.Contains(t, out, "interval 3")

	// The review landed in the history store.
	out, err = execute(t, "--config", configPath, "history", "card-1")
	require.NoError(t, err)
	assert.Contains(t, out, "1 review(s)")
	assert.Contains(t, out, "Good")
}

func TestReviewUnknownCard(t *testing.T) {
	configPath := writeTestVault(t, map[string]string{
		"alpha.md": "plain document\n",
	})

	_, err := execute(t, "--config", configPath, "review", "alpha", "good", "--card", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestReviewInvalidResponse(t *testing.T) {
	configPath := writeTestVault(t, map[string]string{
		"alpha.md": "plain document\n",
	})

	_, err := execute(t, "--config", configPath, "review", "alpha", "sideways")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestHistoryUnknownItem(t *testing.T) {
	configPath := writeTestVault(t, map[string]string{
		"alpha.md": "plain document\n",
	})

	_, err := execute(t, "--config", configPath, "history", "ghost")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestMigrateCommand(t *testing.T) {
	configPath := writeTestVault(t, map[string]string{
		"alpha.md": "q::a <!--SR:!2020-01-01,1,250-->\n",
	})

	out, err := execute(t, "--config", configPath, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "Assigned 1")

	out, err = execute(t, "--config", configPath, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "already carry identities")
}
