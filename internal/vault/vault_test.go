package vault

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVault(t *testing.T, files map[string]string) *Vault {
	t.Helper()
	root := t.TempDir()
	for name, text := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	}
	v, err := New(root, filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = v.Close() })
	return v
}

func TestListDocuments(t *testing.T) {
	v := newTestVault(t, map[string]string{
		"alpha.md":            "# Alpha",
		"notes/beta.md":       "# Beta",
		"notes/readme.txt":    "not markdown",
		".obsidian/config.md": "hidden",
	})

	names, err := v.ListDocuments()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "notes/beta"}, names)
}

func TestReadWriteText(t *testing.T) {
	v := newTestVault(t, map[string]string{"alpha.md": "original"})

	text, err := v.GetText("alpha")
	require.NoError(t, err)
	assert.Equal(t, "original", text)

	require.NoError(t, v.WriteText("alpha", "updated"))
	text, err = v.GetText("alpha")
	require.NoError(t, err)
	assert.Equal(t, "updated", text)

	_, err = v.GetText("missing")
	assert.Error(t, err)
}

func TestRebuildIndexLinks(t *testing.T) {
	v := newTestVault(t, map[string]string{
		"alpha.md":     "links to [[beta]] and [[beta|alias]] and [[gamma#heading]]",
		"beta.md":      "links back to [[alpha]] and to [[nowhere]]",
		"gamma.md":     "self link [[gamma]] is dropped",
		"sub/delta.md": "bare link [[alpha]] resolves across directories",
		"unlinked.md":  "no links here",
	})

	require.NoError(t, v.RebuildIndex())

	links, err := v.GetLinks("alpha")
	require.NoError(t, err)
	assert.Equal(t, []string{"beta", "gamma"}, links)

	links, err = v.GetLinks("beta")
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha"}, links)

	links, err = v.GetLinks("gamma")
	require.NoError(t, err)
	assert.Empty(t, links)

	links, err = v.GetLinks("sub/delta")
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha"}, links)

	all, err := v.AllLinks()
	require.NoError(t, err)
	assert.Equal(t, []string{"beta", "gamma"}, all["alpha"])
	assert.NotContains(t, all, "unlinked")

	n, err := v.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestRebuildIndexReplacesOldEdges(t *testing.T) {
	v := newTestVault(t, map[string]string{
		"alpha.md": "[[beta]]",
		"beta.md":  "",
	})
	require.NoError(t, v.RebuildIndex())

	require.NoError(t, v.WriteText("alpha", "no links anymore"))
	require.NoError(t, v.RebuildIndex())

	links, err := v.GetLinks("alpha")
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestParseLinks(t *testing.T) {
	targets := parseLinks("a [[one]] b [[two|label]] c [[three#sec]] d [[ four ]]")
	assert.Equal(t, []string{"one", "two", "three", "four"}, targets)
}

func TestNewRejectsMissingRoot(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope"), filepath.Join(t.TempDir(), "index.db"))
	assert.Error(t, err)
}
