package grammar

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRulePack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slang.yaml")
	pack := `name: slang
rules:
  - id: slang-lemme
    trigger: '\blemme\b'
    correction: let me
    category: Informal Language
    severity: low
    band: Intermediate
  - id: slang-dunno
    trigger: '\bdunno\b'
    correction: "don't know"
    exceptions: [ ]
`
	require.NoError(t, os.WriteFile(path, []byte(pack), 0o600))

	t.Run("Load", func(t *testing.T) {
		loaded, err := LoadRulePack(path)
		require.NoError(t, err)
		assert.Equal(t, "slang", loaded.Name)
		require.Len(t, loaded.Rules, 2)
		assert.Equal(t, BandIntermediate, loaded.Rules[0].Band)
	})

	t.Run("ExtendsDefaultCatalog", func(t *testing.T) {
		catalog, err := LoadCatalog(nil, path)
		require.NoError(t, err)
		assert.Equal(t, DefaultCatalog().Len()+2, catalog.Len())
		assert.NotEqual(t, DefaultCatalog().Fingerprint(), catalog.Fingerprint())

		result := New(catalog, nil, nil).Correct(context.Background(), "lemme think, i dunno", 12)
		assert.Equal(t, "Let me think, I don't know", result.CorrectedText)
	})

	t.Run("UnknownField", func(t *testing.T) {
		_, err := ParseRulePack([]byte("rules:\n  - id: x\n    triger: '\\bx\\b'\n"))
		assert.Error(t, err)
	})

	t.Run("BadBand", func(t *testing.T) {
		_, err := ParseRulePack([]byte("rules:\n  - id: x\n    trigger: 'x'\n    band: expert\n"))
		assert.ErrorIs(t, err, ErrInvalidRule)
	})

	t.Run("EmptyFile", func(t *testing.T) {
		p, err := ParseRulePack(nil)
		require.NoError(t, err)
		assert.Empty(t, p.Rules)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := LoadCatalog(nil, filepath.Join(dir, "missing.yaml"))
		assert.Error(t, err)
	})
}
