package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/matchspine/pkg/contracts"
)

func newTestLoader(t *testing.T) *Loader {
	t.Helper()
	loader, err := NewLoader(">=1.0.0 <2.0.0")
	require.NoError(t, err)
	return loader
}

func TestAddRecord_AndLookup(t *testing.T) {
	loader := newTestLoader(t)
	record := contracts.RegistryRecord{
		ID:                  "standard",
		Version:             "3",
		Name:                "Standard",
		EngineCompatVersion: "1.4.0",
	}
	require.NoError(t, loader.AddRecord(KindFormat, record))

	got, err := loader.Lookup(KindFormat, contracts.VersionedRef{ID: "standard", Version: "3"})
	require.NoError(t, err)
	assert.Equal(t, "Standard", got.Name)

	_, err = loader.Lookup(KindFormat, contracts.VersionedRef{ID: "standard", Version: "4"})
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestAddRecord_SchemaRejectsMissingID(t *testing.T) {
	loader := newTestLoader(t)
	err := loader.AddRecord(KindFormat, contracts.RegistryRecord{Version: "1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema")
}

func TestAddRecord_CompatRangeEnforced(t *testing.T) {
	loader := newTestLoader(t)
	err := loader.AddRecord(KindGameMode, contracts.RegistryRecord{
		ID:                  "duel",
		Version:             "1",
		EngineCompatVersion: "2.1.0",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside supported range")
}

func TestLoadFile_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "formats.yaml")
	content := `
- id: standard
  version: "1"
  name: Standard
  engineCompatVersion: 1.0.0
- id: draft
  version: "2"
  name: Draft
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	loader := newTestLoader(t)
	require.NoError(t, loader.LoadFile(KindFormat, path))

	got, err := loader.Lookup(KindFormat, contracts.VersionedRef{ID: "draft", Version: "2"})
	require.NoError(t, err)
	assert.Equal(t, "Draft", got.Name)
}

func TestLoadFile_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "modes.json")
	content := `[{"id":"duel","version":"1","name":"Duel"}]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	loader := newTestLoader(t)
	require.NoError(t, loader.LoadFile(KindGameMode, path))

	got, err := loader.Lookup(KindGameMode, contracts.VersionedRef{ID: "duel", Version: "1"})
	require.NoError(t, err)
	assert.Equal(t, "Duel", got.Name)
}

func TestResolve_BuildsSnapshot(t *testing.T) {
	loader := newTestLoader(t)
	require.NoError(t, loader.AddRecord(KindFormat, contracts.RegistryRecord{ID: "standard", Version: "1"}))
	require.NoError(t, loader.AddRecord(KindGameMode, contracts.RegistryRecord{ID: "duel", Version: "1"}))
	require.NoError(t, loader.AddRecord(KindRuleset, contracts.RegistryRecord{ID: "serious", Version: "2"}))

	pointer := contracts.SessionPointer{
		Format:   contracts.VersionedRef{ID: "standard", Version: "1"},
		GameMode: contracts.VersionedRef{ID: "duel", Version: "1"},
		Ruleset:  &contracts.VersionedRef{ID: "serious", Version: "2"},
	}
	snapshot, err := loader.Resolve(pointer)
	require.NoError(t, err)
	assert.Equal(t, "standard", snapshot.Format.ID)
	assert.Equal(t, "duel", snapshot.GameMode.ID)
	require.NotNil(t, snapshot.Ruleset)
	assert.Equal(t, "serious", snapshot.Ruleset.ID)
}

func TestResolve_MissingRecordFails(t *testing.T) {
	loader := newTestLoader(t)
	pointer := contracts.SessionPointer{
		Format:   contracts.VersionedRef{ID: "ghost", Version: "1"},
		GameMode: contracts.VersionedRef{ID: "duel", Version: "1"},
	}
	_, err := loader.Resolve(pointer)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}
