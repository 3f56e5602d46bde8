package assistant

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VladOS-0/dmi-assistant/dmi"
)

func testDB(t *testing.T) *StateDB {
	t.Helper()
	db, err := NewStateDB(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testConfig(states ...*dmi.State) dmi.Config {
	return dmi.Config{Width: 32, Height: 32, States: states}
}

func TestStateDBFingerprint(t *testing.T) {
	db := testDB(t)

	crc, err := db.Fingerprint("/nowhere/a.dmi")
	require.NoError(t, err)
	assert.Empty(t, crc)

	require.NoError(t, db.SetFile("/nowhere/a.dmi", "DEADBEEF", testConfig()))

	crc, err = db.Fingerprint("/nowhere/a.dmi")
	require.NoError(t, err)
	assert.Equal(t, "DEADBEEF", crc)
}

func TestStateDBSetFileReplaces(t *testing.T) {
	db := testDB(t)

	require.NoError(t, db.SetFile("/nowhere/a.dmi", "AAAA0000", testConfig(
		&dmi.State{Name: "idle", Dirs: 1, Frames: 1},
		&dmi.State{Name: "walk", Dirs: 4, Frames: 2, Movement: true},
	)))

	files, states, err := db.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, files)
	assert.Equal(t, 2, states)

	// Indexing the same path again replaces its states wholesale.
	require.NoError(t, db.SetFile("/nowhere/a.dmi", "BBBB0000", testConfig(
		&dmi.State{Name: "run", Dirs: 8, Frames: 3},
	)))

	files, states, err = db.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, files)
	assert.Equal(t, 1, states)

	crc, err := db.Fingerprint("/nowhere/a.dmi")
	require.NoError(t, err)
	assert.Equal(t, "BBBB0000", crc)

	hits, err := db.SearchStates("*")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "run", hits[0].Name)
	assert.Equal(t, 8, hits[0].Dirs)
	assert.Equal(t, 3, hits[0].Frames)
}

func TestStateDBSearch(t *testing.T) {
	db := testDB(t)

	require.NoError(t, db.SetFile("/icons/mob.dmi", "11111111", testConfig(
		&dmi.State{Name: "idle", Dirs: 1, Frames: 1},
		&dmi.State{Name: "walking", Dirs: 4, Frames: 2, Movement: true},
	)))
	require.NoError(t, db.SetFile("/icons/obj.dmi", "22222222", testConfig(
		&dmi.State{Name: "walker", Dirs: 1, Frames: 1},
	)))

	// Substring match when the pattern has no wildcards.
	hits, err := db.SearchStates("walk")
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "/icons/mob.dmi", hits[0].Path)
	assert.Equal(t, "walking", hits[0].Name)
	assert.True(t, hits[0].Movement)
	assert.Equal(t, "/icons/obj.dmi", hits[1].Path)
	assert.Equal(t, "walker", hits[1].Name)

	// Glob-style wildcards.
	hits, err = db.SearchStates("walk*")
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	hits, err = db.SearchStates("walk??")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "walker", hits[0].Name)

	hits, err = db.SearchStates("*")
	require.NoError(t, err)
	assert.Len(t, hits, 3)

	hits, err = db.SearchStates("teleport")
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestStateDBRemoveMissing(t *testing.T) {
	db := testDB(t)

	kept := filepath.Join(t.TempDir(), "kept.dmi")
	require.NoError(t, os.WriteFile(kept, []byte("placeholder"), 0o644))

	require.NoError(t, db.SetFile(kept, "11111111", testConfig(
		&dmi.State{Name: "idle", Dirs: 1, Frames: 1},
	)))
	require.NoError(t, db.SetFile("/nowhere/gone.dmi", "22222222", testConfig(
		&dmi.State{Name: "lost", Dirs: 1, Frames: 1},
		&dmi.State{Name: "forgotten", Dirs: 1, Frames: 1},
	)))

	removed, err := db.RemoveMissing()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	// The states of the removed file go with it.
	files, states, err := db.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, files)
	assert.Equal(t, 1, states)

	hits, err := db.SearchStates("*")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, kept, hits[0].Path)

	removed, err = db.RemoveMissing()
	require.NoError(t, err)
	assert.Zero(t, removed)
}
