package assets_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/offaxis/engine/assets"
	"github.com/spaghettifunk/offaxis/engine/config"
	"github.com/spaghettifunk/offaxis/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rigV1 = `
[[cameras]]
name = "one"
`

const rigV2 = `
[[cameras]]
name = "one"
[[cameras]]
name = "two"
`

func nextEvent(t *testing.T, am *assets.AssetManager) assets.AssetEvent {
	t.Helper()
	select {
	case e, ok := <-am.Events():
		require.True(t, ok, "events channel closed")
		return e
	case <-time.After(5 * time.Second):
		t.Fatal("no reload event")
		return assets.AssetEvent{}
	}
}

func TestWatchReloadsRig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rig.toml")
	require.NoError(t, os.WriteFile(path, []byte(rigV1), 0o644))

	am, err := assets.NewAssetManager(50 * time.Millisecond)
	require.NoError(t, err)
	defer am.Close()
	require.NoError(t, am.Watch(path))

	asset, err := am.LoadAsset(path)
	require.NoError(t, err)
	assert.Len(t, asset.(*config.Rig).Cameras, 1)

	require.NoError(t, os.WriteFile(path, []byte(rigV2), 0o644))
	e := nextEvent(t, am)
	require.NoError(t, e.Err)
	assert.Equal(t, assets.AssetTypeRig, e.Type)
	assert.Len(t, e.Asset.(*config.Rig).Cameras, 2)

	info, ok := am.Info(path)
	require.True(t, ok)
	assert.False(t, info.LastLoaded.IsZero())

	require.NoError(t, os.WriteFile(path, []byte("[[cameras]]\nname = 3\n"), 0o644))
	e = nextEvent(t, am)
	assert.ErrorIs(t, e.Err, core.ErrInvalidConfig)
}

func TestWatchRejectsUnknownTypes(t *testing.T) {
	am, err := assets.NewAssetManager(0)
	require.NoError(t, err)

	assert.Error(t, am.Watch(filepath.Join(t.TempDir(), "notes.txt")))

	require.NoError(t, am.Close())
	require.NoError(t, am.Close())
	_, ok := <-am.Events()
	assert.False(t, ok)
	assert.ErrorIs(t, am.Watch("rig.toml"), assets.ErrClosed)
}
