package drakkar

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drakkar-agro/drakkar/assets"
)

func writeManifest(t *testing.T, dir, version string) {
	t.Helper()
	body := `{"css/main.css": "` + version + `", "js/main.js": "` + version + `"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, manifestFile), []byte(body), 0o644))
}

func newAssetsApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()
	assetsDir := filepath.Join(dir, "theme")
	require.NoError(t, os.MkdirAll(assetsDir, 0o755))
	writeManifest(t, assetsDir, "1.0.0")

	app := New(SiteConfig{
		DatabasePath:  filepath.Join(dir, "drakkar.db"),
		UploadsDir:    filepath.Join(dir, "public"),
		AdminPassword: "hunter2",
		SessionSecret: "0123456789abcdef0123456789abcdef",
		LogLevel:      "error",
		AssetsDir:     assetsDir,
	}, ViewFuncs{})
	require.NoError(t, app.Setup())
	t.Cleanup(func() { app.Close() })
	return app
}

func mainStyleVersion(app *App) string {
	d, _ := app.Catalog().Get(assets.HandleMainStyle)
	return d.Version
}

func TestReloadAssetsSwapsCatalog(t *testing.T) {
	app := newAssetsApp(t)
	before := app.Catalog()
	assert.Equal(t, "1.0.0", mainStyleVersion(app))

	writeManifest(t, app.Config.AssetsDir, "1.1.0")
	require.NoError(t, app.reloadAssets())

	assert.Equal(t, "1.1.0", mainStyleVersion(app))
	d, _ := before.Get(assets.HandleMainStyle)
	assert.Equal(t, "1.0.0", d.Version, "earlier catalog is left untouched")
}

func TestReloadAssetsRejectsBadManifest(t *testing.T) {
	app := newAssetsApp(t)
	require.NoError(t, os.WriteFile(filepath.Join(app.Config.AssetsDir, manifestFile), []byte("{"), 0o644))

	assert.Error(t, app.reloadAssets())
	assert.Equal(t, "1.0.0", mainStyleVersion(app))
}

func TestWatchAssetsReloadsOnWrite(t *testing.T) {
	app := newAssetsApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.watchAssets(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	writeManifest(t, app.Config.AssetsDir, "2.0.0")

	require.Eventually(t, func() bool {
		return mainStyleVersion(app) == "2.0.0"
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
