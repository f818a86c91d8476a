package drakkar

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const manifestDebounce = 200 * time.Millisecond

// watchAssets reloads the asset catalog whenever the manifest in AssetsDir
// is written or replaced, until ctx is cancelled. Bursts of events from a
// build tool collapse into a single reload.
func (a *App) watchAssets(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Watch the directory, not the file: build tools usually replace the
	// manifest through a rename, which drops a watch on the file itself.
	if err := w.Add(a.Config.AssetsDir); err != nil {
		return err
	}
	logger := a.Echo.Logger
	logger.Infof("watcher: watching %s", filepath.Join(a.Config.AssetsDir, manifestFile))

	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reloadCh:
			if err := a.reloadAssets(); err != nil {
				logger.Warnf("watcher: reload manifest: %v", err)
				continue
			}
			logger.Infof("watcher: manifest reloaded (%d entries)", a.Manifest.Len())

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != manifestFile {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if reloadTimer == nil {
				reloadTimer = time.NewTimer(manifestDebounce)
				reloadCh = reloadTimer.C
			} else {
				reloadTimer.Reset(manifestDebounce)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Errorf("watcher: %v", watchErr)
		}
	}
}
