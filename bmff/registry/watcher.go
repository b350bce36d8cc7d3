package registry

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher reparses changed definition files below the root of a
// workspace. File system events trigger a rescan as they arrive; the poll
// interval is the fallback when events are unavailable or missed.
type FileWatcher struct {
	workspace    *Workspace
	stopCh       chan struct{}
	pollInterval time.Duration
	modTimes     map[string]time.Time
	events       *fsnotify.Watcher
	// OnChange, if set, is called after a scan that changed anything.
	OnChange func(changed []string)
}

func NewFileWatcher(w *Workspace, interval time.Duration) *FileWatcher {
	if interval <= 0 {
		interval = time.Second
	}
	return &FileWatcher{
		workspace:    w,
		stopCh:       make(chan struct{}),
		pollInterval: interval,
		modTimes:     make(map[string]time.Time),
	}
}

func (fw *FileWatcher) Start(ctx context.Context) {
	go fw.run(ctx)
}

func (fw *FileWatcher) Stop() {
	close(fw.stopCh)
}

func (fw *FileWatcher) run(ctx context.Context) {
	ticker := time.NewTicker(fw.pollInterval)
	defer ticker.Stop()

	var events <-chan fsnotify.Event
	var errs <-chan error
	if notify, err := fsnotify.NewWatcher(); err != nil {
		log.Warningf("file events unavailable, polling every %s: %v", fw.pollInterval, err)
	} else {
		defer notify.Close()
		fw.events = notify
		events, errs = notify.Events, notify.Errors
	}

	fw.scan(ctx)

	for {
		select {
		case <-fw.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			fw.scan(ctx)
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}
			log.Debugf("event %s", ev)
			fw.scan(ctx)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			log.Warningf("watch %s: %v", fw.workspace.RootDir(), err)
		}
	}
}

// scan reparses new and modified files and forgets deleted ones. It
// returns the paths that changed.
func (fw *FileWatcher) scan(ctx context.Context) []string {
	currentFiles := make(map[string]bool)
	var changed []string

	filepath.Walk(fw.workspace.RootDir(), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if path != fw.workspace.RootDir() && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			if fw.events != nil {
				if err := fw.events.Add(path); err != nil {
					log.Debugf("watch %s: %v", path, err)
				}
			}
			return nil
		}
		if filepath.Ext(path) != Ext {
			return nil
		}

		currentFiles[path] = true

		lastMod, known := fw.modTimes[path]
		if !known || info.ModTime().After(lastMod) {
			fw.modTimes[path] = info.ModTime()
			if err := fw.workspace.ScanFile(ctx, path); err != nil {
				log.Warningf("scan %s: %v", path, err)
			}
			changed = append(changed, path)
		}
		return nil
	})

	for path := range fw.modTimes {
		if !currentFiles[path] {
			delete(fw.modTimes, path)
			fw.workspace.RemoveFile(path)
			changed = append(changed, path)
		}
	}

	if len(changed) > 0 && fw.OnChange != nil {
		fw.OnChange(changed)
	}
	return changed
}
