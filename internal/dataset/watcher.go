package dataset

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads the snapshot when dataset artifacts in the cache directory are
// replaced. Events are debounced because a file replacement arrives as several
// fsnotify events, and the two artifacts are usually updated together.
type Watcher struct {
	cacheDir string
	reload   func()
	logger   *zap.Logger
	debounce time.Duration
	fsw      *fsnotify.Watcher
}

// NewWatcher creates a watcher over cacheDir that calls reload after changes
// settle. Start must be called to begin watching.
func NewWatcher(cacheDir string, reload func(), logger *zap.Logger) *Watcher {
	return &Watcher{
		cacheDir: cacheDir,
		reload:   reload,
		logger:   logger,
		debounce: 2 * time.Second,
	}
}

// Start begins watching until ctx is canceled.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(w.cacheDir); err != nil {
		_ = fsw.Close()
		return err
	}
	w.fsw = fsw

	go w.run(ctx)
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	var timer *time.Timer
	fire := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("dataset file changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			if timer == nil {
				timer = time.AfterFunc(w.debounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(w.debounce)
			}
		case <-fire:
			timer = nil
			w.logger.Info("dataset changed, reloading snapshot")
			w.reload()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("dataset watch error", zap.Error(err))
		}
	}
}

// relevant reports whether the event touches a dataset artifact.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.Base(event.Name)
	for _, f := range RequiredFiles {
		if name == f {
			return true
		}
	}
	return false
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	if w.fsw != nil {
		return w.fsw.Close()
	}
	return nil
}
