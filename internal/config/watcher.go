package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vellumtext/vellum/internal/logging"
)

// Handler receives each successfully reloaded configuration.
type Handler func(Config)

// Watcher reloads the configuration file when it changes on disk. Rapid
// successive changes are debounced into a single reload; a reload that
// fails to parse or validate is logged and dropped, keeping the previous
// configuration in effect.
type Watcher struct {
	path     string
	debounce time.Duration
	log      *logging.Logger
	handler  Handler

	fsw     *fsnotify.Watcher
	closeCh chan struct{}
	wg      sync.WaitGroup

	mu     sync.Mutex
	timer  *time.Timer
	closed bool
}

// Watch starts watching path and calls handler with each valid reload. The
// containing directory is watched rather than the file itself, so editors
// that save by writing a temporary file and renaming it over the target are
// still observed. A non-positive debounce selects 100ms.
func Watch(path string, debounce time.Duration, log *logging.Logger, handler Handler) (*Watcher, error) {
	if log == nil {
		log = logging.Null
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, err
	}

	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}
	w := &Watcher{
		path:     abs,
		debounce: debounce,
		log:      log.WithComponent("config"),
		handler:  handler,
		fsw:      fsw,
		closeCh:  make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Rename) {
				w.schedule()
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error: %v", err)
		}
	}
}

// schedule arms the debounce timer, restarting it if already pending.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Reset(w.debounce)
		return
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	w.mu.Lock()
	w.timer = nil
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return
	}

	cfg, err := Load(w.path)
	if err != nil {
		w.log.Warn("reload failed, keeping previous config: %v", err)
		return
	}
	w.log.Info("configuration reloaded from %s", w.path)
	w.handler(cfg)
}

// Close stops watching. A pending debounced reload is cancelled.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	close(w.closeCh)
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}
