package fuzzy

import (
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Source supplies the Model a consumer should evaluate against right now.
// preempt.Controller holds a Source rather than a bare *Model so it can be
// handed either a model that never changes or one kept fresh by a Watcher,
// without caring which.
type Source interface {
	Current() *Model
}

// Current returns m itself, letting a plain *Model satisfy Source directly
// wherever no hot-reload is wanted.
func (m *Model) Current() *Model { return m }

// Watcher reloads a fuzzy Model from disk whenever its backing file
// changes, so an external parameter learner (out of scope for this
// engine) can update trigger/extend weights without a restart. The
// current Model is read via Watcher.Current, which is safe to call from
// the host loop while a reload is in flight. *Watcher satisfies Source.
type Watcher struct {
	path    string
	current *Model
	reload  chan *Model
	errs    chan error
	done    chan struct{}
}

// WatchModel loads path once and starts watching it for changes. Callers
// must call Close to stop the underlying fsnotify watcher.
func WatchModel(path string) (*Watcher, error) {
	m, err := Load(path)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(path); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		path:    path,
		current: m,
		reload:  make(chan *Model, 1),
		errs:    make(chan error, 1),
		done:    make(chan struct{}),
	}

	go w.run(fw)

	return w, nil
}

func (w *Watcher) run(fw *fsnotify.Watcher) {
	defer fw.Close()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			m, err := Load(w.path)
			if err != nil {
				slog.Warn("fuzzy: model reload failed, keeping previous model", "path", w.path, "err", err)
				continue
			}
			select {
			case w.reload <- m:
			default:
				<-w.reload
				w.reload <- m
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			slog.Warn("fuzzy: watcher error", "path", w.path, "err", err)
		}
	}
}

// Current returns the most recently loaded Model, applying any pending
// reload first.
func (w *Watcher) Current() *Model {
	select {
	case m := <-w.reload:
		w.current = m
	default:
	}
	return w.current
}

// Close stops the background watch goroutine.
func (w *Watcher) Close() {
	close(w.done)
}
