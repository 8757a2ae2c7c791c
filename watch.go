package nanotpl

import (
	"os"

	"github.com/fsnotify/fsnotify"
	jujuerrors "github.com/juju/errors"
)

// Watcher recompiles a template file from scratch every time it changes on
// disk. It is an embedding convenience, not a cache: each recompilation
// tokenizes, parses, and compiles the file's full contents again, and the
// previous CompiledTemplate is simply dropped (spec.md's Non-goals exclude
// any caching of parsed/compiled templates).
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	changes chan *CompiledTemplate
	errs    chan error
}

// WatchFile starts watching path and compiles it once immediately. Callers
// receive fresh *CompiledTemplate values off Changes() as the file is
// edited; call Close when done.
func WatchFile(path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, wrapInternal(err, "creating file watcher")
	}
	if err := fsw.Add(path); err != nil {
		fsw.Close()
		return nil, jujuerrors.Annotatef(err, "watching %s", path)
	}

	w := &Watcher{
		path:    path,
		watcher: fsw,
		changes: make(chan *CompiledTemplate, 1),
		errs:    make(chan error, 1),
	}

	initial, err := w.compileFile()
	if err != nil {
		fsw.Close()
		return nil, err
	}
	w.changes <- initial

	go w.run()
	return w, nil
}

// Changes yields a freshly compiled template every time the watched file
// is written.
func (w *Watcher) Changes() <-chan *CompiledTemplate { return w.changes }

// Errs yields read/compile errors encountered while watching. A syntax
// error in an edited file does not stop the watch; the previous compiled
// template remains the last one sent on Changes().
func (w *Watcher) Errs() <-chan error { return w.errs }

func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			logger.Debugf("watch: %s changed, recompiling", w.path)
			compiled, err := w.compileFile()
			if err != nil {
				w.errs <- err
				continue
			}
			logger.Debugf("watch: %s recompiled as revision %s", w.path, compiled.Revision())
			w.changes <- compiled
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.errs <- wrapInternal(err, "file watcher")
		}
	}
}

func (w *Watcher) compileFile() (*CompiledTemplate, error) {
	src, err := os.ReadFile(w.path)
	if err != nil {
		return nil, jujuerrors.Annotatef(err, "reading %s", w.path)
	}
	tpl, err := FromString(string(src))
	if err != nil {
		return nil, err
	}
	return tpl.Compile()
}
