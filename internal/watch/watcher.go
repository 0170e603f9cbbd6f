// Package watch re-parses N3 documents as they change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aleksaelezovic/n3logic/pkg/n3"
	"github.com/aleksaelezovic/n3logic/pkg/store"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// Config configures the watcher
type Config struct {
	// Root is the directory to watch recursively
	Root string

	// Extensions lists the file extensions to parse (default .n3)
	Extensions []string

	// Ignore lists doublestar patterns, relative to Root, of files to skip
	Ignore []string

	// Debounce is how long a file must be quiet before it is parsed
	Debounce time.Duration

	// Options are passed to every parse call
	Options n3.Options

	// Cache, when set, serves parses and records tracked paths
	Cache *store.ParseCache

	// Logger for watcher events
	Logger *slog.Logger
}

// Op is the kind of change an event reports
type Op string

const (
	OpCreate Op = "create"
	OpModify Op = "modify"
	OpDelete Op = "delete"
)

// Event reports the outcome of parsing a changed file
type Event struct {
	// Path is relative to the watch root
	Path string

	Op Op

	// Result is nil for deletes and failed parses
	Result *n3.ParseResult

	// Err is the read or parse failure, if any
	Err error
}

type pendingChange struct {
	op   fsnotify.Op
	seen time.Time
}

// Watcher watches a directory tree and emits an Event per changed document
type Watcher struct {
	config  Config
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	pendingMu sync.Mutex
	pending   map[string]pendingChange

	// path -> content fingerprint of the last parsed version
	hashMu sync.Mutex
	hashes map[string]string

	events chan Event
	done   chan struct{}
	once   sync.Once
}

// New creates a watcher for config.Root
func New(config Config) (*Watcher, error) {
	info, err := os.Stat(config.Root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.New("watch root must be a directory")
	}

	for _, pattern := range config.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid ignore pattern %q", pattern)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Debounce <= 0 {
		config.Debounce = 100 * time.Millisecond
	}
	if len(config.Extensions) == 0 {
		config.Extensions = []string{".n3"}
	}

	return &Watcher{
		config:  config,
		watcher: fsw,
		logger:  config.Logger,
		pending: make(map[string]pendingChange),
		hashes:  make(map[string]string),
		events:  make(chan Event, 100),
		done:    make(chan struct{}),
	}, nil
}

// Events returns the channel of watch events. It is closed once the
// watcher stops.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start adds watches for the whole tree and begins processing changes
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addWatchesRecursive(w.config.Root); err != nil {
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("File watcher started",
		slog.String("root", w.config.Root),
		slog.Duration("debounce", w.config.Debounce))
	return nil
}

// Stop stops the watcher
func (w *Watcher) Stop() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}

// Scan parses every matching document under the root and records it for
// change detection. Events are returned rather than sent on the channel.
func (w *Watcher) Scan(ctx context.Context) ([]Event, error) {
	var events []Event
	err := filepath.WalkDir(w.config.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != w.config.Root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !w.matches(path) {
			return nil
		}
		if event, ok := w.parseFile(path, 0); ok {
			events = append(events, event)
		}
		return nil
	})
	return events, err
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".")
}

func (w *Watcher) matches(path string) bool {
	if !slices.Contains(w.config.Extensions, filepath.Ext(path)) {
		return false
	}
	rel := filepath.ToSlash(w.relPath(path))
	for _, pattern := range w.config.Ignore {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}
	return true
}

func (w *Watcher) relPath(path string) string {
	rel, err := filepath.Rel(w.config.Root, path)
	if err != nil {
		return path
	}
	return rel
}

func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDir(d.Name()) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory",
				slog.String("path", path),
				slog.String("error", err.Error()))
		} else {
			w.logger.Debug("Watching directory", slog.String("path", path))
		}
		return nil
	})
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)

	ticker := time.NewTicker(max(w.config.Debounce/2, time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", slog.String("error", err.Error()))

		case now := <-ticker.C:
			w.flushPending(ctx, now)
		}
	}
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	path := event.Name

	if !w.matches(path) {
		if event.Has(fsnotify.Create) {
			if info, err := os.Stat(path); err == nil && info.IsDir() && !skipDir(info.Name()) {
				if err := w.addWatchesRecursive(path); err != nil {
					w.logger.Warn("Failed to watch new directory",
						slog.String("path", path),
						slog.String("error", err.Error()))
				}
			}
		}
		return
	}

	w.pendingMu.Lock()
	change := w.pending[path]
	change.op |= event.Op
	change.seen = time.Now()
	w.pending[path] = change
	w.pendingMu.Unlock()

	w.logger.Debug("File change detected",
		slog.String("path", w.relPath(path)),
		slog.String("op", event.Op.String()))
}

// flushPending parses every file that has been quiet for the debounce period
func (w *Watcher) flushPending(ctx context.Context, now time.Time) {
	w.pendingMu.Lock()
	ready := make(map[string]fsnotify.Op)
	for path, change := range w.pending {
		if now.Sub(change.seen) >= w.config.Debounce {
			ready[path] = change.op
			delete(w.pending, path)
		}
	}
	w.pendingMu.Unlock()

	for path, op := range ready {
		if ctx.Err() != nil {
			return
		}
		if event, ok := w.parseFile(path, op); ok {
			w.sendEvent(event)
		}
	}
}

// parseFile turns the current state of path into an event. ok is false
// when the content is unchanged since the last parse.
func (w *Watcher) parseFile(path string, op fsnotify.Op) (Event, bool) {
	rel := w.relPath(path)
	event := Event{Path: rel}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return w.deleted(rel)
	}
	if err != nil {
		event.Op = OpModify
		event.Err = err
		return event, true
	}

	text := string(data)
	fingerprint := store.Fingerprint(text)

	w.hashMu.Lock()
	previous, known := w.hashes[rel]
	w.hashes[rel] = fingerprint
	w.hashMu.Unlock()

	if known && previous == fingerprint {
		return event, false
	}
	if known && !op.Has(fsnotify.Create) {
		event.Op = OpModify
	} else {
		event.Op = OpCreate
	}

	event.Result, event.Err = w.parse(rel, data)
	return event, true
}

func (w *Watcher) parse(rel string, data []byte) (*n3.ParseResult, error) {
	cache := w.config.Cache
	if cache == nil {
		return n3.ParseBytes(data, w.config.Options)
	}

	if _, err := cache.Track(rel, string(data)); err != nil {
		w.logger.Warn("Failed to track document",
			slog.String("path", rel),
			slog.String("error", err.Error()))
	}
	result, hit, err := cache.Parse(string(data), w.config.Options)
	if err == nil {
		w.logger.Debug("Parsed document", slog.String("path", rel), slog.Bool("cached", hit))
	}
	return result, err
}

func (w *Watcher) deleted(rel string) (Event, bool) {
	w.hashMu.Lock()
	_, known := w.hashes[rel]
	delete(w.hashes, rel)
	w.hashMu.Unlock()

	if cache := w.config.Cache; cache != nil {
		if err := cache.Forget(rel); err != nil {
			w.logger.Warn("Failed to forget document",
				slog.String("path", rel),
				slog.String("error", err.Error()))
		}
	}
	return Event{Path: rel, Op: OpDelete}, known
}

func (w *Watcher) sendEvent(event Event) {
	select {
	case w.events <- event:
		w.logger.Debug("Sent watch event",
			slog.String("path", event.Path),
			slog.String("op", string(event.Op)))
	default:
		w.logger.Warn("Event channel full, dropping event", slog.String("path", event.Path))
	}
}
