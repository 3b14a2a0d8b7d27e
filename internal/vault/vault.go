// Package vault abstracts the local note store. The host application's
// document model becomes a directory of markdown files: notes are read
// and overwritten wholesale by relative path, and a watcher surfaces
// "note opened/changed" events for the auto-insert lifecycle.
package vault

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"gcalnote/internal/logging"
)

// Vault reads and overwrites note text by path.
type Vault interface {
	Read(path string) (string, error)
	Write(path, content string) error
}

// Dir is a Vault rooted at a directory on the local filesystem.
type Dir struct {
	root   string
	logger *slog.Logger
}

// NewDir opens a vault rooted at root, which must be an existing
// directory.
func NewDir(root string, logger *slog.Logger) (*Dir, error) {
	if logger == nil {
		logger = slog.Default()
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("vault directory %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault path %s is not a directory", root)
	}
	return &Dir{root: root, logger: logger}, nil
}

// Root returns the vault's root directory.
func (d *Dir) Root() string {
	return d.root
}

// Read returns the full text of the note at path (relative to the vault
// root, or absolute within it).
func (d *Dir) Read(path string) (string, error) {
	data, err := os.ReadFile(d.resolve(path))
	if err != nil {
		return "", fmt.Errorf("failed to read note %s: %w", path, err)
	}
	return string(data), nil
}

// Write overwrites the full text of the note at path.
func (d *Dir) Write(path, content string) error {
	if err := os.WriteFile(d.resolve(path), []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write note %s: %w", path, err)
	}
	return nil
}

func (d *Dir) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(d.root, path)
}

// NoteName returns a note's short name: no directory, no extension.
func NoteName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Watch emits vault-relative paths of markdown notes as they are
// created or written, recursively, until ctx is cancelled. Newly created
// subdirectories are picked up. The caller treats each emission as "this
// note was opened/changed".
func (d *Dir) Watch(ctx context.Context) (<-chan string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create vault watcher: %w", err)
	}

	err = filepath.WalkDir(d.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if strings.HasPrefix(entry.Name(), ".") && path != d.root {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch vault %s: %w", d.root, err)
	}

	out := make(chan string)
	go func() {
		defer close(out)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				d.handleEvent(ctx, watcher, event, out)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				d.logger.Warn("vault watcher error", logging.Err(err))
			}
		}
	}()
	return out, nil
}

func (d *Dir) handleEvent(ctx context.Context, watcher *fsnotify.Watcher, event fsnotify.Event, out chan<- string) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := watcher.Add(event.Name); err != nil {
				d.logger.Warn("failed to watch new directory", logging.Note(event.Name), logging.Err(err))
			}
			return
		}
	}

	if !strings.EqualFold(filepath.Ext(event.Name), ".md") {
		return
	}
	rel, err := filepath.Rel(d.root, event.Name)
	if err != nil {
		rel = event.Name
	}

	select {
	case out <- rel:
	case <-ctx.Done():
	}
}
