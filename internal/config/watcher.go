// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// CONFIG WATCHER
// =============================================================================

// debounceWindow coalesces editor write bursts into a single reload.
const debounceWindow = 250 * time.Millisecond

// Watcher reloads configuration when the config file changes on disk.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	onLoad  func(*Config)
	done    chan struct{}
}

// Watch starts watching path and invokes onLoad with each successfully
// reloaded configuration. A reload that fails validation is logged and
// skipped; the previous configuration stays in effect.
func Watch(path string, onLoad func(*Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory, not the file: editors replace files on save,
	// which drops a direct file watch.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		path:    path,
		watcher: fw,
		onLoad:  onLoad,
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// loop processes filesystem events until Close.
func (w *Watcher) loop() {
	var timer *time.Timer
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceWindow, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("config watcher: %v", err)

		case <-w.done:
			return
		}
	}
}

// reload re-reads the config file and hands the result to the callback.
func (w *Watcher) reload() {
	cfg, err := LoadFrom(w.path)
	if err != nil {
		log.Printf("config reload skipped: %v", err)
		return
	}
	log.Printf("config reloaded from %s", w.path)
	w.onLoad(cfg)
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
