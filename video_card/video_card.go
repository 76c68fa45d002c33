// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package video_card

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/linuxdeepin/go-lib/log"
)

var logger = log.NewLogger("kmsvideo/video_card")

func SetLogger(l *log.Logger) {
	logger = l
}

// CardEventFunc is called with the device node of a card that appeared or
// went away.
type CardEventFunc func(path string, added bool)

// Watcher reports card nodes created and removed under /dev/dri.
type Watcher struct {
	watcher *fsnotify.Watcher
	fn      CardEventFunc
	done    chan struct{}
}

func NewWatcher(fn CardEventFunc) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	err = fsWatcher.Add(devDRI)
	if err != nil {
		fsWatcher.Close()
		return nil, err
	}

	w := &Watcher{
		watcher: fsWatcher,
		fn:      fn,
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warning("card watcher:", err)
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if !cardReg.MatchString(filepath.Base(ev.Name)) {
		return
	}
	logger.Debug("card event:", ev)
	switch {
	case ev.Has(fsnotify.Create):
		w.fn(ev.Name, true)
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		w.fn(ev.Name, false)
	}
}

// Close stops the watcher. No callback runs after Close returns.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}
