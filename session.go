// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	dbus "github.com/godbus/dbus/v5"
	login1 "github.com/linuxdeepin/go-dbus-factory/system/org.freedesktop.login1"
	"github.com/linuxdeepin/go-lib/dbusutil"
)

const selfSessionPath = "/org/freedesktop/login1/session/self"

// deviceController is what the session watcher drives. It is implemented by
// display.Manager.
type deviceController interface {
	SetActive(active bool) error
	Rescan() error
}

type sessionWatcher struct {
	sysBus  *dbus.Conn
	sigLoop *dbusutil.SignalLoop
	ctl     deviceController

	loginManager login1.Manager
	session      login1.Session
}

func newSessionWatcher(sysBus *dbus.Conn, ctl deviceController) *sessionWatcher {
	return &sessionWatcher{
		sysBus:  sysBus,
		sigLoop: dbusutil.NewSignalLoop(sysBus, 10),
		ctl:     ctl,
	}
}

// start follows the Active property of the session we run in, and rescans
// after the system resumes. It returns whether the session is active now.
func (w *sessionWatcher) start() (bool, error) {
	w.sigLoop.Start()

	selfObj, err := login1.NewSession(w.sysBus, selfSessionPath)
	if err != nil {
		return false, err
	}
	id, err := selfObj.Id().Get(0)
	if err != nil {
		return false, err
	}
	w.loginManager = login1.NewManager(w.sysBus)
	path, err := w.loginManager.GetSession(0, id)
	if err != nil {
		return false, err
	}
	logger.Debug("self session path:", path)
	w.session, err = login1.NewSession(w.sysBus, path)
	if err != nil {
		return false, err
	}

	w.session.InitSignalExt(w.sigLoop, true)
	err = w.session.Active().ConnectChanged(func(hasValue, active bool) {
		if !hasValue {
			return
		}
		w.handleActiveChanged(active)
	})
	if err != nil {
		logger.Warningf("prop active ConnectChanged failed! %v", err)
	}

	w.loginManager.InitSignalExt(w.sigLoop, true)
	_, err = w.loginManager.ConnectPrepareForSleep(func(start bool) {
		if start {
			return
		}
		logger.Info("system resumed, rescan outputs")
		err := w.ctl.Rescan()
		if err != nil {
			logger.Warning(err)
		}
	})
	if err != nil {
		logger.Warning("failed to connect signal PrepareForSleep:", err)
	}

	return w.session.Active().Get(0)
}

func (w *sessionWatcher) handleActiveChanged(active bool) {
	logger.Debug("session active changed", active)
	err := w.ctl.SetActive(active)
	if err != nil {
		logger.Warningf("failed to follow session active %v: %v", active, err)
	}
}

func (w *sessionWatcher) stop() {
	if w.session != nil {
		w.session.RemoveAllHandlers()
	}
	if w.loginManager != nil {
		w.loginManager.RemoveAllHandlers()
	}
	w.sigLoop.Stop()
}
