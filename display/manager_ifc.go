// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package display

import (
	dbus "github.com/godbus/dbus/v5"
	"github.com/linuxdeepin/go-lib/dbusutil"
)

func (m *Manager) GetInterfaceName() string {
	return dbusInterface
}

func (m *Manager) Wake() *dbus.Error {
	var err error
	m.invoker.Invoke(func() {
		err = m.wake()
	})
	if err != nil {
		logger.Warning("wake failed:", err)
	}
	return dbusutil.ToError(err)
}

func (m *Manager) Sleep() *dbus.Error {
	m.invoker.Invoke(m.sleep)
	return nil
}

func (m *Manager) Poll() *dbus.Error {
	var err error
	m.invoker.Invoke(func() {
		err = m.poll()
	})
	if err != nil {
		logger.Warning("poll failed:", err)
	}
	return dbusutil.ToError(err)
}

func (m *Manager) ListDisplays() ([]dbus.ObjectPath, *dbus.Error) {
	var paths []dbus.ObjectPath
	m.invoker.Invoke(func() {
		paths = m.monitorPaths()
	})
	return paths, nil
}
