// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package display

import (
	dbus "github.com/godbus/dbus/v5"
	"github.com/linuxdeepin/go-lib/dbusutil"
)

func (monitor *Monitor) GetInterfaceName() string {
	return dbusInterface + ".Display"
}

func (monitor *Monitor) Activate() *dbus.Error {
	var err error
	monitor.m.invoker.Invoke(func() {
		err = monitor.activate()
		monitor.update()
	})
	if err != nil {
		logger.Warningf("activate %q failed: %v", monitor.Name, err)
	}
	return dbusutil.ToError(err)
}

func (monitor *Monitor) Deactivate() *dbus.Error {
	monitor.m.invoker.Invoke(func() {
		monitor.disp.Deactivate()
		monitor.update()
	})
	return nil
}

func (monitor *Monitor) SetDPMS(value string) *dbus.Error {
	var err error
	monitor.m.invoker.Invoke(func() {
		err = monitor.setDPMS(value)
		monitor.update()
	})
	if err != nil {
		logger.Warningf("set DPMS of %q to %q failed: %v", monitor.Name, value, err)
	}
	return dbusutil.ToError(err)
}

func (monitor *Monitor) GetDPMS() (string, *dbus.Error) {
	var value string
	monitor.m.invoker.Invoke(func() {
		value = monitor.disp.DPMS().String()
	})
	return value, nil
}

func (monitor *Monitor) ListModes() ([]ModeInfo, *dbus.Error) {
	monitor.PropsMu.RLock()
	modes := make([]ModeInfo, len(monitor.Modes))
	copy(modes, monitor.Modes)
	monitor.PropsMu.RUnlock()
	return modes, nil
}
