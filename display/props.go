// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package display

import (
	dbus "github.com/godbus/dbus/v5"
)

// Property setters. Callers hold PropsMu.

func (v *Manager) setPropAwake(value bool) (changed bool) {
	if v.Awake != value {
		v.Awake = value
		v.emitPropChangedAwake(value)
		return true
	}
	return false
}

func (v *Manager) emitPropChangedAwake(value bool) error {
	return v.service.EmitPropertyChanged(v, "Awake", value)
}

func (v *Manager) setPropDisplays(value []dbus.ObjectPath) {
	v.Displays = value
	v.emitPropChangedDisplays(value)
}

func (v *Manager) emitPropChangedDisplays(value []dbus.ObjectPath) error {
	return v.service.EmitPropertyChanged(v, "Displays", value)
}

func (v *Monitor) setPropCrtc(value uint32) (changed bool) {
	if v.Crtc != value {
		v.Crtc = value
		v.emitPropChangedCrtc(value)
		return true
	}
	return false
}

func (v *Monitor) emitPropChangedCrtc(value uint32) error {
	return v.service.EmitPropertyChanged(v, "Crtc", value)
}

func (v *Monitor) setPropActivated(value bool) (changed bool) {
	if v.Activated != value {
		v.Activated = value
		v.emitPropChangedActivated(value)
		return true
	}
	return false
}

func (v *Monitor) emitPropChangedActivated(value bool) error {
	return v.service.EmitPropertyChanged(v, "Activated", value)
}

func (v *Monitor) setPropOnline(value bool) (changed bool) {
	if v.Online != value {
		v.Online = value
		v.emitPropChangedOnline(value)
		return true
	}
	return false
}

func (v *Monitor) emitPropChangedOnline(value bool) error {
	return v.service.EmitPropertyChanged(v, "Online", value)
}

func (v *Monitor) setPropDPMS(value string) (changed bool) {
	if v.DPMS != value {
		v.DPMS = value
		v.emitPropChangedDPMS(value)
		return true
	}
	return false
}

func (v *Monitor) emitPropChangedDPMS(value string) error {
	return v.service.EmitPropertyChanged(v, "DPMS", value)
}
