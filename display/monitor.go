// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package display

import (
	"sync"

	dbus "github.com/godbus/dbus/v5"
	"github.com/linuxdeepin/dde-kmsvideo/video"
	"github.com/linuxdeepin/go-lib/dbusutil"
)

type Monitor struct {
	m       *Manager
	service *dbusutil.Service
	disp    *video.Display

	PropsMu      sync.RWMutex
	ID           uint32
	Name         string
	Manufacturer string
	Model        string
	Serial       string
	UUID         string
	Modes        []ModeInfo
	BestMode     ModeInfo
	Crtc         uint32
	Activated    bool
	Online       bool
	DPMS         string
}

func newMonitor(m *Manager, disp *video.Display) *Monitor {
	monitor := &Monitor{
		m:       m,
		service: m.service,
		disp:    disp,
		ID:      disp.ConnectorID(),
		Name:    disp.Name(),
	}

	if info := disp.EDID(); info != nil {
		monitor.Manufacturer = info.Manufacturer
		monitor.Model = info.Model
		monitor.Serial = info.Serial
		monitor.UUID = info.UUID()
	}

	modes := disp.Modes()
	monitor.Modes = toModeInfos(modes)
	best := disp.DefaultMode()
	for i, mode := range modes {
		if mode == best {
			monitor.BestMode = monitor.Modes[i]
			break
		}
	}

	monitor.Crtc = disp.CrtcID()
	monitor.Activated = disp.IsActivated()
	monitor.Online = disp.IsOnline()
	monitor.DPMS = disp.DPMS().String()
	return monitor
}

func (monitor *Monitor) getPath() dbus.ObjectPath {
	return getMonitorPath(monitor.ID)
}

// update copies the runtime state of the display into the exported
// properties.
func (monitor *Monitor) update() {
	disp := monitor.disp
	monitor.PropsMu.Lock()
	monitor.setPropCrtc(disp.CrtcID())
	monitor.setPropActivated(disp.IsActivated())
	monitor.setPropOnline(disp.IsOnline())
	monitor.setPropDPMS(disp.DPMS().String())
	monitor.PropsMu.Unlock()
}

func (monitor *Monitor) activate() error {
	err := monitor.disp.Activate()
	if err != nil {
		return err
	}
	if monitor.m.opts.DefaultDPMS != video.DPMSUnknown {
		err = monitor.disp.SetDPMS(monitor.m.opts.DefaultDPMS)
		if err != nil {
			logger.Warningf("failed to set DPMS of %v: %v", monitor.disp, err)
		}
	}
	return nil
}

func (monitor *Monitor) setDPMS(value string) error {
	state, err := video.ParseDPMS(value)
	if err != nil {
		return err
	}
	return monitor.disp.SetDPMS(state)
}
