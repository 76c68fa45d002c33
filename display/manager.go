// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package display

import (
	"sort"
	"sync"

	dbus "github.com/godbus/dbus/v5"
	"github.com/linuxdeepin/dde-kmsvideo/video"
	"github.com/linuxdeepin/go-lib/dbusutil"
)

type Options struct {
	// AutoActivate claims a CRTC for every display after each wake and
	// rescan. Displays that found no free CRTC are retried next time.
	AutoActivate bool
	// DefaultDPMS is applied to displays right after auto activation.
	// DPMSUnknown leaves the hardware state alone.
	DefaultDPMS video.DPMS
}

type Manager struct {
	service    *dbusutil.Service
	invoker    Invoker
	dev        *video.Device
	opts       Options
	monitorMap map[uint32]*Monitor

	PropsMu  sync.RWMutex
	Awake    bool
	CardPath string
	// dbusutil-gen: equal=nil
	Displays []dbus.ObjectPath
}

func newManager(service *dbusutil.Service, invoker Invoker, dev *video.Device, opts Options) *Manager {
	return &Manager{
		service:    service,
		invoker:    invoker,
		dev:        dev,
		opts:       opts,
		monitorMap: make(map[uint32]*Monitor),
	}
}

func (m *Manager) init() error {
	m.CardPath = m.dev.Path()
	m.Awake = m.dev.IsAwake()

	m.dev.AddListener(m.handleHotplug)
	for _, disp := range m.dev.Displays() {
		err := m.addMonitor(disp)
		if err != nil {
			return err
		}
	}
	m.updatePropDisplays()
	return nil
}

func (m *Manager) handleHotplug(ev video.HotplugEvent) {
	logger.Debugf("hotplug %v: %v", ev.Action, ev.Display)
	switch ev.Action {
	case video.DisplayNew:
		err := m.addMonitor(ev.Display)
		if err != nil {
			logger.Warning("failed to export display:", err)
		}
	case video.DisplayGone:
		m.removeMonitor(ev.Display)
	}
	m.updatePropDisplays()
}

func (m *Manager) addMonitor(disp *video.Display) error {
	monitor := newMonitor(m, disp)
	err := m.service.Export(monitor.getPath(), monitor)
	if err != nil {
		return err
	}
	m.monitorMap[disp.ConnectorID()] = monitor
	return nil
}

func (m *Manager) removeMonitor(disp *video.Display) {
	monitor, ok := m.monitorMap[disp.ConnectorID()]
	if !ok {
		return
	}
	delete(m.monitorMap, disp.ConnectorID())
	err := m.service.StopExport(monitor)
	if err != nil {
		logger.Warning("failed to stop exporting display:", err)
	}
}

func (m *Manager) monitorPaths() []dbus.ObjectPath {
	ids := make([]uint32, 0, len(m.monitorMap))
	for id := range m.monitorMap {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	paths := make([]dbus.ObjectPath, len(ids))
	for i, id := range ids {
		paths[i] = m.monitorMap[id].getPath()
	}
	return paths
}

func (m *Manager) updatePropDisplays() {
	paths := m.monitorPaths()
	m.PropsMu.Lock()
	m.setPropDisplays(paths)
	m.PropsMu.Unlock()
}

// refresh retries activation if enabled and syncs every exported property
// with the device.
func (m *Manager) refresh() {
	if m.opts.AutoActivate && m.dev.IsAwake() {
		m.activateAll()
	}

	m.PropsMu.Lock()
	m.setPropAwake(m.dev.IsAwake())
	m.PropsMu.Unlock()

	for _, monitor := range m.monitorMap {
		monitor.update()
	}
}

func (m *Manager) activateAll() {
	for _, disp := range m.dev.Displays() {
		if disp.IsActivated() {
			continue
		}
		err := disp.Activate()
		if err != nil {
			logger.Warningf("failed to activate %v: %v", disp, err)
			continue
		}
		if m.opts.DefaultDPMS == video.DPMSUnknown {
			continue
		}
		err = disp.SetDPMS(m.opts.DefaultDPMS)
		if err != nil {
			logger.Warningf("failed to set DPMS of %v: %v", disp, err)
		}
	}
}

func (m *Manager) wake() error {
	err := m.dev.Wake()
	m.refresh()
	return err
}

func (m *Manager) sleep() {
	m.dev.Sleep()
	m.refresh()
}

func (m *Manager) poll() error {
	err := m.dev.Poll()
	m.refresh()
	return err
}

// SetActive wakes the device when the owning session becomes active and
// puts it to sleep otherwise. It may be called from any goroutine.
func (m *Manager) SetActive(active bool) error {
	var err error
	m.invoker.Invoke(func() {
		if active {
			err = m.wake()
		} else {
			m.sleep()
		}
	})
	return err
}

// Rescan is Poll for callers outside the bus. It may be called from any
// goroutine.
func (m *Manager) Rescan() error {
	var err error
	m.invoker.Invoke(func() {
		err = m.poll()
	})
	return err
}

// Stop withdraws every exported object. Must run on the device goroutine.
func (m *Manager) Stop() {
	for _, monitor := range m.monitorMap {
		err := m.service.StopExport(monitor)
		if err != nil {
			logger.Warning(err)
		}
	}
	m.monitorMap = make(map[uint32]*Monitor)
	err := m.service.StopExport(m)
	if err != nil {
		logger.Warning(err)
	}
}
