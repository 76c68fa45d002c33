// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package video manages the outputs of one KMS device: it binds displays to
// connected connectors, hands out CRTCs, tracks DPMS and follows hotplug.
// A Device and its displays must only be used from the goroutine running
// its event loop.
package video

import (
	"fmt"
	"sort"

	"github.com/linuxdeepin/dde-kmsvideo/eloop"
	"github.com/linuxdeepin/go-lib/log"
	"golang.org/x/xerrors"
)

var logger = log.NewLogger("kmsvideo/video")

func SetLogger(l *log.Logger) {
	logger = l
}

type powerState uint8

const (
	powerAsleep powerState = iota
	powerAwake
)

type topologyState uint8

const (
	topologySettled topologyState = iota
	// a rescan was requested and reconciliation has not run since
	topologyPending
)

type HotplugAction int

const (
	DisplayNew HotplugAction = iota
	DisplayGone
)

func (a HotplugAction) String() string {
	switch a {
	case DisplayNew:
		return "new"
	case DisplayGone:
		return "gone"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

type HotplugEvent struct {
	Action  HotplugAction
	Display *Display
}

type HotplugFunc func(ev HotplugEvent)

type Device struct {
	path  string
	card  Card
	loop  EventLoop
	efd   *eloop.Fd
	gone  bool
	power powerState
	topo  topologyState

	displays map[uint32]*Display

	pageFlip  PageFlipFunc
	listeners []HotplugFunc
}

// Open opens the device node at path and starts watching it on loop.
// pageFlip may be nil.
func Open(loop EventLoop, open OpenFunc, path string, pageFlip PageFlipFunc) (*Device, error) {
	logger.Info("new drm device via", path)

	card, err := open(path)
	if err != nil {
		logger.Warningf("cannot open drm device %s: %v", path, err)
		return nil, xerrors.Errorf("open %s: %w", path, ErrDeviceFault)
	}

	// TODO: the kernel grants master to the first opener; a concurrent
	// opener can still win the race between open and this drop
	err = card.DropMaster()
	if err != nil {
		logger.Debugf("drop master of %s: %v", path, err)
	}

	dev := &Device{
		path:     path,
		card:     card,
		loop:     loop,
		displays: make(map[uint32]*Display),
		pageFlip: pageFlip,
	}

	dev.efd, err = loop.AddFd(card.Fd(), eloop.Readable, dev.handleEvent)
	if err != nil {
		card.Close()
		return nil, err
	}

	dev.topo = topologyPending
	return dev, nil
}

// Close unbinds every display, stops watching the device and closes it.
func (dev *Device) Close() error {
	for _, disp := range dev.Displays() {
		dev.unbindDisplay(disp)
	}
	if dev.efd != nil {
		dev.loop.RemoveFd(dev.efd)
		dev.efd = nil
	}
	return dev.card.Close()
}

func (dev *Device) Path() string {
	return dev.path
}

func (dev *Device) IsAwake() bool {
	return dev.power == powerAwake
}

// IsGone reports whether the device hung up. A gone device must be closed
// and opened again.
func (dev *Device) IsGone() bool {
	return dev.gone
}

func (dev *Device) needsHotplug() bool {
	return dev.topo == topologyPending
}

// AddListener registers fn to be told about displays appearing and
// disappearing.
func (dev *Device) AddListener(fn HotplugFunc) {
	dev.listeners = append(dev.listeners, fn)
}

func (dev *Device) emit(action HotplugAction, disp *Display) {
	ev := HotplugEvent{Action: action, Display: disp}
	for _, fn := range dev.listeners {
		fn(ev)
	}
}

// Displays returns the bound displays ordered by connector id.
func (dev *Device) Displays() []*Display {
	ids := make([]uint32, 0, len(dev.displays))
	for id := range dev.displays {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	result := make([]*Display, len(ids))
	for i, id := range ids {
		result[i] = dev.displays[id]
	}
	return result
}

func (dev *Device) DisplayByConnector(connID uint32) *Display {
	return dev.displays[connID]
}

func (dev *Device) addDisplay(disp *Display) {
	disp.dev = dev
	dev.displays[disp.connID] = disp
	dev.emit(DisplayNew, disp)
}

func (dev *Device) unbindDisplay(disp *Display) {
	logger.Info("unbind display", disp)
	dev.emit(DisplayGone, disp)
	disp.unbind()
	delete(dev.displays, disp.connID)
}

// crtcClaimed reports whether an activated display other than except drives
// crtcID.
func (dev *Device) crtcClaimed(crtcID uint32, except *Display) bool {
	for _, disp := range dev.displays {
		if disp == except || !disp.IsActivated() {
			continue
		}
		if disp.crtcID == crtcID {
			return true
		}
	}
	return false
}

// Wake takes mastership and rescans the outputs. On failure the device is
// left asleep without mastership.
func (dev *Device) Wake() error {
	if dev.gone {
		return xerrors.Errorf("wake %s: %w", dev.path, ErrNoDevice)
	}
	if dev.IsAwake() {
		return nil
	}

	err := dev.card.SetMaster()
	if err != nil {
		logger.Warning("cannot set DRM-master:", err)
		return xerrors.Errorf("set master: %w", ErrPermissionDenied)
	}

	dev.power = powerAwake
	// outputs may have changed while another master owned the device
	dev.topo = topologyPending
	err = dev.hotplug(true)
	if err != nil {
		dev.power = powerAsleep
		if err := dev.card.DropMaster(); err != nil {
			logger.Warning("cannot drop DRM-master:", err)
		}
		return err
	}
	return nil
}

// Sleep gives up mastership. Displays stay bound but are off-line until the
// next Wake.
func (dev *Device) Sleep() {
	err := dev.card.DropMaster()
	if err != nil {
		logger.Warning("cannot drop DRM-master:", err)
	}
	dev.power = powerAsleep
}

// Poll rescans the outputs without waiting for a hotplug notification.
func (dev *Device) Poll() error {
	if dev.gone {
		return xerrors.Errorf("poll %s: %w", dev.path, ErrNoDevice)
	}
	dev.topo = topologyPending
	return dev.hotplug(false)
}

func (dev *Device) handleEvent(mask eloop.Mask) {
	if mask&eloop.Readable != 0 {
		err := dev.card.HandleEvents(dev.dispatchPageFlip)
		if err != nil {
			logger.Warningf("cannot read events of %s: %v", dev.path, err)
		}
	}

	if mask&(eloop.Hangup|eloop.Error) != 0 {
		logger.Warningf("error or hangup on drm device %s", dev.path)
		dev.loop.RemoveFd(dev.efd)
		dev.efd = nil
		dev.gone = true
	}
}

func (dev *Device) dispatchPageFlip(ev PageFlip) {
	if dev.pageFlip == nil {
		logger.Debugf("page flip on crtc %d without handler", ev.CrtcID)
		return
	}
	dev.pageFlip(ev)
}
