// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package video

import (
	"fmt"

	"golang.org/x/xerrors"
)

// Display is one connected output of a Device. It is created and destroyed
// by hotplug reconciliation only.
type Display struct {
	dev    *Device
	connID uint32
	name   string
	edid   *EDIDInfo

	crtcID uint32
	// saved is the CRTC configuration found at activation; non-nil iff
	// the display is activated
	saved *Crtc

	dpms      DPMS
	available bool
	online    bool

	modes       []*Mode
	defaultMode *Mode
}

func (d *Display) String() string {
	return fmt.Sprintf("<Display id=%d name=%s>", d.connID, d.name)
}

func (d *Display) ConnectorID() uint32 {
	return d.connID
}

func (d *Display) Name() string {
	return d.name
}

// EDID returns nil when the monitor did not report a readable EDID.
func (d *Display) EDID() *EDIDInfo {
	return d.edid
}

// CrtcID is only meaningful while the display is activated.
func (d *Display) CrtcID() uint32 {
	return d.crtcID
}

func (d *Display) IsActivated() bool {
	return d.saved != nil
}

func (d *Display) IsAvailable() bool {
	return d.available
}

// IsOnline reports whether the display is activated on an awake device.
func (d *Display) IsOnline() bool {
	return d.online && d.dev != nil && d.dev.IsAwake()
}

func (d *Display) DPMS() DPMS {
	return d.dpms
}

// Modes returns the modes in the order the connector reported them.
func (d *Display) Modes() []*Mode {
	modes := make([]*Mode, len(d.modes))
	copy(modes, d.modes)
	return modes
}

func (d *Display) DefaultMode() *Mode {
	return d.defaultMode
}

func (d *Display) Device() *Device {
	return d.dev
}

func (d *Display) attachMode(mode *Mode) error {
	if mode.Width() == 0 || mode.Height() == 0 {
		return xerrors.Errorf("mode %q has no size: %w", mode.Name(), ErrInvalidArgument)
	}
	d.modes = append(d.modes, mode)
	return nil
}

// bindDisplay builds a display for conn and registers it on dev. Nothing is
// registered when no mode of the connector can be attached.
func bindDisplay(dev *Device, conn *Connector) (*Display, error) {
	disp := &Display{}

	for i := range conn.Modes {
		mode := newMode()
		mode.set(&conn.Modes[i])

		err := disp.attachMode(mode)
		if err != nil {
			logger.Warningf("cannot attach mode to connector %d: %v", conn.ID, err)
			continue
		}

		// TODO: prefer the mode flagged as preferred by the kernel
		if disp.defaultMode == nil {
			disp.defaultMode = mode
		}
	}

	if len(disp.modes) == 0 {
		logger.Warningf("no valid mode for connector %d found", conn.ID)
		return nil, xerrors.Errorf("connector %d has no valid mode: %w", conn.ID, ErrDeviceFault)
	}

	disp.connID = conn.ID
	disp.name = connectorName(conn)
	disp.available = true
	disp.dpms = getDPMS(dev.card, conn)
	disp.edid = readEDID(dev.card, conn)
	logger.Infof("display %v DPMS is %v", disp, disp.dpms)

	dev.addDisplay(disp)
	return disp, nil
}

// Activate claims a free CRTC for the display and saves its current
// configuration so Deactivate can restore it.
func (d *Display) Activate() error {
	if d.dev == nil {
		return xerrors.Errorf("activate %v: %w", d, ErrNoDevice)
	}
	card := d.dev.card

	res, err := card.Resources()
	if err != nil {
		logger.Warningf("cannot get resources for display %v: %v", d, err)
		return xerrors.Errorf("get resources: %w", ErrDeviceFault)
	}
	conn, err := card.Connector(d.connID)
	if err != nil {
		logger.Warningf("cannot get connector for display %v: %v", d, err)
		return xerrors.Errorf("get connector %d: %w", d.connID, ErrDeviceFault)
	}

	claimed := func(crtcID uint32) bool {
		return d.dev.crtcClaimed(crtcID, d)
	}
	var crtcID uint32
	found := false
	for _, encID := range conn.Encoders {
		enc, err := card.Encoder(encID)
		if err != nil {
			logger.Debugf("cannot get encoder %d: %v", encID, err)
			continue
		}
		crtcID, found = findCrtc(res, enc, claimed)
		if found {
			break
		}
	}
	if !found {
		logger.Warning("cannot find crtc for display", d)
		return xerrors.Errorf("no free crtc for %v: %w", d, ErrNoDevice)
	}

	saved, err := card.Crtc(crtcID)
	if err != nil {
		logger.Warningf("cannot save crtc %d for display %v: %v", crtcID, d, err)
		return xerrors.Errorf("get crtc %d: %w", crtcID, ErrDeviceFault)
	}

	d.crtcID = crtcID
	d.saved = saved
	d.online = true
	logger.Debugf("display %v activated on crtc %d", d, crtcID)
	return nil
}

// Deactivate restores the saved CRTC configuration when the device is awake
// and releases the CRTC. Calling it on an inactive display does nothing.
func (d *Display) Deactivate() {
	if d.saved != nil {
		if d.dev != nil && d.dev.IsAwake() {
			err := d.dev.card.SetCrtc(d.saved, []uint32{d.connID})
			if err != nil {
				logger.Warningf("cannot restore crtc %d of display %v: %v", d.saved.ID, d, err)
			}
		}
		d.saved = nil
	}

	d.crtcID = 0
	d.online = false
}

// SetDPMS changes the power state of the display. The recorded state is
// DPMSUnknown when the hardware has no power control.
func (d *Display) SetDPMS(state DPMS) error {
	if d.dev == nil {
		return xerrors.Errorf("set dpms of %v: %w", d, ErrNoDevice)
	}

	logger.Infof("setting DPMS of display %v to %v", d, state)
	effective, err := setDPMS(d.dev.card, d.connID, state)
	if err != nil {
		return err
	}
	d.dpms = effective
	return nil
}

func (d *Display) unbind() {
	d.Deactivate()
	d.dev = nil
	d.available = false
}
