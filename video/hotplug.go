// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package video

import (
	"golang.org/x/xerrors"
)

// hotplug brings the display set in line with the connected connectors.
// It does nothing unless the device is awake and a rescan is pending. With
// readDPMS the recorded DPMS state of online displays is pushed back to the
// hardware if the hardware drifted away from it.
func (dev *Device) hotplug(readDPMS bool) error {
	if !dev.IsAwake() || !dev.needsHotplug() {
		return nil
	}

	res, err := dev.card.Resources()
	if err != nil {
		logger.Warning("cannot retrieve drm resources:", err)
		return xerrors.Errorf("get resources: %w", ErrPermissionDenied)
	}

	for _, disp := range dev.displays {
		disp.available = false
	}

	for _, connID := range res.Connectors {
		conn, err := dev.card.Connector(connID)
		if err != nil {
			logger.Debugf("cannot get connector %d: %v", connID, err)
			continue
		}
		if conn.Connection != ConnectionConnected {
			continue
		}

		disp, ok := dev.displays[connID]
		if !ok {
			_, err = bindDisplay(dev, conn)
			if err != nil {
				logger.Debugf("cannot bind connector %d: %v", connID, err)
			}
			continue
		}

		disp.available = true
		if !readDPMS || !disp.IsOnline() {
			continue
		}
		dpms := getDPMS(dev.card, conn)
		if dpms != disp.dpms && disp.dpms != DPMSUnknown {
			logger.Debugf("DPMS state for display %v changed", disp)
			err = disp.SetDPMS(disp.dpms)
			if err != nil {
				logger.Warningf("cannot restore DPMS of display %v: %v", disp, err)
			}
		}
	}

	for _, disp := range dev.Displays() {
		if !disp.available {
			dev.unbindDisplay(disp)
		}
	}

	dev.topo = topologySettled
	return nil
}
