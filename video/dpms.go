// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package video

import (
	"strings"

	"golang.org/x/xerrors"
)

type DPMS int

const (
	DPMSUnknown DPMS = iota
	DPMSOn
	DPMSStandby
	DPMSSuspend
	DPMSOff
)

// kernel values of the connector "DPMS" property
const (
	drmDPMSOn      = 0
	drmDPMSStandby = 1
	drmDPMSSuspend = 2
	drmDPMSOff     = 3
)

const dpmsPropName = "DPMS"

func (s DPMS) String() string {
	switch s {
	case DPMSOn:
		return "on"
	case DPMSStandby:
		return "standby"
	case DPMSSuspend:
		return "suspend"
	case DPMSOff:
		return "off"
	default:
		return "unknown"
	}
}

func ParseDPMS(s string) (DPMS, error) {
	switch strings.ToLower(s) {
	case "on":
		return DPMSOn, nil
	case "standby":
		return DPMSStandby, nil
	case "suspend":
		return DPMSSuspend, nil
	case "off":
		return DPMSOff, nil
	}
	return DPMSUnknown, xerrors.Errorf("dpms state %q: %w", s, ErrInvalidArgument)
}

func dpmsToKernel(state DPMS) (uint64, bool) {
	switch state {
	case DPMSOn:
		return drmDPMSOn, true
	case DPMSStandby:
		return drmDPMSStandby, true
	case DPMSSuspend:
		return drmDPMSSuspend, true
	case DPMSOff:
		return drmDPMSOff, true
	}
	return 0, false
}

func dpmsFromKernel(value uint64) DPMS {
	switch value {
	case drmDPMSOn:
		return DPMSOn
	case drmDPMSStandby:
		return DPMSStandby
	case drmDPMSSuspend:
		return DPMSSuspend
	default:
		return DPMSOff
	}
}

// setDPMS writes state to the DPMS property of the connector and returns the
// state now in effect. A connector without the property yields DPMSUnknown
// and no error.
func setDPMS(card Card, connID uint32, state DPMS) (DPMS, error) {
	value, ok := dpmsToKernel(state)
	if !ok {
		return DPMSUnknown, xerrors.Errorf("dpms state %v: %w", state, ErrInvalidArgument)
	}

	conn, err := card.Connector(connID)
	if err != nil {
		logger.Warningf("cannot get connector %d: %v", connID, err)
		return DPMSUnknown, xerrors.Errorf("get connector %d: %w", connID, ErrDeviceFault)
	}

	for _, propID := range conn.Props {
		prop, err := card.Property(propID)
		if err != nil {
			logger.Warningf("cannot get property %d of connector %d: %v", propID, connID, err)
			continue
		}
		if prop.Name != dpmsPropName {
			continue
		}

		err = card.SetConnectorProperty(connID, prop.ID, value)
		if err != nil {
			logger.Info("cannot set DPMS:", err)
			return DPMSUnknown, xerrors.Errorf("set DPMS of connector %d: %w", connID, ErrDeviceFault)
		}
		return state, nil
	}

	logger.Warningf("connector %d does not support DPMS", connID)
	return DPMSUnknown, nil
}

func getDPMS(card Card, conn *Connector) DPMS {
	for i, propID := range conn.Props {
		prop, err := card.Property(propID)
		if err != nil {
			logger.Warningf("cannot get property %d of connector %d: %v", propID, conn.ID, err)
			continue
		}
		if prop.Name != dpmsPropName {
			continue
		}
		if i >= len(conn.PropValues) {
			break
		}
		return dpmsFromKernel(conn.PropValues[i])
	}

	logger.Warningf("connector %d does not support DPMS", conn.ID)
	return DPMSUnknown
}
