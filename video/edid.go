// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package video

import (
	"fmt"

	"gitlab.com/lehn/edid"
	"golang.org/x/xerrors"
)

const edidPropName = "EDID"

var connectorTypeNames = []string{
	"Unknown",
	"VGA",
	"DVI-I",
	"DVI-D",
	"DVI-A",
	"Composite",
	"SVIDEO",
	"LVDS",
	"Component",
	"DIN",
	"DP",
	"HDMI-A",
	"HDMI-B",
	"TV",
	"eDP",
	"Virtual",
	"DSI",
	"DPI",
	"Writeback",
	"SPI",
	"USB",
}

func connectorName(conn *Connector) string {
	typeName := "Unknown"
	if int(conn.Type) < len(connectorTypeNames) {
		typeName = connectorTypeNames[conn.Type]
	}
	return fmt.Sprintf("%s-%d", typeName, conn.TypeID)
}

// EDIDInfo identifies the monitor behind a connector.
type EDIDInfo struct {
	Manufacturer string
	Model        string
	Serial       string
}

func (e *EDIDInfo) UUID() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s-%s-%s", e.Manufacturer, e.Model, e.Serial)
}

func parseEDID(data []byte) (*EDIDInfo, error) {
	if len(data) < 128 {
		return nil, xerrors.Errorf("edid too short: %d bytes", len(data))
	}
	e, err := edid.New(data)
	if err != nil {
		return nil, xerrors.Errorf("parse edid: %w", err)
	}
	return &EDIDInfo{
		Manufacturer: string(e.PNPID[:]),
		Model:        fmt.Sprintf("%d", e.Model),
		Serial:       fmt.Sprintf("%d", e.Serial),
	}, nil
}

// readEDID fetches and parses the EDID blob of conn. It returns nil when the
// connector has none or the blob cannot be read.
func readEDID(card Card, conn *Connector) *EDIDInfo {
	for i, propID := range conn.Props {
		prop, err := card.Property(propID)
		if err != nil {
			logger.Debugf("cannot get property %d of connector %d: %v", propID, conn.ID, err)
			continue
		}
		if prop.Name != edidPropName || i >= len(conn.PropValues) {
			continue
		}
		blobID := uint32(conn.PropValues[i])
		if blobID == 0 {
			return nil
		}
		data, err := card.Blob(blobID)
		if err != nil {
			logger.Warningf("cannot get edid blob of connector %d: %v", conn.ID, err)
			return nil
		}
		info, err := parseEDID(data)
		if err != nil {
			logger.Warningf("connector %d: %v", conn.ID, err)
			return nil
		}
		return info
	}
	return nil
}
