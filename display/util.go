// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package display

import (
	"math"
	"strconv"

	dbus "github.com/godbus/dbus/v5"
	"github.com/linuxdeepin/dde-kmsvideo/video"
)

const (
	// DRM_MODE_FLAG_INTERLACE
	modeFlagInterlace = 1 << 4
	// DRM_MODE_FLAG_DBLSCAN
	modeFlagDoubleScan = 1 << 5
)

type ModeInfo struct {
	Id     uint32
	Name   string
	Width  uint16
	Height uint16
	Rate   float64
}

func calcModeRate(info video.ModeInfo) float64 {
	vTotal := float64(info.Vtotal)
	if (info.Flags & modeFlagDoubleScan) != 0 {
		/* doublescan doubles the number of lines */
		vTotal *= 2
	}
	if (info.Flags & modeFlagInterlace) != 0 {
		/* interlace splits the frame into two fields */
		vTotal /= 2
	}

	if info.Htotal == 0 || vTotal == 0 {
		return float64(info.Vrefresh)
	}
	// Clock is in kHz
	rate := float64(info.Clock) * 1000 / (float64(info.Htotal) * vTotal)
	return math.Round(rate*100) / 100
}

func toModeInfo(id uint32, mode *video.Mode) ModeInfo {
	info := mode.Info()
	return ModeInfo{
		Id:     id,
		Name:   info.Name,
		Width:  info.Hdisplay,
		Height: info.Vdisplay,
		Rate:   calcModeRate(info),
	}
}

func toModeInfos(modes []*video.Mode) []ModeInfo {
	result := make([]ModeInfo, len(modes))
	for i, mode := range modes {
		result[i] = toModeInfo(uint32(i), mode)
	}
	return result
}

func getMonitorPath(connID uint32) dbus.ObjectPath {
	return dbus.ObjectPath(dbusPath + "/Display_" + strconv.FormatUint(uint64(connID), 10))
}
