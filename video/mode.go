// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package video

import (
	"fmt"
)

// Mode is one timing configuration of a display. It keeps its own copy of
// the kernel descriptor.
type Mode struct {
	info ModeInfo
}

func newMode() *Mode {
	return &Mode{}
}

func (m *Mode) set(info *ModeInfo) {
	m.info = *info
}

func (m *Mode) Name() string {
	return m.info.Name
}

func (m *Mode) Width() uint {
	return uint(m.info.Hdisplay)
}

func (m *Mode) Height() uint {
	return uint(m.info.Vdisplay)
}

func (m *Mode) Refresh() uint {
	return uint(m.info.Vrefresh)
}

// Info returns a copy of the raw timing descriptor.
func (m *Mode) Info() ModeInfo {
	return m.info
}

func (m *Mode) String() string {
	return fmt.Sprintf("<Mode %s %dx%d@%d>", m.Name(), m.Width(), m.Height(), m.Refresh())
}
