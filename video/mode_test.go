// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModeCopiesDescriptor(t *testing.T) {
	info := ModeInfo{Hdisplay: 1366, Vdisplay: 768, Vrefresh: 60, Name: "1366x768"}
	m := newMode()
	assert.Equal(t, "", m.Name())

	m.set(&info)
	info.Hdisplay = 1
	info.Name = "changed"

	assert.Equal(t, "1366x768", m.Name())
	assert.Equal(t, uint(1366), m.Width())
	assert.Equal(t, uint(768), m.Height())
	assert.Equal(t, uint(60), m.Refresh())
	assert.Equal(t, "<Mode 1366x768 1366x768@60>", m.String())
}

func TestAttachModeRejectsEmptySize(t *testing.T) {
	d := &Display{}
	m := newMode()
	m.set(&ModeInfo{Name: "broken"})
	assert.ErrorIs(t, d.attachMode(m), ErrInvalidArgument)
	assert.Empty(t, d.Modes())
}
