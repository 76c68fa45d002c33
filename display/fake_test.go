// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package display

import (
	"errors"

	"github.com/linuxdeepin/dde-kmsvideo/eloop"
	"github.com/linuxdeepin/dde-kmsvideo/video"
)

const propDPMS = 100

var errNotFound = errors.New("not found")

// stubCard has one CRTC shared by every connector.
type stubCard struct {
	conns map[uint32]*video.Connector
	order []uint32
}

func newStubCard() *stubCard {
	return &stubCard{conns: make(map[uint32]*video.Connector)}
}

func (c *stubCard) plug(id uint32, connected bool) {
	conn, ok := c.conns[id]
	if !ok {
		conn = &video.Connector{
			ID:       id,
			Type:     11,
			TypeID:   uint32(len(c.order) + 1),
			Encoders: []uint32{20},
			Modes: []video.ModeInfo{
				{Hdisplay: 1920, Vdisplay: 1080, Htotal: 2200, Vtotal: 1125, Clock: 148500, Vrefresh: 60, Name: "1920x1080"},
				{Hdisplay: 1280, Vdisplay: 720, Htotal: 1650, Vtotal: 750, Clock: 74250, Vrefresh: 60, Name: "1280x720"},
			},
			Props:      []uint32{propDPMS},
			PropValues: []uint64{0},
		}
		c.conns[id] = conn
		c.order = append(c.order, id)
	}
	if connected {
		conn.Connection = video.ConnectionConnected
	} else {
		conn.Connection = video.ConnectionDisconnected
	}
}

func (c *stubCard) Fd() int { return 7 }
func (c *stubCard) Close() error { return nil }

func (c *stubCard) Resources() (*video.Resources, error) {
	return &video.Resources{
		Crtcs:      []uint32{10},
		Encoders:   []uint32{20},
		Connectors: append([]uint32(nil), c.order...),
	}, nil
}

func (c *stubCard) Connector(id uint32) (*video.Connector, error) {
	conn, ok := c.conns[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *conn
	cp.PropValues = append([]uint64(nil), conn.PropValues...)
	return &cp, nil
}

func (c *stubCard) Encoder(id uint32) (*video.Encoder, error) {
	return &video.Encoder{ID: id, PossibleCrtcs: 1}, nil
}

func (c *stubCard) Crtc(id uint32) (*video.Crtc, error) {
	return &video.Crtc{ID: id}, nil
}

func (c *stubCard) SetCrtc(crtc *video.Crtc, connectors []uint32) error {
	return nil
}

func (c *stubCard) Property(id uint32) (*video.Property, error) {
	if id != propDPMS {
		return nil, errNotFound
	}
	return &video.Property{ID: id, Name: "DPMS"}, nil
}

func (c *stubCard) Blob(id uint32) ([]byte, error) {
	return nil, errNotFound
}

func (c *stubCard) SetConnectorProperty(connID, propID uint32, value uint64) error {
	c.conns[connID].PropValues[0] = value
	return nil
}

func (c *stubCard) SetMaster() error { return nil }
func (c *stubCard) DropMaster() error { return nil }
func (c *stubCard) HandleEvents(fn video.PageFlipFunc) error { return nil }

type stubLoop struct{}

func (stubLoop) AddFd(fd int, mask eloop.Mask, cb eloop.FdCallback) (*eloop.Fd, error) {
	return &eloop.Fd{}, nil
}

func (stubLoop) RemoveFd(fd *eloop.Fd) {}

// directInvoker runs functions on the calling goroutine.
type directInvoker struct{}

func (directInvoker) Invoke(fn func()) {
	fn()
}

func openStubDevice(card *stubCard) (*video.Device, error) {
	return video.Open(stubLoop{}, func(string) (video.Card, error) {
		return card, nil
	}, "/dev/dri/card0", nil)
}
