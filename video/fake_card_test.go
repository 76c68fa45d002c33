// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package video

import (
	"errors"
	"fmt"

	"github.com/linuxdeepin/dde-kmsvideo/eloop"
)

const (
	fakeDPMSProp = 100
	fakeEDIDProp = 101
)

var errFake = errors.New("fake failure")

type setCrtcCall struct {
	crtc       Crtc
	connectors []uint32
}

type setPropCall struct {
	connID, propID uint32
	value          uint64
}

// fakeCard is an in-memory KMS device. hwCalls counts every call that would
// reach the kernel.
type fakeCard struct {
	res    Resources
	conns  map[uint32]*Connector
	encs   map[uint32]*Encoder
	crtcs  map[uint32]*Crtc
	props  map[uint32]*Property
	blobs  map[uint32][]byte
	master bool
	closed bool

	resErr     error
	connErr    map[uint32]error
	propErr    map[uint32]error
	masterErr  error
	setPropErr error

	setCrtcCalls []setCrtcCall
	setPropCalls []setPropCall
	pending      []PageFlip
	hwCalls      int
}

func newFakeCard() *fakeCard {
	return &fakeCard{
		conns:   make(map[uint32]*Connector),
		encs:    make(map[uint32]*Encoder),
		crtcs:   make(map[uint32]*Crtc),
		props:   map[uint32]*Property{fakeDPMSProp: {ID: fakeDPMSProp, Name: "DPMS"}, fakeEDIDProp: {ID: fakeEDIDProp, Name: "EDID"}},
		blobs:   make(map[uint32][]byte),
		connErr: make(map[uint32]error),
		propErr: make(map[uint32]error),
	}
}

func (c *fakeCard) addCrtc(id uint32) {
	c.res.Crtcs = append(c.res.Crtcs, id)
	c.crtcs[id] = &Crtc{ID: id, BufferID: 500 + id, ModeValid: true, Mode: fakeModes(1)[0]}
}

func (c *fakeCard) addEncoder(id, possibleCrtcs uint32) {
	c.res.Encoders = append(c.res.Encoders, id)
	c.encs[id] = &Encoder{ID: id, PossibleCrtcs: possibleCrtcs}
}

func fakeModes(n int) []ModeInfo {
	modes := make([]ModeInfo, n)
	for i := range modes {
		w := uint16(1920 - 320*i)
		h := uint16(1080 - 180*i)
		modes[i] = ModeInfo{
			Hdisplay: w,
			Vdisplay: h,
			Vrefresh: 60,
			Name:     fmt.Sprintf("%dx%d", w, h),
		}
	}
	return modes
}

// addConnector adds a connector with a DPMS property reading "on".
func (c *fakeCard) addConnector(id uint32, connected bool, nModes int, encoders ...uint32) *Connector {
	c.res.Connectors = append(c.res.Connectors, id)
	conn := &Connector{
		ID:         id,
		Type:       11, // HDMI-A
		TypeID:     uint32(len(c.res.Connectors)),
		Encoders:   encoders,
		Modes:      fakeModes(nModes),
		Props:      []uint32{fakeDPMSProp},
		PropValues: []uint64{drmDPMSOn},
	}
	c.setConnected(id, conn, connected)
	c.conns[id] = conn
	return conn
}

func (c *fakeCard) setConnected(id uint32, conn *Connector, connected bool) {
	if conn == nil {
		conn = c.conns[id]
	}
	if connected {
		conn.Connection = ConnectionConnected
	} else {
		conn.Connection = ConnectionDisconnected
	}
}

func (c *fakeCard) Fd() int {
	return 42
}

func (c *fakeCard) Close() error {
	c.closed = true
	return nil
}

func (c *fakeCard) Resources() (*Resources, error) {
	c.hwCalls++
	if c.resErr != nil {
		return nil, c.resErr
	}
	res := Resources{
		Crtcs:      append([]uint32(nil), c.res.Crtcs...),
		Connectors: append([]uint32(nil), c.res.Connectors...),
		Encoders:   append([]uint32(nil), c.res.Encoders...),
	}
	return &res, nil
}

func (c *fakeCard) Connector(id uint32) (*Connector, error) {
	c.hwCalls++
	if err := c.connErr[id]; err != nil {
		return nil, err
	}
	conn, ok := c.conns[id]
	if !ok {
		return nil, errFake
	}
	cp := *conn
	cp.Modes = append([]ModeInfo(nil), conn.Modes...)
	cp.Props = append([]uint32(nil), conn.Props...)
	cp.PropValues = append([]uint64(nil), conn.PropValues...)
	return &cp, nil
}

func (c *fakeCard) Encoder(id uint32) (*Encoder, error) {
	c.hwCalls++
	enc, ok := c.encs[id]
	if !ok {
		return nil, errFake
	}
	cp := *enc
	return &cp, nil
}

func (c *fakeCard) Crtc(id uint32) (*Crtc, error) {
	c.hwCalls++
	crtc, ok := c.crtcs[id]
	if !ok {
		return nil, errFake
	}
	cp := *crtc
	return &cp, nil
}

func (c *fakeCard) SetCrtc(crtc *Crtc, connectors []uint32) error {
	c.hwCalls++
	c.setCrtcCalls = append(c.setCrtcCalls, setCrtcCall{crtc: *crtc, connectors: connectors})
	return nil
}

func (c *fakeCard) Property(id uint32) (*Property, error) {
	c.hwCalls++
	if err := c.propErr[id]; err != nil {
		return nil, err
	}
	prop, ok := c.props[id]
	if !ok {
		return nil, errFake
	}
	cp := *prop
	return &cp, nil
}

func (c *fakeCard) Blob(id uint32) ([]byte, error) {
	c.hwCalls++
	data, ok := c.blobs[id]
	if !ok {
		return nil, errFake
	}
	return data, nil
}

func (c *fakeCard) SetConnectorProperty(connID, propID uint32, value uint64) error {
	c.hwCalls++
	if c.setPropErr != nil {
		return c.setPropErr
	}
	c.setPropCalls = append(c.setPropCalls, setPropCall{connID: connID, propID: propID, value: value})
	conn := c.conns[connID]
	for i, id := range conn.Props {
		if id == propID {
			conn.PropValues[i] = value
		}
	}
	return nil
}

func (c *fakeCard) SetMaster() error {
	c.hwCalls++
	if c.masterErr != nil {
		return c.masterErr
	}
	c.master = true
	return nil
}

func (c *fakeCard) DropMaster() error {
	c.hwCalls++
	c.master = false
	return nil
}

func (c *fakeCard) HandleEvents(fn PageFlipFunc) error {
	c.hwCalls++
	pending := c.pending
	c.pending = nil
	for _, ev := range pending {
		fn(ev)
	}
	return nil
}

type fakeLoop struct {
	cb      eloop.FdCallback
	fd      int
	addErr  error
	removed []*eloop.Fd
}

func (l *fakeLoop) AddFd(fd int, mask eloop.Mask, cb eloop.FdCallback) (*eloop.Fd, error) {
	if l.addErr != nil {
		return nil, l.addErr
	}
	l.fd = fd
	l.cb = cb
	return &eloop.Fd{}, nil
}

func (l *fakeLoop) RemoveFd(fd *eloop.Fd) {
	l.removed = append(l.removed, fd)
}

func openerFor(card *fakeCard) OpenFunc {
	return func(path string) (Card, error) {
		return card, nil
	}
}
