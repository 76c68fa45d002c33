// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package video

import (
	"github.com/linuxdeepin/dde-kmsvideo/eloop"
)

const (
	ConnectionConnected    = 1
	ConnectionDisconnected = 2
	ConnectionUnknown      = 3
)

// ModeInfo is the raw timing descriptor reported by the kernel.
type ModeInfo struct {
	Clock                                         uint32
	Hdisplay, HsyncStart, HsyncEnd, Htotal, Hskew uint16
	Vdisplay, VsyncStart, VsyncEnd, Vtotal, Vscan uint16
	Vrefresh                                      uint32
	Flags                                         uint32
	Type                                          uint32
	Name                                          string
}

type Resources struct {
	Crtcs      []uint32
	Connectors []uint32
	Encoders   []uint32
}

type Connector struct {
	ID         uint32
	Type       uint32
	TypeID     uint32
	Connection uint8
	Encoders   []uint32
	Modes      []ModeInfo
	Props      []uint32
	PropValues []uint64
}

type Encoder struct {
	ID            uint32
	CrtcID        uint32
	PossibleCrtcs uint32
}

type Crtc struct {
	ID        uint32
	BufferID  uint32
	X, Y      uint32
	ModeValid bool
	Mode      ModeInfo
}

type Property struct {
	ID   uint32
	Name string
}

// PageFlip is a decoded flip-complete event.
type PageFlip struct {
	CrtcID   uint32
	Sequence uint32
	Sec      uint32
	Usec     uint32
	UserData uint64
}

type PageFlipFunc func(ev PageFlip)

// Card is the mode-setting interface of one opened DRM device node.
type Card interface {
	Fd() int
	Close() error

	Resources() (*Resources, error)
	Connector(id uint32) (*Connector, error)
	Encoder(id uint32) (*Encoder, error)
	Crtc(id uint32) (*Crtc, error)
	SetCrtc(crtc *Crtc, connectors []uint32) error

	Property(id uint32) (*Property, error)
	Blob(id uint32) ([]byte, error)
	SetConnectorProperty(connID, propID uint32, value uint64) error

	SetMaster() error
	DropMaster() error

	// HandleEvents reads the queued events and passes every
	// flip completion to fn.
	HandleEvents(fn PageFlipFunc) error
}

type OpenFunc func(path string) (Card, error)

type EventLoop interface {
	AddFd(fd int, mask eloop.Mask, cb eloop.FdCallback) (*eloop.Fd, error)
	RemoveFd(fd *eloop.Fd)
}
