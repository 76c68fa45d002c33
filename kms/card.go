// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package kms talks to a DRM device node through the kernel mode-setting
// ioctls.
package kms

import (
	"bytes"
	"os"

	"github.com/NeowayLabs/drm/mode"
	"github.com/linuxdeepin/dde-kmsvideo/video"
	"github.com/linuxdeepin/go-lib/log"
	"golang.org/x/xerrors"
)

var logger = log.NewLogger("kmsvideo/kms")

// Card is an opened DRM device node. It implements video.Card.
type Card struct {
	file *os.File
	fd   int
}

var _ video.Card = (*Card)(nil)

func Open(path string) (*Card, error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, xerrors.Errorf("open drm device: %w", err)
	}
	// Fd puts the file into blocking mode; events are only read after
	// the loop reported readiness.
	return &Card{file: file, fd: int(file.Fd())}, nil
}

// OpenCard is Open for use as a video.OpenFunc.
func OpenCard(path string) (video.Card, error) {
	c, err := Open(path)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Card) Fd() int {
	return c.fd
}

func (c *Card) Close() error {
	return c.file.Close()
}

func (c *Card) Resources() (*video.Resources, error) {
	res, err := mode.GetResources(c.file)
	if err != nil {
		return nil, xerrors.Errorf("get resources: %w", err)
	}
	return &video.Resources{
		Crtcs:      res.Crtcs,
		Connectors: res.Connectors,
		Encoders:   res.Encoders,
	}, nil
}

func (c *Card) Connector(id uint32) (*video.Connector, error) {
	conn, err := mode.GetConnector(c.file, id)
	if err != nil {
		return nil, xerrors.Errorf("get connector %d: %w", id, err)
	}

	modes := make([]video.ModeInfo, len(conn.Modes))
	for i := range conn.Modes {
		modes[i] = fromModeInfo(&conn.Modes[i])
	}
	return &video.Connector{
		ID:         conn.ID,
		Type:       conn.Type,
		TypeID:     conn.TypeID,
		Connection: conn.Connection,
		Encoders:   conn.Encoders,
		Modes:      modes,
		Props:      conn.Props,
		PropValues: conn.PropValues,
	}, nil
}

func (c *Card) Encoder(id uint32) (*video.Encoder, error) {
	enc, err := mode.GetEncoder(c.file, id)
	if err != nil {
		return nil, xerrors.Errorf("get encoder %d: %w", id, err)
	}
	return &video.Encoder{
		ID:            enc.ID,
		CrtcID:        enc.CrtcID,
		PossibleCrtcs: enc.PossibleCrtcs,
	}, nil
}

func (c *Card) Crtc(id uint32) (*video.Crtc, error) {
	crtc, err := mode.GetCrtc(c.file, id)
	if err != nil {
		return nil, xerrors.Errorf("get crtc %d: %w", id, err)
	}
	return &video.Crtc{
		ID:        crtc.ID,
		BufferID:  crtc.BufferID,
		X:         crtc.X,
		Y:         crtc.Y,
		ModeValid: crtc.ModeValid != 0,
		Mode:      fromModeInfo(&crtc.Mode),
	}, nil
}

// SetCrtc programs crtc exactly as described, including its framebuffer.
func (c *Card) SetCrtc(crtc *video.Crtc, connectors []uint32) error {
	var info *mode.Info
	if crtc.ModeValid {
		mi := toModeInfo(&crtc.Mode)
		info = &mi
	}
	var connPtr *uint32
	if len(connectors) > 0 {
		connPtr = &connectors[0]
	}
	err := mode.SetCrtc(c.file, crtc.ID, crtc.BufferID, crtc.X, crtc.Y, connPtr, len(connectors), info)
	if err != nil {
		return xerrors.Errorf("set crtc %d: %w", crtc.ID, err)
	}
	return nil
}

func (c *Card) Property(id uint32) (*video.Property, error) {
	prop, err := mode.GetProperty(c.file, id)
	if err != nil {
		return nil, xerrors.Errorf("get property %d: %w", id, err)
	}
	return &video.Property{ID: prop.ID, Name: prop.Name}, nil
}

func (c *Card) Blob(id uint32) ([]byte, error) {
	blob, err := mode.GetBlob(c.file, id)
	if err != nil {
		return nil, xerrors.Errorf("get blob %d: %w", id, err)
	}
	return blob.Data, nil
}

func fromModeInfo(info *mode.Info) video.ModeInfo {
	name, _, _ := bytes.Cut(info.Name[:], []byte{0})
	return video.ModeInfo{
		Clock:      info.Clock,
		Hdisplay:   info.Hdisplay,
		HsyncStart: info.HsyncStart,
		HsyncEnd:   info.HsyncEnd,
		Htotal:     info.Htotal,
		Hskew:      info.Hskew,
		Vdisplay:   info.Vdisplay,
		VsyncStart: info.VsyncStart,
		VsyncEnd:   info.VsyncEnd,
		Vtotal:     info.Vtotal,
		Vscan:      info.Vscan,
		Vrefresh:   info.Vrefresh,
		Flags:      info.Flags,
		Type:       info.Type,
		Name:       string(name),
	}
}

func toModeInfo(info *video.ModeInfo) mode.Info {
	mi := mode.Info{
		Clock:      info.Clock,
		Hdisplay:   info.Hdisplay,
		HsyncStart: info.HsyncStart,
		HsyncEnd:   info.HsyncEnd,
		Htotal:     info.Htotal,
		Hskew:      info.Hskew,
		Vdisplay:   info.Vdisplay,
		VsyncStart: info.VsyncStart,
		VsyncEnd:   info.VsyncEnd,
		Vtotal:     info.Vtotal,
		Vscan:      info.Vscan,
		Vrefresh:   info.Vrefresh,
		Flags:      info.Flags,
		Type:       info.Type,
	}
	// keep the terminating NUL
	copy(mi.Name[:len(mi.Name)-1], info.Name)
	return mi
}

func SetLogLevel(level log.Priority) {
	logger.SetLogLevel(level)
}
