// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package kms

import (
	"encoding/binary"

	"github.com/linuxdeepin/dde-kmsvideo/video"
	"golang.org/x/sys/unix"
	"golang.org/x/xerrors"
)

const (
	eventVblank        = 0x01
	eventFlipComplete  = 0x02
	eventCrtcSequence  = 0x03
	eventHeaderSize    = 8
	eventVblankSize    = 32
	eventReadBufferLen = 4096
)

// HandleEvents reads the events queued on the device and hands every
// flip completion to fn. It must only be called when the device is readable.
func (c *Card) HandleEvents(fn video.PageFlipFunc) error {
	buf := make([]byte, eventReadBufferLen)
	n, err := unix.Read(c.fd, buf)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EINTR {
			return nil
		}
		return xerrors.Errorf("read drm events: %w", err)
	}
	return decodeEvents(buf[:n], fn)
}

// decodeEvents walks a buffer of struct drm_event records.
func decodeEvents(buf []byte, fn video.PageFlipFunc) error {
	order := binary.NativeEndian
	for off := 0; off < len(buf); {
		if len(buf)-off < eventHeaderSize {
			return xerrors.Errorf("truncated event header at offset %d", off)
		}
		typ := order.Uint32(buf[off:])
		length := int(order.Uint32(buf[off+4:]))
		if length < eventHeaderSize || off+length > len(buf) {
			return xerrors.Errorf("bad event length %d at offset %d", length, off)
		}
		ev := buf[off : off+length]
		off += length

		switch typ {
		case eventFlipComplete:
			if length < eventVblankSize {
				return xerrors.Errorf("short flip event: %d bytes", length)
			}
			fn(video.PageFlip{
				UserData: order.Uint64(ev[8:]),
				Sec:      order.Uint32(ev[16:]),
				Usec:     order.Uint32(ev[20:]),
				Sequence: order.Uint32(ev[24:]),
				CrtcID:   order.Uint32(ev[28:]),
			})
		case eventVblank, eventCrtcSequence:
			logger.Debug("ignore vblank event of type", typ)
		default:
			logger.Debug("ignore unknown drm event of type", typ)
		}
	}
	return nil
}
