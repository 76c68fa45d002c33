// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package kms

import (
	"unsafe"

	"github.com/NeowayLabs/drm"
	"github.com/NeowayLabs/drm/ioctl"
	"golang.org/x/sys/unix"
	"golang.org/x/xerrors"
)

const (
	// DRM_IOCTL_SET_MASTER = _IO('d', 0x1e)
	ioctlSetMaster = 0x641e
	// DRM_IOCTL_DROP_MASTER = _IO('d', 0x1f)
	ioctlDropMaster = 0x641f
)

// struct drm_mode_connector_set_property
type sysConnectorSetProperty struct {
	value       uint64
	propID      uint32
	connectorID uint32
}

var ioctlModeConnectorSetProperty = ioctl.NewCode(ioctl.Read|ioctl.Write,
	uint16(unsafe.Sizeof(sysConnectorSetProperty{})), drm.IOCTLBase, 0xAB)

func (c *Card) SetConnectorProperty(connID, propID uint32, value uint64) error {
	arg := &sysConnectorSetProperty{
		value:       value,
		propID:      propID,
		connectorID: connID,
	}
	err := ioctl.Do(uintptr(c.fd), uintptr(ioctlModeConnectorSetProperty),
		uintptr(unsafe.Pointer(arg)))
	if err != nil {
		return xerrors.Errorf("set property %d of connector %d: %w", propID, connID, err)
	}
	return nil
}

func (c *Card) SetMaster() error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(c.fd), ioctlSetMaster, 0)
	if errno != 0 {
		return xerrors.Errorf("DRM_IOCTL_SET_MASTER: %w", errno)
	}
	return nil
}

func (c *Card) DropMaster() error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(c.fd), ioctlDropMaster, 0)
	if errno != 0 {
		return xerrors.Errorf("DRM_IOCTL_DROP_MASTER: %w", errno)
	}
	return nil
}
