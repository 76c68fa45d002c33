// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package video

import (
	"golang.org/x/xerrors"
)

var (
	ErrOutOfMemory      = xerrors.New("out of memory")
	ErrDeviceFault      = xerrors.New("device fault")
	ErrPermissionDenied = xerrors.New("permission denied")
	ErrNoDevice         = xerrors.New("no such device")
	ErrInvalidArgument  = xerrors.New("invalid argument")
)
