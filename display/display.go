// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package display exports a video.Device and its displays on the system bus.
package display

import (
	"github.com/linuxdeepin/dde-kmsvideo/video"
	"github.com/linuxdeepin/go-lib/dbusutil"
	"github.com/linuxdeepin/go-lib/log"
)

var logger = log.NewLogger("kmsvideo/display")

const (
	dbusServiceName = "com.deepin.daemon.KmsVideo"
	dbusInterface   = "com.deepin.daemon.KmsVideo"
	dbusPath        = "/com/deepin/daemon/KmsVideo"
)

// Invoker runs a function on the goroutine owning the video device.
type Invoker interface {
	Invoke(fn func())
}

// Start exports dev on service and requests the well-known name. It must be
// called on the goroutine owning dev, before that goroutine starts
// dispatching.
func Start(service *dbusutil.Service, invoker Invoker, dev *video.Device, opts Options) (*Manager, error) {
	m := newManager(service, invoker, dev, opts)
	err := m.init()
	if err != nil {
		return nil, err
	}

	err = service.Export(dbusPath, m)
	if err != nil {
		return nil, err
	}

	err = service.RequestName(dbusServiceName)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func SetLogLevel(level log.Priority) {
	logger.SetLogLevel(level)
}
