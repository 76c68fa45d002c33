// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package display

import (
	"fmt"
	"testing"

	dbus "github.com/godbus/dbus/v5"
	"github.com/linuxdeepin/dde-kmsvideo/video"
	"github.com/linuxdeepin/go-lib/dbusutil"
	"github.com/stretchr/testify/suite"
)

type UnitTestSuite struct {
	suite.Suite
	service *dbusutil.Service
	card    *stubCard
	dev     *video.Device
	m       *Manager
}

func (s *UnitTestSuite) SetupSuite() {
	var err error
	s.service, err = dbusutil.NewSessionService()
	if err != nil {
		s.T().Skip(fmt.Sprintf("failed to get service: %v", err))
	}
}

func (s *UnitTestSuite) SetupTest() {
	s.card = newStubCard()
	s.card.plug(31, true)
	s.card.plug(32, false)

	var err error
	s.dev, err = openStubDevice(s.card)
	s.Require().NoError(err)

	s.m = newManager(s.service, directInvoker{}, s.dev, Options{AutoActivate: true})
	s.Require().NoError(s.m.init())
}

func (s *UnitTestSuite) TearDownTest() {
	s.m.Stop()
	s.dev.Close()
}

func (s *UnitTestSuite) Test_init() {
	s.Equal("/dev/dri/card0", s.m.CardPath)
	s.False(s.m.Awake)
	s.Empty(s.m.Displays)
}

func (s *UnitTestSuite) Test_wakeExportsDisplays() {
	s.Nil(s.m.Wake())
	s.True(s.m.Awake)
	s.Equal([]dbus.ObjectPath{getMonitorPath(31)}, s.m.Displays)

	monitor := s.m.monitorMap[31]
	s.Require().NotNil(monitor)
	s.Equal("HDMI-A-1", monitor.Name)
	s.True(monitor.Activated)
	s.True(monitor.Online)
	s.Equal(uint32(10), monitor.Crtc)
	s.Equal("on", monitor.DPMS)
	s.Len(monitor.Modes, 2)
	s.Equal(uint16(1920), monitor.BestMode.Width)
	s.Equal(60.0, monitor.BestMode.Rate)
}

func (s *UnitTestSuite) Test_pollFollowsHotplug() {
	s.Nil(s.m.Wake())

	s.card.plug(32, true)
	s.Nil(s.m.Poll())
	s.Equal([]dbus.ObjectPath{getMonitorPath(31), getMonitorPath(32)}, s.m.Displays)
	// the only CRTC is held by the first display
	s.False(s.m.monitorMap[32].Activated)

	s.card.plug(31, false)
	s.Nil(s.m.Poll())
	s.Equal([]dbus.ObjectPath{getMonitorPath(32)}, s.m.Displays)
	s.True(s.m.monitorMap[32].Activated)

	paths, busErr := s.m.ListDisplays()
	s.Nil(busErr)
	s.Equal(s.m.Displays, paths)
}

func (s *UnitTestSuite) Test_sleep() {
	s.Nil(s.m.Wake())
	s.Nil(s.m.Sleep())
	s.False(s.m.Awake)
	s.False(s.m.monitorMap[31].Online)
	s.True(s.m.monitorMap[31].Activated)

	s.Require().NoError(s.m.SetActive(true))
	s.True(s.m.Awake)
	s.True(s.m.monitorMap[31].Online)
}

func (s *UnitTestSuite) Test_monitorMethods() {
	s.Nil(s.m.Wake())
	monitor := s.m.monitorMap[31]

	s.Nil(monitor.SetDPMS("standby"))
	s.Equal("standby", monitor.DPMS)
	value, busErr := monitor.GetDPMS()
	s.Nil(busErr)
	s.Equal("standby", value)
	s.NotNil(monitor.SetDPMS("bogus"))

	s.Nil(monitor.Deactivate())
	s.False(monitor.Activated)
	s.Equal(uint32(0), monitor.Crtc)

	s.Nil(monitor.Activate())
	s.True(monitor.Activated)

	modes, busErr := monitor.ListModes()
	s.Nil(busErr)
	s.Equal("1280x720", modes[1].Name)
}

func TestUnitTestSuite(t *testing.T) {
	suite.Run(t, new(UnitTestSuite))
}
