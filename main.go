// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"flag"
	"os"
	"os/signal"
	"time"

	"github.com/davecgh/go-spew/spew"
	dbus "github.com/godbus/dbus/v5"
	"github.com/linuxdeepin/dde-kmsvideo/display"
	"github.com/linuxdeepin/dde-kmsvideo/eloop"
	"github.com/linuxdeepin/dde-kmsvideo/kms"
	"github.com/linuxdeepin/dde-kmsvideo/video"
	"github.com/linuxdeepin/dde-kmsvideo/video_card"
	"github.com/linuxdeepin/go-lib/dbusutil"
	"github.com/linuxdeepin/go-lib/log"
	"golang.org/x/sys/unix"
)

var logger = log.NewLogger("dde-kmsvideo")

var (
	flagDebug      = flag.Bool("d", false, "debug")
	flagConfig     = flag.String("c", "", "load config from this file only")
	flagCard       = flag.String("card", "", "device node, overrides the config")
	flagPoll       = flag.Int("poll", -1, "rescan interval in seconds, overrides the config")
	flagNoActivate = flag.Bool("no-activate", false, "do not activate displays automatically")
)

func doSetLogLevel(level log.Priority) {
	logger.SetLogLevel(level)
	display.SetLogLevel(level)
	kms.SetLogLevel(level)
	eloop.SetLogLevel(level)
}

func getConfig() (*Config, error) {
	files := []string{sysConfigFile, userConfigFile}
	if *flagConfig != "" {
		files = []string{*flagConfig}
	}
	cfg, err := loadConfig(files...)
	if err != nil {
		return nil, err
	}
	if *flagCard != "" {
		cfg.Card = *flagCard
	}
	if *flagPoll >= 0 {
		cfg.PollInterval = *flagPoll
	}
	if *flagNoActivate {
		cfg.AutoActivate = false
	}
	return cfg, nil
}

func getCardPath(cfg *Config) (string, error) {
	if video_card.IsCardChange() {
		logger.Info("graphics cards changed since last run")
	}
	if cfg.Card != "" {
		return cfg.Card, nil
	}
	return video_card.PrimaryCard()
}

func handlePageFlip(ev video.PageFlip) {
	logger.Debugf("page flip on crtc %d seq %d", ev.CrtcID, ev.Sequence)
}

func main() {
	flag.Parse()
	video.SetLogger(logger)
	video_card.SetLogger(logger)
	if *flagDebug || os.Getenv("DDE_DEBUG") != "" {
		doSetLogLevel(log.LevelDebug)
	}

	cfg, err := getConfig()
	if err != nil {
		logger.Fatal("failed to load config:", err)
	}
	if logger.GetLogLevel() == log.LevelDebug {
		logger.Debug("config:", spew.Sdump(cfg))
	}
	defaultDPMS, _ := cfg.dpms()

	cardPath, err := getCardPath(cfg)
	if err != nil {
		logger.Fatal("failed to find a graphics card:", err)
	}

	loop, err := eloop.New()
	if err != nil {
		logger.Fatal(err)
	}
	defer loop.Close()

	dev, err := video.Open(loop, kms.OpenCard, cardPath, handlePageFlip)
	if err != nil {
		logger.Fatal(err)
	}
	defer dev.Close()

	service, err := dbusutil.NewSystemService()
	if err != nil {
		logger.Fatal("failed to new system service:", err)
	}

	m, err := display.Start(service, loop, dev, display.Options{
		AutoActivate: cfg.AutoActivate,
		DefaultDPMS:  defaultDPMS,
	})
	if err != nil {
		logger.Fatal("failed to export display manager:", err)
	}
	defer m.Stop()

	cardWatcher, err := video_card.NewWatcher(func(path string, added bool) {
		if path != cardPath || added {
			return
		}
		logger.Warning("card removed:", path)
		loop.Post(loop.Exit)
	})
	if err != nil {
		logger.Warning("failed to watch cards:", err)
	} else {
		defer cardWatcher.Close()
	}

	sessionWatcher := startSession(service.Conn(), m, cfg)
	if sessionWatcher != nil {
		defer sessionWatcher.stop()
	}

	if cfg.PollInterval > 0 {
		go pollLoop(m, cfg.pollInterval())
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, unix.SIGINT, unix.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal", sig)
		loop.Post(loop.Exit)
	}()

	err = loop.Run()
	if err != nil {
		logger.Warning(err)
	}
}

// startSession wakes the device now or whenever our session becomes active.
// It must be called before the loop runs.
func startSession(sysBus *dbus.Conn, m *display.Manager, cfg *Config) *sessionWatcher {
	var watcher *sessionWatcher
	active := true
	if cfg.FollowSession {
		watcher = newSessionWatcher(sysBus, m)
		var err error
		active, err = watcher.start()
		if err != nil {
			logger.Warning("failed to follow login session:", err)
			active = true
		}
	}
	if active {
		go func() {
			err := m.SetActive(true)
			if err != nil {
				logger.Warning("failed to wake device:", err)
			}
		}()
	}
	return watcher
}

func pollLoop(m *display.Manager, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		err := m.Rescan()
		if err != nil {
			logger.Warning("rescan failed:", err)
		}
	}
}
