// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/linuxdeepin/dde-kmsvideo/eloop"
	"github.com/linuxdeepin/dde-kmsvideo/kms"
	"github.com/linuxdeepin/dde-kmsvideo/video"
	"github.com/linuxdeepin/dde-kmsvideo/video_card"
	"github.com/linuxdeepin/go-lib/log"
	"golang.org/x/xerrors"
)

var logger = log.NewLogger("kmsvideo-probe")

var (
	optCard     = flag.String("card", "", "device node, default is the primary card")
	optActivate = flag.Bool("activate", false, "activate every display")
	optDPMS     = flag.String("dpms", "", "set DPMS of every display: on, standby, suspend or off")
	optWait     = flag.Duration("wait", 0, "dispatch device events for this long before exiting")
	optDebug    = flag.Bool("d", false, "debug")
)

func main() {
	flag.Parse()
	if *optDebug {
		logger.SetLogLevel(log.LevelDebug)
		kms.SetLogLevel(log.LevelDebug)
	}
	video.SetLogger(logger)

	err := probe()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func probe() error {
	var dpms video.DPMS
	if *optDPMS != "" {
		var err error
		dpms, err = video.ParseDPMS(*optDPMS)
		if err != nil {
			return err
		}
	}

	path := *optCard
	if path == "" {
		var err error
		path, err = video_card.PrimaryCard()
		if err != nil {
			return xerrors.Errorf("failed to find a graphics card: %w", err)
		}
	}

	loop, err := eloop.New()
	if err != nil {
		return err
	}
	defer loop.Close()

	dev, err := video.Open(loop, kms.OpenCard, path, func(ev video.PageFlip) {
		fmt.Printf("page flip: crtc %d seq %d at %d.%06d\n", ev.CrtcID, ev.Sequence, ev.Sec, ev.Usec)
	})
	if err != nil {
		return err
	}
	defer dev.Close()

	err = dev.Wake()
	if err != nil {
		return xerrors.Errorf("failed to wake %s: %w", path, err)
	}
	defer dev.Sleep()

	fmt.Println("card:", dev.Path())
	for _, disp := range dev.Displays() {
		if *optActivate {
			err = disp.Activate()
			if err != nil {
				logger.Warningf("failed to activate %v: %v", disp, err)
			}
		}
		if dpms != video.DPMSUnknown {
			err = disp.SetDPMS(dpms)
			if err != nil {
				logger.Warningf("failed to set DPMS of %v: %v", disp, err)
			}
		}
		printDisplay(disp)
	}

	if *optWait > 0 {
		deadline := time.Now().Add(*optWait)
		for {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				break
			}
			err = loop.Dispatch(remaining)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func printDisplay(disp *video.Display) {
	fmt.Printf("%s (connector %d)\n", disp.Name(), disp.ConnectorID())
	if info := disp.EDID(); info != nil {
		fmt.Printf("  monitor: %s %s serial %q\n", info.Manufacturer, info.Model, info.Serial)
	}
	fmt.Printf("  dpms: %v\n", disp.DPMS())
	if disp.IsActivated() {
		fmt.Printf("  crtc: %d online: %v\n", disp.CrtcID(), disp.IsOnline())
	}

	best := disp.DefaultMode()
	for _, mode := range disp.Modes() {
		mark := " "
		if mode == best {
			mark = "*"
		}
		fmt.Printf("  %s %-12s %4dx%-4d @ %dHz\n", mark, mode.Name(), mode.Width(), mode.Height(), mode.Refresh())
	}
}
