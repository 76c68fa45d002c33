// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/linuxdeepin/dde-kmsvideo/video"
	"github.com/linuxdeepin/go-lib/xdg/basedir"
	"golang.org/x/xerrors"
)

const sysConfigFile = "/etc/deepin/dde-kmsvideo.json"

var userConfigFile = filepath.Join(basedir.GetUserConfigDir(), "deepin/dde-kmsvideo/config.json")

type Config struct {
	// Card is the device node, empty means the primary card.
	Card string
	// PollInterval is the rescan period in seconds, 0 disables polling.
	PollInterval int
	AutoActivate bool
	// DefaultDPMS is applied after activation, empty leaves it alone.
	DefaultDPMS string
	// FollowSession wakes and sleeps with the login session.
	FollowSession bool
}

func defaultConfig() *Config {
	return &Config{
		AutoActivate:  true,
		FollowSession: true,
	}
}

// loadConfig overlays the given files, in order, on the defaults. Missing
// files are skipped.
func loadConfig(files ...string) (*Config, error) {
	cfg := defaultConfig()
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, xerrors.Errorf("parse %s: %w", file, err)
		}
		logger.Debug("load config from", file)
	}

	err := cfg.check()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) check() error {
	if cfg.PollInterval < 0 {
		return xerrors.Errorf("invalid PollInterval %d: %w", cfg.PollInterval, video.ErrInvalidArgument)
	}
	_, err := cfg.dpms()
	return err
}

func (cfg *Config) dpms() (video.DPMS, error) {
	if cfg.DefaultDPMS == "" {
		return video.DPMSUnknown, nil
	}
	return video.ParseDPMS(cfg.DefaultDPMS)
}

func (cfg *Config) pollInterval() time.Duration {
	return time.Duration(cfg.PollInterval) * time.Second
}
