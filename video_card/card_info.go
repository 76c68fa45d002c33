// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package video_card

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/linuxdeepin/go-lib/xdg/basedir"
)

// CardInfo the display/graphics card id
type CardInfo struct {
	Name     string
	VendorID string
	DevID    string
	BootVGA  bool
}

// CardInfos the card id list
type CardInfos []*CardInfo

var (
	sysClassDRM   = "/sys/class/drm"
	devDRI        = "/dev/dri"
	cardInfosPath = filepath.Join(basedir.GetUserConfigDir(), "deepin/dde-kmsvideo/cards.json")
)

var cardReg = regexp.MustCompile(`^card(\d+)$`)

func readSysID(filename string) string {
	data, err := os.ReadFile(filename)
	if err != nil {
		return ""
	}
	id := strings.ToLower(strings.TrimSpace(string(data)))
	return strings.TrimPrefix(id, "0x")
}

func getCardInfos() (CardInfos, error) {
	entries, err := os.ReadDir(sysClassDRM)
	if err != nil {
		return nil, err
	}

	var infos CardInfos
	for _, entry := range entries {
		// connector entries such as card0-HDMI-A-1 are skipped
		if !cardReg.MatchString(entry.Name()) {
			continue
		}
		devDir := filepath.Join(sysClassDRM, entry.Name(), "device")
		info := CardInfo{
			Name:     entry.Name(),
			VendorID: readSysID(filepath.Join(devDir, "vendor")),
			DevID:    readSysID(filepath.Join(devDir, "device")),
			BootVGA:  readSysID(filepath.Join(devDir, "boot_vga")) == "1",
		}
		infos = append(infos, &info)
	}

	sort.Slice(infos, func(i, j int) bool {
		return cardIndex(infos[i].Name) < cardIndex(infos[j].Name)
	})
	return infos, nil
}

func cardIndex(name string) int {
	match := cardReg.FindStringSubmatch(name)
	if match == nil {
		return -1
	}
	idx, _ := strconv.Atoi(match[1])
	return idx
}

// DevicePath returns the device node of the card.
func (info *CardInfo) DevicePath() string {
	return filepath.Join(devDRI, info.Name)
}

// PrimaryCard returns the device node of the card the firmware booted with,
// or of the lowest numbered card if no card is marked.
func PrimaryCard() (string, error) {
	infos, err := getCardInfos()
	if err != nil {
		return "", err
	}
	if len(infos) == 0 {
		return "", os.ErrNotExist
	}
	for _, info := range infos {
		if info.BootVGA {
			return info.DevicePath(), nil
		}
	}
	return infos[0].DevicePath(), nil
}

func loadCardInfosFromFile(filename string) (CardInfos, error) {
	contents, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var cardInfos CardInfos
	err = json.Unmarshal(contents, &cardInfos)
	if err != nil {
		return nil, err
	}
	return cardInfos, nil
}

func doSaveCardInfos(filename string, cardInfos CardInfos) error {
	err := os.MkdirAll(filepath.Dir(filename), 0755)
	if err != nil {
		return err
	}
	data, err := json.Marshal(cardInfos)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}

// IsCardChange compares the cards present now with the ones seen on the
// previous run and records the current set.
func IsCardChange() (change bool) {
	actualCardInfos, err := getCardInfos()
	if err != nil {
		logger.Warning("failed to get card info:", err)
		return true
	}

	cacheCardInfos, err := loadCardInfosFromFile(cardInfosPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warning("failed to load card info from config file:", err)
		}
		change = true
	} else {
		// load cacheCardInfos ok
		if !reflect.DeepEqual(actualCardInfos, cacheCardInfos) {
			// card change
			change = true
		}
	}

	if change {
		err = doSaveCardInfos(cardInfosPath, actualCardInfos)
		if err != nil {
			logger.Warning("failed to save card infos:", err)
		}
	}
	return change
}
