// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package video

// findCrtc returns the lowest-index CRTC the encoder can drive that is not
// claimed yet. Callers try encoders in order and keep the first hit; there is
// no backtracking across encoders.
func findCrtc(res *Resources, enc *Encoder, claimed func(crtcID uint32) bool) (uint32, bool) {
	for i, crtcID := range res.Crtcs {
		if i >= 32 {
			break
		}
		if enc.PossibleCrtcs&(1<<uint(i)) == 0 {
			continue
		}
		if claimed(crtcID) {
			continue
		}
		return crtcID, true
	}
	return 0, false
}
