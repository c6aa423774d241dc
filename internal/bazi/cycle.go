// Package bazi implements the Four-Pillars computation engine: sexagenary
// cycle indexing, ten-god and twelve-stage resolution, chart building with
// element/ten-god percentage aggregation, major-period (大运) and annual
// (流年) projection, and the inverse date search.
//
// All entry points are pure functions of their inputs plus the read-only
// tables in this package; there is no shared mutable state.
package bazi

import (
	"github.com/ZRnown/ai-fortune-telling/internal/lunisolar"
)

// SixtyJiazi is the fixed 60-term sexagenary cycle, 甲子 first.
var SixtyJiazi [60]string

func init() {
	for i := range SixtyJiazi {
		SixtyJiazi[i] = lunisolar.GanzhiName(i)
	}
}

// GanzhiAt returns the cycle term at index 0-59 (indices wrap).
func GanzhiAt(idx int) string {
	return SixtyJiazi[((idx%60)+60)%60]
}

// IndexOfGanzhi returns the cycle position of a two-character ganzhi, or -1
// for combinations outside the 60 valid terms.
func IndexOfGanzhi(gz string) int {
	for i, v := range SixtyJiazi {
		if v == gz {
			return i
		}
	}
	return -1
}

// nayin60 maps each cycle index to its sound-element label; consecutive
// pairs share one label.
var nayin60 = [60]string{
	"海中金", "海中金", "炉中火", "炉中火", "大林木", "大林木", "路旁土", "路旁土", "剑锋金", "剑锋金", "山头火", "山头火",
	"涧下水", "涧下水", "城头土", "城头土", "白蜡金", "白蜡金", "杨柳木", "杨柳木", "井泉水", "井泉水", "屋上土", "屋上土",
	"霹雳火", "霹雳火", "松柏木", "松柏木", "长流水", "长流水", "砂中金", "砂中金", "山下火", "山下火", "平地木", "平地木",
	"壁上土", "壁上土", "金箔金", "金箔金", "覆灯火", "覆灯火", "天河水", "天河水", "大驿土", "大驿土", "钗钏金", "钗钏金",
	"桑柘木", "桑柘木", "大溪水", "大溪水", "砂中土", "砂中土", "天上火", "天上火", "石榴木", "石榴木", "大海水", "大海水",
}

// NayinOf returns the sound-element label of a ganzhi, or "" if the pair is
// not one of the 60 valid terms.
func NayinOf(gz string) string {
	idx := IndexOfGanzhi(gz)
	if idx < 0 {
		return ""
	}
	return nayin60[idx]
}

// NayinAt returns the sound-element label for a cycle index.
func NayinAt(idx int) string {
	return nayin60[((idx%60)+60)%60]
}

// GanzhiOfYear maps any integer year to its ganzhi, 1984 = 甲子.
func GanzhiOfYear(year int) string {
	return GanzhiAt((year-1984)%60 + 60)
}

// proxyYearForGanzhi finds a year inside the calendar's supported window
// sharing the target year's sexagenary index, so derived-attribute lookups
// still succeed for out-of-window years.
func proxyYearForGanzhi(year int) (int, bool) {
	idx := ((year-1984)%60 + 60) % 60
	for k := -5; k <= 5; k++ {
		y := 1984 + idx + 60*k
		if y >= lunisolar.MinYear && y <= lunisolar.MaxYear {
			return y, true
		}
	}
	return 0, false
}
