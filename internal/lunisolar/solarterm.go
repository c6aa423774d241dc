package lunisolar

import (
	"fmt"
	"math"
	"time"
)

// TermNames lists the 24 solar terms in calendar order starting from 小寒
// (early January). Even indices are the 节 (jie), the month-boundary terms;
// odd indices are the 气 (qi), the mid-month terms.
var TermNames = [24]string{
	"小寒", "大寒", "立春", "雨水", "惊蛰", "春分",
	"清明", "谷雨", "立夏", "小满", "芒种", "夏至",
	"小暑", "大暑", "立秋", "处暑", "白露", "秋分",
	"寒露", "霜降", "立冬", "小雪", "大雪", "冬至",
}

// Century coefficients for the standard solar-term day approximation
// day = floor(Y*0.2422 + C) - leaps, where Y is the two-digit year.
// termC20 covers 1900-1999, termC21 covers 2000-2100.
var termC20 = [24]float64{
	6.11, 20.84, 4.6295, 19.4599, 6.3826, 21.4155,
	5.59, 20.888, 6.318, 21.86, 6.5, 22.20,
	7.928, 23.65, 8.35, 23.95, 8.44, 23.822,
	9.098, 24.218, 8.218, 23.08, 7.9, 22.60,
}

var termC21 = [24]float64{
	5.4055, 20.12, 3.87, 18.73, 5.63, 20.646,
	4.81, 20.1, 5.52, 21.04, 5.678, 21.37,
	7.108, 22.83, 7.5, 23.13, 7.646, 23.042,
	8.318, 23.438, 7.438, 22.36, 7.18, 21.94,
}

// termCorrections holds the published per-year exceptions to the
// approximation formula, keyed by year*100+termIndex.
// The 1900 entries compensate the century formula at its lower edge: the
// coefficients are calibrated for 1901-2000, and the Jan/Feb leap count
// floorDiv(y-1, 4) comes out -1 for y=0, landing those terms a day late.
var termCorrections = map[int]int{
	1900*100 + 0:  -1, // 小寒
	1982*100 + 0:  +1,
	2019*100 + 0:  -1,
	1900*100 + 1:  -1, // 大寒
	2082*100 + 1:  +1,
	1900*100 + 2:  -1, // 立春
	1900*100 + 3:  -1, // 雨水
	2026*100 + 3:  -1,
	2084*100 + 5:  +1, // 春分
	1911*100 + 8:  +1, // 立夏
	2008*100 + 9:  +1, // 小满
	1902*100 + 10: +1, // 芒种
	1928*100 + 11: +1, // 夏至
	1925*100 + 12: +1, // 小暑
	2016*100 + 12: +1,
	1922*100 + 13: +1, // 大暑
	2002*100 + 14: +1, // 立秋
	1927*100 + 16: +1, // 白露
	1942*100 + 17: +1, // 秋分
	2089*100 + 19: +1, // 霜降
	2089*100 + 20: +1, // 立冬
	1978*100 + 21: +1, // 小雪
	1954*100 + 22: +1, // 大雪
	1918*100 + 23: -1, // 冬至
	2021*100 + 23: -1,
}

// Term is one solar term occurrence in a specific calendar year.
type Term struct {
	Index int    `json:"index"` // 0-23, 0 = 小寒
	Name  string `json:"name"`
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Day   int    `json:"day"`
}

// Time returns the term date at local midnight (UTC-normalized for
// deterministic arithmetic).
func (t Term) Time() time.Time {
	return time.Date(t.Year, time.Month(t.Month), t.Day, 0, 0, 0, 0, time.UTC)
}

func (t Term) String() string {
	return fmt.Sprintf("%s %04d-%02d-%02d", t.Name, t.Year, t.Month, t.Day)
}

// IsJie reports whether the term is a month boundary (节).
func (t Term) IsJie() bool { return t.Index%2 == 0 }

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// TermDate computes the calendar date of the idx-th solar term of the given
// year. The approximation is exact for [1900,2100] once the published
// corrections are applied; a year or two of extrapolation beyond that window
// stays within a day and is good enough for month-boundary lookups at the
// edges of the range.
func TermDate(year, idx int) Term {
	c, y := termC21, year-2000
	if year < 2000 {
		c, y = termC20, year-1900
	}
	day := int(math.Floor(float64(y)*0.2422 + c[idx]))
	// Leap-day compensation: January/February terms count leap years up to
	// the previous year, the rest up to the current year.
	if idx <= 3 {
		day -= floorDiv(y-1, 4)
	} else {
		day -= floorDiv(y, 4)
	}
	day += termCorrections[year*100+idx]
	return Term{
		Index: idx,
		Name:  TermNames[idx],
		Year:  year,
		Month: idx/2 + 1,
		Day:   day,
	}
}

// jieOfMonth maps a calendar month 1-12 to the index of the 节 that falls in
// it (e.g. February -> 立春).
func jieOfMonth(month int) int { return (month - 1) * 2 }

// monthBranchOfJie maps a 节 index to the branch of the month it opens:
// 立春 opens the 寅 month, 大雪 opens the 子 month, 小寒 the 丑 month.
var monthBranchOfJie = map[int]int{
	0: 1, 2: 2, 4: 3, 6: 4, 8: 5, 10: 6,
	12: 7, 14: 8, 16: 9, 18: 10, 20: 11, 22: 0,
}

// PrevJie returns the most recent 节 on or before the given date.
func PrevJie(year, month, day int) Term {
	t := TermDate(year, jieOfMonth(month))
	if day >= t.Day {
		return t
	}
	// Fall back to the previous month's 节.
	pm, py := month-1, year
	if pm == 0 {
		pm, py = 12, year-1
	}
	return TermDate(py, jieOfMonth(pm))
}

// NextJie returns the earliest 节 strictly after the given date.
func NextJie(year, month, day int) Term {
	t := TermDate(year, jieOfMonth(month))
	if day < t.Day {
		return t
	}
	nm, ny := month+1, year
	if nm == 13 {
		nm, ny = 1, year+1
	}
	return TermDate(ny, jieOfMonth(nm))
}
