// Package lunisolar converts Gregorian dates into Chinese sexagenary
// (ganzhi) calendar coordinates: the year, month, day, and hour pillars,
// plus solar-term lookups. All arithmetic is closed-form and deterministic;
// the supported window is [1900, 2100].
package lunisolar

import (
	"errors"
	"fmt"
	"time"
)

// Supported Gregorian year window. Outside it the solar-term approximation
// (and therefore the month and year pillars) is no longer trustworthy.
const (
	MinYear = 1900
	MaxYear = 2100
)

// ErrOutOfRange is returned for dates outside [MinYear, MaxYear].
var ErrOutOfRange = errors.New("lunisolar: date outside supported range")

// Stems are the 10 heavenly stems in cycle order.
var Stems = [10]string{"甲", "乙", "丙", "丁", "戊", "己", "庚", "辛", "壬", "癸"}

// Branches are the 12 earthly branches in cycle order.
var Branches = [12]string{"子", "丑", "寅", "卯", "辰", "巳", "午", "未", "申", "酉", "戌", "亥"}

// StemIndex returns the cycle position of a stem character, or -1.
func StemIndex(s string) int {
	for i, v := range Stems {
		if v == s {
			return i
		}
	}
	return -1
}

// BranchIndex returns the cycle position of a branch character, or -1.
func BranchIndex(b string) int {
	for i, v := range Branches {
		if v == b {
			return i
		}
	}
	return -1
}

// GanzhiName renders a sexagenary cycle index 0-59 as its two-character
// stem-branch name.
func GanzhiName(idx int) string {
	idx = ((idx % 60) + 60) % 60
	return Stems[idx%10] + Branches[idx%12]
}

// ganzhiIndex combines a stem index and a branch index into the 0-59 cycle
// position. Valid pairs share parity; invalid pairs still map somewhere but
// are never produced internally.
func ganzhiIndex(stem, branch int) int {
	return ((stem*6 - branch*5) % 60 + 60) % 60
}

// DateTime is a civil Gregorian timestamp at minute precision.
type DateTime struct {
	Year   int `json:"year"`
	Month  int `json:"month"`
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// Time returns the timestamp as a UTC time.Time. UTC is used purely as a
// fixed frame for day arithmetic; the engine has no wall-clock dependency.
func (dt DateTime) Time() time.Time {
	return time.Date(dt.Year, time.Month(dt.Month), dt.Day, dt.Hour, dt.Minute, 0, 0, time.UTC)
}

// RawChart holds the four pillars of a moment as sexagenary cycle indices.
type RawChart struct {
	YearIdx  int
	MonthIdx int
	DayIdx   int
	HourIdx  int
}

// Pillars returns the four cycle indices in year, month, day, hour order.
func (rc *RawChart) Pillars() [4]int {
	return [4]int{rc.YearIdx, rc.MonthIdx, rc.DayIdx, rc.HourIdx}
}

// Calendar is the solar-to-sexagenary conversion service. It is stateless;
// construct one at startup and share it freely.
type Calendar struct{}

// NewCalendar returns a Calendar covering [MinYear, MaxYear].
func NewCalendar() *Calendar { return &Calendar{} }

// epochDayIndex is the sexagenary cycle index of 1970-01-01 (辛巳). The
// anchor is cross-checked by 1949-10-01 being a 甲子 day.
const epochDayIndex = 17

// daysSinceEpoch counts civil days from 1970-01-01 to the given date.
func daysSinceEpoch(year, month, day int) int {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return int(t.Unix() / 86400)
}

// dayGanzhiIndex returns the day pillar cycle index for a civil date,
// before any late-子 adjustment.
func dayGanzhiIndex(year, month, day int) int {
	return ((daysSinceEpoch(year, month, day)+epochDayIndex)%60 + 60) % 60
}

// YearGanzhiIndex maps any integer year to its sexagenary index using the
// fixed 1984 = 甲子 reference. Defined for all years; callers needing full
// derived attributes outside [MinYear, MaxYear] must use proxy years.
func (c *Calendar) YearGanzhiIndex(year int) int {
	return ((year-1984)%60 + 60) % 60
}

// Chart derives the four raw pillars for a moment.
//
// Conventions (all traditional defaults):
//   - the year pillar switches at 立春, not January 1;
//   - the month pillar switches at each 节;
//   - 23:00 belongs to the next day's 子 hour, advancing the day pillar;
//   - the hour stem follows the 五鼠遁 rule off the (adjusted) day stem,
//     the month stem the 五虎遁 rule off the effective year stem.
func (c *Calendar) Chart(dt DateTime) (*RawChart, error) {
	if dt.Year < MinYear || dt.Year > MaxYear {
		return nil, fmt.Errorf("%w: year %d not in [%d, %d]", ErrOutOfRange, dt.Year, MinYear, MaxYear)
	}

	// Year pillar: effective year flips at 立春.
	lichun := TermDate(dt.Year, 2)
	effYear := dt.Year
	if dt.Month < lichun.Month || (dt.Month == lichun.Month && dt.Day < lichun.Day) {
		effYear--
	}
	yearIdx := c.YearGanzhiIndex(effYear)
	yearStem := yearIdx % 10

	// Month pillar: governed by the most recent 节.
	jie := PrevJie(dt.Year, dt.Month, dt.Day)
	monthBranch := monthBranchOfJie[jie.Index]
	monthsFromYin := ((monthBranch - 2) + 12) % 12
	monthStem := ((yearStem%5)*2 + 2 + monthsFromYin) % 10
	monthIdx := ganzhiIndex(monthStem, monthBranch)

	// Day pillar: 23:00 onward counts as the following day.
	dy, dm, dd := dt.Year, dt.Month, dt.Day
	if dt.Hour >= 23 {
		next := time.Date(dy, time.Month(dm), dd, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
		dy, dm, dd = next.Year(), int(next.Month()), next.Day()
	}
	dayIdx := dayGanzhiIndex(dy, dm, dd)
	dayStem := dayIdx % 10

	// Hour pillar: two civil hours per branch, 子 spanning 23:00-01:00.
	hourBranch := ((dt.Hour + 1) / 2) % 12
	hourStem := (dayStem*2 + hourBranch) % 10
	hourIdx := ganzhiIndex(hourStem, hourBranch)

	return &RawChart{
		YearIdx:  yearIdx,
		MonthIdx: monthIdx,
		DayIdx:   dayIdx,
		HourIdx:  hourIdx,
	}, nil
}

// PrevJieTerm returns the most recent 节 on or before the date.
func (c *Calendar) PrevJieTerm(dt DateTime) Term {
	return PrevJie(dt.Year, dt.Month, dt.Day)
}

// NextJieTerm returns the earliest 节 strictly after the date.
func (c *Calendar) NextJieTerm(dt DateTime) Term {
	return NextJie(dt.Year, dt.Month, dt.Day)
}

// SolarDateString formats the moment the way the reading report shows it.
func (c *Calendar) SolarDateString(dt DateTime) string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:00", dt.Year, dt.Month, dt.Day, dt.Hour, dt.Minute)
}

// GanzhiDateString renders a chart as the traditional four-pillar date.
func (c *Calendar) GanzhiDateString(rc *RawChart) string {
	return fmt.Sprintf("%s年 %s月 %s日 %s时",
		GanzhiName(rc.YearIdx), GanzhiName(rc.MonthIdx), GanzhiName(rc.DayIdx), GanzhiName(rc.HourIdx))
}
