// Package models defines the core data structures shared by the BaZi
// engine, the HTTP API, and the CLI.
package models

import "fmt"

// Gender selects the direction rule for major-period projection.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// Normalize maps the accepted spellings (including 男/女) onto Male/Female.
// Anything unrecognized defaults to Male, matching the lenient behavior of
// the reading form.
func (g Gender) Normalize() Gender {
	switch g {
	case Female, "女", "f", "F":
		return Female
	default:
		return Male
	}
}

// BirthInput is a solar (Gregorian) birth moment.
type BirthInput struct {
	Year   int    `json:"year"`
	Month  int    `json:"month"`  // 1-12
	Day    int    `json:"day"`    // 1-31
	Hour   int    `json:"hour"`   // 0-23
	Minute int    `json:"minute"` // 0-59
	Gender Gender `json:"gender"`
}

// Validate checks field ranges. The year range is checked later by the
// calendar, which knows its own supported window.
func (b BirthInput) Validate() error {
	if b.Month < 1 || b.Month > 12 {
		return fmt.Errorf("month %d out of range 1-12", b.Month)
	}
	if b.Day < 1 || b.Day > 31 {
		return fmt.Errorf("day %d out of range 1-31", b.Day)
	}
	if b.Hour < 0 || b.Hour > 23 {
		return fmt.Errorf("hour %d out of range 0-23", b.Hour)
	}
	if b.Minute < 0 || b.Minute > 59 {
		return fmt.Errorf("minute %d out of range 0-59", b.Minute)
	}
	return nil
}

// HiddenStem is one stem hidden inside an earthly branch, with its ten-god
// relationship to the day stem.
type HiddenStem struct {
	Char   string `json:"char"`
	TenGod string `json:"ten_god,omitempty"`
}

// Pillar is one of the four pillars of a chart: a stem-branch pair plus all
// derived attributes. Immutable once computed.
type Pillar struct {
	Stem       string       `json:"stem"`
	StemTenGod string       `json:"stem_ten_god,omitempty"` // empty for the day pillar itself
	Branch     string       `json:"branch"`
	Hidden     []HiddenStem `json:"hidden"`
	Nayin      string       `json:"nayin"`
	Spirits    []string     `json:"spirits"`
	Fortune    string       `json:"fortune"`  // twelve-stage position keyed off the day stem
	SelfSit    string       `json:"self_sit"` // twelve-stage position keyed off this pillar's own stem
	Voidness   string       `json:"voidness"` // void (旬空) branches of this pillar's decade
}

// Ganzhi returns the stem+branch pair as a single string.
func (p Pillar) Ganzhi() string { return p.Stem + p.Branch }

// Share is one bucket of a percentage breakdown.
type Share struct {
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
}

// BaziResult is a complete four-pillar reading.
type BaziResult struct {
	SolarDate string `json:"solar_date"`
	LunarDate string `json:"lunar_date"`
	Voidness  string `json:"voidness"` // day pillar's void branches
	Pillars   struct {
		Year  Pillar `json:"year"`
		Month Pillar `json:"month"`
		Day   Pillar `json:"day"`
		Hour  Pillar `json:"hour"`
	} `json:"pillars"`
	Elements []Share `json:"elements"`
	TenGods  []Share `json:"ten_gods"`
}

// DayStem returns the reference stem for all ten-god computations.
func (r *BaziResult) DayStem() string { return r.Pillars.Day.Stem }

// DaYunItem is one ten-year major period.
type DaYunItem struct {
	Year      int          `json:"year"` // displayed start year (true year minus one)
	Age       string       `json:"age"`  // e.g., "7岁"
	Stem      string       `json:"stem"`
	StemTG    string       `json:"stem_tg"`
	Branch    string       `json:"branch"`
	BranchTG  string       `json:"branch_tg"`
	StartYear int          `json:"start_year"`
	EndYear   int          `json:"end_year"`
	Hidden    []HiddenStem `json:"hidden"`
	Fortune   string       `json:"fortune"`
	SelfSit   string       `json:"self_sit"`
	Voidness  string       `json:"voidness"`
	Nayin     string       `json:"nayin"`
	Spirits   []string     `json:"spirits"`
}

// LiuNianItem is one annual period.
type LiuNianItem struct {
	Year     int          `json:"year"` // displayed year
	Stem     string       `json:"stem"`
	StemTG   string       `json:"stem_tg"`
	Branch   string       `json:"branch"`
	BranchTG string       `json:"branch_tg"`
	Ganzhi   string       `json:"ganzhi"`
	Hidden   []HiddenStem `json:"hidden"`
	Fortune  string       `json:"fortune"`
	SelfSit  string       `json:"self_sit"`
	Voidness string       `json:"voidness"`
	Nayin    string       `json:"nayin"`
	Spirits  []string     `json:"spirits"`
}

// PillarSpec optionally constrains one pillar of an inversion query.
// Empty fields mean "don't care".
type PillarSpec struct {
	Stem   string `json:"stem,omitempty"`
	Branch string `json:"branch,omitempty"`
}

// Empty reports whether the spec constrains nothing.
func (p PillarSpec) Empty() bool { return p.Stem == "" && p.Branch == "" }

// PillarsInput is a partial four-pillar specification for the inversion
// search. Not guaranteed satisfiable.
type PillarsInput struct {
	Year  PillarSpec `json:"year"`
	Month PillarSpec `json:"month"`
	Day   PillarSpec `json:"day"`
	Hour  PillarSpec `json:"hour"`
}

// SearchOptions bounds the inversion search grid.
type SearchOptions struct {
	YearStart  int `json:"year_start,omitempty"`
	YearEnd    int `json:"year_end,omitempty"`
	MinuteStep int `json:"minute_step,omitempty"` // default 60: only :00 is checked
}

// FoundDate is a solar timestamp returned by the inversion search.
type FoundDate struct {
	Year   int `json:"year"`
	Month  int `json:"month"`
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

func (d FoundDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d", d.Year, d.Month, d.Day, d.Hour, d.Minute)
}
