package bazi

import (
	"fmt"
	"math"

	"github.com/ZRnown/ai-fortune-telling/internal/lunisolar"
	"github.com/ZRnown/ai-fortune-telling/pkg/models"
)

// QiYun is the period-onset offset from birth: after Age years, Months
// months and Days days the first major period begins.
type QiYun struct {
	Age     int  `json:"age"`
	Months  int  `json:"months"`
	Days    int  `json:"days"`
	Forward bool `json:"forward"`
}

// qiYunAt converts the distance between birth and the nearest 节 into an
// onset age: 3 days of distance equal 1 year, 1 day equals 4 months.
// Forward projection measures to the next 节, backward to the previous one.
func (e *Engine) qiYunAt(dt lunisolar.DateTime, forward bool) QiYun {
	var target lunisolar.Term
	if forward {
		target = e.cal.NextJieTerm(dt)
	} else {
		target = e.cal.PrevJieTerm(dt)
	}
	diff := math.Abs(target.Time().Sub(dt.Time()).Hours() / 24)
	years := math.Floor(diff / 3)
	rem := diff - years*3
	return QiYun{
		Age:     int(years),
		Months:  int(math.Floor(rem * 4)),
		Days:    int(math.Floor(math.Mod(rem*4, 1) * 30)),
		Forward: forward,
	}
}

// yearInfo bundles the derived attributes borrowed from a concrete year's
// year pillar, for period projection.
type yearInfo struct {
	hidden   []models.HiddenStem
	nayin    string
	spirits  []string
	voidness string
}

// yearInfoAt resolves the year-pillar attributes of a concrete date.
// Hidden-stem ten-gods are computed against the supplied day stem; spirits
// against the date's own chart coordinates.
func (e *Engine) yearInfoAt(year, month, day int, dayStem string) (*yearInfo, error) {
	rc, err := e.cal.Chart(lunisolar.DateTime{Year: year, Month: month, Day: day})
	if err != nil {
		return nil, err
	}
	refs := refsOf(rc)
	branch := lunisolar.Branches[rc.YearIdx%12]
	return &yearInfo{
		hidden:   hiddenWithTenGods(branch, dayStem),
		nayin:    NayinAt(rc.YearIdx),
		spirits:  spiritsFor(refs.dayStem, refs.yearBranch, refs.dayBranch, branch),
		voidness: VoidBranches(rc.YearIdx),
	}, nil
}

// degradedYearInfo is the last-resort tier when neither the true year nor a
// proxy year can be converted: only the branch's main hidden stem survives.
func degradedYearInfo(gzIdx int, branch, dayStem string) *yearInfo {
	info := &yearInfo{nayin: NayinAt(gzIdx)}
	if main := MainStemOf(branch); main != "" {
		info.hidden = []models.HiddenStem{{Char: main, TenGod: TenGod(dayStem, main)}}
	}
	return info
}

// periodYearInfo resolves year-pillar attributes for a possibly
// out-of-window year, walking the fallback chain: true year, then a proxy
// year with the same sexagenary index, then the degraded tier.
func (e *Engine) periodYearInfo(trueYear, month, day, gzIdx int, branch, dayStem string) *yearInfo {
	if info, err := e.yearInfoAt(trueYear, month, day, dayStem); err == nil {
		return info
	}
	if proxy, ok := proxyYearForGanzhi(trueYear); ok {
		if info, err := e.yearInfoAt(proxy, month, day, dayStem); err == nil {
			return info
		}
	}
	return degradedYearInfo(gzIdx, branch, dayStem)
}

// CalculateDaYun projects count ten-year major periods from a birth chart.
//
// Direction follows the traditional rule (male+yang-year or female+yin-year
// runs forward), the onset age comes from qiYunAt, and each period steps one
// sexagenary term from the month pillar. Displayed start years are the true
// start year minus one; age labels and all ganzhi-derived attributes use the
// true, unshifted year.
func (e *Engine) CalculateDaYun(input models.BirthInput, res *models.BaziResult, count int) []models.DaYunItem {
	if count <= 0 {
		count = 10
	}
	gender := input.Gender.Normalize()
	yearStem := res.Pillars.Year.Stem
	monthIdx := IndexOfGanzhi(res.Pillars.Month.Ganzhi())
	if monthIdx < 0 {
		return nil
	}

	yangYear := IsYangStem(yearStem)
	forward := (gender == models.Male && yangYear) || (gender == models.Female && !yangYear)

	dt := lunisolar.DateTime{
		Year: input.Year, Month: input.Month, Day: input.Day,
		Hour: input.Hour, Minute: input.Minute,
	}
	startAge := e.qiYunAt(dt, forward).Age
	dayStem := res.DayStem()

	items := make([]models.DaYunItem, 0, count)
	for i := 0; i < count; i++ {
		offset := i + 1
		if !forward {
			offset = -offset
		}
		gzIdx := ((monthIdx+offset)%60 + 60) % 60
		stem := lunisolar.Stems[gzIdx%10]
		branch := lunisolar.Branches[gzIdx%12]

		age := startAge + 1 + i*10
		trueStartYear := input.Year + age
		info := e.periodYearInfo(trueStartYear, input.Month, input.Day, gzIdx, branch, dayStem)
		nayin := info.nayin
		if nayin == "" {
			nayin = NayinAt(gzIdx)
		}

		displayYear := trueStartYear - 1
		items = append(items, models.DaYunItem{
			Year:      displayYear,
			Age:       fmt.Sprintf("%d岁", age),
			Stem:      stem,
			StemTG:    TenGod(dayStem, stem),
			Branch:    branch,
			BranchTG:  TenGod(dayStem, MainStemOf(branch)),
			StartYear: displayYear,
			EndYear:   displayYear + 9,
			Hidden:    info.hidden,
			Fortune:   LifeStage(dayStem, branch),
			SelfSit:   LifeStage(stem, branch),
			Voidness:  info.voidness,
			Nayin:     nayin,
			Spirits:   info.spirits,
		})
	}
	return items
}
