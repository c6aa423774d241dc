package bazi

import (
	"github.com/ZRnown/ai-fortune-telling/internal/lunisolar"
	"github.com/ZRnown/ai-fortune-telling/pkg/models"
)

// CalculateLiuNian computes count consecutive annual periods starting at the
// displayed year startYear. The year used for ganzhi computation is the
// displayed year plus one, the inverse of the major-period display shift, so
// both tables label the same ganzhi with the same calendar year.
//
// dayStemForTG is the reference stem for ten-god resolution when the year
// itself cannot supply one; inside the supported window the Jan-1 chart's
// own day stem takes precedence.
func (e *Engine) CalculateLiuNian(birthYear, startYear, count int, dayStemForTG string) []models.LiuNianItem {
	if count <= 0 {
		count = 10
	}
	_ = birthYear // kept for call-site symmetry with the major-period API

	items := make([]models.LiuNianItem, 0, count)
	for i := 0; i < count; i++ {
		displayYear := startYear + i
		trueYear := displayYear + 1
		if rc, err := e.cal.Chart(lunisolar.DateTime{Year: trueYear, Month: 1, Day: 1}); err == nil {
			items = append(items, e.liuNianInRange(displayYear, rc))
			continue
		}
		items = append(items, e.liuNianOutOfRange(displayYear, trueYear, dayStemForTG))
	}
	return items
}

// liuNianInRange resolves one annual period from the Jan-1 chart of the
// true year. January 1st precedes 立春, so the chart's year pillar carries
// the sexagenary year matching the displayed label. The chart's own day
// stem is the ten-god reference on this path.
func (e *Engine) liuNianInRange(displayYear int, rc *lunisolar.RawChart) models.LiuNianItem {
	gzIdx := rc.YearIdx
	stem := lunisolar.Stems[gzIdx%10]
	branch := lunisolar.Branches[gzIdx%12]
	dayStem := lunisolar.Stems[rc.DayIdx%10]

	refs := refsOf(rc)
	return models.LiuNianItem{
		Year:     displayYear,
		Stem:     stem,
		StemTG:   TenGod(dayStem, stem),
		Branch:   branch,
		BranchTG: TenGod(dayStem, MainStemOf(branch)),
		Ganzhi:   stem + branch,
		Hidden:   hiddenWithTenGods(branch, dayStem),
		Fortune:  LifeStage(dayStem, branch),
		SelfSit:  LifeStage(stem, branch),
		Voidness: VoidBranches(gzIdx),
		Nayin:    NayinAt(gzIdx),
		Spirits:  spiritsFor(refs.dayStem, refs.yearBranch, refs.dayBranch, branch),
	}
}

// liuNianOutOfRange falls back to pure modular arithmetic for the ganzhi and
// the proxy-year chain for derived attributes.
func (e *Engine) liuNianOutOfRange(displayYear, trueYear int, dayStemForTG string) models.LiuNianItem {
	gzIdx := ((trueYear-1984)%60 + 60) % 60
	stem := lunisolar.Stems[gzIdx%10]
	branch := lunisolar.Branches[gzIdx%12]

	info := e.periodYearInfo(trueYear, 1, 1, gzIdx, branch, dayStemForTG)
	nayin := info.nayin
	if nayin == "" {
		nayin = NayinAt(gzIdx)
	}
	return models.LiuNianItem{
		Year:     displayYear,
		Stem:     stem,
		StemTG:   TenGod(dayStemForTG, stem),
		Branch:   branch,
		BranchTG: TenGod(dayStemForTG, MainStemOf(branch)),
		Ganzhi:   stem + branch,
		Hidden:   info.hidden,
		Fortune:  LifeStage(dayStemForTG, branch),
		SelfSit:  LifeStage(stem, branch),
		Voidness: info.voidness,
		Nayin:    nayin,
		Spirits:  info.spirits,
	}
}
