package bazi

import (
	"github.com/ZRnown/ai-fortune-telling/internal/lunisolar"
	"github.com/ZRnown/ai-fortune-telling/pkg/models"
)

// chartRefs are the chart-wide reference coordinates every pillar's derived
// attributes key off: the day stem for ten-gods and fortune, the year and
// day branches for trine spirits.
type chartRefs struct {
	dayStem    string
	yearBranch string
	dayBranch  string
}

func refsOf(rc *lunisolar.RawChart) chartRefs {
	return chartRefs{
		dayStem:    lunisolar.Stems[rc.DayIdx%10],
		yearBranch: lunisolar.Branches[rc.YearIdx%12],
		dayBranch:  lunisolar.Branches[rc.DayIdx%12],
	}
}

// hiddenWithTenGods resolves a branch's hidden stems and their ten-gods
// relative to the given day stem.
func hiddenWithTenGods(branch, dayStem string) []models.HiddenStem {
	stems := HiddenStemsOf(branch)
	out := make([]models.HiddenStem, 0, len(stems))
	for _, s := range stems {
		out = append(out, models.HiddenStem{Char: s, TenGod: TenGod(dayStem, s)})
	}
	return out
}

// buildPillar populates one pillar from its cycle index. The day pillar's
// own stem carries no ten-god (a stem has none relative to itself).
func buildPillar(idx int, refs chartRefs, isDay bool) models.Pillar {
	stem := lunisolar.Stems[idx%10]
	branch := lunisolar.Branches[idx%12]
	p := models.Pillar{
		Stem:     stem,
		Branch:   branch,
		Hidden:   hiddenWithTenGods(branch, refs.dayStem),
		Nayin:    NayinAt(idx),
		Spirits:  spiritsFor(refs.dayStem, refs.yearBranch, refs.dayBranch, branch),
		Fortune:  LifeStage(refs.dayStem, branch),
		SelfSit:  LifeStage(stem, branch),
		Voidness: VoidBranches(idx),
	}
	if !isDay {
		p.StemTenGod = TenGod(refs.dayStem, stem)
	}
	return p
}
