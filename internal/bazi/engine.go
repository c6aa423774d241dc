package bazi

import (
	"fmt"
	"math"
	"sort"

	"github.com/ZRnown/ai-fortune-telling/internal/lunisolar"
	"github.com/ZRnown/ai-fortune-telling/pkg/models"
)

// Engine is the Four-Pillars computation facade. The calendar collaborator
// is injected once at construction and never mutated.
type Engine struct {
	cal *lunisolar.Calendar
}

// NewEngine creates an engine backed by the given calendar.
func NewEngine(cal *lunisolar.Calendar) *Engine {
	return &Engine{cal: cal}
}

// ComputeBazi converts a solar birth moment into a complete four-pillar
// reading. Output is a pure function of the input: same input, byte-equal
// result.
func (e *Engine) ComputeBazi(input models.BirthInput) (*models.BaziResult, error) {
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("invalid birth input: %w", err)
	}
	dt := lunisolar.DateTime{
		Year: input.Year, Month: input.Month, Day: input.Day,
		Hour: input.Hour, Minute: input.Minute,
	}
	rc, err := e.cal.Chart(dt)
	if err != nil {
		return nil, err
	}

	refs := refsOf(rc)
	res := &models.BaziResult{
		SolarDate: e.cal.SolarDateString(dt),
		LunarDate: e.cal.GanzhiDateString(rc),
	}
	res.Pillars.Year = buildPillar(rc.YearIdx, refs, false)
	res.Pillars.Month = buildPillar(rc.MonthIdx, refs, false)
	res.Pillars.Day = buildPillar(rc.DayIdx, refs, true)
	res.Pillars.Hour = buildPillar(rc.HourIdx, refs, false)
	res.Voidness = res.Pillars.Day.Voidness

	pillars := []models.Pillar{res.Pillars.Year, res.Pillars.Month, res.Pillars.Day, res.Pillars.Hour}
	res.Elements = elementShares(pillars)
	res.TenGods = tenGodShares(pillars)
	return res, nil
}

// elementShares aggregates the five-element distribution: each visible stem
// weighs 1, each branch's hidden-stem set weighs 1 split evenly across its
// members.
func elementShares(pillars []models.Pillar) []models.Share {
	buckets := map[string]float64{}
	total := 0.0
	for _, p := range pillars {
		if el := StemElement(p.Stem); el != "" {
			buckets[el]++
			total++
		}
	}
	for _, p := range pillars {
		n := len(p.Hidden)
		if n == 0 {
			n = 1
		}
		w := 1.0 / float64(n)
		for _, h := range p.Hidden {
			if el := StemElement(h.Char); el != "" {
				buckets[el] += w
			}
		}
		total++
	}
	out := make([]models.Share, 0, len(elementOrder))
	for _, name := range elementOrder {
		out = append(out, models.Share{Name: name, Percent: roundPercent(buckets[name], total)})
	}
	return out
}

// tenGodShares aggregates the ten-god distribution with the same weighting
// scheme. The day stem contributes no bucket (it has no ten-god), so the
// stem total is 3, not 4.
func tenGodShares(pillars []models.Pillar) []models.Share {
	buckets := map[string]float64{}
	total := 0.0
	for _, p := range pillars {
		if p.StemTenGod == "" {
			continue
		}
		buckets[p.StemTenGod]++
		total++
	}
	for _, p := range pillars {
		n := len(p.Hidden)
		if n == 0 {
			n = 1
		}
		w := 1.0 / float64(n)
		for _, h := range p.Hidden {
			if h.TenGod == "" {
				continue
			}
			buckets[h.TenGod] += w
		}
		total++
	}
	out := make([]models.Share, 0, len(buckets))
	for name, v := range buckets {
		out = append(out, models.Share{Name: name, Percent: roundPercent(v, total)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Percent != out[j].Percent {
			return out[i].Percent > out[j].Percent
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// roundPercent rounds v/total to one decimal percent.
func roundPercent(v, total float64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(v/total*1000) / 10
}
