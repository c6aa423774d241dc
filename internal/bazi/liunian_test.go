package bazi

import "testing"

func TestLiuNianKnownRun(t *testing.T) {
	e := testEngine()
	// Day stem of the 1990-05-20 15:00 chart is 乙.
	items := e.CalculateLiuNian(1990, 2024, 5, "乙")
	if len(items) != 5 {
		t.Fatalf("got %d years, want 5", len(items))
	}
	if items[0].Ganzhi != "甲辰" {
		t.Errorf("2024 = %s, want 甲辰", items[0].Ganzhi)
	}
	for i, it := range items {
		if it.Year != 2024+i {
			t.Errorf("item %d year = %d, want %d", i, it.Year, 2024+i)
		}
		if it.Ganzhi != it.Stem+it.Branch {
			t.Errorf("item %d ganzhi %s != stem+branch %s%s", i, it.Ganzhi, it.Stem, it.Branch)
		}
		if it.Nayin == "" {
			t.Errorf("item %d nayin empty", i)
		}
		if len(it.Hidden) == 0 {
			t.Errorf("item %d has no hidden stems", i)
		}
		if len(it.Voidness) == 0 {
			t.Errorf("item %d voidness empty", i)
		}
	}
}

func TestLiuNianSexagenaryStep(t *testing.T) {
	e := testEngine()
	items := e.CalculateLiuNian(1990, 2000, 12, "乙")
	for i := 1; i < len(items); i++ {
		prev := IndexOfGanzhi(items[i-1].Ganzhi)
		cur := IndexOfGanzhi(items[i].Ganzhi)
		if prev < 0 || cur < 0 {
			t.Fatalf("item %d: ganzhi outside cycle", i)
		}
		if (prev+1)%60 != cur {
			t.Errorf("item %d: %s does not follow %s", i, items[i].Ganzhi, items[i-1].Ganzhi)
		}
	}
}

func TestLiuNianOutOfRangeFallback(t *testing.T) {
	e := testEngine()
	items := e.CalculateLiuNian(1990, 2150, 1, "乙")
	if len(items) != 1 {
		t.Fatalf("got %d items", len(items))
	}
	it := items[0]
	if it.Stem != "辛" || it.Branch != "亥" {
		t.Errorf("2150 = %s%s, want 辛亥", it.Stem, it.Branch)
	}
	if it.StemTG != TenGod("乙", "辛") {
		t.Errorf("out-of-range stem ten-god = %s", it.StemTG)
	}
	if it.Nayin == "" {
		t.Errorf("out-of-range nayin empty")
	}
}

func TestLiuNianDefaultCount(t *testing.T) {
	e := testEngine()
	if got := len(e.CalculateLiuNian(1990, 2024, 0, "乙")); got != 10 {
		t.Errorf("default count produced %d items, want 10", got)
	}
}
