package lunisolar

import "testing"

func TestTermDateKnownDates(t *testing.T) {
	cases := []struct {
		year, idx  int
		month, day int
	}{
		{1900, 0, 1, 6},  // 小寒 1900-01-06
		{1900, 1, 1, 20}, // 大寒 1900-01-20
		{1900, 2, 2, 4},  // 立春 1900-02-04
		{1900, 3, 2, 19}, // 雨水 1900-02-19
		{1984, 2, 2, 4},  // 立春 1984-02-04
		{1990, 0, 1, 5},  // 小寒 1990-01-05
		{2000, 0, 1, 6},  // 小寒 2000-01-06
		{2000, 1, 1, 21}, // 大寒 2000-01-21
		{2000, 2, 2, 4},  // 立春 2000-02-04
		{2008, 6, 4, 4},  // 清明 2008-04-04
		{2020, 23, 12, 21}, // 冬至 2020-12-21
		{2024, 2, 2, 4},  // 立春 2024-02-04
	}
	for _, c := range cases {
		got := TermDate(c.year, c.idx)
		if got.Month != c.month || got.Day != c.day {
			t.Errorf("TermDate(%d, %s) = %02d-%02d, want %02d-%02d",
				c.year, TermNames[c.idx], got.Month, got.Day, c.month, c.day)
		}
	}
}

func TestTermDateCorrections(t *testing.T) {
	// 冬至 2021 needs the published -1 correction to land on Dec 21.
	got := TermDate(2021, 23)
	if got.Day != 21 {
		t.Errorf("冬至 2021 = day %d, want 21", got.Day)
	}
}

func TestTermOrderWithinYear(t *testing.T) {
	// Terms of one year must be strictly chronological.
	for year := 1900; year <= 2100; year += 25 {
		prev := TermDate(year, 0).Time()
		for idx := 1; idx < 24; idx++ {
			cur := TermDate(year, idx).Time()
			if !cur.After(prev) {
				t.Fatalf("year %d: %s not after %s", year, TermNames[idx], TermNames[idx-1])
			}
			prev = cur
		}
	}
}

func TestPrevNextJie(t *testing.T) {
	// 1990-05-20 sits between 立夏 (May) and 芒种 (June).
	prev := PrevJie(1990, 5, 20)
	if prev.Name != "立夏" || prev.Month != 5 {
		t.Errorf("PrevJie(1990-05-20) = %v, want 立夏 in May", prev)
	}
	next := NextJie(1990, 5, 20)
	if next.Name != "芒种" || next.Month != 6 {
		t.Errorf("NextJie(1990-05-20) = %v, want 芒种 in June", next)
	}
}

func TestJieYearWrap(t *testing.T) {
	prev := PrevJie(1990, 1, 3)
	if prev.Name != "大雪" || prev.Year != 1989 {
		t.Errorf("PrevJie(1990-01-03) = %v, want 大雪 1989", prev)
	}
	next := NextJie(2000, 12, 30)
	if next.Name != "小寒" || next.Year != 2001 {
		t.Errorf("NextJie(2000-12-30) = %v, want 小寒 2001", next)
	}
}

func TestJieOnBoundaryDay(t *testing.T) {
	// On the term day itself the term counts as already begun.
	lichun := TermDate(1990, 2)
	prev := PrevJie(1990, lichun.Month, lichun.Day)
	if prev.Name != "立春" {
		t.Errorf("PrevJie on 立春 day = %v, want 立春", prev)
	}
	next := NextJie(1990, lichun.Month, lichun.Day)
	if next.Name != "惊蛰" {
		t.Errorf("NextJie on 立春 day = %v, want 惊蛰", next)
	}
}
