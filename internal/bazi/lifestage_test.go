package bazi

import (
	"testing"

	"github.com/ZRnown/ai-fortune-telling/internal/lunisolar"
)

func TestLifeStageAnchors(t *testing.T) {
	cases := []struct {
		stem, branch, want string
	}{
		{"甲", "亥", "长生"},
		{"甲", "子", "沐浴"}, // yang stems walk forward
		{"甲", "戌", "养"},
		{"乙", "午", "长生"},
		{"乙", "巳", "沐浴"}, // yin stems walk backward
		{"庚", "巳", "长生"},
		{"壬", "申", "长生"},
	}
	for _, c := range cases {
		if got := LifeStage(c.stem, c.branch); got != c.want {
			t.Errorf("LifeStage(%s, %s) = %s, want %s", c.stem, c.branch, got, c.want)
		}
	}
}

func TestLifeStageBijection(t *testing.T) {
	// Over the 12 branches every stem visits each stage exactly once.
	for _, stem := range lunisolar.Stems {
		seen := map[string]int{}
		for _, branch := range lunisolar.Branches {
			stage := LifeStage(stem, branch)
			if stage == "" {
				t.Fatalf("LifeStage(%s, %s) empty", stem, branch)
			}
			seen[stage]++
		}
		if len(seen) != 12 {
			t.Errorf("stem %s covers %d stages, want 12", stem, len(seen))
		}
		for stage, n := range seen {
			if n != 1 {
				t.Errorf("stem %s hits stage %s %d times", stem, stage, n)
			}
		}
	}
}

func TestLifeStageUnknown(t *testing.T) {
	if LifeStage("X", "子") != "" || LifeStage("甲", "X") != "" {
		t.Error("unknown symbols must resolve to empty stage")
	}
}

func TestVoidBranches(t *testing.T) {
	cases := []struct {
		gz, want string
	}{
		{"甲子", "戌亥"}, // 甲子旬
		{"癸酉", "戌亥"}, // last term of the same decade
		{"甲戌", "申酉"}, // 甲戌旬
		{"庚辰", "申酉"},
		{"甲寅", "子丑"}, // 甲寅旬
	}
	for _, c := range cases {
		if got := VoidBranches(IndexOfGanzhi(c.gz)); got != c.want {
			t.Errorf("VoidBranches(%s) = %s, want %s", c.gz, got, c.want)
		}
	}
}

func TestSpiritsTables(t *testing.T) {
	// 甲 day: 天乙贵人 on 丑/未, 文昌 on 巳, 禄神 on 寅, 羊刃 on 卯.
	got := spiritsFor("甲", "子", "子", "丑")
	if !containsStr(got, "天乙贵人") {
		t.Errorf("甲 day on 丑: %v lacks 天乙贵人", got)
	}
	got = spiritsFor("甲", "子", "子", "卯")
	if !containsStr(got, "羊刃") {
		t.Errorf("甲 day on 卯: %v lacks 羊刃", got)
	}
	// 申子辰 trine puts 桃花 on 酉 and 驿马 on 寅.
	got = spiritsFor("丁", "子", "辰", "酉")
	if !containsStr(got, "桃花") {
		t.Errorf("子-year chart on 酉: %v lacks 桃花", got)
	}
	got = spiritsFor("丁", "子", "辰", "寅")
	if !containsStr(got, "驿马") {
		t.Errorf("子-year chart on 寅: %v lacks 驿马", got)
	}
	// No double entries when year and day branch share a trine.
	got = spiritsFor("丁", "子", "辰", "辰")
	n := 0
	for _, s := range got {
		if s == "华盖" {
			n++
		}
	}
	if n != 1 {
		t.Errorf("华盖 counted %d times, want 1 (%v)", n, got)
	}
}

func containsStr(xs []string, want string) bool {
	for _, x := range xs {
		if x == want {
			return true
		}
	}
	return false
}
