package bazi

import (
	"strings"

	"github.com/ZRnown/ai-fortune-telling/internal/lunisolar"
)

// Day-stem keyed spirit tables. Values list the branches on which the
// spirit lands.
var (
	tianyiGuiren = map[string]string{
		"甲": "丑未", "戊": "丑未", "庚": "丑未",
		"乙": "子申", "己": "子申",
		"丙": "亥酉", "丁": "亥酉",
		"壬": "卯巳", "癸": "卯巳",
		"辛": "午寅",
	}
	wenchangGuiren = map[string]string{
		"甲": "巳", "乙": "午", "丙": "申", "丁": "酉", "戊": "申",
		"己": "酉", "庚": "亥", "辛": "子", "壬": "寅", "癸": "卯",
	}
	lushen = map[string]string{
		"甲": "寅", "乙": "卯", "丙": "巳", "丁": "午", "戊": "巳",
		"己": "午", "庚": "申", "辛": "酉", "壬": "亥", "癸": "子",
	}
	// 羊刃 exists for yang stems only.
	yangren = map[string]string{
		"甲": "卯", "丙": "午", "戊": "午", "庚": "酉", "壬": "子",
	}
)

// Trine-keyed spirit tables, indexed by the branch trine group
// (申子辰, 寅午戌, 巳酉丑, 亥卯未).
var (
	taohua    = [4]string{"酉", "卯", "午", "子"}
	yima      = [4]string{"寅", "申", "亥", "巳"}
	huagai    = [4]string{"辰", "戌", "丑", "未"}
	jiangxing = [4]string{"子", "午", "酉", "卯"}
)

// trineGroup maps a branch to its trine: 0=申子辰, 1=寅午戌, 2=巳酉丑,
// 3=亥卯未. Returns -1 for unknown branches.
func trineGroup(branch string) int {
	idx := lunisolar.BranchIndex(branch)
	if idx < 0 {
		return -1
	}
	switch idx % 4 {
	case 0:
		return 0
	case 2:
		return 1
	case 1:
		return 2
	default:
		return 3
	}
}

// spiritsFor collects the auspicious/inauspicious spirits landing on a
// pillar's branch. Day-stem tables are checked against the day stem;
// trine tables against both the year and the day branch, deduplicated.
// The output order is fixed so results are deterministic.
func spiritsFor(dayStem, yearBranch, dayBranch, branch string) []string {
	var out []string
	if strings.Contains(tianyiGuiren[dayStem], branch) {
		out = append(out, "天乙贵人")
	}
	if wenchangGuiren[dayStem] == branch {
		out = append(out, "文昌贵人")
	}
	if lushen[dayStem] == branch {
		out = append(out, "禄神")
	}
	if yangren[dayStem] == branch {
		out = append(out, "羊刃")
	}
	refs := [2]int{trineGroup(yearBranch), trineGroup(dayBranch)}
	hit := func(table [4]string) bool {
		for i, g := range refs {
			if g < 0 || (i == 1 && refs[1] == refs[0]) {
				continue
			}
			if table[g] == branch {
				return true
			}
		}
		return false
	}
	if hit(taohua) {
		out = append(out, "桃花")
	}
	if hit(yima) {
		out = append(out, "驿马")
	}
	if hit(huagai) {
		out = append(out, "华盖")
	}
	if hit(jiangxing) {
		out = append(out, "将星")
	}
	return out
}

// VoidBranches returns the two void (旬空) branches of the decade containing
// the given cycle index. Each decade of ten terms covers ten of the twelve
// branches; the two uncovered ones are void.
func VoidBranches(idx int) string {
	idx = ((idx % 60) + 60) % 60
	start := idx - idx%10
	return lunisolar.Branches[(start+10)%12] + lunisolar.Branches[(start+11)%12]
}
