package bazi

import "github.com/ZRnown/ai-fortune-telling/internal/lunisolar"

// lifeStages are the twelve life-cycle stage names in forward order.
var lifeStages = [12]string{
	"长生", "沐浴", "冠带", "临官", "帝旺", "衰",
	"病", "死", "墓", "绝", "胎", "养",
}

// lifeStartBranch is each stem's 长生 anchor branch.
var lifeStartBranch = map[string]string{
	"甲": "亥", "乙": "午",
	"丙": "寅", "丁": "酉",
	"戊": "寅", "己": "酉",
	"庚": "巳", "辛": "子",
	"壬": "申", "癸": "卯",
}

// LifeStage resolves the twelve-stage position of a branch relative to a
// stem. Yang stems walk the branches forward from their anchor, yin stems
// backward. Unknown symbols yield "".
func LifeStage(stem, branch string) string {
	start, ok := lifeStartBranch[stem]
	if !ok {
		return ""
	}
	startIdx := lunisolar.BranchIndex(start)
	branchIdx := lunisolar.BranchIndex(branch)
	if startIdx < 0 || branchIdx < 0 {
		return ""
	}
	if IsYangStem(stem) {
		return lifeStages[(branchIdx-startIdx+12)%12]
	}
	return lifeStages[(startIdx-branchIdx+12)%12]
}
