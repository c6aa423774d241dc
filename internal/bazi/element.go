package bazi

// stemMeta carries the five-element assignment and polarity of a stem.
type stemMeta struct {
	element string
	yang    bool
}

var stemMetaTable = map[string]stemMeta{
	"甲": {"木", true}, "乙": {"木", false},
	"丙": {"火", true}, "丁": {"火", false},
	"戊": {"土", true}, "己": {"土", false},
	"庚": {"金", true}, "辛": {"金", false},
	"壬": {"水", true}, "癸": {"水", false},
}

// generates is the five-element generation cycle 木→火→土→金→水→木.
var generates = map[string]string{
	"木": "火", "火": "土", "土": "金", "金": "水", "水": "木",
}

// controls is the five-element control cycle 木→土→水→火→金→木.
var controls = map[string]string{
	"木": "土", "火": "金", "土": "水", "金": "木", "水": "火",
}

// elementOrder fixes the bucket order of element breakdowns.
var elementOrder = [5]string{"木", "火", "土", "金", "水"}

// IsYangStem reports whether a stem is yang-class. Unknown symbols are not.
func IsYangStem(s string) bool {
	return stemMetaTable[s].yang
}

// StemElement returns a stem's element, or "" for unknown symbols.
func StemElement(s string) string {
	return stemMetaTable[s].element
}

// TenGod resolves the ten-god relationship of target relative to ref
// (normally the day stem). Exactly one of the five relationship families
// applies to any two valid stems; unknown symbols yield "".
func TenGod(ref, target string) string {
	a, ok := stemMetaTable[ref]
	if !ok {
		return ""
	}
	b, ok := stemMetaTable[target]
	if !ok {
		return ""
	}
	same := a.yang == b.yang
	switch {
	case a.element == b.element:
		if same {
			return "比肩"
		}
		return "劫财"
	case generates[a.element] == b.element: // I generate him
		if same {
			return "食神"
		}
		return "伤官"
	case generates[b.element] == a.element: // he generates me
		if same {
			return "正印"
		}
		return "偏印"
	case controls[a.element] == b.element: // I control him
		if same {
			return "正财"
		}
		return "偏财"
	case controls[b.element] == a.element: // he controls me
		if same {
			return "七杀"
		}
		return "正官"
	}
	return ""
}

// branchHidden lists each branch's hidden stems, main qi first.
var branchHidden = map[string][]string{
	"子": {"癸"},
	"丑": {"己", "癸", "辛"},
	"寅": {"甲", "丙", "戊"},
	"卯": {"乙"},
	"辰": {"戊", "乙", "癸"},
	"巳": {"丙", "庚", "戊"},
	"午": {"丁", "己"},
	"未": {"己", "丁", "乙"},
	"申": {"庚", "壬", "戊"},
	"酉": {"辛"},
	"戌": {"戊", "辛", "丁"},
	"亥": {"壬", "甲"},
}

// HiddenStemsOf returns a branch's hidden stems in order, main qi first.
// Unknown symbols yield nil.
func HiddenStemsOf(branch string) []string {
	return branchHidden[branch]
}

// MainStemOf returns a branch's primary hidden stem, or "".
func MainStemOf(branch string) string {
	hs := branchHidden[branch]
	if len(hs) == 0 {
		return ""
	}
	return hs[0]
}
