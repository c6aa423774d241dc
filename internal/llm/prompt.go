package llm

import (
	"fmt"
	"strings"

	"github.com/ZRnown/ai-fortune-telling/pkg/models"
)

// interpreterPrompt frames the model as a chart reader. The computed chart
// is always supplied as context; the model never computes pillars itself.
const interpreterPrompt = `你是一位精通中国传统命理学的八字命理师。你会收到一份已经排好的八字命盘，
包括四柱干支、藏干十神、五行占比、大运和流年。请基于这份命盘回答用户的问题。

要求：
- 只依据提供的命盘数据进行分析，不要自行重新排盘。
- 解释时引用具体的干支和十神，让用户能对照命盘理解。
- 语气平和客观，不做绝对化的断言，不渲染恐慌。
- 用简体中文回答。`

// InterpreterPrompt returns the system prompt used for chart interpretation.
func InterpreterPrompt() string { return interpreterPrompt }

// ChartContext renders a computed chart into the text block sent to the
// model alongside the user's question.
func ChartContext(res *models.BaziResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "公历时间：%s\n", res.SolarDate)
	fmt.Fprintf(&b, "干支历：%s\n", res.LunarDate)
	fmt.Fprintf(&b, "四柱：%s %s %s %s\n",
		res.Pillars.Year.Ganzhi(), res.Pillars.Month.Ganzhi(),
		res.Pillars.Day.Ganzhi(), res.Pillars.Hour.Ganzhi())
	fmt.Fprintf(&b, "日主：%s\n", res.DayStem())

	writePillar := func(label string, p models.Pillar) {
		fmt.Fprintf(&b, "%s：%s", label, p.Ganzhi())
		if p.StemTenGod != "" {
			fmt.Fprintf(&b, "（天干%s）", p.StemTenGod)
		}
		if len(p.Hidden) > 0 {
			parts := make([]string, len(p.Hidden))
			for i, h := range p.Hidden {
				parts[i] = h.Char + h.TenGod
			}
			fmt.Fprintf(&b, " 藏干：%s", strings.Join(parts, " "))
		}
		fmt.Fprintf(&b, " 纳音：%s", p.Nayin)
		if len(p.Spirits) > 0 {
			fmt.Fprintf(&b, " 神煞：%s", strings.Join(p.Spirits, " "))
		}
		b.WriteString("\n")
	}
	writePillar("年柱", res.Pillars.Year)
	writePillar("月柱", res.Pillars.Month)
	writePillar("日柱", res.Pillars.Day)
	writePillar("时柱", res.Pillars.Hour)

	if len(res.Elements) > 0 {
		b.WriteString("五行占比：")
		parts := make([]string, len(res.Elements))
		for i, s := range res.Elements {
			parts[i] = fmt.Sprintf("%s %.1f%%", s.Name, s.Percent)
		}
		b.WriteString(strings.Join(parts, "，"))
		b.WriteString("\n")
	}
	if len(res.TenGods) > 0 {
		b.WriteString("十神占比：")
		parts := make([]string, len(res.TenGods))
		for i, s := range res.TenGods {
			parts[i] = fmt.Sprintf("%s %.1f%%", s.Name, s.Percent)
		}
		b.WriteString(strings.Join(parts, "，"))
		b.WriteString("\n")
	}
	return b.String()
}

// InterpretMessages builds the full message list for one interpretation
// request: system prompt, chart context, then the user's question.
func InterpretMessages(res *models.BaziResult, question string) []Message {
	return InterpretMessagesWith(res, "", question)
}

// InterpretMessagesWith is InterpretMessages with a caller-supplied system
// instruction replacing the default one.
func InterpretMessagesWith(res *models.BaziResult, instruction, question string) []Message {
	if instruction == "" {
		instruction = interpreterPrompt
	}
	if question == "" {
		question = "请综合分析这份八字命盘。"
	}
	return []Message{
		SystemMessage(instruction),
		UserMessage("命盘如下：\n" + ChartContext(res)),
		UserMessage(question),
	}
}
