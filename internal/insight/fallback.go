package insight

import (
	"fmt"

	"github.com/threelines/threelines-cli/internal/journal"
)

// emptyWeekSummary is returned without calling the generator when the week
// has no entries at all.
func emptyWeekSummary(lang Lang) string {
	if lang == LangZH {
		return "这周你还没有记录，开始写下你的第一篇日记吧！记录生活的点点滴滴，会让你更好地了解自己。"
	}
	return "You haven't recorded anything this week yet. Start writing your first diary entry! Recording the little moments of life will help you understand yourself better."
}

func emptyWeekInsight(lang Lang) string {
	if lang == LangZH {
		return "开始记录你的心情吧，AI会帮你分析情绪变化趋势。"
	}
	return "Start recording your mood, and AI will help you analyze emotional trends."
}

// fallbackSummary is the deterministic offline substitute for a failed
// summary generation: recording counts plus a per-tier encouragement.
func fallbackSummary(entries []journal.Entry, lang Lang) string {
	totalSentences := 0
	for _, e := range entries {
		totalSentences += e.FilledSentences()
	}
	avg := float64(totalSentences) / 7

	var out string
	if lang == LangZH {
		out = fmt.Sprintf("这周你记录了 %d 天，共写下 %d 句话，平均每天 %.1f 句。", len(entries), totalSentences, avg)
		switch {
		case len(entries) >= 5:
			out += " 你坚持记录的习惯真的很棒！这样的自我反思会让你更加了解自己，继续保持下去吧。"
		case len(entries) >= 3:
			out += " 你的记录习惯正在慢慢养成，这是一个很好的开始。试着每天都写下三句话，记录生活的美好瞬间。"
		default:
			out += " 开始记录是个很棒的决定！虽然这周记录不多，但每一次记录都是珍贵的。试着更频繁地记录你的生活吧，你会发现很多意想不到的收获。"
		}
		return out
	}

	out = fmt.Sprintf("This week you recorded %d days, writing a total of %d sentences, averaging %.1f sentences per day.", len(entries), totalSentences, avg)
	switch {
	case len(entries) >= 5:
		out += " Your habit of consistent recording is really amazing! This kind of self-reflection will help you understand yourself better. Keep it up!"
	case len(entries) >= 3:
		out += " Your recording habit is gradually forming, which is a great start. Try to write three sentences every day to record the beautiful moments of life."
	default:
		out += " Starting to record is a wonderful decision! Although you didn't record much this week, every entry is precious. Try to record your life more frequently, and you'll discover many unexpected rewards."
	}
	return out
}

// fallbackInsight is the deterministic offline substitute for a failed
// mood-insight generation.
func fallbackInsight(lang Lang) string {
	if lang == LangZH {
		return "你这周的记录很棒！继续保持记录的习惯，让AI更好地了解你的情绪变化。"
	}
	return "Your records this week are great! Keep up the recording habit to help AI better understand your emotional changes."
}
