// Package mood scores journal text with a keyword lexicon. It is a cheap
// local signal: no API calls, deterministic, language-mixed (Chinese and
// English keywords in one list).
package mood

import (
	"math"
	"sort"
	"strings"

	"github.com/threelines/threelines-cli/internal/journal"
)

// Label classifies the dominant feeling of a piece of text.
type Label string

const (
	Positive Label = "positive"
	Neutral  Label = "neutral"
	Negative Label = "negative"
)

// Scores are fractions of keyword hits per category. They sum to 1 for any
// scored text; text with no hits at all counts as fully neutral.
type Scores struct {
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
}

// Dominant returns the label with the strictly highest score, neutral on
// ties.
func (s Scores) Dominant() Label {
	switch {
	case s.Positive > s.Neutral && s.Positive > s.Negative:
		return Positive
	case s.Negative > s.Neutral && s.Negative > s.Positive:
		return Negative
	default:
		return Neutral
	}
}

// DayMood is the scored mood of a single journal day.
type DayMood struct {
	Date     string  `json:"date"`
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
	Dominant Label   `json:"dominant"`
}

// Trend compares the first and second half of a period.
type Trend string

const (
	Improving Trend = "improving"
	Declining Trend = "declining"
	Stable    Trend = "stable"
)

// TrendStats aggregates DayMood values over a period.
type TrendStats struct {
	AveragePositive float64       `json:"averagePositive"`
	AverageNeutral  float64       `json:"averageNeutral"`
	AverageNegative float64       `json:"averageNegative"`
	DominantCount   map[Label]int `json:"dominantCount"`
	Trend           Trend         `json:"trend"`
}

// Breakdown is the weekly mood split as integer percentages. Neutral takes
// whatever the rounded positive and negative shares leave, so the three
// always sum to 100.
type Breakdown struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// Short lists for the per-sentence weekly breakdown; the trend analysis
// below uses the fuller bilingual lexicon.
var (
	breakdownPositive = []string{"开心", "快乐", "高兴", "满足", "成功", "完成", "好", "棒", "赞", "爱", "喜欢", "美好", "顺利", "进步"}
	breakdownNegative = []string{"难过", "失望", "累", "疲惫", "困难", "问题", "失败", "糟糕", "不好", "担心", "焦虑", "压力"}
)

// WeekBreakdown classifies each non-empty sentence: positive when it
// contains only positive words, negative when only negative words, neutral
// otherwise (including mixed). No entries or no sentences is fully neutral.
func WeekBreakdown(entries []journal.Entry) Breakdown {
	positiveCount, negativeCount, total := 0, 0, 0
	for _, e := range entries {
		for _, sentence := range e.Sentences {
			if strings.TrimSpace(sentence) == "" {
				continue
			}
			total++
			hasPositive := containsAny(sentence, breakdownPositive)
			hasNegative := containsAny(sentence, breakdownNegative)
			if hasPositive && !hasNegative {
				positiveCount++
			} else if hasNegative && !hasPositive {
				negativeCount++
			}
		}
	}
	if total == 0 {
		return Breakdown{Neutral: 100}
	}

	positive := int(math.Round(float64(positiveCount) / float64(total) * 100))
	negative := int(math.Round(float64(negativeCount) / float64(total) * 100))
	return Breakdown{
		Positive: positive,
		Neutral:  100 - positive - negative,
		Negative: negative,
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

var positiveKeywords = []string{
	"开心", "快乐", "高兴", "兴奋", "满足", "幸福", "愉快", "舒服", "轻松", "放松",
	"成功", "胜利", "完成", "实现", "达成", "进步", "提升", "改善", "突破", "收获",
	"感谢", "感激", "温暖", "美好", "棒", "好", "赞", "优秀", "精彩", "完美",
	"爱", "喜欢", "享受", "满意", "骄傲", "自豪", "信心", "希望", "乐观", "积极",
	"happy", "joy", "excited", "satisfied", "great", "good", "amazing", "wonderful",
	"love", "like", "enjoy", "proud", "confident", "hope", "positive", "success",
}

var negativeKeywords = []string{
	"难过", "伤心", "痛苦", "失望", "沮丧", "郁闷", "烦躁", "焦虑", "担心", "害怕",
	"生气", "愤怒", "恼火", "讨厌", "厌恶", "后悔", "遗憾", "失落", "孤独", "寂寞",
	"累", "疲惫", "疲劳", "困难", "挫折", "失败", "错误", "问题", "麻烦", "压力",
	"不好", "糟糕", "差", "坏", "恶心", "无聊", "空虚", "迷茫", "困惑",
	"sad", "upset", "disappointed", "frustrated", "angry", "worried", "afraid",
	"tired", "exhausted", "difficult", "problem", "trouble", "bad", "terrible",
}

var neutralKeywords = []string{
	"工作", "学习", "吃饭", "睡觉", "起床", "出门", "回家", "看书", "看电影", "听音乐",
	"运动", "散步", "购物", "做饭", "洗澡", "打扫", "整理", "计划", "安排", "准备",
	"今天", "明天", "昨天", "早上", "下午", "晚上", "时间", "地点", "人", "事情",
	"work", "study", "eat", "sleep", "home", "book", "movie", "music", "exercise",
	"today", "tomorrow", "yesterday", "morning", "afternoon", "evening", "time",
}

// AnalyzeText scores a piece of free text. Empty or whitespace-only text is
// fully neutral.
func AnalyzeText(text string) Scores {
	if strings.TrimSpace(text) == "" {
		return Scores{Neutral: 1}
	}

	lower := strings.ToLower(text)
	pos := countHits(lower, positiveKeywords)
	neg := countHits(lower, negativeKeywords)
	neu := countHits(lower, neutralKeywords)

	if pos == 0 && neg == 0 && neu == 0 {
		neu = 1
	}
	total := float64(pos + neg + neu)
	return Scores{
		Positive: float64(pos) / total,
		Neutral:  float64(neu) / total,
		Negative: float64(neg) / total,
	}
}

func countHits(lower string, keywords []string) int {
	hits := 0
	for _, kw := range keywords {
		hits += strings.Count(lower, kw)
	}
	return hits
}

// AnalyzeEntry scores the concatenated sentences of one journal day, with
// fractions rounded to two decimals.
func AnalyzeEntry(entry journal.Entry) DayMood {
	text := strings.Join(entry.Sentences[:], " ")
	scores := AnalyzeText(text)
	return DayMood{
		Date:     entry.Date,
		Positive: round2(scores.Positive),
		Neutral:  round2(scores.Neutral),
		Negative: round2(scores.Negative),
		Dominant: scores.Dominant(),
	}
}

// AnalyzeTrend scores the most recent days (at most the given count) in
// chronological order, for charting.
func AnalyzeTrend(entries []journal.Entry, days int) []DayMood {
	sorted := make([]journal.Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date > sorted[j].Date })
	if days > 0 && len(sorted) > days {
		sorted = sorted[:days]
	}

	moods := make([]DayMood, len(sorted))
	for i, e := range sorted {
		// Fill back-to-front so the result comes out oldest-first.
		moods[len(sorted)-1-i] = AnalyzeEntry(e)
	}
	return moods
}

// Summarize aggregates day moods into period statistics. The trend compares
// the average positive fraction of the first and second half; a gap above
// 0.1 in either direction leaves the stable band.
func Summarize(moods []DayMood) TrendStats {
	if len(moods) == 0 {
		return TrendStats{
			AverageNeutral: 1,
			DominantCount:  map[Label]int{Positive: 0, Neutral: 1, Negative: 0},
			Trend:          Stable,
		}
	}

	stats := TrendStats{
		DominantCount: map[Label]int{Positive: 0, Neutral: 0, Negative: 0},
		Trend:         Stable,
	}
	var pos, neu, neg float64
	for _, m := range moods {
		pos += m.Positive
		neu += m.Neutral
		neg += m.Negative
		stats.DominantCount[m.Dominant]++
	}
	n := float64(len(moods))
	stats.AveragePositive = round2(pos / n)
	stats.AverageNeutral = round2(neu / n)
	stats.AverageNegative = round2(neg / n)

	mid := len(moods) / 2
	if mid > 0 {
		first := averagePositive(moods[:mid])
		second := averagePositive(moods[mid:])
		if second > first+0.1 {
			stats.Trend = Improving
		} else if second < first-0.1 {
			stats.Trend = Declining
		}
	}
	return stats
}

func averagePositive(moods []DayMood) float64 {
	var sum float64
	for _, m := range moods {
		sum += m.Positive
	}
	return sum / float64(len(moods))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
