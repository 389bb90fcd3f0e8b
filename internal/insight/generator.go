// Package insight produces AI weekly summaries and mood insights for the
// journal, memoizing results through the content-addressed cache.
package insight

import (
	"context"
	"fmt"
	"strings"

	"github.com/threelines/threelines-cli/internal/journal"
)

// Lang selects the language of prompts and generated text.
type Lang string

const (
	LangZH Lang = "zh"
	LangEN Lang = "en"
)

// Generator is the external AI service contract. Implementations may fail;
// callers wrap failures in GenerationFailedError and never cache them.
type Generator interface {
	GenerateWeeklySummary(ctx context.Context, entries []journal.Entry, lang Lang) (string, error)
	GenerateMoodInsight(ctx context.Context, entries []journal.Entry, lang Lang) (string, error)
}

// GenerationFailedError reports a failed external generation with a
// human-readable reason for the caller's retry affordance.
type GenerationFailedError struct {
	Artifact string
	Reason   string
	Err      error
}

func (e *GenerationFailedError) Error() string {
	return fmt.Sprintf("%s generation failed: %s", e.Artifact, e.Reason)
}

func (e *GenerationFailedError) Unwrap() error { return e.Err }

// imageNote is appended to an entry line when it carries a photo.
func imageNote(lang Lang) string {
	if lang == LangZH {
		return " [包含照片]"
	}
	return " [with photo]"
}

// summaryPrompt builds the weekly-summary prompt over the given entries.
// Entries are assumed sorted by date.
func summaryPrompt(entries []journal.Entry, lang Lang, imageCount int) string {
	var content strings.Builder
	for i, e := range entries {
		if i > 0 {
			content.WriteString("\n\n")
		}
		content.WriteString(e.Date)
		if e.Image != "" {
			content.WriteString(imageNote(lang))
		}
		if lang == LangZH {
			content.WriteString("：\n")
		} else {
			content.WriteString(": \n")
		}
		n := 0
		for _, s := range e.Sentences {
			if strings.TrimSpace(s) == "" {
				continue
			}
			n++
			fmt.Fprintf(&content, "%d. %s\n", n, s)
		}
	}

	photoReq := ""
	if lang == LangZH {
		photoHint := ""
		if imageCount > 0 {
			photoHint = "和照片"
			photoReq = "4. 结合照片内容，分析用户的生活状态和情绪\n"
		}
		return fmt.Sprintf(`请基于以下一周的日记内容%s，生成一个温暖、亲切的周总结。要求：

1. 使用第二人称（"你"）来称呼用户
2. 语气要亲切、温暖、鼓励
3. 总结要包含这周的主要活动、情绪变化和成长
%s5. 字数控制在150-200字之间
6. 要有正能量和鼓励性的结尾
7. 不要使用过于正式的语言，要像朋友间的对话

日记内容：
%s

请生成周总结：`, photoHint, photoReq, content.String())
	}

	photoHint := ""
	if imageCount > 0 {
		photoHint = " and photos"
		photoReq = "4. Analyze the photos to understand the user's life and emotions\n"
	}
	return fmt.Sprintf(`Based on the following week's diary entries%s, generate a warm and friendly weekly summary. Requirements:

1. Address the user as "you"
2. Use a warm, encouraging, and friendly tone
3. Include main activities, emotional changes, and growth from this week
%s5. Keep the length between 150-200 words
6. End with positive energy and encouragement
7. Don't use overly formal language, make it like a conversation between friends

Diary content:
%s

Please generate the weekly summary:`, photoHint, photoReq, content.String())
}

// moodPrompt builds the mood-insight prompt over the given entries.
func moodPrompt(entries []journal.Entry, lang Lang, imageCount int) string {
	var content strings.Builder
	for _, e := range entries {
		joined := make([]string, 0, journal.SentenceCount)
		for _, s := range e.Sentences {
			if strings.TrimSpace(s) != "" {
				joined = append(joined, s)
			}
		}
		content.WriteString(strings.Join(joined, " "))
		if e.Image != "" {
			content.WriteString(imageNote(lang))
		}
		content.WriteString(" ")
	}

	photoReq := ""
	if lang == LangZH {
		photoHint := ""
		if imageCount > 0 {
			photoHint = "和照片"
			photoReq = "4. 结合照片中的表情、场景等视觉信息分析情绪\n"
		}
		return fmt.Sprintf(`请基于以下日记内容%s，分析用户这周的情绪状态和心理变化。要求：

1. 使用第二人称（"你"）
2. 语气温暖、关怀
3. 分析情绪趋势和变化
%s5. 给出积极的建议和鼓励
6. 字数控制在100字以内

日记内容：%s

请生成情绪洞察：`, photoHint, photoReq, strings.TrimSpace(content.String()))
	}

	photoHint := ""
	if imageCount > 0 {
		photoHint = " and photos"
		photoReq = "4. Analyze emotions from visual cues like expressions and scenes in photos\n"
	}
	return fmt.Sprintf(`Based on the following diary content%s, analyze the user's emotional state and psychological changes this week. Requirements:

1. Address the user as "you"
2. Use a warm, caring tone
3. Analyze emotional trends and changes
%s5. Provide positive suggestions and encouragement
6. Keep within 100 words

Diary content: %s

Please generate emotional insights:`, photoHint, photoReq, strings.TrimSpace(content.String()))
}

// entryImages returns up to max image payloads from the entries, in order.
func entryImages(entries []journal.Entry, max int) []string {
	var images []string
	for _, e := range entries {
		if e.Image == "" {
			continue
		}
		images = append(images, e.Image)
		if len(images) == max {
			break
		}
	}
	return images
}
