package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const englishIdeas = `## Plan 1: Morning routines
### Title ideas
1. The 5 AM habit nobody talks about
2. I woke up early for 30 days
3. Why your mornings fail
### Thumbnail
- **Main text**: [5 AM]

## Plan 2: Night routines
### Title ideas
1. Sleep better tonight
2. The evening reset
3. Stop scrolling in bed
### Thumbnail
- Main text: 「NIGHT」

## Plan 3: Weekly planning
### Title ideas
1. Plan your week in 10 minutes
2. Sunday system
3. The one list that works
### Thumbnail
- Main text: PLAN
`

const japaneseIdeas = `【企画案1】朝の習慣
タイトル案：
1. 朝5時の習慣
2. 30日間早起きしてみた
3. 朝がうまくいかない理由
サムネイル
メインテキスト：「朝5時」

【企画案2】夜の習慣
タイトル案：
1. 今夜からよく眠る
2. 夜のリセット
3. ベッドでスマホをやめる
メインテキスト：夜

【企画案3】週の計画
タイトル案：
1. 10分で一週間を計画
2. 日曜日の仕組み
3. 効くリスト
メインテキスト：計画
`

func TestParseIdeasEnglish(t *testing.T) {
	parsed := ParseIdeas(englishIdeas)

	assert.Len(t, parsed, PlanCount)
	assert.Equal(t, []string{
		"The 5 AM habit nobody talks about",
		"I woke up early for 30 days",
		"Why your mornings fail",
	}, parsed[1].Titles)
	assert.Equal(t, "5 AM", parsed[1].ThumbnailWord)
	assert.Equal(t, "NIGHT", parsed[2].ThumbnailWord)
	assert.Equal(t, "Stop scrolling in bed", parsed[2].Titles[2])
	assert.Equal(t, "Plan your week in 10 minutes", parsed[3].Titles[0])
	assert.Equal(t, "PLAN", parsed[3].ThumbnailWord)
}

func TestParseIdeasJapanese(t *testing.T) {
	parsed := ParseIdeas(japaneseIdeas)

	assert.Equal(t, []string{"朝5時の習慣", "30日間早起きしてみた", "朝がうまくいかない理由"}, parsed[1].Titles)
	assert.Equal(t, "朝5時", parsed[1].ThumbnailWord)
	assert.Equal(t, "夜のリセット", parsed[2].Titles[1])
	assert.Equal(t, "夜", parsed[2].ThumbnailWord)
	assert.Equal(t, "計画", parsed[3].ThumbnailWord)
}

func TestParseIdeasUnmatched(t *testing.T) {
	parsed := ParseIdeas("The model answered with something unexpected.")

	assert.Len(t, parsed, PlanCount)
	for n := 1; n <= PlanCount; n++ {
		assert.Empty(t, parsed[n].Titles)
		assert.NotNil(t, parsed[n].Titles)
		assert.Empty(t, parsed[n].ThumbnailWord)
	}
}

func TestParsedIdeasPick(t *testing.T) {
	parsed := ParseIdeas(englishIdeas)

	title, word := parsed.Pick(2, 1)
	assert.Equal(t, "Sleep better tonight", title)
	assert.Equal(t, "NIGHT", word)

	title, word = parsed.Pick(1, 4)
	assert.Empty(t, title)
	assert.Equal(t, "5 AM", word)

	title, word = parsed.Pick(7, 1)
	assert.Empty(t, title)
	assert.Empty(t, word)
}
