package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrammarMatchers(t *testing.T) {
	g := NewGrammar("Rozdział", "Art.")

	t.Run("Keywords are kept", func(t *testing.T) {
		assert.Equal(t, "Rozdział", g.ChapterKeyword())
		assert.Equal(t, "Art.", g.ArticleKeyword())
	})

	t.Run("Chapter number is extracted", func(t *testing.T) {
		chapterNo, ok := g.MatchChapter("Rozdział 17.")
		assert.True(t, ok, "Expected chapter line to match")
		assert.Equal(t, "17", chapterNo, "Expected chapter number 17")

		chapterNo, ok = g.MatchChapter("Rozdział 2a Przepisy końcowe")
		assert.True(t, ok, "Expected chapter line with letter suffix to match")
		assert.Equal(t, "2a", chapterNo, "Expected chapter number 2a")
	})

	t.Run("Chapter requires the keyword at line start", func(t *testing.T) {
		_, ok := g.MatchChapter("zob. Rozdział 3")
		assert.False(t, ok, "Expected keyword in the middle of a line not to match")
		_, ok = g.MatchChapter("Rozdziały 3")
		assert.False(t, ok, "Expected similar word not to match")
	})

	t.Run("Article with title", func(t *testing.T) {
		match, ok := g.MatchArticle("Art. 73. SomeText")
		assert.True(t, ok, "Expected article line to match")
		assert.Equal(t, "73", match.ArticleNo, "Expected article number 73")
		assert.Equal(t, "SomeText", match.Title, "Expected title after the article number")
		assert.False(t, match.HasInlineParagraph(), "Expected no inline paragraph")
	})

	t.Run("Article without title", func(t *testing.T) {
		match, ok := g.MatchArticle("Art. 1.")
		assert.True(t, ok, "Expected bare article line to match")
		assert.Equal(t, "1", match.ArticleNo)
		assert.Empty(t, match.Title, "Expected empty title")
		assert.False(t, match.HasInlineParagraph())
	})

	t.Run("Article with inline paragraph", func(t *testing.T) {
		match, ok := g.MatchArticle("Art. 2. 1. System oświaty wspierają:")
		assert.True(t, ok, "Expected article line to match")
		assert.Equal(t, "2", match.ArticleNo, "Expected article number 2")
		assert.Empty(t, match.Title, "Expected no title when a paragraph follows")
		assert.True(t, match.HasInlineParagraph(), "Expected inline paragraph")
		assert.Equal(t, "1. System oświaty wspierają:", match.Rest)

		match, ok = g.MatchArticle("Art. 1. 14a. With Text:")
		assert.True(t, ok)
		assert.Empty(t, match.Title, "Expected a letter suffixed paragraph number not to become the title")
		paragraphNo, text, ok := g.MatchParagraph(match.Rest)
		assert.True(t, ok, "Expected inline paragraph to match the paragraph grammar")
		assert.Equal(t, "14a", paragraphNo)
		assert.Equal(t, "With Text:", text)
	})

	t.Run("Article title starting with a year is not a paragraph", func(t *testing.T) {
		match, ok := g.MatchArticle("Art. 5. 1990 r. ustawa traci moc")
		assert.True(t, ok)
		assert.False(t, match.HasInlineParagraph(), "Expected a number without period not to open a paragraph")
		assert.Equal(t, "1990 r. ustawa traci moc", match.Title)
	})

	t.Run("Article with letter suffix", func(t *testing.T) {
		match, ok := g.MatchArticle("Art. 44a. Przepis dodany")
		assert.True(t, ok, "Expected inserted article to match")
		assert.Equal(t, "44a", match.ArticleNo)
		assert.Equal(t, "Przepis dodany", match.Title)
	})

	t.Run("Paragraph", func(t *testing.T) {
		paragraphNo, text, ok := g.MatchParagraph("14a.")
		assert.True(t, ok, "Expected bare paragraph number to match")
		assert.Equal(t, "14a", paragraphNo)
		assert.Empty(t, text)

		paragraphNo, text, ok = g.MatchParagraph("3. System oświaty")
		assert.True(t, ok)
		assert.Equal(t, "3", paragraphNo)
		assert.Equal(t, "System oświaty", text)

		_, _, ok = g.MatchParagraph("3) point")
		assert.False(t, ok, "Expected point line not to match paragraph grammar")
	})

	t.Run("Point", func(t *testing.T) {
		pointNo, text, ok := g.MatchPoint("14a) Some Text")
		assert.True(t, ok, "Expected point line to match")
		assert.Equal(t, "14a", pointNo)
		assert.Equal(t, "Some Text", text)

		_, _, ok = g.MatchPoint("a) subpoint")
		assert.False(t, ok, "Expected subpoint line not to match point grammar")
	})

	t.Run("Subpoint", func(t *testing.T) {
		subpointNo, text, ok := g.MatchSubpoint("g) subpoint text")
		assert.True(t, ok, "Expected subpoint line to match")
		assert.Equal(t, "g", subpointNo)
		assert.Equal(t, "subpoint text", text)

		_, _, ok = g.MatchSubpoint("1) x")
		assert.False(t, ok, "Expected numbered point not to match subpoint grammar")
		_, _, ok = g.MatchSubpoint("G) x")
		assert.False(t, ok, "Expected upper case letter not to match subpoint grammar")
	})

	t.Run("Custom keywords are quoted", func(t *testing.T) {
		custom := NewGrammar("Chapter", "Sec.")
		match, ok := custom.MatchArticle("Sec. 4. Scope")
		assert.True(t, ok)
		assert.Equal(t, "4", match.ArticleNo)
		_, ok = custom.MatchArticle("Secx 4. Scope")
		assert.False(t, ok, "Expected the period of the keyword to be matched literally")
	})
}
