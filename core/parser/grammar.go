package parser

import (
	"regexp"
	"strings"
)

// Grammar recognizes the line markers of a statute. All patterns are anchored at the start of the line.
type Grammar struct {
	chapterKeyword  string
	articleKeyword  string
	chapter         *regexp.Regexp
	article         *regexp.Regexp
	inlineParagraph *regexp.Regexp
	paragraph       *regexp.Regexp
	point           *regexp.Regexp
	subpoint        *regexp.Regexp
}

// NewGrammar compiles the grammar for the given chapter and article keywords.
func NewGrammar(chapterKeyword, articleKeyword string) *Grammar {
	return &Grammar{
		chapterKeyword: chapterKeyword,
		articleKeyword: articleKeyword,
		chapter:        regexp.MustCompile(`^` + regexp.QuoteMeta(chapterKeyword) + ` (\d+[a-zA-Z]?)`),
		article:        regexp.MustCompile(`^` + regexp.QuoteMeta(articleKeyword) + ` (\d+[a-zA-Z]?)\.`),
		// A paragraph number directly after the article marker, at most one space apart.
		inlineParagraph: regexp.MustCompile(`^\s?\d+[a-zA-Z]?\.`),
		paragraph:       regexp.MustCompile(`^(\d+[a-zA-Z]?)\.\s*(.*)`),
		point:           regexp.MustCompile(`^(\d+[a-zA-Z]?)\)\s*(.*)`),
		subpoint:        regexp.MustCompile(`^([a-z])\)\s*(.*)`),
	}
}

func (g *Grammar) ChapterKeyword() string { return g.chapterKeyword }
func (g *Grammar) ArticleKeyword() string { return g.articleKeyword }

// MatchChapter returns the chapter number of a chapter line.
func (g *Grammar) MatchChapter(line string) (chapterNo string, ok bool) {
	m := g.chapter.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ArticleMatch is a recognized article line.
type ArticleMatch struct {
	ArticleNo string
	// Title is the text after the article number, empty when the line continues with a paragraph.
	Title string
	// Rest holds the inline first paragraph, e.g. "1. Text" for "Art. 2. 1. Text".
	Rest string
}

// HasInlineParagraph reports whether the article line also opens its first paragraph.
func (m ArticleMatch) HasInlineParagraph() bool {
	return m.Rest != ""
}

// MatchArticle recognizes an article line and separates its title from an inline first paragraph.
func (g *Grammar) MatchArticle(line string) (ArticleMatch, bool) {
	loc := g.article.FindStringSubmatchIndex(line)
	if loc == nil {
		return ArticleMatch{}, false
	}
	match := ArticleMatch{ArticleNo: line[loc[2]:loc[3]]}
	remainder := line[loc[1]:]
	if g.inlineParagraph.MatchString(remainder) {
		match.Rest = strings.TrimSpace(remainder)
	} else {
		match.Title = strings.TrimSpace(remainder)
	}
	return match, true
}

// MatchParagraph returns the number and text of a paragraph line such as "1a. Text".
func (g *Grammar) MatchParagraph(line string) (paragraphNo, text string, ok bool) {
	return match2(g.paragraph, line)
}

// MatchPoint returns the number and text of a point line such as "2a) Text".
func (g *Grammar) MatchPoint(line string) (pointNo, text string, ok bool) {
	return match2(g.point, line)
}

// MatchSubpoint returns the letter and text of a subpoint line such as "b) Text".
func (g *Grammar) MatchSubpoint(line string) (subpointNo, text string, ok bool) {
	return match2(g.subpoint, line)
}

func match2(re *regexp.Regexp, line string) (string, string, bool) {
	m := re.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}
