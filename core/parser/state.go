package parser

import "github.com/siherrmann/lexgrapher/model"

// cursors holds the most recently opened record of each kind.
type cursors struct {
	chapter   *model.Chapter
	article   *model.Article
	paragraph *model.Paragraph
	point     *model.Point
	subpoint  *model.Subpoint
}

// open makes r the current record of its kind and clears every deeper cursor.
func (c *cursors) open(r model.Record) {
	depth := r.Kind().Depth()
	if depth < 4 {
		c.subpoint = nil
	}
	if depth < 3 {
		c.point = nil
	}
	if depth < 2 {
		c.paragraph = nil
	}
	if depth < 1 {
		c.article = nil
	}

	switch rec := r.(type) {
	case *model.Chapter:
		c.chapter = rec
	case *model.Article:
		c.article = rec
	case *model.Paragraph:
		c.paragraph = rec
	case *model.Point:
		c.point = rec
	case *model.Subpoint:
		c.subpoint = rec
	}
}

// deepest returns the innermost open record, or nil when nothing is open.
func (c *cursors) deepest() model.Record {
	switch {
	case c.subpoint != nil:
		return c.subpoint
	case c.point != nil:
		return c.point
	case c.paragraph != nil:
		return c.paragraph
	case c.article != nil:
		return c.article
	case c.chapter != nil:
		return c.chapter
	}
	return nil
}

func (c *cursors) chapterNo() string {
	if c.chapter == nil {
		return ""
	}
	return c.chapter.ChapterNo
}

func (c *cursors) articleNo() string {
	if c.article == nil {
		return ""
	}
	return c.article.ArticleNo
}

func (c *cursors) paragraphNo() string {
	if c.paragraph == nil {
		return ""
	}
	return c.paragraph.ParagraphNo
}

// continuation attaches a free text line to a record according to its text policy.
type continuation struct {
	line string
}

func (c continuation) VisitChapter(ch *model.Chapter)    { ch.SetText(c.line) }
func (c continuation) VisitArticle(a *model.Article)     { a.SetText(c.line) }
func (c continuation) VisitParagraph(p *model.Paragraph) { p.AppendText(c.line) }
func (c continuation) VisitPoint(p *model.Point)         { p.AppendText(c.line) }
func (c continuation) VisitSubpoint(s *model.Subpoint)   { s.AppendText(c.line) }
