package model

import "strings"

// Kind names one of the five hierarchy levels of a statute.
type Kind string

const (
	KindChapter   Kind = "Chapter"
	KindArticle   Kind = "Article"
	KindParagraph Kind = "Paragraph"
	KindPoint     Kind = "Point"
	KindSubpoint  Kind = "Subpoint"
)

// Kinds returns all kinds, outermost first.
func Kinds() []Kind {
	return []Kind{KindChapter, KindArticle, KindParagraph, KindPoint, KindSubpoint}
}

// Depth returns the nesting level of the kind (Chapter = 0), or -1 for unknown kinds.
func (k Kind) Depth() int {
	for i, kind := range Kinds() {
		if kind == k {
			return i
		}
	}
	return -1
}

// Field names used in metadata and filters. Downstream consumers filter on these exact names.
const (
	FieldChapterNo   = "chapter_no"
	FieldArticleNo   = "article_no"
	FieldParagraphNo = "paragraph_no"
	FieldPointNo     = "point_no"
	FieldSubpointNo  = "subpoint_no"
	FieldText        = "text"
	FieldKind        = "kind"
	FieldSource      = "source"
)

// Fields maps scoping key names to their values. An empty value means the level is absent.
type Fields map[string]string

// Key is the composite identifier of a record.
// It is comparable, so it can be used directly as a map key.
type Key struct {
	ChapterNo   string `json:"chapter_no"`
	ArticleNo   string `json:"article_no"`
	ParagraphNo string `json:"paragraph_no"`
	PointNo     string `json:"point_no"`
	SubpointNo  string `json:"subpoint_no"`
}

// Path renders the key as an ltree compatible path, skipping absent levels,
// e.g. "ch_1.art_2.par_1a.pt_2.sub_a".
func (k Key) Path() string {
	labels := make([]string, 0, 5)
	for _, part := range []struct{ prefix, value string }{
		{"ch", k.ChapterNo},
		{"art", k.ArticleNo},
		{"par", k.ParagraphNo},
		{"pt", k.PointNo},
		{"sub", k.SubpointNo},
	} {
		if part.value == "" {
			continue
		}
		labels = append(labels, part.prefix+"_"+ltreeLabel(part.value))
	}
	return strings.Join(labels, ".")
}

// ltreeLabel replaces every character ltree does not accept in a label.
func ltreeLabel(value string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, value)
}

// Record is one of Chapter, Article, Paragraph, Point or Subpoint.
// The set is closed: only types of this package implement it.
type Record interface {
	Kind() Kind
	Key() Key
	Content() string
	// Fields returns every scoping key of the record, including empty optional keys, without the text.
	Fields() Fields
	Accept(v RecordVisitor)
	record()
}

// RecordVisitor handles each record kind. Implementations must cover all five kinds.
type RecordVisitor interface {
	VisitChapter(c *Chapter)
	VisitArticle(a *Article)
	VisitParagraph(p *Paragraph)
	VisitPoint(p *Point)
	VisitSubpoint(s *Subpoint)
}

// Chapter is the outermost level. Its text is the chapter heading and is set once.
type Chapter struct {
	ChapterNo string `json:"chapter_no"`
	Text      string `json:"text"`
}

// Article belongs to a chapter. Its text is the article title and is set once.
type Article struct {
	ArticleNo string `json:"article_no"`
	ChapterNo string `json:"chapter_no"`
	Text      string `json:"text"`
}

// Paragraph belongs to an article, or directly to a chapter when ArticleNo is empty.
type Paragraph struct {
	ParagraphNo string `json:"paragraph_no"`
	ChapterNo   string `json:"chapter_no"`
	ArticleNo   string `json:"article_no"`
	Text        string `json:"text"`
}

// Point belongs to a paragraph, or directly to an article when ParagraphNo is empty.
type Point struct {
	PointNo     string `json:"point_no"`
	ChapterNo   string `json:"chapter_no"`
	ArticleNo   string `json:"article_no"`
	ParagraphNo string `json:"paragraph_no"`
	Text        string `json:"text"`
}

// Subpoint belongs to a point.
type Subpoint struct {
	SubpointNo  string `json:"subpoint_no"`
	ChapterNo   string `json:"chapter_no"`
	ArticleNo   string `json:"article_no"`
	ParagraphNo string `json:"paragraph_no"`
	PointNo     string `json:"point_no"`
	Text        string `json:"text"`
}

// SetText sets the heading only if none was set before.
func (c *Chapter) SetText(text string) {
	if c.Text == "" {
		c.Text = text
	}
}

// SetText sets the title only if none was set before.
func (a *Article) SetText(text string) {
	if a.Text == "" {
		a.Text = text
	}
}

func (p *Paragraph) AppendText(text string) { p.Text = appendText(p.Text, text) }
func (p *Point) AppendText(text string)     { p.Text = appendText(p.Text, text) }
func (s *Subpoint) AppendText(text string)  { s.Text = appendText(s.Text, text) }

func appendText(current, text string) string {
	if current == "" {
		return text
	}
	return current + " " + text
}

func (c *Chapter) Kind() Kind   { return KindChapter }
func (a *Article) Kind() Kind   { return KindArticle }
func (p *Paragraph) Kind() Kind { return KindParagraph }
func (p *Point) Kind() Kind     { return KindPoint }
func (s *Subpoint) Kind() Kind  { return KindSubpoint }

func (c *Chapter) Key() Key { return Key{ChapterNo: c.ChapterNo} }
func (a *Article) Key() Key { return Key{ChapterNo: a.ChapterNo, ArticleNo: a.ArticleNo} }
func (p *Paragraph) Key() Key {
	return Key{ChapterNo: p.ChapterNo, ArticleNo: p.ArticleNo, ParagraphNo: p.ParagraphNo}
}
func (p *Point) Key() Key {
	return Key{ChapterNo: p.ChapterNo, ArticleNo: p.ArticleNo, ParagraphNo: p.ParagraphNo, PointNo: p.PointNo}
}
func (s *Subpoint) Key() Key {
	return Key{ChapterNo: s.ChapterNo, ArticleNo: s.ArticleNo, ParagraphNo: s.ParagraphNo, PointNo: s.PointNo, SubpointNo: s.SubpointNo}
}

func (c *Chapter) Content() string   { return c.Text }
func (a *Article) Content() string   { return a.Text }
func (p *Paragraph) Content() string { return p.Text }
func (p *Point) Content() string     { return p.Text }
func (s *Subpoint) Content() string  { return s.Text }

func (c *Chapter) Fields() Fields {
	return Fields{FieldChapterNo: c.ChapterNo}
}

func (a *Article) Fields() Fields {
	return Fields{FieldChapterNo: a.ChapterNo, FieldArticleNo: a.ArticleNo}
}

func (p *Paragraph) Fields() Fields {
	return Fields{
		FieldChapterNo:   p.ChapterNo,
		FieldArticleNo:   p.ArticleNo,
		FieldParagraphNo: p.ParagraphNo,
	}
}

func (p *Point) Fields() Fields {
	return Fields{
		FieldChapterNo:   p.ChapterNo,
		FieldArticleNo:   p.ArticleNo,
		FieldParagraphNo: p.ParagraphNo,
		FieldPointNo:     p.PointNo,
	}
}

func (s *Subpoint) Fields() Fields {
	return Fields{
		FieldChapterNo:   s.ChapterNo,
		FieldArticleNo:   s.ArticleNo,
		FieldParagraphNo: s.ParagraphNo,
		FieldPointNo:     s.PointNo,
		FieldSubpointNo:  s.SubpointNo,
	}
}

func (c *Chapter) Accept(v RecordVisitor)   { v.VisitChapter(c) }
func (a *Article) Accept(v RecordVisitor)   { v.VisitArticle(a) }
func (p *Paragraph) Accept(v RecordVisitor) { v.VisitParagraph(p) }
func (p *Point) Accept(v RecordVisitor)     { v.VisitPoint(p) }
func (s *Subpoint) Accept(v RecordVisitor)  { v.VisitSubpoint(s) }

func (*Chapter) record()   {}
func (*Article) record()   {}
func (*Paragraph) record() {}
func (*Point) record()     {}
func (*Subpoint) record()  {}

// Matches reports whether every pair in match equals the corresponding field of fields.
// Keys missing from fields compare as empty strings.
func (fields Fields) Matches(match Fields) bool {
	for key, want := range match {
		if fields[key] != want {
			return false
		}
	}
	return true
}
