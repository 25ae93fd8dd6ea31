package index

import (
	"slices"

	"github.com/siherrmann/lexgrapher/model"
)

// node identifies a record by kind and composite key.
type node struct {
	kind model.Kind
	key  model.Key
}

func nodeOf(r model.Record) node {
	return node{kind: r.Kind(), key: r.Key()}
}

// Index answers relationship queries over the records of one parse.
// It is immutable after New and safe for concurrent use.
type Index struct {
	chapters   []*model.Chapter
	articles   []*model.Article
	paragraphs []*model.Paragraph
	points     []*model.Point
	subpoints  []*model.Subpoint

	// First record per key, in document order.
	byNode map[node]model.Record
	// Direct children per parent, kind order then document order.
	children map[node][]model.Record
}

// New builds an index over a snapshot of c. Later changes to the slices of c are not visible.
func New(c *model.Collections) *Index {
	idx := &Index{
		chapters:   slices.Clone(c.Chapters),
		articles:   slices.Clone(c.Articles),
		paragraphs: slices.Clone(c.Paragraphs),
		points:     slices.Clone(c.Points),
		subpoints:  slices.Clone(c.Subpoints),
		byNode:     make(map[node]model.Record, c.Len()),
		children:   map[node][]model.Record{},
	}

	all := idx.all()
	for _, r := range all {
		n := nodeOf(r)
		if _, ok := idx.byNode[n]; !ok {
			idx.byNode[n] = r
		}
	}
	for _, r := range all {
		if parent, ok := idx.Parent(r); ok {
			p := nodeOf(parent)
			idx.children[p] = append(idx.children[p], r)
		}
	}
	return idx
}

func (idx *Index) all() []model.Record {
	c := model.Collections{
		Chapters:   idx.chapters,
		Articles:   idx.articles,
		Paragraphs: idx.paragraphs,
		Points:     idx.points,
		Subpoints:  idx.subpoints,
	}
	return c.All()
}

// Chapters returns all chapters in document order.
func (idx *Index) Chapters() []*model.Chapter { return slices.Clone(idx.chapters) }

// Articles returns all articles in document order.
func (idx *Index) Articles() []*model.Article { return slices.Clone(idx.articles) }

// Paragraphs returns all paragraphs in document order.
func (idx *Index) Paragraphs() []*model.Paragraph { return slices.Clone(idx.paragraphs) }

// Points returns all points in document order.
func (idx *Index) Points() []*model.Point { return slices.Clone(idx.points) }

// Subpoints returns all subpoints in document order.
func (idx *Index) Subpoints() []*model.Subpoint { return slices.Clone(idx.subpoints) }

// Records returns every record, grouped by kind, outermost kind first.
func (idx *Index) Records() []model.Record { return idx.all() }

// Len returns the number of indexed records.
func (idx *Index) Len() int {
	return len(idx.chapters) + len(idx.articles) + len(idx.paragraphs) + len(idx.points) + len(idx.subpoints)
}

// Filter returns the records whose fields equal every pair in match, preserving order.
// An empty value in match selects records where that field is empty.
func Filter[T model.Record](records []T, match model.Fields) []T {
	out := []T{}
	for _, r := range records {
		if r.Fields().Matches(match) {
			out = append(out, r)
		}
	}
	return out
}

// Find filters the records of one kind.
func (idx *Index) Find(kind model.Kind, match model.Fields) []model.Record {
	switch kind {
	case model.KindChapter:
		return records(Filter(idx.chapters, match))
	case model.KindArticle:
		return records(Filter(idx.articles, match))
	case model.KindParagraph:
		return records(Filter(idx.paragraphs, match))
	case model.KindPoint:
		return records(Filter(idx.points, match))
	case model.KindSubpoint:
		return records(Filter(idx.subpoints, match))
	}
	return []model.Record{}
}

func records[T model.Record](in []T) []model.Record {
	out := make([]model.Record, len(in))
	for i, r := range in {
		out[i] = r
	}
	return out
}

// Lookup returns the first record of kind with the given key.
func (idx *Index) Lookup(kind model.Kind, key model.Key) (model.Record, bool) {
	r, ok := idx.byNode[node{kind: kind, key: key}]
	return r, ok
}

// ArticlesOf returns the articles of a chapter.
func (idx *Index) ArticlesOf(c *model.Chapter) []*model.Article {
	return Filter(idx.articles, model.Fields{model.FieldChapterNo: c.ChapterNo})
}

// DirectParagraphsOf returns the paragraphs placed in a chapter outside of any article.
func (idx *Index) DirectParagraphsOf(c *model.Chapter) []*model.Paragraph {
	return Filter(idx.paragraphs, model.Fields{model.FieldChapterNo: c.ChapterNo, model.FieldArticleNo: ""})
}

// ChapterOf returns the chapter any record belongs to.
func (idx *Index) ChapterOf(r model.Record) (*model.Chapter, bool) {
	found, ok := idx.Lookup(model.KindChapter, model.Key{ChapterNo: r.Key().ChapterNo})
	if !ok {
		return nil, false
	}
	return found.(*model.Chapter), true
}

func articleScope(a *model.Article) model.Fields {
	return model.Fields{model.FieldChapterNo: a.ChapterNo, model.FieldArticleNo: a.ArticleNo}
}

// ParagraphsOf returns the paragraphs of an article.
func (idx *Index) ParagraphsOf(a *model.Article) []*model.Paragraph {
	return Filter(idx.paragraphs, articleScope(a))
}

// PointsOf returns every point of an article, with or without paragraph.
func (idx *Index) PointsOf(a *model.Article) []*model.Point {
	return Filter(idx.points, articleScope(a))
}

// SubpointsOf returns every subpoint of an article.
func (idx *Index) SubpointsOf(a *model.Article) []*model.Subpoint {
	return Filter(idx.subpoints, articleScope(a))
}

// PointsOfParagraph returns the points of a paragraph.
func (idx *Index) PointsOfParagraph(p *model.Paragraph) []*model.Point {
	return Filter(idx.points, p.Fields())
}

// SubpointsOfPoint returns the subpoints of a point.
func (idx *Index) SubpointsOfPoint(pt *model.Point) []*model.Subpoint {
	return Filter(idx.subpoints, pt.Fields())
}

// Parent returns the nearest enclosing record. Levels with an empty number are skipped.
func (idx *Index) Parent(r model.Record) (model.Record, bool) {
	key := r.Key()
	chapter := model.Key{ChapterNo: key.ChapterNo}
	article := model.Key{ChapterNo: key.ChapterNo, ArticleNo: key.ArticleNo}

	switch r.Kind() {
	case model.KindArticle:
		return idx.Lookup(model.KindChapter, chapter)
	case model.KindParagraph:
		if key.ArticleNo != "" {
			return idx.Lookup(model.KindArticle, article)
		}
		return idx.Lookup(model.KindChapter, chapter)
	case model.KindPoint:
		if key.ParagraphNo != "" {
			return idx.Lookup(model.KindParagraph, model.Key{ChapterNo: key.ChapterNo, ArticleNo: key.ArticleNo, ParagraphNo: key.ParagraphNo})
		}
		if key.ArticleNo != "" {
			return idx.Lookup(model.KindArticle, article)
		}
		return idx.Lookup(model.KindChapter, chapter)
	case model.KindSubpoint:
		return idx.Lookup(model.KindPoint, model.Key{ChapterNo: key.ChapterNo, ArticleNo: key.ArticleNo, ParagraphNo: key.ParagraphNo, PointNo: key.PointNo})
	}
	return nil, false
}

// Children returns the direct children of r.
func (idx *Index) Children(r model.Record) []model.Record {
	return slices.Clone(idx.children[nodeOf(r)])
}

// ChildrenOfKind returns the direct children of r of one kind.
func (idx *Index) ChildrenOfKind(r model.Record, kind model.Kind) []model.Record {
	out := []model.Record{}
	for _, child := range idx.children[nodeOf(r)] {
		if child.Kind() == kind {
			out = append(out, child)
		}
	}
	return out
}

// Ancestors returns the chain of parents of r, nearest first.
func (idx *Index) Ancestors(r model.Record) []model.Record {
	out := []model.Record{}
	for current, ok := idx.Parent(r); ok; current, ok = idx.Parent(current) {
		out = append(out, current)
	}
	return out
}
