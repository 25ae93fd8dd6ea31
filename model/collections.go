package model

// Collections holds the five ordered record collections produced by a parse.
// Slice order is document order.
type Collections struct {
	Chapters   []*Chapter   `json:"chapters"`
	Articles   []*Article   `json:"articles"`
	Paragraphs []*Paragraph `json:"paragraphs"`
	Points     []*Point     `json:"points"`
	Subpoints  []*Subpoint  `json:"subpoints"`
}

// All returns every record, chapters first, then articles, paragraphs, points and subpoints.
func (c *Collections) All() []Record {
	records := make([]Record, 0, c.Len())
	for _, r := range c.Chapters {
		records = append(records, r)
	}
	for _, r := range c.Articles {
		records = append(records, r)
	}
	for _, r := range c.Paragraphs {
		records = append(records, r)
	}
	for _, r := range c.Points {
		records = append(records, r)
	}
	for _, r := range c.Subpoints {
		records = append(records, r)
	}
	return records
}

// OfKind returns the records of one kind in document order.
func (c *Collections) OfKind(kind Kind) []Record {
	var records []Record
	switch kind {
	case KindChapter:
		records = make([]Record, 0, len(c.Chapters))
		for _, r := range c.Chapters {
			records = append(records, r)
		}
	case KindArticle:
		records = make([]Record, 0, len(c.Articles))
		for _, r := range c.Articles {
			records = append(records, r)
		}
	case KindParagraph:
		records = make([]Record, 0, len(c.Paragraphs))
		for _, r := range c.Paragraphs {
			records = append(records, r)
		}
	case KindPoint:
		records = make([]Record, 0, len(c.Points))
		for _, r := range c.Points {
			records = append(records, r)
		}
	case KindSubpoint:
		records = make([]Record, 0, len(c.Subpoints))
		for _, r := range c.Subpoints {
			records = append(records, r)
		}
	}
	return records
}

// Len returns the total number of records.
func (c *Collections) Len() int {
	return len(c.Chapters) + len(c.Articles) + len(c.Paragraphs) + len(c.Points) + len(c.Subpoints)
}

// Counts returns the number of records per kind.
func (c *Collections) Counts() map[Kind]int {
	return map[Kind]int{
		KindChapter:   len(c.Chapters),
		KindArticle:   len(c.Articles),
		KindParagraph: len(c.Paragraphs),
		KindPoint:     len(c.Points),
		KindSubpoint:  len(c.Subpoints),
	}
}
