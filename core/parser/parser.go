package parser

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/siherrmann/lexgrapher/helper"
	"github.com/siherrmann/lexgrapher/model"
)

// Parser turns the lines of a statute into ordered record collections.
// A Parser holds no state between calls and may be used from multiple goroutines.
type Parser struct {
	config  Config
	grammar *Grammar
	logger  *slog.Logger
}

// New creates a parser. Zero values in cfg are replaced by defaults.
func New(cfg Config) *Parser {
	cfg.defaults()
	return &Parser{
		config:  cfg,
		grammar: NewGrammar(cfg.ChapterKeyword, cfg.ArticleKeyword),
		logger:  cfg.Logger,
	}
}

// Grammar returns the grammar the parser matches lines with.
func (p *Parser) Grammar() *Grammar {
	return p.grammar
}

// ParseFile reads the file at path and parses it.
func (p *Parser) ParseFile(path string) (*model.Collections, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, helper.NewError("stat file", err)
	}
	if info.Size() > p.config.MaxFileSize {
		return nil, helper.NewError("check file size", fmt.Errorf("file %s has %d bytes, limit is %d", path, info.Size(), p.config.MaxFileSize))
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, helper.NewError("open file", err)
	}
	defer file.Close()

	collections, err := p.Parse(file)
	if err != nil {
		return nil, helper.NewError("parse "+path, err)
	}
	return collections, nil
}

// ParseString parses text held in memory.
func (p *Parser) ParseString(text string) (*model.Collections, error) {
	return p.Parse(strings.NewReader(text))
}

// Parse reads r line by line and returns the records in document order.
// A structural error aborts the parse and is returned as *LineError.
func (p *Parser) Parse(r io.Reader) (*model.Collections, error) {
	run := &parseRun{
		grammar: p.grammar,
		logger:  p.logger,
		result:  &model.Collections{},
	}

	reader := bufio.NewReader(r)
	lineNo := 0
	for {
		line, readErr := reader.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return nil, helper.NewError("read lines", readErr)
		}
		if readErr == io.EOF && line == "" {
			break
		}

		lineNo++
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		line = strings.TrimSpace(line)
		if line != "" {
			if err := run.line(lineNo, line); err != nil {
				return nil, err
			}
		}
		if readErr == io.EOF {
			break
		}
	}

	counts := run.result.Counts()
	p.logger.Debug(
		"Parsed statute",
		slog.Int("lines", lineNo),
		slog.Int("chapters", counts[model.KindChapter]),
		slog.Int("articles", counts[model.KindArticle]),
		slog.Int("paragraphs", counts[model.KindParagraph]),
		slog.Int("points", counts[model.KindPoint]),
		slog.Int("subpoints", counts[model.KindSubpoint]),
	)
	return run.result, nil
}

// parseRun is the state of a single Parse call.
type parseRun struct {
	grammar *Grammar
	logger  *slog.Logger
	cursors cursors
	result  *model.Collections
}

func (run *parseRun) line(lineNo int, line string) error {
	if chapterNo, ok := run.grammar.MatchChapter(line); ok {
		run.openChapter(chapterNo)
		return nil
	}
	if match, ok := run.grammar.MatchArticle(line); ok {
		return run.openArticle(lineNo, line, match)
	}
	if paragraphNo, text, ok := run.grammar.MatchParagraph(line); ok {
		return run.openParagraph(lineNo, line, paragraphNo, text)
	}
	if pointNo, text, ok := run.grammar.MatchPoint(line); ok {
		return run.openPoint(lineNo, line, pointNo, text)
	}
	if subpointNo, text, ok := run.grammar.MatchSubpoint(line); ok {
		return run.openSubpoint(lineNo, line, subpointNo, text)
	}

	current := run.cursors.deepest()
	if current == nil {
		run.logger.Debug("Dropped line outside of any chapter", slog.Int("line", lineNo))
		return nil
	}
	current.Accept(continuation{line: line})
	return nil
}

func (run *parseRun) openChapter(chapterNo string) {
	chapter := &model.Chapter{ChapterNo: chapterNo}
	run.result.Chapters = append(run.result.Chapters, chapter)
	run.cursors.open(chapter)
}

func (run *parseRun) openArticle(lineNo int, line string, match ArticleMatch) error {
	if run.cursors.chapter == nil {
		return &LineError{Line: lineNo, Text: line, Kind: model.KindArticle, Missing: model.KindChapter}
	}

	article := &model.Article{
		ArticleNo: match.ArticleNo,
		ChapterNo: run.cursors.chapterNo(),
		Text:      match.Title,
	}
	run.result.Articles = append(run.result.Articles, article)
	run.cursors.open(article)

	if match.HasInlineParagraph() {
		paragraphNo, text, ok := run.grammar.MatchParagraph(match.Rest)
		if ok {
			return run.openParagraph(lineNo, line, paragraphNo, text)
		}
	}
	return nil
}

func (run *parseRun) openParagraph(lineNo int, line string, paragraphNo, text string) error {
	if run.cursors.chapter == nil {
		return &LineError{Line: lineNo, Text: line, Kind: model.KindParagraph, Missing: model.KindChapter}
	}

	paragraph := &model.Paragraph{
		ParagraphNo: paragraphNo,
		ChapterNo:   run.cursors.chapterNo(),
		ArticleNo:   run.cursors.articleNo(),
		Text:        text,
	}
	run.result.Paragraphs = append(run.result.Paragraphs, paragraph)
	run.cursors.open(paragraph)
	return nil
}

func (run *parseRun) openPoint(lineNo int, line string, pointNo, text string) error {
	if run.cursors.chapter == nil {
		return &LineError{Line: lineNo, Text: line, Kind: model.KindPoint, Missing: model.KindChapter}
	}

	point := &model.Point{
		PointNo:     pointNo,
		ChapterNo:   run.cursors.chapterNo(),
		ArticleNo:   run.cursors.articleNo(),
		ParagraphNo: run.cursors.paragraphNo(),
		Text:        text,
	}
	run.result.Points = append(run.result.Points, point)
	run.cursors.open(point)
	return nil
}

func (run *parseRun) openSubpoint(lineNo int, line string, subpointNo, text string) error {
	if run.cursors.point == nil {
		run.logger.Debug("Dropped subpoint without an open point", slog.Int("line", lineNo), slog.String("subpoint_no", subpointNo))
		return nil
	}
	if run.cursors.chapter == nil {
		return &LineError{Line: lineNo, Text: line, Kind: model.KindSubpoint, Missing: model.KindChapter}
	}
	if run.cursors.article == nil {
		return &LineError{Line: lineNo, Text: line, Kind: model.KindSubpoint, Missing: model.KindArticle}
	}

	subpoint := &model.Subpoint{
		SubpointNo:  subpointNo,
		ChapterNo:   run.cursors.chapterNo(),
		ArticleNo:   run.cursors.articleNo(),
		ParagraphNo: run.cursors.paragraphNo(),
		PointNo:     run.cursors.point.PointNo,
		Text:        text,
	}
	run.result.Subpoints = append(run.result.Subpoints, subpoint)
	run.cursors.open(subpoint)
	return nil
}
