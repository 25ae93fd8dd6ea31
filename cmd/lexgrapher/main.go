// Command lexgrapher parses Polish statutes into their chapter, article, paragraph,
// point and subpoint records and stores them for retrieval.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/siherrmann/lexgrapher"
	"github.com/siherrmann/lexgrapher/core/index"
	"github.com/siherrmann/lexgrapher/core/loader"
	"github.com/siherrmann/lexgrapher/core/parser"
	"github.com/siherrmann/lexgrapher/core/pipeline"
	"github.com/siherrmann/lexgrapher/helper"
	"github.com/siherrmann/lexgrapher/model"
)

const version = "0.1.0"

// CLI defines the command-line interface for lexgrapher.
type CLI struct {
	// Global flags
	Config string `name:"config" short:"c" help:"Grammar configuration file (YAML)" type:"existingfile"`
	Debug  bool   `help:"Enable debug logging"`

	Parse     ParseCmd     `cmd:"" help:"Print the number of records per kind"`
	Tree      TreeCmd      `cmd:"" help:"Print the record hierarchy"`
	Documents DocumentsCmd `cmd:"" help:"Print one JSON document (or chunk) per line"`
	Ingest    IngestCmd    `cmd:"" help:"Parse, embed and store a statute in PostgreSQL"`
	Search    SearchCmd    `cmd:"" help:"Search stored statutes"`
	Version   VersionCmd   `cmd:"" help:"Print version information"`
}

// newParser builds a parser from the global flags, logging to the error writer.
func (c *CLI) newParser(stderr io.Writer) (*parser.Parser, error) {
	cfg := parser.DefaultConfig()
	if c.Config != "" {
		var err error
		cfg, err = parser.LoadConfig(c.Config)
		if err != nil {
			return nil, err
		}
	}
	cfg.Logger = c.logger(stderr)
	return parser.New(cfg), nil
}

func (c *CLI) logger(stderr io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if c.Debug {
		level = slog.LevelDebug
	}
	return helper.NewLogger(stderr, level)
}

// ParseCmd prints record counts.
type ParseCmd struct {
	Path string `arg:"" help:"Statute text file" type:"existingfile"`
}

func (c *ParseCmd) Run(ctx *kong.Context, cli *CLI) error {
	p, err := cli.newParser(ctx.Stderr)
	if err != nil {
		return err
	}

	collections, err := p.ParseFile(c.Path)
	if err != nil {
		return err
	}

	counts := collections.Counts()
	for _, kind := range model.Kinds() {
		fmt.Fprintf(ctx.Stdout, "%-10s %d\n", kind, counts[kind])
	}
	return nil
}

// TreeCmd prints the hierarchy, one record per line indented by depth.
type TreeCmd struct {
	Path  string `arg:"" help:"Statute text file" type:"existingfile"`
	Width int    `help:"Maximum text width per line, 0 for no limit" default:"80"`
	Depth int    `help:"Levels printed below each chapter, negative for all" default:"-1"`
}

func (c *TreeCmd) Run(ctx *kong.Context, cli *CLI) error {
	p, err := cli.newParser(ctx.Stderr)
	if err != nil {
		return err
	}

	collections, err := p.ParseFile(c.Path)
	if err != nil {
		return err
	}

	idx := index.New(collections)
	label := &labeler{grammar: p.Grammar(), width: c.Width}
	for _, chapter := range idx.Chapters() {
		visible := make(map[model.Key]bool)
		for _, result := range idx.Descendants(chapter, c.Depth) {
			visible[result.Record.Key()] = true
		}
		printTree(ctx.Stdout, idx, chapter, 0, visible, label)
	}
	return nil
}

func printTree(w io.Writer, idx *index.Index, r model.Record, depth int, visible map[model.Key]bool, label *labeler) {
	fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), label.of(r))
	for _, child := range idx.Children(r) {
		if visible[child.Key()] {
			printTree(w, idx, child, depth+1, visible, label)
		}
	}
}

// labeler renders a record the way it is numbered in the statute text.
type labeler struct {
	grammar *parser.Grammar
	width   int
	out     string
}

func (l *labeler) of(r model.Record) string {
	r.Accept(l)
	return l.out
}

func (l *labeler) set(marker, text string) {
	if l.width > 0 && len([]rune(text)) > l.width {
		text = string([]rune(text)[:l.width]) + "..."
	}
	l.out = strings.TrimSpace(marker + " " + text)
}

func (l *labeler) VisitChapter(c *model.Chapter) {
	l.set(l.grammar.ChapterKeyword()+" "+c.ChapterNo, c.Text)
}

func (l *labeler) VisitArticle(a *model.Article) {
	l.set(l.grammar.ArticleKeyword()+" "+a.ArticleNo+".", a.Text)
}

func (l *labeler) VisitParagraph(p *model.Paragraph) { l.set(p.ParagraphNo+".", p.Text) }
func (l *labeler) VisitPoint(p *model.Point)         { l.set(p.PointNo+")", p.Text) }
func (l *labeler) VisitSubpoint(s *model.Subpoint)   { l.set(s.SubpointNo+")", s.Text) }

// DocumentsCmd prints documents or, with a split size, chunks as JSON lines.
type DocumentsCmd struct {
	Path      string `arg:"" help:"Statute text file" type:"existingfile"`
	Source    string `help:"Source label, defaults to the file name"`
	SplitSize int    `name:"split-size" help:"Split documents into chunks of this many characters, 0 disables splitting"`
	Overlap   int    `help:"Chunk overlap in characters" default:"30"`
	Separator string `help:"Chunk separator" default:";"`
}

func (c *DocumentsCmd) Run(ctx *kong.Context, cli *CLI) error {
	p, err := cli.newParser(ctx.Stderr)
	if err != nil {
		return err
	}

	opts := []loader.Option{loader.WithParser(p), loader.WithLogger(cli.logger(ctx.Stderr))}
	if c.Source != "" {
		opts = append(opts, loader.WithSource(c.Source))
	}
	l := loader.New(c.Path, opts...)

	encoder := json.NewEncoder(ctx.Stdout)
	if c.SplitSize > 0 {
		chunks, err := l.LoadAndSplit(pipeline.SeparatorChunker(c.SplitSize, c.Overlap, c.Separator, true))
		if err != nil {
			return err
		}
		for _, chunk := range chunks {
			if err := encoder.Encode(chunk); err != nil {
				return err
			}
		}
		return nil
	}

	docs, err := l.Load()
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if err := encoder.Encode(doc); err != nil {
			return err
		}
	}
	return nil
}

// IngestCmd stores a statute with the default pipeline.
type IngestCmd struct {
	Path   string `arg:"" help:"Statute text file" type:"existingfile"`
	Source string `help:"Source label, defaults to the file name"`
	Dim    int    `help:"Embedding dimension" default:"384"`
}

func (c *IngestCmd) Run(ctx *kong.Context, cli *CLI) error {
	g, err := openLexgrapher(cli, c.Dim)
	if err != nil {
		return err
	}
	defer g.Close()

	n, err := g.IngestFile(context.Background(), c.Path, c.Source)
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.Stdout, "stored %d documents\n", n)
	return nil
}

// SearchCmd searches stored statutes and prints one JSON result per line.
type SearchCmd struct {
	Query     string            `arg:"" help:"Search query"`
	Method    string            `help:"Retrieval method (vector, hierarchical, metadata)" default:"vector" enum:"vector,hierarchical,metadata"`
	TopK      int               `name:"top-k" help:"Maximum number of results" default:"5"`
	Threshold float64           `help:"Minimum cosine similarity" default:"0.7"`
	Kind      []string          `help:"Restrict results to these kinds"`
	Filter    map[string]string `help:"Exact metadata filter, e.g. article_no=4"`
	Ancestors bool              `help:"Attach enclosing records"`
	Children  bool              `help:"Attach direct child records" default:"true" negatable:""`
	Dim       int               `help:"Embedding dimension" default:"384"`
}

// searchConfig converts the flags into a search configuration.
func (c *SearchCmd) searchConfig() model.SearchConfig {
	config := model.DefaultSearchConfig()
	config.Method = model.RetrievalMethod(c.Method)
	config.TopK = c.TopK
	config.SimilarityThreshold = c.Threshold
	config.IncludeAncestors = c.Ancestors
	config.IncludeChildren = c.Children
	if len(c.Filter) > 0 {
		config.Filter = model.Fields(c.Filter)
	}
	for _, kind := range c.Kind {
		config.Kinds = append(config.Kinds, model.Kind(kind))
	}
	return config
}

func (c *SearchCmd) Run(ctx *kong.Context, cli *CLI) error {
	g, err := openLexgrapher(cli, c.Dim)
	if err != nil {
		return err
	}
	defer g.Close()

	results, err := g.Search(context.Background(), c.Query, c.searchConfig())
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(ctx.Stdout)
	for _, result := range results {
		if err := encoder.Encode(result); err != nil {
			return err
		}
	}
	return nil
}

// openLexgrapher connects with the environment configuration and sets up the default pipeline.
func openLexgrapher(cli *CLI, dim int) (*lexgrapher.Lexgrapher, error) {
	dbConfig, err := helper.NewDatabaseConfiguration()
	if err != nil {
		return nil, err
	}

	g, err := lexgrapher.NewLexgrapher(dbConfig, dim)
	if err != nil {
		return nil, err
	}

	if cli.Config != "" {
		p, err := cli.newParser(io.Discard)
		if err != nil {
			g.Close()
			return nil, err
		}
		g.SetParser(p)
	}

	err = g.UseDefaultPipeline()
	if err != nil {
		g.Close()
		return nil, err
	}
	return g, nil
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (c *VersionCmd) Run(ctx *kong.Context) error {
	fmt.Fprintf(ctx.Stdout, "lexgrapher %s\n", version)
	return nil
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("lexgrapher"),
		kong.Description("Parse and search Polish statutes"),
		kong.UsageOnError(),
		kong.Bind(cli),
	)
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
