package parser

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Config configures the line parser.
type Config struct {
	// ChapterKeyword starts a chapter line, e.g. "Rozdział 1".
	ChapterKeyword string `json:"chapter_keyword" yaml:"chapter_keyword"`

	// ArticleKeyword starts an article line, e.g. "Art. 1.".
	ArticleKeyword string `json:"article_keyword" yaml:"article_keyword"`

	// MaxFileSize is the maximum file size ParseFile accepts (default: 64 MB).
	MaxFileSize int64 `json:"max_file_size" yaml:"max_file_size"`

	// Logger for debug messages about dropped lines and parse summaries.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

// DefaultConfig returns the configuration for Polish statutes.
func DefaultConfig() Config {
	cfg := Config{}
	cfg.defaults()
	return cfg
}

func (c *Config) defaults() {
	if c.ChapterKeyword == "" {
		c.ChapterKeyword = "Rozdział"
	}
	if c.ArticleKeyword == "" {
		c.ArticleKeyword = "Art."
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = 64 * 1024 * 1024
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// LoadConfig reads a YAML config file. Fields missing from the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.defaults()
	return cfg, cfg.Validate()
}

// Validate checks that the keywords cannot be confused with the numbering grammar.
func (c Config) Validate() error {
	if c.ChapterKeyword == c.ArticleKeyword {
		return fmt.Errorf("chapter_keyword and article_keyword must differ, both are %q", c.ChapterKeyword)
	}
	for name, keyword := range map[string]string{"chapter_keyword": c.ChapterKeyword, "article_keyword": c.ArticleKeyword} {
		if keyword == "" {
			return fmt.Errorf("%s must not be empty", name)
		}
		if keyword[0] >= '0' && keyword[0] <= '9' {
			return fmt.Errorf("%s must not start with a digit: %q", name, keyword)
		}
	}
	return nil
}
