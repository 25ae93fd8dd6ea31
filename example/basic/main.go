package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/siherrmann/lexgrapher"
	"github.com/siherrmann/lexgrapher/helper"
	"github.com/siherrmann/lexgrapher/model"
)

const sampleStatute = `Rozdział 1
Przepisy ogólne

Art. 1.
System oświaty zapewnia w szczególności:
1) realizację prawa każdego obywatela Rzeczypospolitej Polskiej do kształcenia się;
2) wspomaganie przez szkołę wychowawczej roli rodziny;

Art. 2. 1. System oświaty wspierają:
1) organizacje pozarządowe, w tym organizacje harcerskie;
2) instytuty badawcze;
2. Organy administracji publicznej wspierają szkoły i placówki.
`

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	g, err := lexgrapher.NewLexgrapher(dbConfig, 384)
	if err != nil {
		log.Fatalf("Failed to create lexgrapher: %v", err)
	}
	defer g.Close()

	// Split on ";" and embed with all-MiniLM-L6-v2
	if err := g.UseDefaultPipeline(); err != nil {
		log.Fatalf("Failed to set up pipeline: %v", err)
	}

	path := filepath.Join(os.TempDir(), "ustawa_o_systemie_oswiaty.txt")
	if err := os.WriteFile(path, []byte(sampleStatute), 0644); err != nil {
		log.Fatalf("Failed to write sample statute: %v", err)
	}
	defer os.Remove(path)

	// Relationships without any database
	idx, err := g.ParseFile(path)
	if err != nil {
		log.Fatalf("Failed to parse statute: %v", err)
	}
	for _, article := range idx.Articles() {
		fmt.Printf("Art. %s has %d paragraphs and %d points\n", article.ArticleNo, len(idx.ParagraphsOf(article)), len(idx.PointsOf(article)))
	}

	fmt.Println("\nIngesting statute...")
	n, err := g.IngestFile(context.Background(), path, "ustawa")
	if err != nil {
		log.Fatalf("Failed to ingest statute: %v", err)
	}
	fmt.Printf("Stored %d documents\n", n)

	queryText := "Kto wspiera system oświaty?"
	fmt.Printf("\nQuerying: %s\n", queryText)

	config := model.DefaultSearchConfig()
	config.Method = model.RetrievalMethodHierarchical
	config.SimilarityThreshold = 0.3
	config.IncludeAncestors = true

	results, err := g.Search(context.Background(), queryText, config)
	if err != nil {
		log.Fatalf("Failed to search: %v", err)
	}

	fmt.Printf("Found %d paragraphs:\n", len(results))
	for i, result := range results {
		key := result.Document.Metadata.Key()
		fmt.Printf("\n%d. Art. %s ust. %s (score %.4f)\n", i+1, key.ArticleNo, key.ParagraphNo, result.Score)
		fmt.Printf("   %s\n", result.Document.Content)
		for _, point := range result.Children {
			fmt.Printf("   %s) %s\n", point.Metadata.Key().PointNo, point.Content)
		}
		for _, ancestor := range result.Ancestors {
			fmt.Printf("   in %s %s\n", ancestor.Kind(), ancestor.Content)
		}
	}
}
