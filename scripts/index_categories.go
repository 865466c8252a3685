package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/findajob/jobboard/internal/config"
	"github.com/findajob/jobboard/internal/logger"
	"github.com/findajob/jobboard/internal/repositories"
	"github.com/findajob/jobboard/internal/services"
)

func main() {
	log.Println("🚀 Starting category indexing...")

	// Load configuration
	cfg := config.Load()

	zlog, err := logger.New(cfg.Server.LogJSON, cfg.Server.LogDebug)
	if err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	ctx := context.Background()

	// Initialize services
	generator, err := services.NewGenerator(ctx, cfg.AI.Provider, cfg.AIKey(), cfg.AIModel())
	if err != nil {
		log.Fatalf("❌ Failed to initialize AI provider: %v", err)
	}
	oracle := services.NewOracle(generator, services.OracleConfig{
		Timeout:         cfg.AI.Timeout,
		ExtractionModel: cfg.AI.ExtractionModel,
		MaxLogLength:    cfg.AI.MaxLogLength,
	}, zlog)

	index, err := services.NewCategoryIndex(services.QdrantIndexConfig{
		URL:        cfg.Qdrant.URL,
		APIKey:     cfg.Qdrant.APIKey,
		Collection: cfg.Qdrant.Collection,
		VectorSize: cfg.Qdrant.VectorSize,
		MinScore:   cfg.Qdrant.MinScore,
		Timeout:    cfg.AI.Timeout,
	}, oracle, zlog)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}
	if !index.Enabled() {
		log.Println("⚠️  Qdrant URL or AI key missing, nothing to index")
		os.Exit(1)
	}

	if err := index.InitCollection(ctx); err != nil {
		log.Fatalf("❌ Failed to initialize collection: %v", err)
	}

	taxonomy := services.NewTaxonomyService(repositories.NewCategoryRepository(db), zlog)
	created, err := taxonomy.Seed()
	if err != nil {
		log.Fatalf("❌ Failed to seed job categories: %v", err)
	}
	categories, err := taxonomy.List()
	if err != nil {
		log.Fatalf("❌ Failed to load job categories: %v", err)
	}
	log.Printf("📄 %d categories loaded (%d newly seeded)", len(categories), created)

	// Embed and store each category
	log.Printf("🔄 Embedding and storing categories...")
	indexed, err := index.Sync(ctx, categories)

	// Summary
	log.Println("\n" + strings.Repeat("=", 60))
	log.Printf("📊 Indexing Summary:")
	log.Printf("   ✅ Indexed: %d categories", indexed)
	log.Printf("   ❌ Failed: %d categories", len(categories)-indexed)
	log.Println(strings.Repeat("=", 60))

	if err != nil {
		log.Fatalf("❌ Indexing did not complete: %v", err)
	}

	log.Println("✅ All categories indexed successfully!")
}
