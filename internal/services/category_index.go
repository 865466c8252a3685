package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"github.com/findajob/jobboard/internal/logger"
	"github.com/findajob/jobboard/internal/models"
)

// CategoryIndex finds taxonomy categories semantically close to a query.
type CategoryIndex interface {
	Enabled() bool
	InitCollection(ctx context.Context) error
	Sync(ctx context.Context, categories []models.JobCategory) (int, error)
	Nearest(ctx context.Context, query string) []string
}

type QdrantIndexConfig struct {
	URL        string
	APIKey     string
	Collection string
	VectorSize uint64
	MinScore   float32
	Limit      uint64
	// Timeout bounds each similarity query. Defaults to 30s.
	Timeout                time.Duration
	SkipCompatibilityCheck bool
}

type qdrantCategoryIndex struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
	minScore       float32
	limit          uint64
	timeout        time.Duration
	oracle         Oracle
	logger         *zap.Logger
}

// NewCategoryIndex connects to Qdrant. Without a URL or an enabled oracle to
// embed with, a disabled index is returned.
func NewCategoryIndex(cfg QdrantIndexConfig, oracle Oracle, log *zap.Logger) (CategoryIndex, error) {
	if cfg.URL == "" || oracle == nil || !oracle.Enabled() {
		return disabledIndex{}, nil
	}

	parsed, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	// gRPC port
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   parsed.Hostname(),
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: parsed.Scheme == "https",

		SkipCompatibilityCheck: cfg.SkipCompatibilityCheck,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	if cfg.Limit == 0 {
		cfg.Limit = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &qdrantCategoryIndex{
		client:         client,
		collectionName: cfg.Collection,
		vectorSize:     cfg.VectorSize,
		minScore:       cfg.MinScore,
		limit:          cfg.Limit,
		timeout:        cfg.Timeout,
		oracle:         oracle,
		logger:         logger.OrNop(log),
	}, nil
}

// Enabled implements CategoryIndex.
func (q *qdrantCategoryIndex) Enabled() bool { return true }

// InitCollection implements CategoryIndex.
func (q *qdrantCategoryIndex) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	q.logger.Info("qdrant collection created", zap.String("collection", q.collectionName))
	return nil
}

// CategoryEmbeddingText is the text embedded for a category.
func CategoryEmbeddingText(c models.JobCategory) string {
	if len(c.Keywords) == 0 {
		return c.Name
	}
	return c.Name + ": " + strings.Join(c.Keywords, ", ")
}

// Sync implements CategoryIndex. Point ids are category ids, so re-syncing overwrites.
func (q *qdrantCategoryIndex) Sync(ctx context.Context, categories []models.JobCategory) (int, error) {
	points := make([]*qdrant.PointStruct, 0, len(categories))
	for _, c := range categories {
		embedding, err := q.oracle.Embed(ctx, CategoryEmbeddingText(c))
		if err != nil {
			return 0, fmt.Errorf("failed to embed category %q: %w", c.Name, err)
		}
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(uint64(c.ID)),
			Vectors: qdrant.NewVectors(embedding...),
			Payload: qdrant.NewValueMap(map[string]any{
				"category_id":   int64(c.ID),
				"name":          c.Name,
				"category_type": string(c.CategoryType),
			}),
		})
	}
	if len(points) == 0 {
		return 0, nil
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upsert points: %w", err)
	}
	return len(points), nil
}

// Nearest implements CategoryIndex. Failures yield no categories.
func (q *qdrantCategoryIndex) Nearest(ctx context.Context, query string) []string {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	embedding, err := q.oracle.Embed(ctx, query)
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(embedding...),
		ScoreThreshold: qdrant.PtrOf(q.minScore),
		Limit:          qdrant.PtrOf(q.limit),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		q.logger.Warn("category index query failed", zap.Error(err))
		return nil
	}

	var names []string
	for _, point := range points {
		if name, ok := point.Payload["name"]; ok {
			if val, ok := name.GetKind().(*qdrant.Value_StringValue); ok {
				names = append(names, val.StringValue)
			}
		}
	}
	return names
}

type disabledIndex struct{}

func (disabledIndex) Enabled() bool                        { return false }
func (disabledIndex) InitCollection(context.Context) error { return nil }
func (disabledIndex) Sync(context.Context, []models.JobCategory) (int, error) {
	return 0, nil
}
func (disabledIndex) Nearest(context.Context, string) []string { return nil }
