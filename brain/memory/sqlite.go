package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sayraos/sayra/brain/providers"
)

// SQLiteStore persists records in a local SQLite database and ranks recall
// with in-process cosine similarity over stored embeddings. For a
// single-user assistant the full scan stays small and index-free.
type SQLiteStore struct {
	db       *gorm.DB
	embedder providers.Embedder
}

// NewSQLiteStore opens (or creates) the database at path and migrates the
// schema.
func NewSQLiteStore(path string, embedder providers.Embedder) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open memory db: %w", err)
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrate memory db: %w", err)
	}
	return &SQLiteStore{db: db, embedder: embedder}, nil
}

// Save appends one record. An embedding failure downgrades the record to
// unsearchable instead of losing it.
func (s *SQLiteStore) Save(ctx context.Context, text, source string) error {
	var embedded []byte
	vec, err := s.embedder.Embedding(ctx, text)
	if err != nil {
		logrus.WithError(err).Warn("[MEMORY] Embedding failed, storing record without vector")
	} else {
		embedded = encodeVector(vec)
	}

	rec := Record{
		ID:        uuid.NewString(),
		Text:      text,
		Source:    source,
		Embedding: embedded,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("save memory: %w", err)
	}
	return nil
}

// Recall embeds the query and returns the k most similar stored texts.
// Embedding failure is treated as transient: empty result, nil error.
func (s *SQLiteStore) Recall(ctx context.Context, query string, k int) ([]string, error) {
	if k <= 0 {
		return nil, nil
	}

	queryVec, err := s.embedder.Embedding(ctx, query)
	if err != nil {
		logrus.WithError(err).Warn("[MEMORY] Query embedding failed, recalling nothing")
		return nil, nil
	}

	var records []Record
	if err := s.db.WithContext(ctx).
		Where("embedding IS NOT NULL AND length(embedding) > 0").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("load memories: %w", err)
	}

	type scored struct {
		text  string
		score float64
	}
	ranked := make([]scored, 0, len(records))
	for _, rec := range records {
		vec := decodeVector(rec.Embedding)
		if vec == nil {
			continue
		}
		ranked = append(ranked, scored{text: rec.Text, score: cosineSimilarity(queryVec, vec)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if k > len(ranked) {
		k = len(ranked)
	}
	out := make([]string, 0, k)
	for _, r := range ranked[:k] {
		out = append(out, r.text)
	}
	return out, nil
}

// Count reports the number of stored records.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&Record{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
