package vectorstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/jasha9/digitaltwin/internal/ai"
)

type pgvectorConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
	Table    string `json:"table"`
}

// pgvectorStore runs similarity search over a local Postgres table of
// profile fragments. Unlike upstash there is no server-side embedding, so
// the query text is embedded through the configured embedder first.
type pgvectorStore struct {
	db       *sqlx.DB
	table    string
	embedder ai.IEmbedder
}

type fragmentRow struct {
	ID        string  `db:"id"`
	Title     string  `db:"title"`
	Content   string  `db:"content"`
	SourceTag string  `db:"source_tag"`
	Score     float64 `db:"score"`
}

func init() {
	Register("pgvector", createPgvectorStore)
}

func createPgvectorStore(args interface{}, deps Deps) (Store, error) {
	cfg := &pgvectorConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	if deps.Embedder == nil {
		return nil, fmt.Errorf("pgvector store requires an embedder")
	}
	dsn := cfg.DSN
	if dsn == "" {
		sslmode := cfg.SSLMode
		if sslmode == "" {
			sslmode = "disable"
		}
		dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, sslmode)
	}
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	table := strings.TrimSpace(cfg.Table)
	if table == "" {
		table = "profile_fragments"
	}
	return &pgvectorStore{db: db, table: table, embedder: deps.Embedder}, nil
}

func (s *pgvectorStore) Query(ctx context.Context, text string, topK int, includeMetadata bool) ([]QueryResult, error) {
	emb, err := s.embedder.Embed(ctx, text, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	query := fmt.Sprintf(`
		SELECT id, title, content, source_tag, 1 - (embedding <=> $1) AS score
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2
	`, s.table)
	rows, err := s.db.QueryxContext(ctx, query, pgvector.NewVector(emb), topK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var results []QueryResult
	for rows.Next() {
		var row fragmentRow
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		item := QueryResult{ID: row.ID, Score: row.Score}
		if includeMetadata {
			item.Metadata = map[string]interface{}{
				"title":   row.Title,
				"content": row.Content,
				"source":  row.SourceTag,
			}
		}
		results = append(results, item)
	}
	return results, rows.Err()
}

func (s *pgvectorStore) Info(ctx context.Context) (*IndexInfo, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.table)
	var count int64
	if err := s.db.GetContext(ctx, &count, query); err != nil {
		return nil, err
	}
	return &IndexInfo{VectorCount: count}, nil
}
