package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/Ken-Miles/farm-computer/internal/storage/models"
	"github.com/Ken-Miles/farm-computer/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS lookups (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		query TEXT NOT NULL,
		resolved_url TEXT,
		outcome TEXT NOT NULL,
		cache_hit INTEGER NOT NULL DEFAULT 0,
		latency_ms INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_lookups_user ON lookups(user_id);
	CREATE INDEX IF NOT EXISTS idx_lookups_query ON lookups(query);
	CREATE INDEX IF NOT EXISTS idx_lookups_created ON lookups(created_at);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) InsertLookup(record *models.LookupRecord) error {
	query := `
		INSERT INTO lookups (id, user_id, query, resolved_url, outcome, cache_hit, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	cacheHit := 0
	if record.CacheHit {
		cacheHit = 1
	}

	_, err := c.db.Exec(
		query,
		record.ID,
		record.UserID,
		record.Query,
		record.ResolvedURL,
		record.Outcome,
		cacheHit,
		record.LatencyMS,
		record.CreatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert lookup: %w", err)
	}

	return nil
}

func (c *Client) GetRecentLookups(limit int) ([]models.LookupRecord, error) {
	query := `
		SELECT id, user_id, query, resolved_url, outcome, cache_hit, latency_ms, created_at
		FROM lookups
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := c.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent lookups: %w", err)
	}
	defer rows.Close()

	var records []models.LookupRecord
	for rows.Next() {
		var r models.LookupRecord
		var cacheHit int
		var createdAt int64

		err := rows.Scan(&r.ID, &r.UserID, &r.Query, &r.ResolvedURL, &r.Outcome, &cacheHit, &r.LatencyMS, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		r.CacheHit = cacheHit != 0
		r.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, r)
	}

	return records, rows.Err()
}

func (c *Client) GetStats(since time.Time) (*models.LookupStats, error) {
	stats := &models.LookupStats{}

	row := c.db.QueryRow(`
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN outcome = 'not_found' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(cache_hit), 0),
			COALESCE(AVG(latency_ms), 0)
		FROM lookups
		WHERE created_at >= ?
	`, since.Unix())

	err := row.Scan(&stats.TotalLookups, &stats.NotFound, &stats.CacheHits, &stats.AvgLatencyMS)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate lookups: %w", err)
	}

	rows, err := c.db.Query(`
		SELECT query, COUNT(*) AS n
		FROM lookups
		WHERE created_at >= ?
		GROUP BY query
		ORDER BY n DESC
		LIMIT 10
	`, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to get top queries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var qc models.QueryCount
		if err := rows.Scan(&qc.Query, &qc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		stats.TopQueries = append(stats.TopQueries, qc)
	}

	return stats, rows.Err()
}
