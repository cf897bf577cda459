package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"sovdash/internal/models"
	"sovdash/internal/validation"
)

// SaveRun inserts an analysis run and sets its ID and CreatedAt.
func (d *DB) SaveRun(ctx context.Context, run *models.AnalysisRun) error {
	result, err := json.Marshal(run.Result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	keywords := run.Keywords
	if keywords == nil {
		keywords = []string{}
	}

	return d.Pool.QueryRow(ctx, `
		INSERT INTO analysis_runs (keywords, analysis_type, result)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, keywords, string(run.AnalysisType), result).Scan(&run.ID, &run.CreatedAt)
}

// LatestRun returns the most recently saved run.
func (d *DB) LatestRun(ctx context.Context) (*models.AnalysisRun, error) {
	row := d.Pool.QueryRow(ctx, `
		SELECT id, keywords, analysis_type, result, created_at
		FROM analysis_runs
		ORDER BY created_at DESC
		LIMIT 1
	`)
	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	return run, err
}

// ListRuns returns up to limit runs, newest first.
func (d *DB) ListRuns(ctx context.Context, limit int) ([]models.AnalysisRun, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, keywords, analysis_type, result, created_at
		FROM analysis_runs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.AnalysisRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// PruneRuns deletes all but the keep most recent runs and reports how many
// were removed.
func (d *DB) PruneRuns(ctx context.Context, keep int) (int64, error) {
	tag, err := d.Pool.Exec(ctx, `
		DELETE FROM analysis_runs
		WHERE id NOT IN (
			SELECT id FROM analysis_runs
			ORDER BY created_at DESC
			LIMIT $1
		)
	`, keep)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// IncrementKeywordSearch counts one search for keyword under analysisType.
// Keywords are counted case-insensitively; a blank keyword is ignored.
func (d *DB) IncrementKeywordSearch(ctx context.Context, keyword, analysisType string) error {
	keyword, typ, ok := searchKey(keyword, analysisType)
	if !ok {
		return nil
	}
	_, err := d.Pool.Exec(ctx, `
		INSERT INTO keyword_searches (keyword, analysis_type, count, last_seen_at)
		VALUES ($1, $2, 1, NOW())
		ON CONFLICT (keyword, analysis_type) DO UPDATE
		SET count = keyword_searches.count + 1, last_seen_at = NOW()
	`, keyword, typ)
	return err
}

// GetAllKeywordSearches returns all keyword search rows for metrics export.
func (d *DB) GetAllKeywordSearches(ctx context.Context) ([]models.KeywordSearch, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT keyword, analysis_type, count, last_seen_at
		FROM keyword_searches
		ORDER BY keyword, analysis_type
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var searches []models.KeywordSearch
	for rows.Next() {
		var s models.KeywordSearch
		if err := rows.Scan(&s.Keyword, &s.AnalysisType, &s.Count, &s.LastSeenAt); err != nil {
			return nil, err
		}
		searches = append(searches, s)
	}
	return searches, rows.Err()
}

// searchKey normalizes a keyword counter key the way search input is
// normalized, so "Smart  Fan" and "smart fan" share a row.
func searchKey(keyword, analysisType string) (string, string, bool) {
	k := strings.ToLower(validation.NormalizeKeyword(keyword))
	if k == "" {
		return "", "", false
	}
	typ, _ := models.ParseAnalysisType(analysisType)
	return k, string(typ), true
}

func scanRun(row pgx.Row) (*models.AnalysisRun, error) {
	var (
		run    models.AnalysisRun
		typ    string
		result []byte
	)
	if err := row.Scan(&run.ID, &run.Keywords, &typ, &result, &run.CreatedAt); err != nil {
		return nil, err
	}
	run.AnalysisType = models.AnalysisType(typ)
	if err := json.Unmarshal(result, &run.Result); err != nil {
		return nil, fmt.Errorf("decode result of run %s: %w", run.ID, err)
	}
	return &run, nil
}
