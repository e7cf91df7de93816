package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Aashish23092/vision-text-ocr/dto"
)

// Table names are compile-time constants; they are the only values ever
// formatted into statement text.
const (
	OCRResultsTable = "vision_text_ocr_results"
	FeedbackTable   = "vision_text_feedback"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS ` + OCRResultsTable + ` (
		id SERIAL PRIMARY KEY,
		filename VARCHAR(255) NOT NULL,
		extracted_text TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS ` + OCRResultsTable + `_created_at_idx ON ` + OCRResultsTable + ` (created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS ` + FeedbackTable + ` (
		id SERIAL PRIMARY KEY,
		comment TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS ` + FeedbackTable + `_created_at_idx ON ` + FeedbackTable + ` (created_at DESC)`,
}

const (
	insertOCRResultSQL = `INSERT INTO ` + OCRResultsTable + ` (filename, extracted_text)
		VALUES ($1, $2)
		RETURNING id, filename, extracted_text, created_at`

	listOCRResultsSQL = `SELECT id, filename, extracted_text, created_at
		FROM ` + OCRResultsTable + `
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`

	getOCRResultSQL = `SELECT id, filename, extracted_text, created_at
		FROM ` + OCRResultsTable + `
		WHERE id = $1`

	insertFeedbackSQL = `INSERT INTO ` + FeedbackTable + ` (comment)
		VALUES ($1)
		RETURNING id, comment, created_at`

	listFeedbackSQL = `SELECT id, comment, created_at
		FROM ` + FeedbackTable + `
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`
)

// Querier is what a unit of work can do with its connection.
type Querier interface {
	InsertOCRResult(ctx context.Context, filename, text string) (*dto.OCRResult, error)
	ListOCRResults(ctx context.Context, page dto.Page) ([]dto.OCRResult, error)
	GetOCRResultByID(ctx context.Context, id int64) (*dto.OCRResult, error)
	InsertFeedback(ctx context.Context, comment string) (*dto.Feedback, error)
	ListFeedback(ctx context.Context, page dto.Page) ([]dto.Feedback, error)
}

// Queries runs the statements against a single connection or transaction.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// InsertOCRResult returns dto.ErrNotSaved when the insert yields no row.
func (q *Queries) InsertOCRResult(ctx context.Context, filename, text string) (*dto.OCRResult, error) {
	var r dto.OCRResult
	err := q.db.QueryRow(ctx, insertOCRResultSQL, filename, text).
		Scan(&r.ID, &r.Filename, &r.ExtractedText, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("insert ocr result %q: %w", filename, dto.ErrNotSaved)
	}
	if err != nil {
		return nil, fmt.Errorf("insert ocr result %q: %w", filename, err)
	}
	return &r, nil
}

func (q *Queries) ListOCRResults(ctx context.Context, page dto.Page) ([]dto.OCRResult, error) {
	rows, err := q.db.Query(ctx, listOCRResultsSQL, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list ocr results: %w", err)
	}
	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (dto.OCRResult, error) {
		var r dto.OCRResult
		err := row.Scan(&r.ID, &r.Filename, &r.ExtractedText, &r.CreatedAt)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan ocr results: %w", err)
	}
	return results, nil
}

// GetOCRResultByID returns dto.ErrNotFound when no row has that id.
func (q *Queries) GetOCRResultByID(ctx context.Context, id int64) (*dto.OCRResult, error) {
	var r dto.OCRResult
	err := q.db.QueryRow(ctx, getOCRResultSQL, id).
		Scan(&r.ID, &r.Filename, &r.ExtractedText, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("ocr result %d: %w", id, dto.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get ocr result %d: %w", id, err)
	}
	return &r, nil
}

func (q *Queries) InsertFeedback(ctx context.Context, comment string) (*dto.Feedback, error) {
	var f dto.Feedback
	err := q.db.QueryRow(ctx, insertFeedbackSQL, comment).Scan(&f.ID, &f.Comment, &f.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("insert feedback: %w", dto.ErrNotSaved)
	}
	if err != nil {
		return nil, fmt.Errorf("insert feedback: %w", err)
	}
	return &f, nil
}

func (q *Queries) ListFeedback(ctx context.Context, page dto.Page) ([]dto.Feedback, error) {
	rows, err := q.db.Query(ctx, listFeedbackSQL, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	feedback, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (dto.Feedback, error) {
		var f dto.Feedback
		err := row.Scan(&f.ID, &f.Comment, &f.CreatedAt)
		return f, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan feedback: %w", err)
	}
	return feedback, nil
}
