package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"NewsAnalyzer/internal/domain"
	"NewsAnalyzer/internal/ports"
)

// uniqueViolation is the Postgres error code raised when the fingerprint
// unique constraint rejects a concurrent insert.
const uniqueViolation = "23505"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresRepository persists news records in Postgres. Stage guards live in
// the UPDATE predicates so processing_stage can never regress, even when two
// workers race on the same record.
type PostgresRepository struct {
	db *sql.DB
}

var _ ports.NewsRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Exists reports whether a record with the fingerprint is already stored.
func (r *PostgresRepository) Exists(ctx context.Context, fingerprint string) (bool, error) {
	query, args, err := psql.Select("1").
		From("news_records").
		Where(sq.Eq{"fingerprint": fingerprint}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists query: %w", err)
	}

	var one int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query exists: %w", err)
	}
	return true, nil
}

// Insert creates a row at the ingested stage. A fingerprint collision with a
// concurrent insert surfaces as domain.ErrDuplicate.
func (r *PostgresRepository) Insert(ctx context.Context, item domain.NewsItem) (domain.NewsRecord, error) {
	fingerprint := domain.Fingerprint(item.Content)

	query, args, err := psql.Insert("news_records").
		Columns("fingerprint", "content", "published_at", "attribute", "processing_stage").
		Values(fingerprint, item.Content, item.PublishedAt, string(domain.AttributeUnclassified), string(domain.StageIngested)).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return domain.NewsRecord{}, fmt.Errorf("build insert query: %w", err)
	}

	record := domain.NewsRecord{
		Fingerprint: fingerprint,
		Content:     item.Content,
		PublishedAt: item.PublishedAt,
		Attribute:   domain.AttributeUnclassified,
		Stage:       domain.StageIngested,
	}

	err = r.db.QueryRowContext(ctx, query, args...).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return domain.NewsRecord{}, domain.ErrDuplicate
		}
		return domain.NewsRecord{}, fmt.Errorf("insert record: %w", err)
	}

	return record, nil
}

// UpdateClassification commits the classification result and advances the
// record to the classified stage.
func (r *PostgresRepository) UpdateClassification(ctx context.Context, id int64, cls domain.Classification) error {
	query, args, err := psql.Update("news_records").
		Set("attribute", string(cls.Attribute)).
		Set("category", cls.Category).
		Set("processing_stage", string(domain.StageClassified)).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id, "processing_stage": string(domain.StageIngested)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build classification update: %w", err)
	}

	return r.execExpectingRow(ctx, query, args)
}

// UpdateFinancialAnalysis commits the impact extraction and advances the
// record to the analyzed stage.
func (r *PostgresRepository) UpdateFinancialAnalysis(ctx context.Context, id int64, impact domain.FinancialImpact) error {
	query, args, err := psql.Update("news_records").
		Set("impact_industries", pq.Array(impact.Industries)).
		Set("impact_instruments", pq.Array(impact.Instruments)).
		Set("impact_strength", string(impact.Strength)).
		Set("processing_stage", string(domain.StageAnalyzed)).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id, "processing_stage": string(domain.StageClassified)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build analysis update: %w", err)
	}

	return r.execExpectingRow(ctx, query, args)
}

// MarkFailed records the terminal failure reason. Analyzed records are left
// untouched; partial enrichment columns are never cleared.
func (r *PostgresRepository) MarkFailed(ctx context.Context, id int64, reason string) error {
	query, args, err := psql.Update("news_records").
		Set("processing_stage", string(domain.StageFailed)).
		Set("failure_reason", reason).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		Where(sq.NotEq{"processing_stage": string(domain.StageAnalyzed)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark failed update: %w", err)
	}

	return r.execExpectingRow(ctx, query, args)
}

// ListUnfinished returns records still awaiting classification or analysis,
// oldest first. Failed records are terminal and excluded.
func (r *PostgresRepository) ListUnfinished(ctx context.Context, limit int) ([]domain.NewsRecord, error) {
	builder := psql.Select(
		"id", "fingerprint", "content", "published_at", "attribute", "category",
		"impact_industries", "impact_instruments", "impact_strength",
		"processing_stage", "failure_reason", "created_at", "updated_at").
		From("news_records").
		Where(sq.Eq{"processing_stage": []string{
			string(domain.StageIngested),
			string(domain.StageClassified),
		}}).
		OrderBy("created_at ASC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build unfinished query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query unfinished: %w", err)
	}
	defer rows.Close()

	var records []domain.NewsRecord
	for rows.Next() {
		var (
			rec       domain.NewsRecord
			published sql.NullTime
			attribute string
			strength  string
			stage     string
		)
		err := rows.Scan(&rec.ID, &rec.Fingerprint, &rec.Content, &published,
			&attribute, &rec.Category,
			pq.Array(&rec.Impact.Industries), pq.Array(&rec.Impact.Instruments),
			&strength, &stage, &rec.FailureReason, &rec.CreatedAt, &rec.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}

		if published.Valid {
			rec.PublishedAt = published.Time
		}
		rec.Attribute = domain.Attribute(attribute)
		rec.Impact.Strength = domain.Strength(strength)
		rec.Stage = domain.Stage(stage)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return records, nil
}

func (r *PostgresRepository) execExpectingRow(ctx context.Context, query string, args []interface{}) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec update: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
