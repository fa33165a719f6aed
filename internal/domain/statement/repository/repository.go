// Package repository persists parsed statements in PostgreSQL.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a statement does not exist for the user.
var ErrNotFound = errors.New("statement not found")

// AdminPageSize is the fixed page size of the admin listing.
const AdminPageSize = 25

// DBTX is satisfied by *pgxpool.Pool and pgxmock pools.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// StatementRepository defines persistence operations for statements.
type StatementRepository interface {
	Create(ctx context.Context, st *Statement) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Statement, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Statement, error)
	Latest(ctx context.Context, userID uuid.UUID) (*Statement, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	ListAll(ctx context.Context, search string, limit, offset int) ([]*Statement, int, error)
	CountSince(ctx context.Context, since time.Time) (int, error)
	ListFilesUploadedBefore(ctx context.Context, before time.Time, limit int) ([]*Statement, error)
	MarkFilePurged(ctx context.Context, id uuid.UUID, at time.Time) error
}

// PostgresStatementRepository implements StatementRepository using PostgreSQL
type PostgresStatementRepository struct {
	db DBTX
}

// NewPostgresStatementRepository creates a new PostgreSQL statement repository
func NewPostgresStatementRepository(db DBTX) *PostgresStatementRepository {
	return &PostgresStatementRepository{db: db}
}

const statementColumns = `id, user_id, file_id, file_name, uploaded_at, period_months,
		total_incoming::text, total_outgoing::text, betting_spent::text, airtime_spent::text,
		fuliza_spent::text, bars_spent::text, till_withdrawals::text, other_spent::text,
		mshwari_savings::text, period_start, period_end, parsed_data, file_purged_at`

// Create inserts a new statement
func (r *PostgresStatementRepository) Create(ctx context.Context, st *Statement) error {
	query := `
		INSERT INTO mpesa_statements (
			id, user_id, file_id, file_name, uploaded_at, period_months,
			total_incoming, total_outgoing, betting_spent, airtime_spent,
			fuliza_spent, bars_spent, till_withdrawals, other_spent,
			mshwari_savings, period_start, period_end, parsed_data
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	if st.ID == uuid.Nil {
		st.ID = uuid.New()
	}

	parsed, err := json.Marshal(st.ParsedData)
	if err != nil {
		return fmt.Errorf("failed to encode parsed data: %w", err)
	}

	_, err = r.db.Exec(ctx, query,
		st.ID,
		st.UserID,
		st.FileID,
		st.FileName,
		st.UploadedAt,
		st.PeriodMonths,
		st.TotalIncoming.StringFixed(2),
		st.TotalOutgoing.StringFixed(2),
		st.BettingSpent.StringFixed(2),
		st.AirtimeSpent.StringFixed(2),
		st.FulizaSpent.StringFixed(2),
		st.BarsSpent.StringFixed(2),
		st.TillWithdrawals.StringFixed(2),
		st.OtherSpent.StringFixed(2),
		st.MshwariSavings.StringFixed(2),
		st.PeriodStart,
		st.PeriodEnd,
		parsed,
	)
	if err != nil {
		return fmt.Errorf("failed to create statement: %w", err)
	}
	return nil
}

// GetByID retrieves a user's statement by ID
func (r *PostgresStatementRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*Statement, error) {
	query := `SELECT ` + statementColumns + `
		FROM mpesa_statements
		WHERE id = $1 AND user_id = $2`

	st, err := scanStatement(r.db.QueryRow(ctx, query, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get statement: %w", err)
	}
	return st, nil
}

// ListByUser returns a user's statements, newest first
func (r *PostgresStatementRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Statement, error) {
	query := `SELECT ` + statementColumns + `
		FROM mpesa_statements
		WHERE user_id = $1
		ORDER BY uploaded_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list statements: %w", err)
	}
	return collectStatements(rows)
}

// Latest returns the user's most recent upload
func (r *PostgresStatementRepository) Latest(ctx context.Context, userID uuid.UUID) (*Statement, error) {
	query := `SELECT ` + statementColumns + `
		FROM mpesa_statements
		WHERE user_id = $1
		ORDER BY uploaded_at DESC
		LIMIT 1`

	st, err := scanStatement(r.db.QueryRow(ctx, query, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest statement: %w", err)
	}
	return st, nil
}

// Delete removes a user's statement
func (r *PostgresStatementRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query := `DELETE FROM mpesa_statements WHERE id = $1 AND user_id = $2`

	result, err := r.db.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete statement: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAll returns statements across all users whose file name contains search,
// newest first, together with the total match count. An empty search matches all.
func (r *PostgresStatementRepository) ListAll(ctx context.Context, search string, limit, offset int) ([]*Statement, int, error) {
	countBuilder := squirrel.Select("COUNT(*)").
		From("mpesa_statements").
		PlaceholderFormat(squirrel.Dollar)
	listBuilder := squirrel.Select(statementColumns).
		From("mpesa_statements").
		OrderBy("uploaded_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		PlaceholderFormat(squirrel.Dollar)
	if search != "" {
		filter := squirrel.ILike{"file_name": "%" + search + "%"}
		countBuilder = countBuilder.Where(filter)
		listBuilder = listBuilder.Where(filter)
	}

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}
	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count statements: %w", err)
	}

	query, args, err := listBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list query: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list all statements: %w", err)
	}
	statements, err := collectStatements(rows)
	if err != nil {
		return nil, 0, err
	}
	return statements, total, nil
}

// CountSince counts uploads at or after since
func (r *PostgresStatementRepository) CountSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM mpesa_statements WHERE uploaded_at >= $1`
	if err := r.db.QueryRow(ctx, query, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count statements: %w", err)
	}
	return count, nil
}

// ListFilesUploadedBefore returns statements whose PDF is still stored and older than before
func (r *PostgresStatementRepository) ListFilesUploadedBefore(ctx context.Context, before time.Time, limit int) ([]*Statement, error) {
	query := `SELECT ` + statementColumns + `
		FROM mpesa_statements
		WHERE uploaded_at < $1 AND file_purged_at IS NULL
		ORDER BY uploaded_at
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired statement files: %w", err)
	}
	return collectStatements(rows)
}

// MarkFilePurged records that the statement's PDF was removed
func (r *PostgresStatementRepository) MarkFilePurged(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE mpesa_statements SET file_purged_at = $2 WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("failed to mark statement file purged: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func collectStatements(rows pgx.Rows) ([]*Statement, error) {
	defer rows.Close()

	statements := make([]*Statement, 0)
	for rows.Next() {
		st, err := scanStatement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan statement: %w", err)
		}
		statements = append(statements, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate statements: %w", err)
	}
	return statements, nil
}

func scanStatement(row pgx.Row) (*Statement, error) {
	var (
		st      Statement
		amounts [9]string
		parsed  []byte
	)

	err := row.Scan(
		&st.ID,
		&st.UserID,
		&st.FileID,
		&st.FileName,
		&st.UploadedAt,
		&st.PeriodMonths,
		&amounts[0],
		&amounts[1],
		&amounts[2],
		&amounts[3],
		&amounts[4],
		&amounts[5],
		&amounts[6],
		&amounts[7],
		&amounts[8],
		&st.PeriodStart,
		&st.PeriodEnd,
		&parsed,
		&st.FilePurgedAt,
	)
	if err != nil {
		return nil, err
	}

	targets := []*decimal.Decimal{
		&st.TotalIncoming, &st.TotalOutgoing, &st.BettingSpent, &st.AirtimeSpent,
		&st.FulizaSpent, &st.BarsSpent, &st.TillWithdrawals, &st.OtherSpent, &st.MshwariSavings,
	}
	for i, raw := range amounts {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q: %w", raw, err)
		}
		*targets[i] = d
	}

	if len(parsed) > 0 {
		if err := json.Unmarshal(parsed, &st.ParsedData); err != nil {
			return nil, fmt.Errorf("failed to decode parsed data: %w", err)
		}
	}

	return &st, nil
}
