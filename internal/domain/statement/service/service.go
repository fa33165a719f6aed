// Package service implements the statement upload flow and the read models built
// on stored statements.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/pesa-insights/internal/domain/statement/parser"
	"github.com/FACorreiaa/pesa-insights/internal/domain/statement/repository"
	"github.com/FACorreiaa/pesa-insights/pkg/metrics"
	"github.com/FACorreiaa/pesa-insights/pkg/storage"
)

const (
	tracerName      = "github.com/FACorreiaa/pesa-insights/statement"
	defaultPageSize = 20
	maxPageSize     = 100
	purgeBatchSize  = 100
	pdfContentType  = "application/pdf"
)

var (
	// ErrInvalidUpload is returned for uploads that are not a non-empty PDF file.
	ErrInvalidUpload = errors.New("invalid statement upload")

	// ErrNotFound is returned when the statement does not exist for the user.
	ErrNotFound = repository.ErrNotFound
)

// StatementParser turns statement bytes into a parsed statement.
type StatementParser interface {
	Parse(r io.ReadSeeker, password string) (*parser.ParsedStatement, error)
}

// ParseObserver records parse and retention metrics. Optional.
type ParseObserver interface {
	ObserveParse(outcome string, elapsed time.Duration, transactions int)
	FilesPurged(n int)
}

// UploadInput is one statement upload.
type UploadInput struct {
	UserID   uuid.UUID
	FileName string
	Data     []byte
	Password string // empty when none was supplied
}

// StatementService orchestrates storage, parsing and persistence of statements.
type StatementService struct {
	repo     repository.StatementRepository
	files    storage.Storage
	parser   StatementParser
	observer ParseObserver
	tracer   trace.Tracer
	logger   *slog.Logger
	now      func() time.Time
}

// NewStatementService creates a new statement service
func NewStatementService(repo repository.StatementRepository, files storage.Storage, p StatementParser, logger *slog.Logger) *StatementService {
	return &StatementService{
		repo:   repo,
		files:  files,
		parser: p,
		tracer: otel.Tracer(tracerName),
		logger: logger,
		now:    time.Now,
	}
}

// WithObserver adds parse metrics to the service
func (s *StatementService) WithObserver(observer ParseObserver) *StatementService {
	s.observer = observer
	return s
}

// Upload stores the PDF, parses it and persists the result. A parse failure
// removes the stored file and returns an error wrapping *parser.ParseError.
func (s *StatementService) Upload(ctx context.Context, in UploadInput) (*repository.Statement, error) {
	if err := validateUpload(in); err != nil {
		return nil, err
	}

	info, err := s.files.Upload(ctx, in.UserID, in.FileName, pdfContentType, bytes.NewReader(in.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to store statement: %w", err)
	}

	parsed, err := s.parseStored(ctx, in.UserID, info.ID, in.Password)
	if err != nil {
		s.discardFile(ctx, in.UserID, info.ID)
		return nil, err
	}

	st := repository.NewStatement(in.UserID, info.ID, in.FileName, s.now().UTC(), parsed)
	if err := s.repo.Create(ctx, st); err != nil {
		s.discardFile(ctx, in.UserID, info.ID)
		return nil, fmt.Errorf("failed to save statement: %w", err)
	}

	s.logger.Info("statement uploaded",
		slog.String("statement_id", st.ID.String()),
		slog.String("user_id", in.UserID.String()),
		slog.Int("transactions", len(parsed.Transactions)),
		slog.String("total_outgoing", st.TotalOutgoing.StringFixed(2)),
	)
	return st, nil
}

func validateUpload(in UploadInput) error {
	if in.UserID == uuid.Nil {
		return fmt.Errorf("%w: missing user", ErrInvalidUpload)
	}
	if !strings.EqualFold(filepath.Ext(in.FileName), ".pdf") {
		return fmt.Errorf("%w: only PDF statements are supported", ErrInvalidUpload)
	}
	if len(in.Data) == 0 {
		return fmt.Errorf("%w: file is empty", ErrInvalidUpload)
	}
	return nil
}

// parseStored parses the stored copy so the parser sees a file backed source.
func (s *StatementService) parseStored(ctx context.Context, userID, fileID uuid.UUID, password string) (*parser.ParsedStatement, error) {
	f, err := s.files.Open(ctx, userID, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to open stored statement: %w", err)
	}
	defer f.Close()

	_, span := s.tracer.Start(ctx, "statement.parse", trace.WithAttributes(
		attribute.String("user_id", userID.String()),
		attribute.String("file_id", fileID.String()),
		attribute.Bool("password_supplied", password != ""),
	))
	defer span.End()

	start := s.now()
	parsed, err := s.parser.Parse(f, password)
	elapsed := s.now().Sub(start)

	outcome := parseOutcome(err)
	if s.observer != nil {
		n := 0
		if parsed != nil {
			n = len(parsed.Transactions)
		}
		s.observer.ObserveParse(outcome, elapsed, n)
	}
	span.SetAttributes(attribute.String("outcome", outcome))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		s.logger.Info("statement parse failed",
			slog.String("user_id", userID.String()),
			slog.String("outcome", outcome),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("failed to parse statement: %w", err)
	}

	span.SetAttributes(attribute.Int("transactions", len(parsed.Transactions)))
	return parsed, nil
}

func parseOutcome(err error) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}
	var perr *parser.ParseError
	if !errors.As(err, &perr) {
		return metrics.OutcomeError
	}
	switch perr.Kind {
	case parser.KindEncryptionRequired:
		return metrics.OutcomePasswordRequired
	case parser.KindWrongPassword:
		return metrics.OutcomeWrongPassword
	default:
		return metrics.OutcomeMalformed
	}
}

func (s *StatementService) discardFile(ctx context.Context, userID, fileID uuid.UUID) {
	if err := s.files.Delete(ctx, userID, fileID); err != nil {
		s.logger.Warn("failed to remove stored statement",
			slog.String("file_id", fileID.String()),
			slog.Any("error", err),
		)
	}
}

// Get returns one of the user's statements.
func (s *StatementService) Get(ctx context.Context, userID, id uuid.UUID) (*repository.Statement, error) {
	return s.repo.GetByID(ctx, userID, id)
}

// List returns the user's statements, newest first.
func (s *StatementService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*repository.Statement, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// Delete removes the statement and its stored PDF.
func (s *StatementService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	st, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	if st.FilePurgedAt == nil {
		s.discardFile(ctx, userID, st.FileID)
	}

	s.logger.Info("statement deleted",
		slog.String("statement_id", id.String()),
		slog.String("user_id", userID.String()),
	)
	return nil
}

// AdminPage is one page of the cross-user statement listing.
type AdminPage struct {
	Statements []*repository.Statement
	Search     string
	Page       int
	Pages      int
	Total      int
	ThisMonth  int
}

// AdminList lists statements of every user, filtered by file name.
func (s *StatementService) AdminList(ctx context.Context, search string, page int) (*AdminPage, error) {
	if page < 1 {
		page = 1
	}
	search = strings.TrimSpace(search)

	statements, total, err := s.repo.ListAll(ctx, search, repository.AdminPageSize, (page-1)*repository.AdminPageSize)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	thisMonth, err := s.repo.CountSince(ctx, monthStart)
	if err != nil {
		return nil, err
	}

	pages := (total + repository.AdminPageSize - 1) / repository.AdminPageSize
	if pages == 0 {
		pages = 1
	}

	return &AdminPage{
		Statements: statements,
		Search:     search,
		Page:       page,
		Pages:      pages,
		Total:      total,
		ThisMonth:  thisMonth,
	}, nil
}
