package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/pesa-insights/internal/domain/statement/parser"
	"github.com/FACorreiaa/pesa-insights/internal/domain/statement/repository"
	"github.com/FACorreiaa/pesa-insights/internal/domain/statement/service"
	"github.com/FACorreiaa/pesa-insights/pkg/interceptors"
	"github.com/FACorreiaa/pesa-insights/pkg/money"
)

type fakeService struct {
	statement  *repository.Statement
	uploadErr  error
	getErr     error
	deleteErr  error
	lastUpload service.UploadInput
	lastLimit  int
	lastOffset int
	lastQuery  string
	lastSearch string
	lastPage   int
}

func (f *fakeService) Upload(_ context.Context, in service.UploadInput) (*repository.Statement, error) {
	f.lastUpload = in
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return f.statement, nil
}

func (f *fakeService) Get(_ context.Context, userID, id uuid.UUID) (*repository.Statement, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.statement == nil || f.statement.ID != id || f.statement.UserID != userID {
		return nil, service.ErrNotFound
	}
	return f.statement, nil
}

func (f *fakeService) List(_ context.Context, _ uuid.UUID, limit, offset int) ([]*repository.Statement, error) {
	f.lastLimit, f.lastOffset = limit, offset
	return []*repository.Statement{f.statement}, nil
}

func (f *fakeService) Delete(_ context.Context, _, _ uuid.UUID) error {
	return f.deleteErr
}

func (f *fakeService) Insights(_ context.Context, _ uuid.UUID) (*service.Insights, error) {
	outgoing := money.KESFromDecimal(f.statement.TotalOutgoing)
	return &service.Insights{
		Statement:      f.statement,
		TotalIncoming:  money.KESFromDecimal(f.statement.TotalIncoming),
		TotalOutgoing:  outgoing,
		NetAmount:      money.KESFromDecimal(f.statement.TotalIncoming.Sub(f.statement.TotalOutgoing)),
		MshwariSavings: money.Zero(money.KES),
		Breakdown: []service.CategoryShare{
			{Category: parser.CategoryBetting, Amount: outgoing, Percent: decimal.NewFromInt(100)},
		},
	}, nil
}

func (f *fakeService) SearchTransactions(ctx context.Context, userID, id uuid.UUID, query string) ([]parser.TransactionRecord, error) {
	f.lastQuery = query
	st, err := f.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return st.ParsedData.Transactions, nil
}

func (f *fakeService) AdminList(_ context.Context, search string, page int) (*service.AdminPage, error) {
	f.lastSearch, f.lastPage = search, page
	return &service.AdminPage{
		Statements: []*repository.Statement{f.statement},
		Search:     search,
		Page:       page,
		Pages:      1,
		Total:      1,
		ThisMonth:  1,
	}, nil
}

func strPtr(s string) *string { return &s }

func sampleStatement(userID uuid.UUID) *repository.Statement {
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	return &repository.Statement{
		ID:            uuid.New(),
		UserID:        userID,
		FileID:        uuid.New(),
		FileName:      "MPESA_Feb.pdf",
		UploadedAt:    time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		PeriodMonths:  1,
		TotalIncoming: decimal.RequireFromString("1500"),
		TotalOutgoing: decimal.RequireFromString("500"),
		BettingSpent:  decimal.RequireFromString("500"),
		PeriodStart:   &start,
		PeriodEnd:     &end,
		ParsedData: parser.StatementRecord{
			Transactions: []parser.TransactionRecord{
				{Date: "01/02/24", Description: "sportpesa bet", Amount: strPtr("500.00"), Category: "betting"},
			},
			Categorized:   map[string]string{"betting": "500.00", "incoming": "1500.00"},
			TotalIncoming: "1500.00",
			TotalOutgoing: "500.00",
			PeriodStart:   strPtr("2024-02-01"),
			PeriodEnd:     strPtr("2024-02-29"),
		},
	}
}

type testServer struct {
	router http.Handler
	svc    *fakeService
	userID uuid.UUID
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	userID := uuid.New()
	svc := &fakeService{statement: sampleStatement(userID)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := NewRouter(RouterConfig{
		Handler:        NewStatementHandler(svc, 1<<20, logger),
		UploadLimiter:  interceptors.NewRateLimiter(100, 100),
		AdminToken:     "admin-secret",
		AllowedOrigins: []string{"http://localhost:3000"},
		Logger:         logger,
	})
	return &testServer{router: router, svc: svc, userID: userID}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	if req.Header.Get(interceptors.UserIDHeader) == "" {
		req.Header.Set(interceptors.UserIDHeader, s.userID.String())
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, filename string, content []byte, password string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		part, err := mw.CreateFormFile(formFileField, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	if password != "" {
		require.NoError(t, mw.WriteField(formPasswordField, password))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/statements", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestUpload(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(uploadRequest(t, "MPESA_Feb.pdf", []byte("%PDF-1.7"), "1234"))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "1234", s.svc.lastUpload.Password)
	assert.Equal(t, "MPESA_Feb.pdf", s.svc.lastUpload.FileName)
	assert.Equal(t, []byte("%PDF-1.7"), s.svc.lastUpload.Data)
	assert.Equal(t, s.userID, s.svc.lastUpload.UserID)

	body := decode(t, rec)
	assert.Equal(t, "500.00", body["total_outgoing"])
	assert.Equal(t, "2024-02-01", body["period_start"])
	categorized := body["categorized"].(map[string]interface{})
	assert.Equal(t, "500.00", categorized["betting"])
	assert.Equal(t, "0.00", categorized["airtime"])
	require.Contains(t, body, "parsed_data")
}

func TestUpload_Errors(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantStatus    int
		wantNeedsPass bool
		wantWrongPass bool
	}{
		{
			name:          "password required",
			err:           fmt.Errorf("failed to parse statement: %w", &parser.ParseError{Kind: parser.KindEncryptionRequired, Message: "password protected"}),
			wantStatus:    http.StatusUnprocessableEntity,
			wantNeedsPass: true,
		},
		{
			name:          "wrong password",
			err:           fmt.Errorf("failed to parse statement: %w", &parser.ParseError{Kind: parser.KindWrongPassword, Message: "incorrect password"}),
			wantStatus:    http.StatusUnprocessableEntity,
			wantNeedsPass: true,
			wantWrongPass: true,
		},
		{
			name:       "malformed",
			err:        &parser.ParseError{Kind: parser.KindMalformedDocument, Message: "corrupt"},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "invalid upload",
			err:        fmt.Errorf("%w: only PDF statements are supported", service.ErrInvalidUpload),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "internal",
			err:        errors.New("db down"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			s.svc.uploadErr = tt.err

			rec := s.do(uploadRequest(t, "s.pdf", []byte("%PDF"), ""))

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decode(t, rec)
			assert.NotEmpty(t, body["error"])
			assert.Equal(t, tt.wantNeedsPass, body["needs_password"] == true)
			assert.Equal(t, tt.wantWrongPass, body["wrong_password"] == true)
			assert.NotContains(t, rec.Body.String(), "db down")
		})
	}
}

func TestUpload_BadForm(t *testing.T) {
	s := newTestServer(t)

	t.Run("missing file", func(t *testing.T) {
		rec := s.do(uploadRequest(t, "", nil, "1234"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/statements", bytes.NewBufferString("{}"))
		req.Header.Set("Content-Type", "application/json")
		rec := s.do(req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRequiresUser(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/statements", nil)
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListGetDelete(t *testing.T) {
	s := newTestServer(t)
	id := s.svc.statement.ID

	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/statements?limit=5&offset=10", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, s.svc.lastLimit)
	assert.Equal(t, 10, s.svc.lastOffset)
	list := decode(t, rec)
	assert.EqualValues(t, 1, list["count"])
	first := list["statements"].([]interface{})[0].(map[string]interface{})
	assert.NotContains(t, first, "parsed_data")
	assert.EqualValues(t, 1, first["transaction_count"])

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/statements?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/statements/"+id.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id.String(), decode(t, rec)["id"])

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/statements/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/statements/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(httptest.NewRequest(http.MethodDelete, "/api/statements/"+id.String(), nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	s.svc.deleteErr = service.ErrNotFound
	rec = s.do(httptest.NewRequest(http.MethodDelete, "/api/statements/"+id.String(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchTransactions(t *testing.T) {
	s := newTestServer(t)
	path := "/api/statements/" + s.svc.statement.ID.String() + "/transactions?q=sportpesa"

	rec := s.do(httptest.NewRequest(http.MethodGet, path, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sportpesa", s.svc.lastQuery)
	body := decode(t, rec)
	assert.EqualValues(t, 1, body["count"])
}

func TestExport(t *testing.T) {
	s := newTestServer(t)
	base := "/api/statements/" + s.svc.statement.ID.String() + "/export"

	t.Run("csv by default", func(t *testing.T) {
		rec := s.do(httptest.NewRequest(http.MethodGet, base, nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
		assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="MPESA_Feb_transactions.csv"`)
		assert.Equal(t, "date,description,amount,category\n01/02/24,sportpesa bet,500.00,betting\n", rec.Body.String())
	})

	t.Run("xlsx", func(t *testing.T) {
		rec := s.do(httptest.NewRequest(http.MethodGet, base+"?format=xlsx", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")), "xlsx is a zip archive")
	})

	t.Run("unknown format", func(t *testing.T) {
		rec := s.do(httptest.NewRequest(http.MethodGet, base+"?format=pdf", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestInsights(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/insights", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	net := body["net_amount"].(map[string]interface{})
	assert.Equal(t, "1000.00", net["amount"])
	assert.Equal(t, "KES", net["currency"])
	breakdown := body["breakdown"].([]interface{})
	require.Len(t, breakdown, 1)
	assert.Equal(t, "100.00", breakdown[0].(map[string]interface{})["percent"])
}

func TestAdminList(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/statements?search=mpesa&page=2", nil)
	req.Header.Set(interceptors.AdminTokenHeader, "admin-secret")
	rec := s.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "mpesa", s.svc.lastSearch)
	assert.Equal(t, 2, s.svc.lastPage)
	body := decode(t, rec)
	first := body["statements"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, s.userID.String(), first["user_id"])

	forbidden := s.do(httptest.NewRequest(http.MethodGet, "/api/admin/statements", nil))
	assert.Equal(t, http.StatusForbidden, forbidden.Code)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
