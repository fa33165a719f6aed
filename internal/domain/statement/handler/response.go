package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/FACorreiaa/pesa-insights/internal/domain/statement/parser"
	"github.com/FACorreiaa/pesa-insights/internal/domain/statement/repository"
	"github.com/FACorreiaa/pesa-insights/internal/domain/statement/service"
	"github.com/FACorreiaa/pesa-insights/pkg/money"
)

type errorResponse struct {
	Error         string `json:"error"`
	NeedsPassword bool   `json:"needs_password,omitempty"`
	WrongPassword bool   `json:"wrong_password,omitempty"`
}

type statementResponse struct {
	ID               string                  `json:"id"`
	UserID           string                  `json:"user_id,omitempty"`
	FileName         string                  `json:"file_name"`
	UploadedAt       time.Time               `json:"uploaded_at"`
	PeriodMonths     int                     `json:"period_months"`
	PeriodStart      *string                 `json:"period_start"`
	PeriodEnd        *string                 `json:"period_end"`
	TotalIncoming    string                  `json:"total_incoming"`
	TotalOutgoing    string                  `json:"total_outgoing"`
	Categorized      map[string]string       `json:"categorized"`
	TransactionCount int                     `json:"transaction_count"`
	FileAvailable    bool                    `json:"file_available"`
	ParsedData       *parser.StatementRecord `json:"parsed_data,omitempty"`
}

type categoryShareResponse struct {
	Category string       `json:"category"`
	Amount   *money.Money `json:"amount"`
	Percent  string       `json:"percent"`
}

type insightsResponse struct {
	Statement      *statementResponse      `json:"statement"`
	TotalIncoming  *money.Money            `json:"total_incoming"`
	TotalOutgoing  *money.Money            `json:"total_outgoing"`
	NetAmount      *money.Money            `json:"net_amount"`
	MshwariSavings *money.Money            `json:"mshwari_savings"`
	Breakdown      []categoryShareResponse `json:"breakdown"`
}

type adminPageResponse struct {
	Statements []statementResponse `json:"statements"`
	Search     string              `json:"search"`
	Page       int                 `json:"page"`
	Pages      int                 `json:"pages"`
	Total      int                 `json:"total"`
	ThisMonth  int                 `json:"this_month"`
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(parser.DateLayout)
	return &s
}

func toStatementResponse(st *repository.Statement, withData bool) statementResponse {
	categorized := make(map[string]string, len(parser.Categories))
	for _, c := range parser.Categories {
		categorized[string(c)] = st.CategoryTotal(c).StringFixed(2)
	}

	resp := statementResponse{
		ID:               st.ID.String(),
		FileName:         st.FileName,
		UploadedAt:       st.UploadedAt,
		PeriodMonths:     st.PeriodMonths,
		PeriodStart:      formatDate(st.PeriodStart),
		PeriodEnd:        formatDate(st.PeriodEnd),
		TotalIncoming:    st.TotalIncoming.StringFixed(2),
		TotalOutgoing:    st.TotalOutgoing.StringFixed(2),
		Categorized:      categorized,
		TransactionCount: len(st.ParsedData.Transactions),
		FileAvailable:    st.FilePurgedAt == nil,
	}
	if withData {
		data := st.ParsedData
		resp.ParsedData = &data
	}
	return resp
}

func toStatementList(statements []*repository.Statement) []statementResponse {
	out := make([]statementResponse, 0, len(statements))
	for _, st := range statements {
		out = append(out, toStatementResponse(st, false))
	}
	return out
}

func toInsightsResponse(in *service.Insights) insightsResponse {
	resp := insightsResponse{
		TotalIncoming:  in.TotalIncoming,
		TotalOutgoing:  in.TotalOutgoing,
		NetAmount:      in.NetAmount,
		MshwariSavings: in.MshwariSavings,
		Breakdown:      make([]categoryShareResponse, 0, len(in.Breakdown)),
	}
	if in.Statement != nil {
		st := toStatementResponse(in.Statement, false)
		resp.Statement = &st
	}
	for _, share := range in.Breakdown {
		resp.Breakdown = append(resp.Breakdown, categoryShareResponse{
			Category: string(share.Category),
			Amount:   share.Amount,
			Percent:  share.Percent.StringFixed(2),
		})
	}
	return resp
}

func toAdminPageResponse(page *service.AdminPage) adminPageResponse {
	statements := make([]statementResponse, 0, len(page.Statements))
	for _, st := range page.Statements {
		resp := toStatementResponse(st, false)
		resp.UserID = st.UserID.String()
		statements = append(statements, resp)
	}
	return adminPageResponse{
		Statements: statements,
		Search:     page.Search,
		Page:       page.Page,
		Pages:      page.Pages,
		Total:      page.Total,
		ThisMonth:  page.ThisMonth,
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
