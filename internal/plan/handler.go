// Package plan serves the account-plan endpoints: proxying plan generation and
// research chat to the planning API, and parsing plan text for display.
package plan

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayush/company-research/backend/internal/httputil"
	"github.com/ayush/company-research/backend/internal/models"
	"github.com/ayush/company-research/backend/internal/planparse"
)

// Planner calls the planning API.
type Planner interface {
	GeneratePlan(ctx context.Context, company string, research json.RawMessage) ([]byte, error)
	Chat(ctx context.Context, company string, research json.RawMessage, question string) ([]byte, error)
}

// FinancialsFetcher calls the research API for historical financials.
type FinancialsFetcher interface {
	Financials(ctx context.Context, company string, years int) ([]byte, error)
}

// Archive keeps a copy of generated plans.
type Archive interface {
	ArchivePlan(ctx context.Context, company string, body []byte) (string, error)
}

const defaultYears = 10

// Handler holds plan HTTP handlers.
type Handler struct {
	planner    Planner
	financials FinancialsFetcher
	archive    Archive
}

// NewHandler builds a Handler. archive may be nil.
func NewHandler(planner Planner, financials FinancialsFetcher, archive Archive) *Handler {
	return &Handler{planner: planner, financials: financials, archive: archive}
}

// Generate forwards a plan request to the planning API once and relays the
// response body unchanged.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if strings.TrimSpace(req.Company) == "" || !present(req.Research) {
		httputil.WriteError(w, http.StatusBadRequest, "Company and research are required", nil)
		return
	}

	body, err := h.planner.GeneratePlan(r.Context(), req.Company, req.Research)
	if err != nil {
		log.Printf("generate-plan error: %v", err)
		httputil.WriteError(w, http.StatusInternalServerError, "Error generating account plan", err)
		return
	}

	if h.archive != nil {
		if key, err := h.archive.ArchivePlan(r.Context(), req.Company, body); err != nil {
			log.Printf("plan archive error (non-fatal): %v", err)
		} else {
			log.Printf("archived plan for %q at %s", req.Company, key)
		}
	}
	httputil.WriteRaw(w, http.StatusOK, body)
}

// Chat forwards a question about a research result to the planning API.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if strings.TrimSpace(req.Company) == "" || !present(req.Research) || strings.TrimSpace(req.Question) == "" {
		httputil.WriteError(w, http.StatusBadRequest, "Company, research, and question are required", nil)
		return
	}

	body, err := h.planner.Chat(r.Context(), req.Company, req.Research, req.Question)
	if err != nil {
		log.Printf("chat error: %v", err)
		httputil.WriteError(w, http.StatusInternalServerError, "Error answering question", err)
		return
	}
	httputil.WriteRaw(w, http.StatusOK, body)
}

// Financials relays historical financial data for a company.
func (h *Handler) Financials(w http.ResponseWriter, r *http.Request) {
	company := strings.TrimSpace(r.URL.Query().Get("company"))
	if company == "" {
		httputil.WriteError(w, http.StatusBadRequest, "Company is required", nil)
		return
	}
	years, err := strconv.Atoi(r.URL.Query().Get("years"))
	if err != nil || years <= 0 {
		years = defaultYears
	}

	body, err := h.financials.Financials(r.Context(), company, years)
	if err != nil {
		log.Printf("historical financials error: %v", err)
		httputil.WriteError(w, http.StatusBadGateway, "Error fetching historical financials", err)
		return
	}
	httputil.WriteRaw(w, http.StatusOK, body)
}

// Parse splits plan text into titled sections.
func (h *Handler) Parse(w http.ResponseWriter, r *http.Request) {
	var req models.ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	raw := req.Text
	if !present(raw) {
		raw = req.Plan
	}
	var v any
	if !present(raw) || json.Unmarshal(raw, &v) != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Plan text is required", nil)
		return
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		httputil.WriteError(w, http.StatusBadRequest, "Plan text is required", nil)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, planparse.ParseValue(v))
}

// ParseAnalysis normalizes the analysis field of a research result.
func (h *Handler) ParseAnalysis(w http.ResponseWriter, r *http.Request) {
	var req models.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"analysis": planparse.ParseAnalysis(req.Analysis),
	})
}

// present reports whether a raw JSON value would count as supplied: absent,
// null, false, 0 and "" do not.
func present(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	switch string(v) {
	case "", "null", "false", "0", `""`:
		return false
	}
	return true
}
