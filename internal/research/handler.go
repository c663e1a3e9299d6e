package research

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/ayush/company-research/backend/internal/httputil"
	"github.com/ayush/company-research/backend/internal/models"
	"github.com/ayush/company-research/backend/internal/store"
)

// DegradedNote is attached to responses for results that were not persisted.
const DegradedNote = "Data not saved to database (MongoDB not connected)"

// ResearchStore defines the interface for research persistence.
type ResearchStore interface {
	Connected(ctx context.Context) bool
	Create(ctx context.Context, companyName string, data bson.M) (*models.Record, error)
	GetByID(ctx context.Context, id string) (*models.Record, error)
	List(ctx context.Context, limit int) ([]models.Summary, error)
}

// CompanyResearcher fetches a research result from the research API.
type CompanyResearcher interface {
	Company(ctx context.Context, company string) ([]byte, error)
}

// Handler holds research HTTP handlers.
type Handler struct {
	store      ResearchStore
	researcher CompanyResearcher
	now        func() time.Time
}

func NewHandler(s ResearchStore, researcher CompanyResearcher) *Handler {
	return &Handler{store: s, researcher: researcher, now: time.Now}
}

// Create stores a research result. Storage failures never fail the request:
// the caller gets the result back with a temporary id and a note instead.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if strings.TrimSpace(req.CompanyName) == "" || req.Data == nil {
		httputil.WriteError(w, http.StatusBadRequest, "Company name and data are required", nil)
		return
	}

	status, env := h.save(r.Context(), req.CompanyName, req.Data)
	httputil.WriteJSON(w, status, env)
}

// Search fetches research for a company from the research API and stores it
// the same way Create does.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if strings.TrimSpace(req.CompanyName) == "" {
		httputil.WriteError(w, http.StatusBadRequest, "Company name is required", nil)
		return
	}

	body, err := h.researcher.Company(r.Context(), req.CompanyName)
	if err != nil {
		log.Printf("research-api error: %v", err)
		httputil.WriteError(w, http.StatusBadGateway, "Error fetching company research", err)
		return
	}
	var data bson.M
	if err := json.Unmarshal(body, &data); err != nil || data == nil {
		log.Printf("research-api returned a non-object body for %q", req.CompanyName)
		httputil.WriteError(w, http.StatusBadGateway, "Error fetching company research",
			errors.New("research API returned an invalid response"))
		return
	}

	status, env := h.save(r.Context(), req.CompanyName, data)
	httputil.WriteJSON(w, status, env)
}

func (h *Handler) save(ctx context.Context, companyName string, data bson.M) (int, models.Envelope) {
	// Connected only skips a write that is known to fail; Create is still
	// checked on its own.
	if h.store.Connected(ctx) {
		rec, err := h.store.Create(ctx, companyName, data)
		if err == nil {
			return http.StatusCreated, models.EnvelopeFor(rec)
		}
		log.Printf("mongo save error: %v", err)
	} else {
		log.Printf("mongo not connected, returning %q without saving", companyName)
	}

	now := h.now()
	return http.StatusOK, models.Envelope{
		ID:          fmt.Sprintf("temp-%d", now.UnixMilli()),
		CompanyName: companyName,
		Data:        data,
		CreatedAt:   now.UTC(),
		Note:        DegradedNote,
	}
}

// Get returns a single research record.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !store.ValidID(id) {
		httputil.WriteError(w, http.StatusBadRequest, "Invalid research ID", nil)
		return
	}

	rec, err := h.store.GetByID(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		httputil.WriteError(w, http.StatusNotFound, "Research not found", nil)
		return
	case errors.Is(err, store.ErrInvalidID):
		httputil.WriteError(w, http.StatusBadRequest, "Invalid research ID", nil)
		return
	case err != nil:
		log.Printf("mongo get %s error: %v", id, err)
		httputil.WriteError(w, http.StatusInternalServerError, "Error fetching research data", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.EnvelopeFor(rec))
}

// List returns the most recent research summaries, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	summaries, err := h.store.List(r.Context(), limit)
	if err != nil {
		log.Printf("mongo list error: %v", err)
		httputil.WriteError(w, http.StatusInternalServerError, "Error fetching research list", err)
		return
	}
	if summaries == nil {
		summaries = []models.Summary{}
	}
	httputil.WriteJSON(w, http.StatusOK, summaries)
}
