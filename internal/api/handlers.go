// Package api exposes the ledger over a JSON HTTP API. Handlers are thin:
// decode, validate shape, call the ledger, encode the returned snapshot.
// All domain rules live in the ledger.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/splitledger/splitledger/internal/ledger"
	"github.com/splitledger/splitledger/internal/models"
)

// Handler carries the API dependencies.
type Handler struct {
	ledger   *ledger.Ledger
	validate *validator.Validate
}

// NewHandler creates an API handler around the given ledger.
func NewHandler(l *ledger.Ledger) *Handler {
	return &Handler{
		ledger:   l,
		validate: validator.New(),
	}
}

// Routes builds the application router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger)
	r.Use(CORS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/groups", h.listGroups)
		r.Post("/groups", h.createGroup)
		r.Put("/groups/{groupID}", h.updateGroup)
		r.Delete("/groups/{groupID}", h.removeGroup)
		r.Post("/groups/{groupID}/activate", h.switchGroup)

		r.Post("/people", h.addPerson)
		r.Delete("/people/{personID}", h.removePerson)

		r.Post("/expenses", h.addExpense)
		r.Put("/expenses/{expenseID}", h.updateExpense)
		r.Delete("/expenses/{expenseID}", h.removeExpense)

		r.Get("/settlement", h.settlement)
		r.Delete("/data", h.clearAll)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}

type groupRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type personRequest struct {
	Name   string `json:"name" validate:"required"`
	Avatar string `json:"avatar"`
}

type expenseRequest struct {
	Title        string   `json:"title" validate:"required"`
	Amount       float64  `json:"amount" validate:"required,gt=0"`
	PayerID      string   `json:"payer_id" validate:"required"`
	Participants []string `json:"participants" validate:"required,min=1,unique"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
}

type groupListResponse struct {
	Groups        []*models.Group `json:"groups"`
	ActiveGroupID string          `json:"active_group_id,omitempty"`
}

func (h *Handler) listGroups(w http.ResponseWriter, r *http.Request) {
	groups, activeID := h.ledger.Groups()
	respondJSON(w, http.StatusOK, groupListResponse{Groups: groups, ActiveGroupID: activeID})
}

func (h *Handler) createGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if !h.decode(w, r, &req) {
		return
	}

	group, err := h.ledger.CreateGroup(r.Context(), req.Name, req.Description)
	observeMutation("create_group", err)
	if err != nil {
		respondError(w, err)
		return
	}

	slog.Info("Group created", "group_id", group.ID, "name", group.Name)
	respondJSON(w, http.StatusCreated, group)
}

func (h *Handler) updateGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if !h.decode(w, r, &req) {
		return
	}

	group, err := h.ledger.UpdateGroup(r.Context(), chi.URLParam(r, "groupID"), req.Name, req.Description)
	observeMutation("update_group", err)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, group)
}

func (h *Handler) removeGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	err := h.ledger.RemoveGroup(r.Context(), groupID)
	observeMutation("remove_group", err)
	if err != nil {
		respondError(w, err)
		return
	}

	slog.Info("Group removed", "group_id", groupID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) switchGroup(w http.ResponseWriter, r *http.Request) {
	group, err := h.ledger.SwitchGroup(r.Context(), chi.URLParam(r, "groupID"))
	observeMutation("switch_group", err)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, group)
}

func (h *Handler) addPerson(w http.ResponseWriter, r *http.Request) {
	var req personRequest
	if !h.decode(w, r, &req) {
		return
	}

	person, err := h.ledger.AddPerson(r.Context(), req.Name, req.Avatar)
	observeMutation("add_person", err)
	if err != nil {
		respondError(w, err)
		return
	}

	slog.Info("Person added", "person_id", person.ID, "name", person.Name)
	respondJSON(w, http.StatusCreated, person)
}

func (h *Handler) removePerson(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "personID")
	err := h.ledger.RemovePerson(r.Context(), personID)
	observeMutation("remove_person", err)
	if err != nil {
		respondError(w, err)
		return
	}

	slog.Info("Person removed", "person_id", personID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if !h.decode(w, r, &req) {
		return
	}

	expense, err := h.ledger.AddExpense(r.Context(), req.Title, req.Amount, req.PayerID, req.Participants, req.Description, req.Category)
	observeMutation("add_expense", err)
	if err != nil {
		respondError(w, err)
		return
	}

	slog.Info("Expense added", "expense_id", expense.ID, "amount", expense.Amount)
	respondJSON(w, http.StatusCreated, expense)
}

func (h *Handler) updateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if !h.decode(w, r, &req) {
		return
	}

	expense, err := h.ledger.UpdateExpense(r.Context(), chi.URLParam(r, "expenseID"), req.Title, req.Amount, req.PayerID, req.Participants, req.Description, req.Category)
	observeMutation("update_expense", err)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, expense)
}

func (h *Handler) removeExpense(w http.ResponseWriter, r *http.Request) {
	err := h.ledger.RemoveExpense(r.Context(), chi.URLParam(r, "expenseID"))
	observeMutation("remove_expense", err)
	if err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) settlement(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result, err := h.ledger.Settlement()
	if err != nil {
		// No expenses means no settlement needed, not a failure.
		if errors.Is(err, ledger.ErrNoExpenses) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		respondError(w, err)
		return
	}
	settlementDuration.Observe(time.Since(start).Seconds())

	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) clearAll(w http.ResponseWriter, r *http.Request) {
	err := h.ledger.ClearAll(r.Context())
	observeMutation("clear_all", err)
	if err != nil {
		respondError(w, err)
		return
	}

	slog.Info("All data cleared")
	w.WriteHeader(http.StatusNoContent)
}

// decode unmarshals and shape-validates a request body. Returns false after
// writing an error response if the body is unusable.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return false
	}
	return true
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, err error) {
	status := statusFromError(err)
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "error", err)
	} else {
		slog.Warn("Request rejected", "error", err, "status", status)
	}
	respondJSON(w, status, errorResponse{Error: err.Error()})
}
