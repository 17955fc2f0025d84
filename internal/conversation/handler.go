package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/recoverly/collections-ai-agent/internal/customers"
	"github.com/recoverly/collections-ai-agent/pkg/logging"
)

// CallReader serves read-only call lookups. Reads bypass the queue.
type CallReader interface {
	GetCall(ctx context.Context, sessionID string) (*Response, error)
}

// Handler wires HTTP requests to the conversation service.
type Handler struct {
	service Service
	reader  CallReader
	logger  *logging.Logger
}

// NewHandler creates a conversation handler.
func NewHandler(service Service, reader CallReader, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service: service,
		reader:  reader,
		logger:  logger,
	}
}

// Start handles POST /calls.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode start request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.StartCall(r.Context(), req)
	if err != nil {
		h.writeError(w, err, "failed to start call")
		return
	}

	h.writeJSON(w, http.StatusCreated, resp)
}

// Message handles POST /calls/message.
func (h *Handler) Message(w http.ResponseWriter, r *http.Request) {
	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode message request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.ProcessTurn(r.Context(), req)
	if err != nil {
		h.writeError(w, err, "failed to process message")
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// GetCall handles GET /calls/{sessionID}.
func (h *Handler) GetCall(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	resp, err := h.reader.GetCall(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, err, "failed to load call")
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, ErrEmptyMessage), errors.Is(err, ErrMissingPhone):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrCallComplete):
		http.Error(w, "Call is already complete", http.StatusBadRequest)
	case errors.Is(err, ErrSessionNotFound):
		http.Error(w, "Unknown session", http.StatusNotFound)
	case errors.Is(err, customers.ErrCustomerNotFound):
		http.Error(w, "No customer found for this phone number", http.StatusNotFound)
	default:
		h.logger.Error(logMsg, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
