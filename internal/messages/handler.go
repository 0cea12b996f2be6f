package messages

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/feedback-api/pkg/logging"
)

const maxRequestBodyBytes = 64 << 10

// Handler serves the topics and messages API.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a messages handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if service == nil {
		panic("messages: service is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes mounts the handler under the router it is given.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/topics", h.ListTopics)
	r.Get("/messages/{id}", h.GetMessage)
	r.Post("/messages", h.CreateMessage)
}

// ListTopics handles GET /api/topics.
func (h *Handler) ListTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := h.service.ListTopics(r.Context())
	if err != nil {
		logging.FromContext(r.Context(), h.logger).Error("failed to list topics", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, topics)
}

// GetMessage handles GET /api/messages/{id}. Unknown and malformed ids are
// both reported as 404 with an empty body.
func (h *Handler) GetMessage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	msg, err := h.service.GetMessage(r.Context(), id)
	if errors.Is(err, ErrMessageNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		logging.FromContext(r.Context(), h.logger).Error("failed to load message", "message_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, msg.Response())
}

// CreateMessage handles POST /api/messages.
func (h *Handler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context(), h.logger)

	var req *CreateMessageRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		logger.Info("rejected undecodable message body", "error", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: ErrInvalidRequestBody.Error()})
		return
	}

	msg, err := h.service.Submit(r.Context(), req)
	if err != nil {
		if reason, ok := clientError(err); ok {
			logger.Info("message rejected", "reason", reason)
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: reason})
			return
		}
		logger.Error("failed to submit message", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/messages/%d", msg.ID))
	writeJSON(w, http.StatusCreated, msg.Response())
}

type errorResponse struct {
	Error string `json:"error"`
}

// clientError reports the message to return for errors caused by the input.
func clientError(err error) (string, bool) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Message, true
	case errors.Is(err, ErrCaptchaFailed), errors.Is(err, ErrTopicNotFound):
		return err.Error(), true
	default:
		return "", false
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
