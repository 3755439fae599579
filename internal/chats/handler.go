package chats

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jobprep-ai/jobprep/internal/api"
	"github.com/jobprep-ai/jobprep/internal/auth"
	"github.com/jobprep-ai/jobprep/internal/experts"
	"github.com/jobprep-ai/jobprep/internal/llm"
	"github.com/jobprep-ai/jobprep/internal/quota"
)

type Handler struct {
	svc      *Service
	validate *validator.Validate
}

func NewHandler(svc *Service) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

type SendMessageRequest struct {
	ChatID      int64   `json:"chat_id"`
	ExpertType  string  `json:"expert_type"`
	Technique   string  `json:"technique"`
	Model       string  `json:"model" validate:"required,oneof=gpt-4 gpt-3.5-turbo"`
	Temperature float32 `json:"temperature" validate:"gte=0,lte=2"`
	Concise     bool    `json:"concise"`
	Message     string  `json:"message" validate:"required"`
}

type SendMessageResponse struct {
	ChatID      int64         `json:"chat_id"`
	Description string        `json:"description"`
	Reply       string        `json:"reply"`
	Messages    []llm.Message `json:"messages"`
}

type ChatSummary struct {
	ID          int64  `json:"id"`
	ExpertType  string `json:"expert_type"`
	Description string `json:"description"`
	Timestamp   string `json:"timestamp"`
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == uuid.Nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	technique := experts.Technique(req.Technique)
	if req.Technique == "" {
		technique = experts.ZeroShot
	}

	result, err := h.svc.SendMessage(r.Context(), userID, SendMessageParams{
		ChatID:      req.ChatID,
		ExpertType:  experts.ExpertType(req.ExpertType),
		Technique:   technique,
		Model:       req.Model,
		Temperature: req.Temperature,
		Concise:     req.Concise,
		Message:     req.Message,
	})
	if err != nil {
		h.handleServiceError(w, err, "sending chat message")
		return
	}

	api.JSON(w, http.StatusOK, SendMessageResponse{
		ChatID:      result.Chat.ID,
		Description: result.Chat.Description,
		Reply:       result.Reply,
		Messages:    result.Chat.Visible(),
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == uuid.Nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	chats, err := h.svc.ListByUser(r.Context(), userID)
	if err != nil {
		slog.Error("listing chats", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	summaries := make([]ChatSummary, 0, len(chats))
	for _, c := range chats {
		summaries = append(summaries, ChatSummary{
			ID:          c.ID,
			ExpertType:  string(c.ExpertType),
			Description: c.Description,
			Timestamp:   c.Timestamp.UTC().Format(time.RFC3339),
		})
	}

	api.JSON(w, http.StatusOK, summaries)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == uuid.Nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	chatID, err := strconv.ParseInt(chi.URLParam(r, "chatID"), 10, 64)
	if err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	chat, err := h.svc.Get(r.Context(), userID, chatID)
	if err != nil {
		h.handleServiceError(w, err, "getting chat")
		return
	}

	api.JSON(w, http.StatusOK, struct {
		ID          int64         `json:"id"`
		ExpertType  string        `json:"expert_type"`
		Description string        `json:"description"`
		Messages    []llm.Message `json:"messages"`
	}{
		ID:          chat.ID,
		ExpertType:  string(chat.ExpertType),
		Description: chat.Description,
		Messages:    chat.Visible(),
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == uuid.Nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	chatID, err := strconv.ParseInt(chi.URLParam(r, "chatID"), 10, 64)
	if err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), userID, chatID); err != nil {
		h.handleServiceError(w, err, "deleting chat")
		return
	}

	api.JSONMessage(w, http.StatusOK, "chat deleted")
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, quota.ErrExceeded):
		api.HandleError(w, api.ErrQuotaExceeded)
	case errors.Is(err, quota.ErrStoreUnavailable):
		slog.Error(op, "error", err)
		api.HandleError(w, api.ErrQuotaUnavailable)
	case errors.Is(err, llm.ErrProvider):
		slog.Error(op, "error", err)
		api.HandleError(w, api.ErrProviderFailure)
	case errors.Is(err, ErrChatNotFound), errors.Is(err, ErrNotChatOwner):
		// Hide ownership failures behind 404.
		api.HandleError(w, api.ErrNotFound)
	case errors.Is(err, ErrUnknownExpert), errors.Is(err, ErrUnknownTechnique):
		api.HandleError(w, api.NewBadRequestError(err.Error()))
	default:
		slog.Error(op, "error", err)
		api.HandleError(w, api.ErrInternalServer)
	}
}
