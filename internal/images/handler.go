package images

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jobprep-ai/jobprep/internal/api"
	"github.com/jobprep-ai/jobprep/internal/auth"
	"github.com/jobprep-ai/jobprep/internal/experts"
	"github.com/jobprep-ai/jobprep/internal/llm"
	"github.com/jobprep-ai/jobprep/internal/quota"
)

// maxUploadBytes bounds edit uploads; DALL-E rejects anything over 4MB anyway.
const maxUploadBytes = 8 << 20

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

type GenerateRequest struct {
	Style  string `json:"style" validate:"required"`
	Prompt string `json:"prompt" validate:"required"`
}

type ImageResponse struct {
	B64JSON string `json:"b64_json"`
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == uuid.Nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	img, err := h.svc.Generate(r.Context(), userID, experts.ImageStyle(req.Style), req.Prompt)
	if err != nil {
		h.handleServiceError(w, err, "generating image")
		return
	}

	api.JSON(w, http.StatusOK, ImageResponse{B64JSON: img.B64JSON})
}

// Edit accepts a multipart form with an "image" file and a "background" field.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == uuid.Nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		api.HandleError(w, api.NewBadRequestError("invalid multipart form"))
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		api.HandleError(w, api.NewBadRequestError("missing image file"))
		return
	}
	defer file.Close()

	background := r.FormValue("background")
	if background == "" {
		api.HandleError(w, api.NewBadRequestError("missing background"))
		return
	}

	img, err := h.svc.Edit(r.Context(), userID, file, background)
	if err != nil {
		h.handleServiceError(w, err, "editing image")
		return
	}

	api.JSON(w, http.StatusOK, ImageResponse{B64JSON: img.B64JSON})
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
	case errors.Is(err, ErrUnknownStyle), errors.Is(err, ErrUnknownBackground), errors.Is(err, ErrBadImage):
		api.HandleError(w, api.NewBadRequestError(err.Error()))
	default:
		slog.Error(op, "error", err)
		api.HandleError(w, api.ErrInternalServer)
	}
}
