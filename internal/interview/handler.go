package interview

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jobprep-ai/jobprep/internal/api"
	"github.com/jobprep-ai/jobprep/internal/auth"
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

type GenerateQuestionsRequest struct {
	JobDescription string `json:"job_description" validate:"required"`
	Style          string `json:"style" validate:"required"`
	Count          int    `json:"count" validate:"required,min=1,max=10"`
	Comprehensive  bool   `json:"comprehensive"`
}

type CodingQuestionRequest struct {
	JobDescription string `json:"job_description" validate:"required"`
	Personality    string `json:"personality" validate:"required"`
	Language       string `json:"language" validate:"required"`
	Difficulty     int    `json:"difficulty" validate:"required,min=1,max=5"`
	Comprehensive  bool   `json:"comprehensive"`
}

type EvaluateSolutionRequest struct {
	Question       string `json:"question" validate:"required"`
	Solution       string `json:"solution" validate:"required"`
	Language       string `json:"language" validate:"required"`
	Difficulty     int    `json:"difficulty" validate:"required,min=1,max=5"`
	Personality    string `json:"personality" validate:"required"`
	JobDescription string `json:"job_description"`
}

func (h *Handler) GenerateQuestions(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == uuid.Nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	var req GenerateQuestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	questions, err := h.svc.GenerateQuestions(r.Context(), userID, GenerateQuestionsParams{
		JobDescription: req.JobDescription,
		Style:          QuestionStyle(req.Style),
		Count:          req.Count,
		Comprehensive:  req.Comprehensive,
	})
	if err != nil {
		h.handleServiceError(w, err, "generating questions")
		return
	}

	api.JSON(w, http.StatusOK, map[string]string{"questions": questions})
}

func (h *Handler) GenerateCodingQuestion(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == uuid.Nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	var req CodingQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	question, err := h.svc.GenerateCodingQuestion(r.Context(), userID, CodingQuestionParams{
		JobDescription: req.JobDescription,
		Personality:    Personality(req.Personality),
		Language:       req.Language,
		Difficulty:     req.Difficulty,
		Comprehensive:  req.Comprehensive,
	})
	if err != nil {
		h.handleServiceError(w, err, "generating coding question")
		return
	}

	api.JSON(w, http.StatusOK, map[string]string{"question": question})
}

func (h *Handler) EvaluateSolution(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == uuid.Nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	var req EvaluateSolutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	feedback, err := h.svc.EvaluateSolution(r.Context(), userID, EvaluateSolutionParams{
		Question:       req.Question,
		Solution:       req.Solution,
		Language:       req.Language,
		Difficulty:     req.Difficulty,
		Personality:    Personality(req.Personality),
		JobDescription: req.JobDescription,
	})
	if err != nil {
		h.handleServiceError(w, err, "evaluating solution")
		return
	}

	api.JSON(w, http.StatusOK, map[string]string{"feedback": feedback})
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
	case errors.Is(err, ErrUnknownStyle),
		errors.Is(err, ErrUnknownPersonality),
		errors.Is(err, ErrUnknownLanguage),
		errors.Is(err, ErrBadDifficulty),
		errors.Is(err, ErrBadQuestionCount):
		api.HandleError(w, api.NewBadRequestError(err.Error()))
	default:
		slog.Error(op, "error", err)
		api.HandleError(w, api.ErrInternalServer)
	}
}
