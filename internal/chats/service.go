package chats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/jobprep-ai/jobprep/internal/experts"
	"github.com/jobprep-ai/jobprep/internal/llm"
	"github.com/jobprep-ai/jobprep/internal/pricing"
	"github.com/jobprep-ai/jobprep/internal/quota"
	"github.com/jobprep-ai/jobprep/internal/tracker"
)

var (
	ErrChatNotFound     = errors.New("chat not found")
	ErrNotChatOwner     = errors.New("chat belongs to another user")
	ErrUnknownExpert    = errors.New("unknown expert type")
	ErrUnknownTechnique = errors.New("unknown prompting technique")
)

const (
	titleModel       = "gpt-3.5-turbo"
	titleTemperature = 0.3
	fallbackTitle    = "Untitled Chat Topic"

	titleSystemPrompt = "Create a concise 3-word title for this chat topic. Make it descriptive and professional. Format: Word1 Word2 Word3"
)

// Completer is the slice of the provider client this service needs.
type Completer interface {
	Complete(ctx context.Context, model string, messages []llm.Message, temperature float32) (*llm.Completion, error)
}

type Service struct {
	repo     Repository
	llm      Completer
	quota    *quota.Service
	pricing  *pricing.Calculator
	sessions *tracker.Manager
}

func NewService(repo Repository, completer Completer, quotaSvc *quota.Service, calc *pricing.Calculator, sessions *tracker.Manager) *Service {
	return &Service{
		repo:     repo,
		llm:      completer,
		quota:    quotaSvc,
		pricing:  calc,
		sessions: sessions,
	}
}

// SendMessageParams carries one user turn. ChatID zero starts a new chat.
type SendMessageParams struct {
	ChatID      int64
	ExpertType  experts.ExpertType
	Technique   experts.Technique
	Model       string
	Temperature float32
	Concise     bool
	Message     string
}

// SendMessageResult is the assistant's reply plus the chat it now belongs to.
type SendMessageResult struct {
	Chat  *Chat
	Reply string
}

// SendMessage runs one chat turn: consume a daily call, build the persona
// context, apply the prompting technique, call the model, price and record the
// usage, and persist the updated transcript. A brand-new chat additionally
// gets a model-generated 3-word title.
func (s *Service) SendMessage(ctx context.Context, userID uuid.UUID, p SendMessageParams) (*SendMessageResult, error) {
	if p.Message == "" {
		return nil, errors.New("empty message")
	}
	if !p.Technique.IsValid() {
		return nil, ErrUnknownTechnique
	}

	var chat *Chat
	if p.ChatID != 0 {
		existing, err := s.ownedChat(ctx, userID, p.ChatID)
		if err != nil {
			return nil, err
		}
		chat = existing
	} else {
		if !p.ExpertType.IsValid() {
			return nil, ErrUnknownExpert
		}
		chat = &Chat{
			UserID:     userID,
			ExpertType: p.ExpertType,
			Messages: []llm.Message{
				{Role: llm.RoleSystem, Content: p.ExpertType.SystemPrompt()},
				{Role: llm.RoleAssistant, Content: p.ExpertType.WelcomeMessage()},
			},
		}
	}

	// The quota is consumed per attempt: a provider failure after this point
	// does not refund the call.
	if err := s.quota.Consume(ctx, userID); err != nil {
		return nil, err
	}

	chat.Messages = append(chat.Messages, llm.Message{Role: llm.RoleUser, Content: p.Message})

	length := "detailed and comprehensive"
	if p.Concise {
		length = "concise and direct"
	}
	msgs := append([]llm.Message{}, chat.Messages...)
	msgs = append(msgs, llm.Message{
		Role:    llm.RoleSystem,
		Content: fmt.Sprintf("Please provide %s answers.\n%s", length, p.Technique.Apply(p.Message)),
	})

	completion, err := s.llm.Complete(ctx, p.Model, msgs, p.Temperature)
	if err != nil {
		return nil, err
	}

	s.record(tracker.FunctionExpertChat, userID, p.Model, completion)

	chat.Messages = append(chat.Messages, llm.Message{Role: llm.RoleAssistant, Content: completion.Content})

	if chat.ID == 0 {
		chat.Description = s.describeChat(ctx, userID, p.Message)
		if err := s.repo.Create(ctx, chat); err != nil {
			return nil, err
		}
	} else {
		if err := s.repo.UpdateMessages(ctx, chat.ID, chat.Messages); err != nil {
			return nil, err
		}
	}

	return &SendMessageResult{Chat: chat, Reply: completion.Content}, nil
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Chat, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) Get(ctx context.Context, userID uuid.UUID, chatID int64) (*Chat, error) {
	return s.ownedChat(ctx, userID, chatID)
}

func (s *Service) Delete(ctx context.Context, userID uuid.UUID, chatID int64) error {
	if _, err := s.ownedChat(ctx, userID, chatID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, chatID)
}

func (s *Service) ownedChat(ctx context.Context, userID uuid.UUID, chatID int64) (*Chat, error) {
	chat, err := s.repo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}
	if chat.UserID != userID {
		return nil, ErrNotChatOwner
	}
	return chat, nil
}

// describeChat asks the cheap model for a 3-word title. The title call is
// priced into the session totals but not attributed to any feature, and it
// does not consume a daily call. Failures degrade to a fixed title.
func (s *Service) describeChat(ctx context.Context, userID uuid.UUID, firstMessage string) string {
	completion, err := s.llm.Complete(ctx, titleModel, []llm.Message{
		{Role: llm.RoleSystem, Content: titleSystemPrompt},
		{Role: llm.RoleUser, Content: firstMessage},
	}, titleTemperature)
	if err != nil {
		slog.Warn("generating chat title", "error", err)
		return fallbackTitle
	}

	s.record("", userID, titleModel, completion)

	words := strings.Fields(completion.Content)
	if len(words) == 0 {
		return fallbackTitle
	}
	if len(words) > 3 {
		words = words[:3]
	}
	return strings.Join(words, " ")
}

func (s *Service) record(function string, userID uuid.UUID, model string, c *llm.Completion) {
	breakdown, err := s.pricing.PriceCompletion(model, c.PromptTokens, c.CompletionTokens)
	if err != nil {
		slog.Warn("pricing completion", "model", model, "error", err)
		return
	}
	s.sessions.Ledger(userID).RecordCompletion(function, model, c.PromptTokens, c.CompletionTokens, breakdown)
}
