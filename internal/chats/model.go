package chats

import (
	"time"

	"github.com/google/uuid"

	"github.com/jobprep-ai/jobprep/internal/experts"
	"github.com/jobprep-ai/jobprep/internal/llm"
)

// Chat is a stored conversation with one expert persona. Messages holds the
// full transcript including the hidden system message; handlers strip system
// messages before returning transcripts to clients.
type Chat struct {
	ID          int64              `json:"id"`
	UserID      uuid.UUID          `json:"user_id"`
	ExpertType  experts.ExpertType `json:"expert_type"`
	Messages    []llm.Message      `json:"messages"`
	Description string             `json:"description"`
	Timestamp   time.Time          `json:"timestamp"`
}

// Visible returns the transcript without system messages.
func (c *Chat) Visible() []llm.Message {
	out := make([]llm.Message, 0, len(c.Messages))
	for _, m := range c.Messages {
		if m.Role != llm.RoleSystem {
			out = append(out, m)
		}
	}
	return out
}
