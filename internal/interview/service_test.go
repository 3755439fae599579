package interview

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobprep-ai/jobprep/internal/llm"
	"github.com/jobprep-ai/jobprep/internal/pricing"
	"github.com/jobprep-ai/jobprep/internal/quota"
	"github.com/jobprep-ai/jobprep/internal/tracker"
)

type fakeCompleter struct {
	mu       sync.Mutex
	requests [][]llm.Message
	reply    string
	err      error
}

func (f *fakeCompleter) Complete(_ context.Context, _ string, messages []llm.Message, _ float32) (*llm.Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, messages)
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Completion{Content: f.reply, PromptTokens: 200, CompletionTokens: 300}, nil
}

type quotaStore struct {
	mu    sync.Mutex
	count map[uuid.UUID]int
	err   error
}

func newQuotaStore() *quotaStore {
	return &quotaStore{count: make(map[uuid.UUID]int)}
}

func (s *quotaStore) IncrementIfUnder(_ context.Context, userID uuid.UUID, _ string, max int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	if s.count[userID] >= max {
		return false, nil
	}
	s.count[userID]++
	return true, nil
}

func (s *quotaStore) ResetIfStale(context.Context, uuid.UUID, string) error { return nil }

func (s *quotaStore) CallsOn(_ context.Context, userID uuid.UUID, _ string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count[userID], nil
}

func newTestService(t *testing.T, completer *fakeCompleter, store quota.Store) (*Service, *tracker.Manager) {
	t.Helper()
	calc, err := pricing.NewDefault()
	require.NoError(t, err)
	sessions := tracker.NewManager()
	return NewService(completer, quota.NewService(store, 10), calc, sessions), sessions
}

func TestGenerateQuestions(t *testing.T) {
	completer := &fakeCompleter{reply: "1. Explain goroutines.\n2. Explain channels."}
	svc, sessions := newTestService(t, completer, newQuotaStore())
	userID := uuid.New()

	questions, err := svc.GenerateQuestions(context.Background(), userID, GenerateQuestionsParams{
		JobDescription: "Senior Go developer building payment systems",
		Style:          StyleTechnical,
		Count:          5,
	})
	require.NoError(t, err)
	assert.Contains(t, questions, "goroutines")

	require.Len(t, completer.requests, 1)
	msgs := completer.requests[0]
	require.Len(t, msgs, 2)
	assert.Equal(t, llm.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "creating interview questions")
	assert.Contains(t, msgs[1].Content, "Generate 5 concise technical questions")
	assert.Contains(t, msgs[1].Content, "payment systems")

	snap := sessions.Ledger(userID).Snapshot()
	assert.Equal(t, 1, snap.FunctionUsage[tracker.FunctionQuestionGenerator].Calls)
	assert.Equal(t, 500, snap.FunctionUsage[tracker.FunctionQuestionGenerator].Tokens)
}

func TestGenerateQuestions_Comprehensive(t *testing.T) {
	completer := &fakeCompleter{reply: "ok"}
	svc, _ := newTestService(t, completer, newQuotaStore())

	_, err := svc.GenerateQuestions(context.Background(), uuid.New(), GenerateQuestionsParams{
		JobDescription: "jd",
		Style:          StyleSystemDesign,
		Count:          3,
		Comprehensive:  true,
	})
	require.NoError(t, err)
	assert.Contains(t, completer.requests[0][1].Content, "Generate 3 detailed system design questions")
}

func TestGenerateQuestions_Validation(t *testing.T) {
	svc, _ := newTestService(t, &fakeCompleter{reply: "ok"}, newQuotaStore())
	userID := uuid.New()

	_, err := svc.GenerateQuestions(context.Background(), userID, GenerateQuestionsParams{
		JobDescription: "jd", Style: QuestionStyle("Existential"), Count: 5,
	})
	assert.ErrorIs(t, err, ErrUnknownStyle)

	_, err = svc.GenerateQuestions(context.Background(), userID, GenerateQuestionsParams{
		JobDescription: "jd", Style: StyleTechnical, Count: 11,
	})
	assert.ErrorIs(t, err, ErrBadQuestionCount)
}

func TestGenerateQuestions_ValidationDoesNotConsumeQuota(t *testing.T) {
	store := newQuotaStore()
	svc, _ := newTestService(t, &fakeCompleter{reply: "ok"}, store)
	userID := uuid.New()

	_, err := svc.GenerateQuestions(context.Background(), userID, GenerateQuestionsParams{
		JobDescription: "jd", Style: QuestionStyle("bogus"), Count: 5,
	})
	require.Error(t, err)
	assert.Zero(t, store.count[userID])
}

func TestGenerateCodingQuestion(t *testing.T) {
	completer := &fakeCompleter{reply: "Implement an LRU cache."}
	svc, sessions := newTestService(t, completer, newQuotaStore())
	userID := uuid.New()

	question, err := svc.GenerateCodingQuestion(context.Background(), userID, CodingQuestionParams{
		JobDescription: "Backend role",
		Personality:    Challenging,
		Language:       "Python",
		Difficulty:     4,
	})
	require.NoError(t, err)
	assert.Equal(t, "Implement an LRU cache.", question)

	prompt := completer.requests[0][1].Content
	assert.Contains(t, prompt, "challenging")
	assert.Contains(t, prompt, "Difficulty: 4/5")
	assert.Contains(t, prompt, "Language: Python")

	snap := sessions.Ledger(userID).Snapshot()
	assert.Equal(t, 1, snap.FunctionUsage[tracker.FunctionInterviewPrep].Calls)
}

func TestEvaluateSolution(t *testing.T) {
	completer := &fakeCompleter{reply: "Correct, O(n) time."}
	svc, sessions := newTestService(t, completer, newQuotaStore())
	userID := uuid.New()

	feedback, err := svc.EvaluateSolution(context.Background(), userID, EvaluateSolutionParams{
		Question:    "Reverse a linked list",
		Solution:    "def reverse(head): ...",
		Language:    "Python",
		Difficulty:  3,
		Personality: Friendly,
	})
	require.NoError(t, err)
	assert.Equal(t, "Correct, O(n) time.", feedback)

	prompt := completer.requests[0][1].Content
	assert.Contains(t, prompt, "As a friendly interviewer")
	assert.Contains(t, prompt, "Reverse a linked list")
	assert.Contains(t, prompt, "Code correctness")
	assert.Contains(t, prompt, "Job Description: Not Specified")

	// Both question generation and evaluation bill to the same feature.
	snap := sessions.Ledger(userID).Snapshot()
	assert.Equal(t, 1, snap.FunctionUsage[tracker.FunctionInterviewPrep].Calls)
}

func TestEvaluateSolution_ConsumesQuota(t *testing.T) {
	store := newQuotaStore()
	svc, _ := newTestService(t, &fakeCompleter{reply: "ok"}, store)
	userID := uuid.New()
	store.count[userID] = 10

	_, err := svc.EvaluateSolution(context.Background(), userID, EvaluateSolutionParams{
		Question: "q", Solution: "s", Language: "Java", Difficulty: 2, Personality: Supportive,
	})
	assert.ErrorIs(t, err, quota.ErrExceeded)
}

func TestQuotaStoreDown_FailsClosed(t *testing.T) {
	store := newQuotaStore()
	store.err = errors.New("timeout")
	completer := &fakeCompleter{reply: "ok"}
	svc, _ := newTestService(t, completer, store)

	_, err := svc.GenerateQuestions(context.Background(), uuid.New(), GenerateQuestionsParams{
		JobDescription: "jd", Style: StyleBehavioral, Count: 2,
	})
	assert.ErrorIs(t, err, quota.ErrStoreUnavailable)
	assert.Empty(t, completer.requests)
}

func TestProviderFailureDoesNotRefundQuota(t *testing.T) {
	store := newQuotaStore()
	svc, _ := newTestService(t, &fakeCompleter{err: llm.ErrProvider}, store)
	userID := uuid.New()

	_, err := svc.GenerateCodingQuestion(context.Background(), userID, CodingQuestionParams{
		JobDescription: "jd", Personality: Technical, Language: "C++", Difficulty: 5,
	})
	assert.ErrorIs(t, err, llm.ErrProvider)
	assert.Equal(t, 1, store.count[userID])
}
