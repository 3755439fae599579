package tracker

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobprep-ai/jobprep/internal/pricing"
)

func breakdown(in, out float64) pricing.Breakdown {
	return pricing.Breakdown{InputCost: in, OutputCost: out, TotalCost: in + out}
}

func TestLedger_RecordCompletion(t *testing.T) {
	l := NewLedger()

	l.RecordCompletion(FunctionExpertChat, "gpt-4", 1000, 500, breakdown(0.03, 0.03))
	l.RecordCompletion(FunctionExpertChat, "gpt-4", 200, 100, breakdown(0.006, 0.006))
	l.RecordCompletion(FunctionQuestionGenerator, "gpt-3.5-turbo", 400, 200, breakdown(0.0006, 0.0004))

	s := l.Snapshot()
	assert.InDelta(t, 0.073, s.TotalCost, 1e-9)
	assert.Equal(t, 1600, s.TotalInputTokens)
	assert.Equal(t, 800, s.TotalOutputTokens)
	assert.InDelta(t, 0.072, s.ModelCosts["gpt-4"], 1e-9)
	assert.InDelta(t, 0.001, s.ModelCosts["gpt-3.5-turbo"], 1e-9)

	chat := s.FunctionUsage[FunctionExpertChat]
	assert.Equal(t, 2, chat.Calls)
	assert.Equal(t, 1800, chat.Tokens)
	assert.InDelta(t, 0.072, chat.Cost, 1e-9)

	qg := s.FunctionUsage[FunctionQuestionGenerator]
	assert.Equal(t, 1, qg.Calls)
	assert.Equal(t, 600, qg.Tokens)
}

func TestLedger_UnattributedCompletionSkipsFunctionUsage(t *testing.T) {
	l := NewLedger()

	// Title-generation style call: counted in totals and per-model,
	// claimed by no feature.
	l.RecordCompletion("", "gpt-3.5-turbo", 50, 10, breakdown(0.000075, 0.00002))

	s := l.Snapshot()
	assert.Greater(t, s.TotalCost, 0.0)
	assert.Empty(t, s.FunctionUsage)
	assert.Equal(t, 50, s.TotalInputTokens)
}

func TestLedger_RecordImage(t *testing.T) {
	l := NewLedger()

	l.RecordImage(FunctionGenerateImage, "dall-e-3", 0.040)
	l.RecordImage(FunctionGenerateImage, "dall-e-3", 0.080)

	s := l.Snapshot()
	assert.InDelta(t, 0.120, s.TotalCost, 1e-9)
	assert.InDelta(t, 0.120, s.ModelCosts["dall-e-3"], 1e-9)
	// Image calls never touch the token counters.
	assert.Zero(t, s.TotalInputTokens)
	assert.Zero(t, s.TotalOutputTokens)

	img := s.FunctionUsage[FunctionGenerateImage]
	assert.Equal(t, 2, img.Calls)
	assert.Zero(t, img.Tokens)
	assert.InDelta(t, 0.120, img.Cost, 1e-9)
}

func TestLedger_TotalEqualsModelSum(t *testing.T) {
	l := NewLedger()

	l.RecordCompletion(FunctionExpertChat, "gpt-4", 1000, 1000, breakdown(0.03, 0.06))
	l.RecordCompletion("", "gpt-3.5-turbo", 100, 20, breakdown(0.00015, 0.00004))
	l.RecordImage(FunctionGenerateImage, "dall-e-3", 0.040)

	s := l.Snapshot()
	var modelSum, functionSum float64
	for _, c := range s.ModelCosts {
		modelSum += c
	}
	for _, u := range s.FunctionUsage {
		functionSum += u.Cost
	}
	assert.InDelta(t, s.TotalCost, modelSum, 1e-9)
	// The unattributed title call keeps the function sum strictly below the total.
	assert.Less(t, functionSum, s.TotalCost)
}

func TestLedger_ConcurrentRecords(t *testing.T) {
	l := NewLedger()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.RecordCompletion(FunctionExpertChat, "gpt-4", 10, 10, breakdown(0.0003, 0.0006))
		}()
	}
	wg.Wait()

	s := l.Snapshot()
	assert.Equal(t, 1000, s.TotalInputTokens)
	assert.Equal(t, 1000, s.TotalOutputTokens)
	assert.Equal(t, 100, s.FunctionUsage[FunctionExpertChat].Calls)
	assert.InDelta(t, 0.09, s.TotalCost, 1e-9)
}

func TestManager_SessionLifecycle(t *testing.T) {
	m := NewManager()
	userID := uuid.New()

	l := m.Begin(userID)
	l.RecordImage(FunctionGenerateImage, "dall-e-3", 0.040)
	require.InDelta(t, 0.040, m.Ledger(userID).Snapshot().TotalCost, 1e-9)

	// A new login resets the session spend to zero.
	m.Begin(userID)
	assert.Zero(t, m.Ledger(userID).Snapshot().TotalCost)

	// Logout drops the ledger; the next access starts clean.
	m.Ledger(userID).RecordImage(FunctionGenerateImage, "dall-e-3", 0.080)
	m.End(userID)
	assert.Zero(t, m.Ledger(userID).Snapshot().TotalCost)
}

func TestManager_SessionsAreIndependent(t *testing.T) {
	m := NewManager()
	alice := uuid.New()
	bob := uuid.New()

	m.Begin(alice)
	m.Begin(bob)
	m.Ledger(alice).RecordImage(FunctionGenerateImage, "dall-e-3", 0.040)

	assert.InDelta(t, 0.040, m.Ledger(alice).Snapshot().TotalCost, 1e-9)
	assert.Zero(t, m.Ledger(bob).Snapshot().TotalCost)
}
