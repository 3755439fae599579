// Package tracker keeps per-session API spend: running totals, token counts,
// per-model cost and per-feature usage. Ledgers live for the duration of a
// login session and are never persisted.
package tracker

import (
	"sync"

	"github.com/jobprep-ai/jobprep/internal/pricing"
)

// Feature names as they appear in usage reports.
const (
	FunctionExpertChat        = "expert_chat"
	FunctionQuestionGenerator = "question_generator"
	FunctionInterviewPrep     = "interview_prep"
	FunctionGenerateImage     = "generate_image"
)

// FunctionUsage aggregates one feature's consumption.
type FunctionUsage struct {
	Calls  int     `json:"calls"`
	Tokens int     `json:"tokens"`
	Cost   float64 `json:"cost"`
}

// Snapshot is a point-in-time copy of a ledger, safe to serialize.
type Snapshot struct {
	TotalCost         float64                  `json:"total_cost"`
	TotalInputTokens  int                      `json:"total_input_tokens"`
	TotalOutputTokens int                      `json:"total_output_tokens"`
	ModelCosts        map[string]float64       `json:"model_costs"`
	FunctionUsage     map[string]FunctionUsage `json:"function_usage"`
}

// Ledger accumulates one session's API spend. All counters are monotonically
// non-decreasing for the lifetime of the ledger; the total always equals the
// sum over models.
type Ledger struct {
	mu                sync.Mutex
	totalCost         float64
	totalInputTokens  int
	totalOutputTokens int
	modelCosts        map[string]float64
	functionUsage     map[string]FunctionUsage
}

func NewLedger() *Ledger {
	return &Ledger{
		modelCosts:    make(map[string]float64),
		functionUsage: make(map[string]FunctionUsage),
	}
}

// RecordCompletion books a priced text completion. An empty function name
// books the cost into the totals and the model breakdown only — used for
// auxiliary calls (chat title generation) that no feature claims.
func (l *Ledger) RecordCompletion(function, model string, inputTokens, outputTokens int, b pricing.Breakdown) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.totalCost += b.TotalCost
	l.totalInputTokens += inputTokens
	l.totalOutputTokens += outputTokens
	l.modelCosts[model] += b.TotalCost

	if function == "" {
		return
	}
	u := l.functionUsage[function]
	u.Calls++
	u.Tokens += inputTokens + outputTokens
	u.Cost += b.TotalCost
	l.functionUsage[function] = u
}

// RecordImage books a flat-priced image call. Image spend bypasses the token
// counters; it shows up in the total, the model breakdown and the feature's
// call/cost figures.
func (l *Ledger) RecordImage(function, model string, cost float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.totalCost += cost
	l.modelCosts[model] += cost

	u := l.functionUsage[function]
	u.Calls++
	u.Cost += cost
	l.functionUsage[function] = u
}

// Snapshot returns a deep copy of the current state.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := Snapshot{
		TotalCost:         l.totalCost,
		TotalInputTokens:  l.totalInputTokens,
		TotalOutputTokens: l.totalOutputTokens,
		ModelCosts:        make(map[string]float64, len(l.modelCosts)),
		FunctionUsage:     make(map[string]FunctionUsage, len(l.functionUsage)),
	}
	for m, c := range l.modelCosts {
		s.ModelCosts[m] = c
	}
	for f, u := range l.functionUsage {
		s.FunctionUsage[f] = u
	}
	return s
}
