// Package pricing computes the dollar cost of provider calls from static,
// versioned price tables. Text models are priced per 1000 tokens by
// direction; image models carry flat per-image rates keyed by resolution and
// quality. There is no dynamic price fetch.
package pricing

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var embeddedTables []byte

var (
	// ErrUnknownModel means the price table has no entry for the model. It is
	// a programmer error: a call must never be silently priced at zero.
	ErrUnknownModel = errors.New("unknown model")

	// ErrUnknownImagePrice means the model is known but the
	// resolution/quality combination is not in the table.
	ErrUnknownImagePrice = errors.New("unknown image resolution or quality")
)

// CompletionRate holds per-1K-token prices for one text model.
type CompletionRate struct {
	InputPer1K  float64 `yaml:"input_per_1k"`
	OutputPer1K float64 `yaml:"output_per_1k"`
}

// ImageRate is one flat per-image price point.
type ImageRate struct {
	Resolution string  `yaml:"resolution"`
	Quality    string  `yaml:"quality"`
	Price      float64 `yaml:"price"`
}

// Table is a versioned price list.
type Table struct {
	Updated    string                    `yaml:"updated"`
	Completion map[string]CompletionRate `yaml:"completion"`
	Image      map[string][]ImageRate    `yaml:"image"`
}

// Breakdown is the priced result of one completion call.
type Breakdown struct {
	InputCost  float64 `json:"input_cost"`
	OutputCost float64 `json:"output_cost"`
	TotalCost  float64 `json:"total_cost"`
}

// Calculator prices completion and image calls against a Table.
type Calculator struct {
	table Table
}

// New parses a YAML price table.
func New(data []byte) (*Calculator, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing price table: %w", err)
	}
	if t.Updated == "" {
		return nil, errors.New("price table: missing updated field")
	}
	if len(t.Completion) == 0 && len(t.Image) == 0 {
		return nil, errors.New("price table: no models defined")
	}
	return &Calculator{table: t}, nil
}

// NewDefault loads the price table compiled into the binary.
func NewDefault() (*Calculator, error) {
	return New(embeddedTables)
}

// Updated returns the table's version marker.
func (c *Calculator) Updated() string {
	return c.table.Updated
}

// PriceCompletion prices a text completion from its token counts.
func (c *Calculator) PriceCompletion(model string, inputTokens, outputTokens int) (Breakdown, error) {
	rate, ok := c.table.Completion[model]
	if !ok {
		return Breakdown{}, fmt.Errorf("%w: %q", ErrUnknownModel, model)
	}
	b := Breakdown{
		InputCost:  float64(inputTokens) / 1000 * rate.InputPer1K,
		OutputCost: float64(outputTokens) / 1000 * rate.OutputPer1K,
	}
	b.TotalCost = b.InputCost + b.OutputCost
	return b, nil
}

// PriceImage returns the flat per-image price for the given model,
// resolution and quality.
func (c *Calculator) PriceImage(model, resolution, quality string) (float64, error) {
	rates, ok := c.table.Image[model]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownModel, model)
	}
	for _, r := range rates {
		if r.Resolution == resolution && r.Quality == quality {
			return r.Price, nil
		}
	}
	return 0, fmt.Errorf("%w: %s %s/%s", ErrUnknownImagePrice, model, resolution, quality)
}
