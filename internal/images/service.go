// Package images generates and edits images through the provider's DALL-E
// endpoint at a fixed 1024x1024 standard-quality price point.
package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // register JPEG decoding for uploads
	"image/png"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/jobprep-ai/jobprep/internal/experts"
	"github.com/jobprep-ai/jobprep/internal/llm"
	"github.com/jobprep-ai/jobprep/internal/pricing"
	"github.com/jobprep-ai/jobprep/internal/quota"
	"github.com/jobprep-ai/jobprep/internal/tracker"
)

const (
	model      = "dall-e-3"
	size       = "1024x1024"
	quality    = "standard"
	resolution = "1024x1024"
)

var (
	ErrUnknownStyle      = errors.New("unknown image style")
	ErrUnknownBackground = errors.New("unknown background")
	ErrBadImage          = errors.New("image could not be decoded")
)

// Background options for image edits.
var backgrounds = map[string]bool{
	"Professional Office": true,
	"Modern Office":       true,
	"Minimalist":          true,
	"Classic":             true,
	"Outdoor Business":    true,
}

type Generator interface {
	GenerateImage(ctx context.Context, model, prompt, size, quality, style string) (*llm.Image, error)
	EditImage(ctx context.Context, model string, image, mask io.Reader, prompt, size string) (*llm.Image, error)
}

type Service struct {
	llm      Generator
	quota    *quota.Service
	pricing  *pricing.Calculator
	sessions *tracker.Manager
}

func NewService(generator Generator, quotaSvc *quota.Service, calc *pricing.Calculator, sessions *tracker.Manager) *Service {
	return &Service{
		llm:      generator,
		quota:    quotaSvc,
		pricing:  calc,
		sessions: sessions,
	}
}

// Generate creates an image in the requested catalog style. Consumes one
// daily call per attempt.
func (s *Service) Generate(ctx context.Context, userID uuid.UUID, style experts.ImageStyle, prompt string) (*llm.Image, error) {
	if !style.IsValid() {
		return nil, ErrUnknownStyle
	}
	if prompt == "" {
		return nil, errors.New("empty prompt")
	}

	if err := s.quota.Consume(ctx, userID); err != nil {
		return nil, err
	}

	enhanced := fmt.Sprintf("Create a %s image of: %s", strings.ToLower(string(style)), prompt)
	img, err := s.llm.GenerateImage(ctx, model, enhanced, size, quality, style.ProviderStyle())
	if err != nil {
		return nil, err
	}

	s.record(userID)
	return img, nil
}

// Edit replaces the background of an uploaded image. The upload is
// re-encoded to RGBA PNG and paired with a full-white mask so the provider
// may repaint the whole frame while keeping the subject.
func (s *Service) Edit(ctx context.Context, userID uuid.UUID, upload io.Reader, background string) (*llm.Image, error) {
	if !backgrounds[background] {
		return nil, ErrUnknownBackground
	}

	pngData, mask, err := preparePNG(upload)
	if err != nil {
		return nil, err
	}

	if err := s.quota.Consume(ctx, userID); err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf("Replace the background with a %s background while keeping the subject intact.",
		strings.ToLower(background))

	img, err := s.llm.EditImage(ctx, model, bytes.NewReader(pngData), bytes.NewReader(mask), prompt, size)
	if err != nil {
		return nil, err
	}

	s.record(userID)
	return img, nil
}

func (s *Service) record(userID uuid.UUID) {
	cost, err := s.pricing.PriceImage(model, resolution, quality)
	if err != nil {
		slog.Warn("pricing image", "model", model, "error", err)
		return
	}
	s.sessions.Ledger(userID).RecordImage(tracker.FunctionGenerateImage, model, cost)
}

// preparePNG decodes any supported upload format, re-encodes it as PNG and
// builds a matching full-white mask PNG.
func preparePNG(upload io.Reader) (imageData, maskData []byte, err error) {
	src, _, err := image.Decode(upload)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrBadImage, err)
	}

	bounds := src.Bounds()
	rgba := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rgba.Set(x, y, src.At(x, y))
		}
	}

	var imgBuf bytes.Buffer
	if err := png.Encode(&imgBuf, rgba); err != nil {
		return nil, nil, fmt.Errorf("encoding image: %w", err)
	}

	mask := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			mask.SetGray(x, y, color.Gray{Y: 255})
		}
	}

	var maskBuf bytes.Buffer
	if err := png.Encode(&maskBuf, mask); err != nil {
		return nil, nil, fmt.Errorf("encoding mask: %w", err)
	}

	return imgBuf.Bytes(), maskBuf.Bytes(), nil
}
