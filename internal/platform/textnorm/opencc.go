// Package textnorm normalizes Chinese transcript text to Simplified script.
package textnorm

import (
	"fmt"

	"github.com/dontdude/goscribe/internal/domain"
	"github.com/longbridgeapp/opencc"
)

// Simplifier converts Traditional Chinese to Simplified Chinese.
type Simplifier struct {
	cc *opencc.OpenCC
}

var _ domain.Normalizer = (*Simplifier)(nil)

// NewSimplifier loads the t2s dictionaries.
func NewSimplifier() (*Simplifier, error) {
	cc, err := opencc.New("t2s")
	if err != nil {
		return nil, fmt.Errorf("failed to load opencc t2s: %w", err)
	}
	return &Simplifier{cc: cc}, nil
}

func (s *Simplifier) Normalize(text string) (string, error) {
	if text == "" {
		return "", nil
	}
	out, err := s.cc.Convert(text)
	if err != nil {
		return "", fmt.Errorf("failed to convert text: %w", err)
	}
	return out, nil
}

// Passthrough leaves text unchanged.
type Passthrough struct{}

func (Passthrough) Normalize(text string) (string, error) { return text, nil }
