package problems

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HTTPSource requests problems from the external generation service over
// JSON HTTP, per the collaborator contract.
type HTTPSource struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPSource creates a client for the problem-generation service.
func NewHTTPSource(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type generateResponse struct {
	Question      string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correctAnswer"`
	Difficulty    int      `json:"difficulty"`
}

// Generate posts the card context to the service and decodes the problem.
func (s *HTTPSource) Generate(ctx context.Context, req Request) (Problem, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Problem{}, fmt.Errorf("failed to encode problem request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/problems", bytes.NewReader(body))
	if err != nil {
		return Problem{}, fmt.Errorf("failed to build problem request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return Problem{}, fmt.Errorf("problem service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Problem{}, fmt.Errorf("problem service returned status %d", resp.StatusCode)
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Problem{}, fmt.Errorf("failed to decode problem response: %w", err)
	}
	if decoded.Question == "" || decoded.CorrectAnswer == "" {
		return Problem{}, fmt.Errorf("problem service returned incomplete problem")
	}

	return Problem{
		ID:            uuid.NewString(),
		Question:      decoded.Question,
		Options:       decoded.Options,
		CorrectAnswer: decoded.CorrectAnswer,
		Difficulty:    decoded.Difficulty,
		Category:      req.Category,
	}, nil
}

// FallbackSource wraps a primary source and substitutes a deterministic
// local problem when the primary fails. The substitution is logged, never
// silent, and callers always receive a usable problem.
type FallbackSource struct {
	primary  Source
	fallback *LocalGenerator
	logger   *zap.Logger
}

// NewFallbackSource wraps primary with the local generator.
func NewFallbackSource(primary Source, logger *zap.Logger) *FallbackSource {
	return &FallbackSource{
		primary:  primary,
		fallback: NewLocalGenerator(),
		logger:   logger,
	}
}

// Generate tries the primary source first.
func (s *FallbackSource) Generate(ctx context.Context, req Request) (Problem, error) {
	if s.primary != nil {
		problem, err := s.primary.Generate(ctx, req)
		if err == nil {
			return problem, nil
		}
		s.logger.Warn("problem service failed, substituting local problem",
			zap.String("card", req.CardName),
			zap.Int("difficulty", req.Difficulty),
			zap.Error(err),
		)
	}
	return s.fallback.Generate(ctx, req)
}
