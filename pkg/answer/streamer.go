package answer

import (
	"context"
	"log"
	"time"

	"what-coffee-be/internal/entity"
	"what-coffee-be/pkg/llm"
	"what-coffee-be/pkg/store"
)

// Streamer relays the grounded generative answer to the caller chunk by
// chunk. It does not touch the session store: committing the finished turn
// is the caller's job and must happen only after a clean completion.
type Streamer struct {
	llmProvider   llm.LLMProvider
	logger        *log.Logger
	historyWindow int
	timeout       time.Duration
	maxTokens     int
}

// NewStreamer creates an answer streamer
func NewStreamer(llmProvider llm.LLMProvider, logger *log.Logger, historyWindow int, timeout time.Duration) *Streamer {
	if historyWindow <= 0 {
		historyWindow = 8
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Streamer{
		llmProvider:   llmProvider,
		logger:        logger,
		historyWindow: historyWindow,
		timeout:       timeout,
		maxTokens:     600,
	}
}

// Stream builds the grounding context and forwards chunks in arrival order.
// Returns the full accumulated text. On mid-stream failure the partial text
// already handed to onChunk is returned alongside the error; the caller
// must then emit its error marker and skip the turn commit.
func (s *Streamer) Stream(
	ctx context.Context,
	turns []store.Turn,
	profile store.Profile,
	candidates []entity.RankedCandidate,
	onChunk llm.StreamHandler,
) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	recent := turns
	if len(recent) > s.historyWindow {
		recent = recent[len(recent)-s.historyWindow:]
	}

	history := NewGroundingBuilder(profile, candidates, recent).Build()

	start := time.Now()
	full, err := s.llmProvider.ChatStream(ctx, history, onChunk, llm.WithMaxTokens(s.maxTokens))
	if err != nil {
		s.logger.Printf("[ERROR] Answer stream failed after %dms with %d chars emitted: %v",
			time.Since(start).Milliseconds(), len(full), err)
		return full, err
	}

	s.logger.Printf("[ANSWER] Streamed %d chars in %dms", len(full), time.Since(start).Milliseconds())
	return full, nil
}
