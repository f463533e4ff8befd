package analysis

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bryanwahyu/chat-pattern-explorer/internal/domain/ai"
	domain "github.com/bryanwahyu/chat-pattern-explorer/internal/domain/analysis"
	"github.com/bryanwahyu/chat-pattern-explorer/internal/infra/ai/prompt"
)

// Service runs the two-step analyze/repair protocol against a completion client.
// Only one analysis runs at a time; a second caller is turned away instead of queued.
type Service struct {
	client  ai.Client
	log     *zap.Logger
	running atomic.Bool
}

func NewService(client ai.Client, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{client: client, log: log}
}

// Analyzing reports whether an analysis is in flight.
func (s *Service) Analyzing() bool { return s.running.Load() }

// Analyze sends the chat text for analysis, sanitizes the answer, asks the model
// to repair it and parses the repaired JSON. Any failure yields the empty Result
// and ErrAnalysisFailed; the cause is only logged. Once started, the two calls are
// not cancelled by ctx.
func (s *Service) Analyze(ctx context.Context, chat string) (domain.Result, error) {
	if !s.running.CompareAndSwap(false, true) {
		return domain.Result{}, domain.ErrAnalysisInProgress
	}
	defer s.running.Store(false)

	ctx = context.WithoutCancel(ctx)
	log := s.log.With(zap.String("analysis_id", uuid.NewString()))
	start := time.Now()

	raw, err := s.client.Complete(ctx, prompt.Analysis(chat))
	if err != nil {
		log.Error("analysis request failed", zap.Error(err))
		return domain.Result{}, domain.ErrAnalysisFailed
	}

	sanitized := prompt.Sanitize(raw)

	repaired, err := s.client.Complete(ctx, prompt.Repair(sanitized))
	if err != nil {
		log.Error("repair request failed", zap.Error(err))
		return domain.Result{}, domain.ErrAnalysisFailed
	}

	var res domain.Result
	if err := json.Unmarshal([]byte(repaired), &res); err != nil {
		log.Error("error parsing JSON response", zap.Error(err), zap.Int("response_bytes", len(repaired)))
		return domain.Result{}, domain.ErrAnalysisFailed
	}

	log.Info("chat analyzed",
		zap.Int("chat_bytes", len(chat)),
		zap.Bool("empty", res.IsEmpty()),
		zap.Duration("took", time.Since(start)),
	)
	return res, nil
}
