package fallback

import (
	"go.uber.org/zap"

	"mockinterview/ai/internal/llm"
	"mockinterview/ai/internal/scoring"
)

// Register adds the offline provider to reg under llm.FallbackName.
func Register(reg *llm.Registry, thresholds scoring.Thresholds, logger *zap.Logger) {
	reg.Register(llm.FallbackName, func() (llm.Provider, error) {
		bank, err := LoadBank()
		if err != nil {
			return nil, err
		}
		return NewProvider(bank, scoring.NewHeuristic(thresholds), logger), nil
	})
}
