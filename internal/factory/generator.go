package factory

import (
	"github.com/rs/zerolog"

	"github.com/memoryfriend/memory-friend/server/internal/ai"
	"github.com/memoryfriend/memory-friend/server/internal/config"
)

// NewGenerator builds the ordered model fallback chain from config.
// Returns nil when no API key is configured; callers treat a nil generator
// as keyword-fallback-only mode.
func NewGenerator(cfg *config.Config, log zerolog.Logger) (ai.Generator, error) {
	if !cfg.AIEnabled() {
		log.Info().Msg("generative API key not set; running in keyword fallback mode")
		return nil, nil
	}

	gens := make([]ai.Generator, 0, len(cfg.GenerativeModels))
	for _, m := range cfg.GenerativeModels {
		g, err := ai.NewOpenAIGenerator(cfg.GenerativeAPIKey, cfg.GenerativeBaseURL, m)
		if err != nil {
			return nil, err
		}
		gens = append(gens, g)
	}

	log.Info().Strs("models", cfg.GenerativeModels).Msg("generative model chain configured")
	return ai.NewChain(gens...), nil
}
