package matchmaking

import "github.com/okian/arena/internal/domain/model"

// Features derives the fixed-scale vector
// [rating, skill, latency, style, winrate, accuracy] for p. Absent optional
// fields fall back to the neutral defaults in cfg.
func Features(p model.PlayerProfile, cfg FeatureConfig) model.FeatureVector {
	latency := cfg.DefaultLatency
	if p.LatencyMs != nil {
		latency = *p.LatencyMs
	}
	winrate, ok := p.Stat(model.StatWinrate)
	if !ok {
		winrate = cfg.DefaultWinrate
	}
	accuracy, ok := p.Stat(model.StatAccuracy)
	if !ok {
		accuracy = cfg.DefaultAccuracy
	}
	return model.FeatureVector{
		p.Rating / cfg.RatingScale,
		p.Skill,
		latency / cfg.LatencyScale,
		p.PlayStyle.Encode(),
		winrate,
		accuracy,
	}
}

func effectiveLatency(p model.PlayerProfile, cfg FeatureConfig) float64 {
	if p.LatencyMs != nil {
		return *p.LatencyMs
	}
	return cfg.DefaultLatency
}
