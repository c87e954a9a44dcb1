package fraud

import (
	"math"

	"github.com/okian/arena/internal/domain/model"
	"github.com/okian/arena/internal/domain/stats"
)

// detector inspects one aspect of a stream and reports at most one signal.
type detector func(cfg Config, events []model.PlayerEvent, p *model.PlayerProfile) (model.FraudSignal, string, bool)

// detectors run in this order, which is also the order of emitted signals.
var detectors = []detector{
	rapidActions,
	rewardOutliers,
	winrateSpike,
	regionHopping,
}

func rapidActions(cfg Config, events []model.PlayerEvent, _ *model.PlayerProfile) (model.FraudSignal, string, bool) {
	count := 0
	for i := 1; i < len(events); i++ {
		dt := events[i].Timestamp.Sub(events[i-1].Timestamp)
		if dt > 0 && dt < cfg.RapidWindow {
			count++
		}
	}
	if count <= cfg.RapidMinCount {
		return model.FraudSignal{}, "", false
	}
	return model.FraudSignal{
		Name:   SignalRapidActions,
		Value:  float64(count),
		Weight: cfg.RapidWeight,
	}, "High number of rapid consecutive actions", true
}

func rewardOutliers(cfg Config, events []model.PlayerEvent, _ *model.PlayerProfile) (model.FraudSignal, string, bool) {
	var rewards []float64
	for _, e := range events {
		if e.Type == cfg.RewardEvent && e.Value != nil {
			rewards = append(rewards, *e.Value)
		}
	}
	if len(rewards) == 0 {
		return model.FraudSignal{}, "", false
	}

	s := stats.NewScaler()
	s.Fit(rewards)
	outliers := 0
	for _, v := range rewards {
		if math.Abs(s.Transform(v)) > cfg.OutlierZ {
			outliers++
		}
	}
	if outliers == 0 {
		return model.FraudSignal{}, "", false
	}
	return model.FraudSignal{
		Name:   SignalRewardOutliers,
		Value:  float64(outliers),
		Weight: cfg.OutlierWeight,
	}, "Outlier reward amounts detected", true
}

func winrateSpike(cfg Config, _ []model.PlayerEvent, p *model.PlayerProfile) (model.FraudSignal, string, bool) {
	if p == nil {
		return model.FraudSignal{}, "", false
	}
	wr, ok := p.Stat(model.StatWinrate)
	if !ok || wr <= cfg.WinrateMax || p.Rating >= cfg.WinrateRating {
		return model.FraudSignal{}, "", false
	}
	return model.FraudSignal{
		Name:   SignalWinrateSpike,
		Value:  wr,
		Weight: cfg.WinrateWeight,
	}, "Unusually high winrate for rating", true
}

func regionHopping(cfg Config, events []model.PlayerEvent, p *model.PlayerProfile) (model.FraudSignal, string, bool) {
	if p == nil || p.Region == "" {
		return model.FraudSignal{}, "", false
	}
	for _, e := range events {
		if e.Type == cfg.RegionEvent {
			return model.FraudSignal{
				Name:   SignalRegionHopping,
				Value:  1,
				Weight: cfg.RegionWeight,
			}, "Frequent region change events", true
		}
	}
	return model.FraudSignal{}, "", false
}
