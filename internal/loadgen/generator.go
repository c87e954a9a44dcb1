package loadgen

import (
	"fmt"
	"math/rand/v2"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/okian/arena/internal/domain/model"
)

// Constants for profile generation ranges.
const (
	ratingMin     = 800.0
	ratingRange   = 1000.0
	latencyMin    = 5.0
	latencyRange  = 195.0
	statsMaxValue = 100.0
	idAlphabet    = "0123456789abcdefghijklmnopqrstuvwxyz"
	idLength      = 10
)

// Constants for synthetic event streams.
const (
	normalEvents   = 12
	normalGap      = 2 * time.Second
	rapidEvents    = 15
	rapidGap       = 5 * time.Millisecond
	rewardEvents   = 20
	hopperEvents   = 8
	suspiciousRate = 4 // every n-th stream is suspicious
)

var (
	regions    = []string{"eu-west", "us-east", "ap-south"}
	playStyles = []model.PlayStyle{model.StyleAggressive, model.StyleDefensive, model.StyleBalanced}
	statNames  = []string{"kills", "assists", "objectives"}
)

// generator produces reproducible synthetic traffic from one seed.
type generator struct {
	rng *rand.Rand
}

func newGenerator(seed uint64) *generator {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func newID(prefix string) (string, error) {
	id, err := gonanoid.Generate(idAlphabet, idLength)
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return prefix + id, nil
}

// profiles creates n profiles with unique ids spread over regions and styles.
func (g *generator) profiles(n int) ([]model.PlayerProfile, error) {
	out := make([]model.PlayerProfile, n)
	for i := range out {
		id, err := newID("player-")
		if err != nil {
			return nil, err
		}
		latency := latencyMin + g.rng.Float64()*latencyRange
		stats := make(map[string]float64, len(statNames))
		for _, name := range statNames {
			stats[name] = g.rng.Float64() * statsMaxValue
		}
		out[i] = model.PlayerProfile{
			ID:        id,
			Rating:    ratingMin + g.rng.Float64()*ratingRange,
			Skill:     g.rng.Float64(),
			LatencyMs: &latency,
			Region:    regions[g.rng.IntN(len(regions))],
			PlayStyle: playStyles[g.rng.IntN(len(playStyles))],
			Stats:     stats,
		}
	}
	return out, nil
}

// results creates n match results between distinct players. Every
// duplicateEvery-th result repeats the id of an earlier one; the number of
// repeats is returned alongside.
func (g *generator) results(players []model.PlayerProfile, n int) ([]model.MatchResult, int, error) {
	outcomes := [...]float64{0, 0.5, 1}
	out := make([]model.MatchResult, 0, n)
	dups := 0
	for i := 0; i < n; i++ {
		a := g.rng.IntN(len(players))
		b := g.rng.IntN(len(players) - 1)
		if b >= a {
			b++
		}
		r := model.MatchResult{
			PlayerA:    players[a].ID,
			PlayerB:    players[b].ID,
			ResultA:    outcomes[g.rng.IntN(len(outcomes))],
			ReportedAt: time.Now().UTC(),
		}
		if i > 0 && i%duplicateEvery == 0 {
			r = out[g.rng.IntN(len(out))]
			dups++
		} else {
			id, err := newID("match-")
			if err != nil {
				return nil, 0, err
			}
			r.MatchID = id
		}
		out = append(out, r)
	}
	return out, dups, nil
}

// eventStreams creates n fraud analysis requests. Every suspiciousRate-th
// stream carries a rapid burst, a reward spike or region hopping; the rest are
// evenly paced play sessions.
func (g *generator) eventStreams(players []model.PlayerProfile, n int) []model.FraudRequest {
	epoch := time.Now().UTC().Add(-time.Hour)
	out := make([]model.FraudRequest, n)
	for i := range out {
		req := model.FraudRequest{PlayerID: players[g.rng.IntN(len(players))].ID}
		if i%suspiciousRate == 0 {
			switch (i / suspiciousRate) % 3 {
			case 0:
				req.Events = g.burst(epoch)
			case 1:
				req.Events = g.rewardSpike(epoch)
			default:
				req.Events = g.regionHops(epoch)
			}
		} else {
			req.Events = g.session(epoch)
		}
		out[i] = req
	}
	return out
}

func (g *generator) session(epoch time.Time) []model.PlayerEvent {
	events := make([]model.PlayerEvent, normalEvents)
	kinds := [...]string{"login", "match_start", "match_end"}
	for i := range events {
		events[i] = model.PlayerEvent{
			Timestamp: epoch.Add(time.Duration(i) * normalGap),
			Type:      kinds[i%len(kinds)],
		}
	}
	return events
}

func (g *generator) burst(epoch time.Time) []model.PlayerEvent {
	events := make([]model.PlayerEvent, rapidEvents)
	for i := range events {
		events[i] = model.PlayerEvent{Timestamp: epoch.Add(time.Duration(i) * rapidGap), Type: "click"}
	}
	return events
}

func (g *generator) rewardSpike(epoch time.Time) []model.PlayerEvent {
	events := make([]model.PlayerEvent, 0, rewardEvents)
	for i := 0; i < rewardEvents; i++ {
		v := 10 + g.rng.Float64()
		if i == rewardEvents-1 {
			v = 10_000
		}
		events = append(events, model.PlayerEvent{
			Timestamp: epoch.Add(time.Duration(i) * normalGap),
			Type:      model.EventRewardClaim,
			Value:     &v,
		})
	}
	return events
}

func (g *generator) regionHops(epoch time.Time) []model.PlayerEvent {
	events := make([]model.PlayerEvent, hopperEvents)
	for i := range events {
		events[i] = model.PlayerEvent{Timestamp: epoch.Add(time.Duration(i) * normalGap), Type: model.EventRegionChange}
	}
	return events
}
