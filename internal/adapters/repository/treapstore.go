package repository

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/okian/arena/internal/domain/model"
	"github.com/okian/arena/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: rating DESC, then playerID ASC (deterministic).
// "less" means ranks earlier, so in-order traversal yields the leaderboard
// from best to worst. A second treap keyed by rating only holds one node per
// distinct rating and answers dense ranks in O(log n).

type node struct {
	id     string
	rating float64
	prio   uint64
	left   *node
	right  *node
	size   int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aRating, aID) should appear before (bRating, bID).
func less(aRating float64, aID string, bRating float64, bID string) bool {
	if aRating != bRating {
		return aRating > bRating
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, id string, rating float64, prio uint64) *node {
	if n == nil {
		return &node{id: id, rating: rating, prio: prio, size: 1}
	}
	if less(rating, id, n.rating, n.id) {
		n.left = insert(n.left, id, rating, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, rating, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, rating float64) *node {
	if n == nil {
		return nil
	}
	if rating == n.rating && id == n.id {
		// Rotate the higher-priority child up until the node is a leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, rating)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, rating)
		}
	} else if less(rating, id, n.rating, n.id) {
		n.left = deleteNode(n.left, id, rating)
	} else {
		n.right = deleteNode(n.right, id, rating)
	}
	fix(n)
	return n
}

// countBefore returns how many nodes rank strictly earlier than (rating, id).
func countBefore(n *node, rating float64, id string) int {
	count := 0
	for n != nil {
		if less(n.rating, n.id, rating, id) {
			count += nsize(n.left) + 1
			n = n.right
		} else {
			n = n.left
		}
	}
	return count
}

// collectTopN appends up to limit entries in rank order.
func collectTopN(n *node, limit int, out *[]model.LeaderboardEntry) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, model.LeaderboardEntry{PlayerID: n.id, Rating: n.rating})
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}

// TreapStore is a concurrency-safe leaderboard.
type TreapStore struct {
	mu       sync.RWMutex
	root     *node
	distinct *node
	byID     map[string]float64
	// ratingCount tracks how many players share each rating.
	ratingCount map[float64]int
	rng         *rand.Rand
}

// NewTreapStore constructs a treap store with configuration options.
func NewTreapStore(opts ...Option) *TreapStore {
	s := &TreapStore{
		byID:        make(map[string]float64),
		ratingCount: make(map[float64]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // treap priorities
	}
	return s
}

// Upsert implements Store.Upsert with O(log n) expected time.
func (s *TreapStore) Upsert(ctx context.Context, playerID string, rating float64) error {
	start := time.Now()
	defer func() {
		metrics.RecordLeaderboardUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.Lock()
	if old, ok := s.byID[playerID]; ok {
		if old == rating {
			s.mu.Unlock()
			return nil
		}
		s.removeLocked(playerID, old)
	}
	s.byID[playerID] = rating
	s.root = insert(s.root, playerID, rating, s.rng.Uint64())
	if s.ratingCount[rating] == 0 {
		s.distinct = insert(s.distinct, "", rating, s.rng.Uint64())
	}
	s.ratingCount[rating]++
	count := len(s.byID)
	s.mu.Unlock()

	metrics.UpdateLeaderboardRecords(count)
	return nil
}

// Remove implements Store.Remove.
func (s *TreapStore) Remove(ctx context.Context, playerID string) error {
	s.mu.Lock()
	old, ok := s.byID[playerID]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.removeLocked(playerID, old)
	delete(s.byID, playerID)
	count := len(s.byID)
	s.mu.Unlock()

	metrics.UpdateLeaderboardRecords(count)
	return nil
}

func (s *TreapStore) removeLocked(playerID string, rating float64) {
	s.root = deleteNode(s.root, playerID, rating)
	s.ratingCount[rating]--
	if s.ratingCount[rating] == 0 {
		delete(s.ratingCount, rating)
		s.distinct = deleteNode(s.distinct, "", rating)
	}
}

// Rank returns the dense rank and rating for a player in O(log n).
func (s *TreapStore) Rank(ctx context.Context, playerID string) (model.LeaderboardEntry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordLeaderboardQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	rating, ok := s.byID[playerID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.LeaderboardEntry{}, ErrNotFound
	}
	return model.LeaderboardEntry{
		Rank:     s.denseRankLocked(rating),
		PlayerID: playerID,
		Rating:   rating,
	}, nil
}

// denseRankLocked is one plus the number of distinct higher ratings.
func (s *TreapStore) denseRankLocked(rating float64) int {
	return countBefore(s.distinct, rating, "") + 1
}

// TopN returns the top N entries ordered by rating desc.
func (s *TreapStore) TopN(ctx context.Context, n int) ([]model.LeaderboardEntry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordLeaderboardQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.LeaderboardEntry, 0, min(n, len(s.byID)))
	collectTopN(s.root, n, &out)
	assignDenseRanks(out)
	return out, nil
}

// Count returns the total number of players.
func (s *TreapStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// assignDenseRanks numbers a rank-ordered prefix of the leaderboard.
// Equal ratings share a rank and the next distinct rating takes the next
// consecutive rank. A prefix always starts at the global rank 1.
func assignDenseRanks(entries []model.LeaderboardEntry) {
	rank := 0
	for i := range entries {
		if i == 0 || entries[i].Rating != entries[i-1].Rating {
			rank++
		}
		entries[i].Rank = rank
	}
}
