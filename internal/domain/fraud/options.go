package fraud

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithConfig replaces the scoring policy.
func WithConfig(cfg Config) Option {
	return func(s *Scorer) {
		s.cfg = cfg
	}
}
