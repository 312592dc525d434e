package resilience

import "time"

// CircuitBreakerConfig tunes the breaker guarding the fixture relay.
// FailureThreshold counts consecutive transient failures before the
// breaker opens; OpenTimeout is how long fetches are refused before a
// half-open trial of at most HalfOpenMaxReq requests.
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

// DefaultCircuitBreakerConfig matches the relay's observed recovery
// behavior: a stalled relay typically comes back within seconds, so a
// short open window keeps sync runs from stalling for long.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      15 * time.Second,
		HalfOpenMaxReq:   2,
	}
}

// NormalizeCircuitBreakerConfig replaces out-of-range values with the
// defaults so a misconfigured environment degrades to the safe tuning
// instead of a breaker that never opens or never recovers.
func NormalizeCircuitBreakerConfig(cfg CircuitBreakerConfig) CircuitBreakerConfig {
	defaults := DefaultCircuitBreakerConfig()
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaults.OpenTimeout
	}
	if cfg.HalfOpenMaxReq < 1 {
		cfg.HalfOpenMaxReq = defaults.HalfOpenMaxReq
	}
	return cfg
}
