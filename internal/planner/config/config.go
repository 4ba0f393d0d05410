// Package config holds the planner's tunable defaults.
package config

import "runtime"

// Config controls run modes and resource limits of the engine.
type Config struct {
	// QualityHorizon is the horizon of the quality-sum mode.
	QualityHorizon int
	// ProductHorizon is the horizon of the product mode.
	ProductHorizon int
	// ProductCount is how many blueprints (lowest ids first) the product mode uses.
	ProductCount int
	// MaxHorizon rejects requests whose search would not finish in reasonable time.
	MaxHorizon int
	// CacheSize is the number of (blueprint, horizon) results kept in memory.
	CacheSize int
	// Workers bounds how many blueprints are searched concurrently.
	Workers int
}

// Default returns the stock configuration: the quality and product modes
// of the puzzle and one worker per available CPU.
func Default() Config {
	return Config{
		QualityHorizon: 24,
		ProductHorizon: 32,
		ProductCount:   3,
		MaxHorizon:     40,
		CacheSize:      256,
		Workers:        runtime.GOMAXPROCS(0),
	}
}
