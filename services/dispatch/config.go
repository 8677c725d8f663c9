package dispatch

import (
	"time"

	"homefix/config"
)

// Config tunes a single booking's dispatch run.
type Config struct {
	InitialRadiusKm float64
	RadiusStepKm    float64
	MaxRadiusKm     float64
	WaveInterval    time.Duration
	TotalTimeout    time.Duration

	// RedispatchDeclined re-includes a provider who declined an alert in
	// later waves of the same run. Off by default: a decline excludes the
	// provider for the remainder of the run.
	RedispatchDeclined bool
}

// ConfigFromApp builds a dispatch Config from the loaded application config.
func ConfigFromApp() Config {
	c := config.AppConfig
	return Config{
		InitialRadiusKm:    c.DispatchInitialRadiusKm,
		RadiusStepKm:       c.DispatchRadiusStepKm,
		MaxRadiusKm:        c.DispatchMaxRadiusKm,
		WaveInterval:       time.Duration(c.DispatchWaveIntervalSecs) * time.Second,
		TotalTimeout:       time.Duration(c.DispatchTotalTimeoutSecs) * time.Second,
		RedispatchDeclined: c.DispatchRedispatchDeclined,
	}
}

// RadiusForWave returns the search radius for wave n (starting at 0). The
// radius grows by RadiusStepKm per wave and never exceeds MaxRadiusKm.
func (c Config) RadiusForWave(n int) float64 {
	r := c.InitialRadiusKm + float64(n)*c.RadiusStepKm
	if r > c.MaxRadiusKm {
		return c.MaxRadiusKm
	}
	return r
}
