// Package main provides CMA-ES tuning for the flow-field parameters,
// searching for settings that move the crowd to the goal fastest
// without piling agents into congested cells.
package main

import (
	"github.com/pthm-cable/throng/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable field parameters.
// Cell size is excluded: it changes the grid resolution rather than
// the field shape, and the scenario fixes it.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "repulsion_radius", Path: "field.repulsion_radius", Min: 20, Max: 240, Default: 80},
			{Name: "repulsion_strength", Path: "field.repulsion_strength", Min: 0.2, Max: 4.0, Default: 1.2},
			{Name: "obstacle_repulsion_radius", Path: "field.obstacle_repulsion_radius", Min: 50, Max: 400, Default: 150},
			{Name: "obstacle_repulsion_strength", Path: "field.obstacle_repulsion_strength", Min: 0.5, Max: 6.0, Default: 2.0},
			{Name: "front_multiplier", Path: "field.front_multiplier", Min: 0.5, Max: 3.0, Default: 1.5},
			{Name: "top_bottom_multiplier", Path: "field.top_bottom_multiplier", Min: 0.2, Max: 2.0, Default: 0.8},
			{Name: "back_multiplier", Path: "field.back_multiplier", Min: 0.05, Max: 1.0, Default: 0.3},
			{Name: "goal_weight", Path: "field.goal_weight", Min: 0.3, Max: 3.0, Default: 1.0},
			{Name: "smoothing_factor", Path: "field.smoothing_factor", Min: 0.05, Max: 0.9, Default: 0.3},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	cfg.Field.RepulsionRadius = clamped[0]
	cfg.Field.RepulsionStrength = clamped[1]
	cfg.Field.ObstacleRepulsionRadius = clamped[2]
	cfg.Field.ObstacleRepulsionStrength = clamped[3]
	cfg.Field.FrontMultiplier = clamped[4]
	cfg.Field.TopBottomMultiplier = clamped[5]
	cfg.Field.BackMultiplier = clamped[6]
	cfg.Field.GoalWeight = clamped[7]
	cfg.Field.SmoothingFactor = clamped[8]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Field.RepulsionRadius,
		cfg.Field.RepulsionStrength,
		cfg.Field.ObstacleRepulsionRadius,
		cfg.Field.ObstacleRepulsionStrength,
		cfg.Field.FrontMultiplier,
		cfg.Field.TopBottomMultiplier,
		cfg.Field.BackMultiplier,
		cfg.Field.GoalWeight,
		cfg.Field.SmoothingFactor,
	}
}
