package player

import "math"

// Границы скорости воспроизведения
const (
	MinSpeed     = 0.5
	MaxSpeed     = 2.0
	DefaultSpeed = 1.0
)

// ClampSpeed приводит скорость к диапазону [MinSpeed, MaxSpeed].
// NaN заменяется обычной скоростью.
func ClampSpeed(factor float64) float64 {
	switch {
	case math.IsNaN(factor):
		return DefaultSpeed
	case factor < MinSpeed:
		return MinSpeed
	case factor > MaxSpeed:
		return MaxSpeed
	}
	return factor
}

// SpeedPresets возвращает предустановленные скорости от 0.6 до 1.0 с шагом 0.05
func SpeedPresets() []float64 {
	presets := make([]float64, 0, 9)
	for step := 60; step <= 100; step += 5 {
		presets = append(presets, float64(step)/100)
	}
	return presets
}
