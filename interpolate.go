package canopy

// Interpolator blends two values of a property type. t is the local progress
// in [0, 1]; implementations return start at 0 and end at 1.
type Interpolator[T any] func(start, end T, t float64) T

// LerpFloat linearly interpolates between two scalars.
func LerpFloat(start, end, t float64) float64 {
	return start + (end-start)*t
}

// LerpColor linearly interpolates each channel.
func LerpColor(start, end Color, t float64) Color {
	return Color{
		R: LerpFloat(start.R, end.R, t),
		G: LerpFloat(start.G, end.G, t),
		B: LerpFloat(start.B, end.B, t),
		A: LerpFloat(start.A, end.A, t),
	}
}

// LerpUnits interpolates lengths of the same kind and steps between lengths
// of different kinds.
func LerpUnits(start, end Units, t float64) Units {
	if start.Kind != end.Kind {
		return Step(start, end, t)
	}
	return Units{Kind: end.Kind, Value: LerpFloat(start.Value, end.Value, t)}
}

// Step is the interpolator for values that cannot be blended: it snaps to
// end as soon as t > 0.
func Step[T any](start, end T, t float64) T {
	if t > 0 {
		return end
	}
	return start
}
