package canopy

// Lens projects a value of type T out of a value of type S.
type Lens[S, T any] interface {
	View(s S) T
}

// LensFunc adapts a function to Lens.
type LensFunc[S, T any] func(s S) T

// View calls f(s).
func (f LensFunc[S, T]) View(s S) T { return f(s) }

// Then composes two lenses: the result views first, then second.
func Then[A, B, C any](first Lens[A, B], second Lens[B, C]) Lens[A, C] {
	return LensFunc[A, C](func(a A) C { return second.View(first.View(a)) })
}

// Pair holds the two projections of an And lens.
type Pair[A, B any] struct {
	First  A
	Second B
}

// And views both lenses of the same source at once.
func And[S, A, B any](a Lens[S, A], b Lens[S, B]) Lens[S, Pair[A, B]] {
	return LensFunc[S, Pair[A, B]](func(s S) Pair[A, B] {
		return Pair[A, B]{First: a.View(s), Second: b.View(s)}
	})
}

// Identity returns the lens that views its whole source.
func Identity[T any]() Lens[T, T] {
	return LensFunc[T, T](func(t T) T { return t })
}
