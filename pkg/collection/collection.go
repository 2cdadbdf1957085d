// Package collection holds the slice helpers the basket and catalog lean on.
// Results are never nil so they encode as [] rather than null.
//
//	inStock := collection.Filter(products, func(p models.Product) bool { return p.InStock })
//	subtotal := collection.Reduce(items, decimal.Zero, addLine)
package collection

import "slices"

func Map[T, R any](s []T, fn func(T) R) []R {
	out := make([]R, 0, len(s))
	for _, v := range s {
		out = append(out, fn(v))
	}
	return out
}

// Filter keeps the elements fn accepts, in order.
func Filter[T any](s []T, keep func(T) bool) []T {
	out := make([]T, 0, len(s))
	for _, v := range s {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// Reject keeps the elements fn refuses.
func Reject[T any](s []T, drop func(T) bool) []T {
	return Filter(s, func(v T) bool { return !drop(v) })
}

func First[T any](s []T, match func(T) bool) (T, bool) {
	if i := slices.IndexFunc(s, match); i >= 0 {
		return s[i], true
	}
	var zero T
	return zero, false
}

// IndexOf is -1 when nothing matches.
func IndexOf[T any](s []T, match func(T) bool) int { return slices.IndexFunc(s, match) }

func Contains[T any](s []T, match func(T) bool) bool { return slices.ContainsFunc(s, match) }

func Count[T any](s []T, match func(T) bool) int {
	return Reduce(s, 0, func(n int, v T) int {
		if match(v) {
			n++
		}
		return n
	})
}

func Reduce[T, R any](s []T, acc R, fn func(R, T) R) R {
	for _, v := range s {
		acc = fn(acc, v)
	}
	return acc
}

// Clone is a shallow copy; a nil input yields an empty slice.
func Clone[T any](s []T) []T {
	return append(make([]T, 0, len(s)), s...)
}
