// Package fuzzy implements the Sugeno-style inference used by the
// preemption controller (package preempt): triangular membership
// functions, Mamdani-AND rule firing, and two aggregated rule banks (one
// producing a trigger probability, one an extended green duration).
// Grounded on original_source/src/ai/anfis.py's AnfisModel.
package fuzzy

// TriMF is a triangular membership function over (a, b, c): zero outside
// [a, c], rising linearly to 1 at b, falling back to 0 at c.
type TriMF struct {
	A, B, C float64
}

// Mu evaluates the membership of x, always in [0, 1]. The x == m.B check
// runs before the outside-[a,c] check so a degenerate triangle (a == b or
// b == c, e.g. the default "short" queue_length set (0,0,10)) still
// reports 1 at b rather than falling through to the boundary-exclusion
// case.
func (m TriMF) Mu(x float64) float64 {
	if x == m.B {
		return 1
	}
	if x <= m.A || x >= m.C {
		return 0
	}
	if x < m.B {
		denom := m.B - m.A
		if denom < 1e-6 {
			denom = 1e-6
		}
		return clamp((x-m.A)/denom, 0, 1)
	}
	denom := m.C - m.B
	if denom < 1e-6 {
		denom = 1e-6
	}
	return clamp((m.C-x)/denom, 0, 1)
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
