package belief

import "testing"

func approxEqual(a, b float64) bool {
	const eps = 1e-9
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < eps
}

func TestCombineMatchesProductComplementForIndependentTerms(t *testing.T) {
	xs := []float64{0.81, 0.81}
	got := Combine(xs)
	want := CombineIndependent(xs)
	if !approxEqual(got, want) {
		t.Fatalf("Combine = %v, CombineIndependent = %v", got, want)
	}
	if !approxEqual(got, 0.9639) {
		t.Fatalf("Combine = %v, want 0.9639", got)
	}
}

func TestCombineSingleTerm(t *testing.T) {
	if got := Combine([]float64{0.42}); !approxEqual(got, 0.42) {
		t.Fatalf("Combine([0.42]) = %v, want 0.42", got)
	}
}

func TestCombineEmpty(t *testing.T) {
	if got := Combine(nil); got != 0 {
		t.Fatalf("Combine(nil) = %v, want 0", got)
	}
}

func TestCombineContributionsUsesExplicitFormWhenConditioned(t *testing.T) {
	cs := []Contribution{
		{P: 0.5, FromConditioning: true},
		{P: 0.5, FromConditioning: false},
	}
	got := CombineContributions(cs)
	want := Combine([]float64{0.5, 0.5})
	if !approxEqual(got, want) {
		t.Fatalf("CombineContributions = %v, want %v", got, want)
	}
}

func TestClampToleratesOvershoot(t *testing.T) {
	if Clamp(1.0000000001) != 1 {
		t.Fatal("expected clamp to 1")
	}
	if Clamp(-0.0000000001) != 0 {
		t.Fatal("expected clamp to 0")
	}
}
