package sampling

import (
	"math"
	"testing"
)

func TestExponentialPositive(t *testing.T) {
	v, err := Exponential(0.5, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	if v <= 0 {
		t.Fatalf("expected positive draw, got %v", v)
	}
}

func TestExponentialRejectsBadRate(t *testing.T) {
	if _, err := Exponential(0.5, 0); err == nil {
		t.Fatal("expected error for rate <= 0")
	}
}

func TestGeometricReturnsAtLeastOne(t *testing.T) {
	for _, u := range []float64{0.001, 0.5, 0.999} {
		n, err := Geometric(u, 0.3)
		if err != nil {
			t.Fatal(err)
		}
		if n < 1 {
			t.Fatalf("geometric draw must be >= 1, got %d", n)
		}
	}
}

func TestGeometricClampsNearOne(t *testing.T) {
	n, err := Geometric(0.5, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("p=1 should always return 1 trial, got %d", n)
	}
}

func TestUniformRange(t *testing.T) {
	v := UniformRange(0.25, 10, 20)
	if v != 12.5 {
		t.Fatalf("expected 12.5, got %v", v)
	}
}

func TestExpm1ComplementMatchesDirectComputation(t *testing.T) {
	x := -0.0001
	got := Expm1Complement(x)
	want := 1 - math.Exp(x)
	if math.Abs(got-want) > 1e-15 {
		t.Fatalf("mismatch: got %v want %v", got, want)
	}
}
