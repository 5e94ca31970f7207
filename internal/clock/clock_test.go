package clock

import "testing"

func TestNowIsMonotonic(t *testing.T) {
	prev := Now()
	for i := 0; i < 1000; i++ {
		cur := Now()
		if cur < prev {
			t.Fatalf("clock went backwards: %v -> %v", prev, cur)
		}
		prev = cur
	}
}

func TestFallbackAdvances(t *testing.T) {
	a := fallback()
	b := fallback()
	if b < a {
		t.Fatalf("fallback went backwards: %v -> %v", a, b)
	}
}
