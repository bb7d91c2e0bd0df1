package simnet

import (
	"math"
	"testing"
)

func TestNewRNGStream_Deterministic(t *testing.T) {
	a := NewRNGStream(7, 2)
	b := NewRNGStream(7, 2)
	for i := 0; i < 20; i++ {
		av := a.Uniform()
		bv := b.Uniform()
		if av != bv {
			t.Fatalf("draw %d diverged: %v != %v", i, av, bv)
		}
	}
}

func TestNewRNGStream_DifferentWorkersDiverge(t *testing.T) {
	a := NewRNGStream(7, 0)
	b := NewRNGStream(7, 1)
	same := true
	for i := 0; i < 10; i++ {
		if a.Uniform() != b.Uniform() {
			same = false
			break
		}
	}
	if same {
		t.Errorf("streams for worker 0 and worker 1 produced identical draws, splitmix64 derivation is not mixing the worker index")
	}
}

func TestRNGStream_Exponential_PanicsOnNonPositiveRate(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic for rate <= 0")
		}
	}()
	s := NewRNGStream(1, 0)
	s.Exponential(0)
}

func TestRNGStream_Exponential_AlwaysPositive(t *testing.T) {
	s := NewRNGStream(1, 0)
	for i := 0; i < 1000; i++ {
		v := s.Exponential(2.5)
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("draw %d = %v is not a valid waiting time", i, v)
		}
	}
}

func TestRNGStream_SampleWithoutReplacement_ExactTotal(t *testing.T) {
	s := NewRNGStream(1, 0)
	weights := []int{3, 0, 5}
	drawn, err := s.SampleWithoutReplacement(weights, 8)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	sum := 0
	for i, d := range drawn {
		if d > weights[i] {
			t.Errorf("bin %d drew %d but only %d available", i, d, weights[i])
		}
		sum += d
	}
	if sum != 8 {
		t.Errorf("expected 8 total draws, got %d", sum)
	}
}

func TestRNGStream_SampleWithoutReplacement_ExceedsPool(t *testing.T) {
	s := NewRNGStream(1, 0)
	_, err := s.SampleWithoutReplacement([]int{1, 1}, 3)
	if err == nil {
		t.Fatalf("expected an error when k exceeds total pool")
	}
	se, ok := err.(*SimError)
	if !ok {
		t.Fatalf("expected *SimError, got %T", err)
	}
	if se.Kind != KindInconsistentEvent {
		t.Errorf("expected Kind=%s, got %s", KindInconsistentEvent, se.Kind)
	}
}

func TestRNGStream_SampleWithoutReplacement_ZeroDraw(t *testing.T) {
	s := NewRNGStream(1, 0)
	drawn, err := s.SampleWithoutReplacement([]int{4, 4}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	for i, d := range drawn {
		if d != 0 {
			t.Errorf("bin %d: expected 0 draws, got %d", i, d)
		}
	}
}
