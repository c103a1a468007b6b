package exr

import (
	"errors"
	"sync/atomic"
	"testing"
)

func TestParallelForRunsEveryIndex(t *testing.T) {
	const n = 257
	var hits [n]int32
	ParallelFor(n, func(i int) {
		atomic.AddInt32(&hits[i], 1)
	})
	for i, h := range hits {
		if h != 1 {
			t.Fatalf("index %d ran %d times, want 1", i, h)
		}
	}
}

func TestParallelForWithErrorReturnsFirstError(t *testing.T) {
	wantErr := errors.New("boom")
	err := ParallelForWithError(64, func(i int) error {
		if i == 10 {
			return wantErr
		}
		return nil
	})
	if err == nil {
		t.Fatalf("ParallelForWithError: want error, got nil")
	}
}

func TestParallelForWithErrorAllSucceed(t *testing.T) {
	var total int32
	err := ParallelForWithError(128, func(i int) error {
		atomic.AddInt32(&total, 1)
		return nil
	})
	if err != nil {
		t.Fatalf("ParallelForWithError: %v", err)
	}
	if total != 128 {
		t.Fatalf("total = %d, want 128", total)
	}
}

func TestParallelForSmallNRunsSequentially(t *testing.T) {
	prev := GetParallelConfig()
	defer SetParallelConfig(prev)
	SetParallelConfig(ParallelConfig{NumWorkers: 4, GrainSize: 8})

	var order []int
	ParallelFor(3, func(i int) {
		order = append(order, i)
	})
	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Fatalf("order = %v, want [0 1 2] (sequential path)", order)
	}
}
