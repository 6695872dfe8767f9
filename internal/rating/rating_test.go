package rating

import "testing"

func TestRound_OneDecimalHalfUp(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{4.25, 4.3},
		{4.24, 4.2},
		{3.9999, 4.0},
		{1.0, 1.0},
		{5.0, 5.0},
	}
	for _, c := range cases {
		if got := Round(c.in); got != c.want {
			t.Fatalf("Round(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestAverage_EmptySetIsZero(t *testing.T) {
	if got := Average(nil); got != 0.0 {
		t.Fatalf("Average(nil) = %v, want 0.0", got)
	}
}

func TestAverage_RoundsToOneDecimal(t *testing.T) {
	if got := Average([]float64{4.0, 5.0}); got != 4.5 {
		t.Fatalf("Average([4.0 5.0]) = %v, want 4.5", got)
	}
	// 4.25 rounds up under half-up
	if got := Average([]float64{4.0, 4.5}); got != 4.3 {
		t.Fatalf("Average([4.0 4.5]) = %v, want 4.3", got)
	}
}

func TestAverage_Idempotent(t *testing.T) {
	ratings := []float64{3.7, 4.1, 2.9}
	first := Average(ratings)
	second := Average(ratings)
	if first != second {
		t.Fatalf("Average is not idempotent: %v vs %v", first, second)
	}
}

func TestDistribution_BucketsByNearestInteger(t *testing.T) {
	dist := Distribution([]float64{1.0, 3.3, 4.5, 5.0})
	want := map[int]int{1: 1, 2: 0, 3: 1, 4: 0, 5: 2}
	for bucket, count := range want {
		if dist[bucket] != count {
			t.Fatalf("bucket %d = %d, want %d (dist=%v)", bucket, dist[bucket], count, dist)
		}
	}
}

func TestDistribution_EmptySetHasAllBuckets(t *testing.T) {
	dist := Distribution(nil)
	if len(dist) != 5 {
		t.Fatalf("expected 5 buckets, got %d", len(dist))
	}
	for bucket := 1; bucket <= 5; bucket++ {
		if dist[bucket] != 0 {
			t.Fatalf("bucket %d = %d, want 0", bucket, dist[bucket])
		}
	}
}
