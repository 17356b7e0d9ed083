package domain

import (
	"math"
	"testing"
)

func TestBuildForecast_Increasing(t *testing.T) {
	posts := []Post{
		{ID: "3", Likes: 30, CreatedAt: at(3, 9)},
		{ID: "1", Likes: 10, CreatedAt: at(1, 9)},
		{ID: "2", Likes: 20, CreatedAt: at(2, 9)},
	}

	fc := BuildForecast(posts)

	if fc.Slope != 10 {
		t.Errorf("expected slope 10, got %v", fc.Slope)
	}
	if fc.Intercept != 10 {
		t.Errorf("expected intercept 10, got %v", fc.Intercept)
	}
	if fc.NextWeighted != 40 {
		t.Errorf("expected next 40, got %v", fc.NextWeighted)
	}
	if fc.Direction != TrendIncreasing {
		t.Errorf("expected increasing, got %v", fc.Direction)
	}
	if len(fc.Posts) != 3 {
		t.Fatalf("expected 3 post forecasts, got %d", len(fc.Posts))
	}

	// input order is kept; avg weighted is 20
	want := map[string]float64{"3": 0.73, "1": 0.27, "2": 0.5}
	for _, p := range fc.Posts {
		if math.Abs(p.SuccessProbability-want[p.ID]) > 1e-9 {
			t.Errorf("post %s: probability %v, want %v", p.ID, p.SuccessProbability, want[p.ID])
		}
	}
}

func TestBuildForecast_NotEnoughDatedPosts(t *testing.T) {
	fc := BuildForecast([]Post{{ID: "1", Likes: 10, CreatedAt: at(1, 1)}, {ID: "2", Likes: 90}})

	if fc.Slope != 0 || fc.Direction != TrendStable {
		t.Errorf("expected flat forecast, got slope=%v direction=%v", fc.Slope, fc.Direction)
	}
	if len(fc.Posts) != 2 {
		t.Errorf("expected every post to be rated, got %d", len(fc.Posts))
	}
}

func TestBuildForecast_UsesWeightedScoreOnly(t *testing.T) {
	posts := []Post{
		{ID: "1", Platform: "Instagram", Likes: -5, Comments: 3, CreatedAt: at(1, 9)},
		{ID: "2", Platform: "LinkedIn", Likes: math.MaxInt64, Shares: math.MaxInt64, CreatedAt: at(2, 9)},
	}

	fc := BuildForecast(posts)

	if len(fc.Posts) != 2 {
		t.Fatalf("expected 2 post forecasts, got %d", len(fc.Posts))
	}
	if fc.Posts[0].Weighted != 6 {
		t.Errorf("expected normalized weighted score 6, got %d", fc.Posts[0].Weighted)
	}
	if fc.Posts[1].Weighted != math.MaxInt64 {
		t.Errorf("expected saturated weighted score, got %d", fc.Posts[1].Weighted)
	}
	if fc.Direction != TrendIncreasing {
		t.Errorf("expected increasing, got %v", fc.Direction)
	}
}

func TestBuildForecast_Empty(t *testing.T) {
	fc := BuildForecast(nil)

	if fc.Posts == nil || len(fc.Posts) != 0 {
		t.Errorf("expected empty non-nil posts, got %v", fc.Posts)
	}
}

func TestSuccessProbability(t *testing.T) {
	tests := []struct {
		name     string
		weighted float64
		avg      float64
		expected float64
	}{
		{"at the mean", 50, 50, 0.5},
		{"double the mean", 100, 50, 1 / (1 + math.Exp(-2))},
		{"zero", 0, 50, 1 / (1 + math.Exp(2))},
		{"no mean", 10, 0, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SuccessProbability(tt.weighted, tt.avg)
			if math.Abs(got-tt.expected) > floatTolerance {
				t.Errorf("SuccessProbability() = %v, want %v", got, tt.expected)
			}
			if got < 0 || got > 1 {
				t.Errorf("probability %v out of range", got)
			}
		})
	}
}
