package domain

import (
	"math"
	"sort"
)

// PostForecast is the projected success of a single post.
type PostForecast struct {
	ID                 string  `json:"id"`
	Title              string  `json:"title"`
	Platform           string  `json:"platform"`
	Weighted           int64   `json:"weighted_score"`
	SuccessProbability float64 `json:"success_probability"`
}

// Forecast is a least-squares projection of weighted engagement over posting order.
type Forecast struct {
	Slope        float64        `json:"slope"`
	Intercept    float64        `json:"intercept"`
	NextWeighted float64        `json:"next_weighted_score"`
	Direction    Trend          `json:"direction"`
	Posts        []PostForecast `json:"posts"`
}

// BuildForecast fits weighted score against chronological index for the
// dated posts and rates every post with SuccessProbability.
func BuildForecast(posts []Post) Forecast {
	fc := Forecast{Direction: TrendStable, Posts: []PostForecast{}}
	if len(posts) == 0 {
		return fc
	}

	// Only the weighted score matters here, so no engagement policy is applied.
	scored := make([]ScoredPost, len(posts))
	for i, p := range posts {
		p = p.Normalize()
		scored[i] = ScoredPost{Post: p, Weighted: WeightedScore(p)}
	}

	dated := make([]ScoredPost, 0, len(scored))
	var total float64
	for _, sp := range scored {
		total += float64(sp.Weighted)
		if sp.HasValidDate() {
			dated = append(dated, sp)
		}
	}
	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].CreatedAt.Before(dated[j].CreatedAt)
	})

	if len(dated) >= 2 {
		ys := make([]float64, len(dated))
		for i, sp := range dated {
			ys[i] = float64(sp.Weighted)
		}
		slope, intercept := linearFit(ys)
		fc.Slope = roundTo2Decimals(slope)
		fc.Intercept = roundTo2Decimals(intercept)
		fc.NextWeighted = roundTo2Decimals(math.Max(0, slope*float64(len(ys))+intercept))
		switch {
		case fc.Slope > 0:
			fc.Direction = TrendIncreasing
		case fc.Slope < 0:
			fc.Direction = TrendDecreasing
		}
	}

	avg := total / float64(len(scored))
	for _, sp := range scored {
		fc.Posts = append(fc.Posts, PostForecast{
			ID:                 sp.ID,
			Title:              sp.DisplayTitle(),
			Platform:           sp.Platform,
			Weighted:           sp.Weighted,
			SuccessProbability: roundTo2Decimals(SuccessProbability(float64(sp.Weighted), avg)),
		})
	}

	return fc
}

// SuccessProbability is a logistic curve over a post's score relative to the
// mean: 1 / (1 + e^(-2*(w/avg - 1))). It is 0.5 when there is no mean to
// compare against.
func SuccessProbability(weighted, avg float64) float64 {
	if avg <= 0 {
		return 0.5
	}
	p := 1 / (1 + math.Exp(-2*(weighted/avg-1)))

	return math.Min(1, math.Max(0, p))
}

// linearFit returns slope and intercept of y over x = 0..n-1. Needs n >= 2.
func linearFit(ys []float64) (float64, float64) {
	n := float64(len(ys))
	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range ys {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope := (n*sumXY - sumX*sumY) / denom

	return slope, (sumY - slope*sumX) / n
}
