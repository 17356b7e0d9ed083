package domain

import (
	"fmt"
	"hash/fnv"
	"math"
	"strings"
)

// Weights of each interaction in the weighted score.
const (
	LikeWeight    = 1
	CommentWeight = 2
	ShareWeight   = 3
)

// Platform multipliers applied to the banded percentage.
const (
	InstagramMultiplier = 0.7
	TwitterMultiplier   = 0.8
	FacebookMultiplier  = 0.9
	LinkedInMultiplier  = 1.2
	DefaultMultiplier   = 1.0
)

// Lower bounds of the weighted score bands.
const (
	topBandFloor  = 1000
	highBandFloor = 300
	midBandFloor  = 100
	lowBandFloor  = 10
)

const (
	maxPercent   = 100.0
	jitterSpread = 2.0
)

// MaxCounter is the largest interaction count kept on a post. A post with
// every counter at MaxCounter still has a weighted score that fits in int64.
const MaxCounter = math.MaxInt64 / (LikeWeight + CommentWeight + ShareWeight)

var platformMultipliers = map[string]float64{
	"instagram": InstagramMultiplier,
	"twitter":   TwitterMultiplier,
	"x":         TwitterMultiplier,
	"facebook":  FacebookMultiplier,
	"linkedin":  LinkedInMultiplier,
}

// JitterMode controls the tie-breaking offset added to engagement percentages.
type JitterMode string

const (
	// JitterNone leaves percentages untouched.
	JitterNone JitterMode = "none"
	// JitterHashed adds an offset in [-2, 2] derived from the post ID, so
	// distinct posts with equal counters rarely share a percentage while the
	// same post always scores the same.
	JitterHashed JitterMode = "hashed"
)

// ParseJitterMode converts a configuration string into a JitterMode.
func ParseJitterMode(s string) (JitterMode, error) {
	switch JitterMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", JitterNone:
		return JitterNone, nil
	case JitterHashed:
		return JitterHashed, nil
	default:
		return "", fmt.Errorf("unknown jitter mode %q", s)
	}
}

// ScoringPolicy is the single engagement formula used by every caller.
type ScoringPolicy struct {
	Multipliers bool
	Jitter      JitterMode
}

// DefaultPolicy applies platform multipliers and no jitter.
var DefaultPolicy = ScoringPolicy{Multipliers: true, Jitter: JitterNone}

// WeightedScore computes likes*1 + comments*2 + shares*3.
// Negative counters count as zero and the sum saturates at math.MaxInt64,
// so the result is never negative.
func WeightedScore(p Post) int64 {
	w := satMul(nonNegative(p.Likes), LikeWeight)
	w = satAdd(w, satMul(nonNegative(p.Comments), CommentWeight))

	return satAdd(w, satMul(nonNegative(p.Shares), ShareWeight))
}

// satAdd adds two non-negative values, stopping at math.MaxInt64.
func satAdd(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}

	return a + b
}

// satMul multiplies a non-negative value by a positive weight, stopping at
// math.MaxInt64.
func satMul(v, weight int64) int64 {
	if v > math.MaxInt64/weight {
		return math.MaxInt64
	}

	return v * weight
}

// BandPercent maps a weighted score onto the piecewise-linear band table.
//
//	w >= 1000       90 + (w-1000)/10000*10
//	300 <= w < 1000 70 + (w-300)/700*20
//	100 <= w < 300  40 + (w-100)/200*30
//	10 <= w < 100   10 + (w-10)/90*30
//	0 < w < 10      w/10*10
//	w <= 0          0
//
// The result is not clamped; the top band exceeds 100 for very large scores.
func BandPercent(w float64) float64 {
	switch {
	case w >= topBandFloor:
		return 90 + (w-topBandFloor)/10000*10
	case w >= highBandFloor:
		return 70 + (w-highBandFloor)/700*20
	case w >= midBandFloor:
		return 40 + (w-midBandFloor)/200*30
	case w >= lowBandFloor:
		return 10 + (w-lowBandFloor)/90*30
	case w > 0:
		return w / 10 * 10
	default:
		return 0
	}
}

// PlatformMultiplier returns the correction factor for a platform label.
// Matching is case-insensitive and "X" is treated as Twitter.
func PlatformMultiplier(platform string) float64 {
	if m, ok := platformMultipliers[strings.ToLower(strings.TrimSpace(platform))]; ok {
		return m
	}

	return DefaultMultiplier
}

// EngagementPercent converts a post's weighted score into a percentage in
// [0, 100], rounded to 2 decimals.
func (sp ScoringPolicy) EngagementPercent(p Post) float64 {
	w := WeightedScore(p)
	pct := BandPercent(float64(w))
	if sp.Multipliers {
		pct *= PlatformMultiplier(p.Platform)
	}
	pct = clampPercent(pct)

	// Zero engagement stays at zero.
	if sp.Jitter == JitterHashed && w > 0 {
		pct = clampPercent(pct + hashOffset(p.ID))
	}

	return roundTo2Decimals(pct)
}

// EngagementPercent scores a post with DefaultPolicy.
func EngagementPercent(p Post) float64 {
	return DefaultPolicy.EngagementPercent(p)
}

// hashOffset derives a stable value in [-2, 2] from an identifier.
func hashOffset(id string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	frac := float64(h.Sum32()) / float64(math.MaxUint32)

	return frac*2*jitterSpread - jitterSpread
}

func clampPercent(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > maxPercent:
		return maxPercent
	default:
		return v
	}
}

// roundTo2Decimals rounds a float to 2 decimal places.
func roundTo2Decimals(value float64) float64 {
	return math.Round(value*100) / 100
}
