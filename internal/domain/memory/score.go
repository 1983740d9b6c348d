package memory

import (
	"math"
	"time"
)

const (
	// RecentWindow is how long an entry counts as recently used.
	RecentWindow = 30 * 24 * time.Hour
	// FrequentThreshold is the usage count at which an entry counts as frequent.
	FrequentThreshold = 3

	maxRecency   = 50.0
	maxFrequency = 50.0
)

// Usage is the recency and frequency signal shared by every memory entry.
type Usage struct {
	LastUsed   time.Time `json:"lastUsed"`
	UsageCount int       `json:"usageCount"`
}

// RecencyScore loses 2 points per whole day since last use, from 50 down to 0.
func RecencyScore(lastUsed, now time.Time) float64 {
	days := math.Floor(now.Sub(lastUsed).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return math.Max(0, maxRecency-2*days)
}

// FrequencyScore grows logarithmically with use and is capped at 50.
func FrequencyScore(count int) float64 {
	if count < 0 {
		count = 0
	}
	return math.Min(maxFrequency, 15*math.Log(float64(count)+1))
}

// Score is RecencyScore + FrequencyScore.
func (u Usage) Score(now time.Time) float64 {
	return RecencyScore(u.LastUsed, now) + FrequencyScore(u.UsageCount)
}

// IsRecent reports use within RecentWindow.
func (u Usage) IsRecent(now time.Time) bool {
	return now.Sub(u.LastUsed) <= RecentWindow
}

// IsFrequent reports a usage count of at least FrequentThreshold.
func (u Usage) IsFrequent() bool {
	return u.UsageCount >= FrequentThreshold
}

// Rank carries the computed score next to an entry.
type Rank struct {
	Score      float64 `json:"score"`
	IsRecent   bool    `json:"isRecent"`
	IsFrequent bool    `json:"isFrequent"`
}

func rank(u Usage, now time.Time) Rank {
	return Rank{Score: u.Score(now), IsRecent: u.IsRecent(now), IsFrequent: u.IsFrequent()}
}
