package weight

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/pawdiary/pawdiary/internal/domain/activity"
	"github.com/pawdiary/pawdiary/internal/domain/block"
	"github.com/pawdiary/pawdiary/internal/domain/template"
)

// ErrInvalidInput indicates bad trend options.
var ErrInvalidInput = errors.New("invalid weight trend input")

// StableThresholdKg is the net change under which a trend counts as stable.
const StableThresholdKg = 0.1

// Direction summarises the net change over the range.
type Direction string

const (
	DirectionUp     Direction = "up"
	DirectionDown   Direction = "down"
	DirectionStable Direction = "stable"
)

// Point is one weigh-in on the chart.
type Point struct {
	ActivityID int64     `json:"activity_id"`
	Date       time.Time `json:"date"`
	Value      float64   `json:"value"`
	// Change is the difference from the previous point, in the trend unit.
	Change float64 `json:"change"`
}

// Stats summarise the points.
type Stats struct {
	Count         int       `json:"count"`
	Latest        float64   `json:"latest"`
	Earliest      float64   `json:"earliest"`
	Min           float64   `json:"min"`
	Max           float64   `json:"max"`
	Average       float64   `json:"average"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	Direction     Direction `json:"direction"`
}

// Trend is the weight history of one pet.
type Trend struct {
	PetID  int64   `json:"pet_id"`
	Unit   string  `json:"unit"`
	Points []Point `json:"points"`
	Stats  Stats   `json:"stats"`
}

// Options selects the range and display unit.
type Options struct {
	PetID int64
	From  *time.Time
	To    *time.Time
	// Unit is kg, lb, g or oz. Empty means kg.
	Unit string
}

// Lister reads activities.
type Lister interface {
	List(ctx context.Context, tenantID string, opts activity.ListOptions) (*activity.Page, error)
}

// Service builds weight trends from stored activities.
type Service struct {
	activities Lister
}

// NewService creates a weight trend service.
func NewService(activities Lister) *Service {
	return &Service{activities: activities}
}

// Trend loads every growth activity in range and computes the trend.
func (s *Service) Trend(ctx context.Context, tenantID string, opts Options) (*Trend, error) {
	if opts.PetID <= 0 {
		return nil, fmt.Errorf("%w: pet id is required", ErrInvalidInput)
	}
	petID := opts.PetID
	list := activity.ListOptions{
		PetID:      &petID,
		Categories: []template.Category{template.CategoryGrowth},
		From:       opts.From,
		To:         opts.To,
		Limit:      200,
	}
	var all []activity.Activity
	for {
		page, err := s.activities.List(ctx, tenantID, list)
		if err != nil {
			return nil, fmt.Errorf("loading weigh-ins: %w", err)
		}
		all = append(all, page.Activities...)
		if !page.HasMore || len(page.Activities) == 0 {
			break
		}
		list.Offset += len(page.Activities)
	}
	return Compute(opts.PetID, all, opts.Unit)
}

// Compute filters weigh-ins out of activities and derives points and stats.
// Points are ordered oldest first.
func Compute(petID int64, activities []activity.Activity, unit string) (*Trend, error) {
	if unit == "" {
		unit = "kg"
	}
	if _, err := block.WeightFromKg(1, unit); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var points []Point
	for _, a := range activities {
		if a.PetID != petID {
			continue
		}
		kg, ok := a.WeightKg()
		if !ok {
			continue
		}
		v, _ := block.WeightFromKg(kg, unit)
		points = append(points, Point{ActivityID: a.ID, Date: a.ActivityDate, Value: round2(v)})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	for i := 1; i < len(points); i++ {
		points[i].Change = round2(points[i].Value - points[i-1].Value)
	}

	t := &Trend{PetID: petID, Unit: unit, Points: points}
	if points == nil {
		t.Points = []Point{}
	}
	t.Stats = stats(points, unit)
	return t, nil
}

func stats(points []Point, unit string) Stats {
	st := Stats{Count: len(points), Direction: DirectionStable}
	if len(points) == 0 {
		return st
	}
	st.Earliest = points[0].Value
	st.Latest = points[len(points)-1].Value
	st.Min, st.Max = math.Inf(1), math.Inf(-1)
	var sum float64
	for _, p := range points {
		st.Min = math.Min(st.Min, p.Value)
		st.Max = math.Max(st.Max, p.Value)
		sum += p.Value
	}
	st.Average = round2(sum / float64(len(points)))
	st.Change = round2(st.Latest - st.Earliest)
	if st.Earliest != 0 {
		st.ChangePercent = round2(st.Change / st.Earliest * 100)
	}

	threshold, _ := block.WeightFromKg(StableThresholdKg, unit)
	switch {
	case st.Change > threshold:
		st.Direction = DirectionUp
	case st.Change < -threshold:
		st.Direction = DirectionDown
	}
	return st
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
