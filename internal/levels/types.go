package levels

import "fmt"

// LevelType represents the source of a support/resistance level
type LevelType string

const (
	TypeSwingHigh   LevelType = "swing_high"
	TypeSwingLow    LevelType = "swing_low"
	TypePivotPoint  LevelType = "pivot_point"
	TypePivotR1     LevelType = "pivot_r1"
	TypePivotR2     LevelType = "pivot_r2"
	TypePivotR3     LevelType = "pivot_r3"
	TypePivotS1     LevelType = "pivot_s1"
	TypePivotS2     LevelType = "pivot_s2"
	TypePivotS3     LevelType = "pivot_s3"
	TypeFibonacci   LevelType = "fibonacci"
	TypeRoundNumber LevelType = "round_number"
	TypeWeeklyHigh  LevelType = "weekly_high"
	TypeWeeklyLow   LevelType = "weekly_low"
	TypeDailyHigh   LevelType = "daily_high"
	TypeDailyLow    LevelType = "daily_low"
)

// Strength classification of a level
type Strength string

const (
	Weak       Strength = "weak"        // score < 30
	Moderate   Strength = "moderate"    // score < 60
	Strong     Strength = "strong"      // score < 80
	VeryStrong Strength = "very_strong" // score >= 80
)

// classify maps a 0-100 score to its strength class. Boundaries are
// exact at 30/60/80: 60.0 is strong, 59.999 is moderate.
func classify(score float64) Strength {
	switch {
	case score >= 80:
		return VeryStrong
	case score >= 60:
		return Strong
	case score >= 30:
		return Moderate
	default:
		return Weak
	}
}

// Timeframe context a level was detected in
type Timeframe string

const (
	Hourly Timeframe = "hourly"
	Daily  Timeframe = "daily"
	Weekly Timeframe = "weekly"
)

// SRLevel is a scored support/resistance level. Levels are value
// objects recomputed on every call; there is no identity across calls.
type SRLevel struct {
	Price            float64   `json:"price"`
	Type             LevelType `json:"level_type"`
	IsSupport        bool      `json:"is_support"`
	StrengthScore    float64   `json:"strength_score"` // 0-100
	StrengthClass    Strength  `json:"strength_class"`
	Touches          int       `json:"touches"`
	FirstTouchIndex  int       `json:"first_touch_index"`
	LastTouchIndex   int       `json:"last_touch_index"`
	Timeframe        Timeframe `json:"timeframe_context"`
	HasPinBar        bool      `json:"has_pin_bar"`
	HasLegRejection  bool      `json:"has_leg_rejection"`
	ATRSignificance  float64   `json:"atr_significance"`
	DistanceFromPips float64   `json:"distance_from_current"`
	DisplayName      string    `json:"display_name"`
}

// displayName builds the UI label for a scored level.
func (l *SRLevel) displayName() string {
	direction := "Resistance"
	if l.IsSupport {
		direction = "Support"
	}
	return fmt.Sprintf("%s @ %.5f (%s, %d touches)", direction, l.Price, l.StrengthClass, l.Touches)
}

// WeeklyMap holds the complete weekly pivot and fibonacci level set.
type WeeklyMap struct {
	Pivot float64 `json:"pivot"`
	R1    float64 `json:"r1"`
	R2    float64 `json:"r2"`
	R3    float64 `json:"r3"`
	S1    float64 `json:"s1"`
	S2    float64 `json:"s2"`
	S3    float64 `json:"s3"`

	Fib236 float64 `json:"fib_236"`
	Fib382 float64 `json:"fib_382"`
	Fib500 float64 `json:"fib_500"`
	Fib618 float64 `json:"fib_618"`
	Fib786 float64 `json:"fib_786"`

	WeeklyHigh  float64 `json:"weekly_high"`
	WeeklyLow   float64 `json:"weekly_low"`
	WeeklyOpen  float64 `json:"weekly_open"`
	WeeklyClose float64 `json:"weekly_close"`
}

// typePriority decides which member represents a merged group.
var typePriority = map[LevelType]int{
	TypeSwingHigh:   10,
	TypeSwingLow:    10,
	TypeWeeklyHigh:  9,
	TypeWeeklyLow:   9,
	TypeDailyHigh:   8,
	TypeDailyLow:    8,
	TypePivotPoint:  7,
	TypeFibonacci:   6,
	TypePivotR1:     5,
	TypePivotS1:     5,
	TypePivotR2:     4,
	TypePivotS2:     4,
	TypePivotR3:     3,
	TypePivotS3:     3,
	TypeRoundNumber: 2,
}

// typeBonus contributes to the strength score per level type.
var typeBonus = map[LevelType]float64{
	TypeWeeklyHigh:  15,
	TypeWeeklyLow:   15,
	TypeDailyHigh:   12,
	TypeDailyLow:    12,
	TypeSwingHigh:   10,
	TypeSwingLow:    10,
	TypePivotPoint:  8,
	TypeFibonacci:   7,
	TypePivotR1:     6,
	TypePivotS1:     6,
	TypeRoundNumber: 5,
}

var timeframePriority = map[Timeframe]int{
	Weekly: 3,
	Daily:  2,
	Hourly: 1,
}
