package levels

import "sort"

// ChartLevel is a level formatted for chart display.
type ChartLevel struct {
	Price         float64  `json:"price"`
	Color         string   `json:"color"`
	Label         string   `json:"label"`
	IsSupport     bool     `json:"is_support"`
	Strength      Strength `json:"strength"`
	StrengthScore float64  `json:"strength_score"`
	Touches       int      `json:"touches"`
	DistancePips  float64  `json:"distance_pips"`
}

// ChartLevels returns the top maxLevels levels by strength, with display
// colors: green shades for support, red shades for resistance.
func ChartLevels(lvls []SRLevel, maxLevels int) []ChartLevel {
	top := make([]SRLevel, len(lvls))
	copy(top, lvls)
	sort.SliceStable(top, func(a, b int) bool { return top[a].StrengthScore > top[b].StrengthScore })
	if len(top) > maxLevels {
		top = top[:maxLevels]
	}

	out := make([]ChartLevel, 0, len(top))
	for _, l := range top {
		out = append(out, ChartLevel{
			Price:         l.Price,
			Color:         levelColor(l),
			Label:         l.DisplayName,
			IsSupport:     l.IsSupport,
			Strength:      l.StrengthClass,
			StrengthScore: l.StrengthScore,
			Touches:       l.Touches,
			DistancePips:  l.DistanceFromPips,
		})
	}
	return out
}

func levelColor(l SRLevel) string {
	if l.IsSupport {
		switch l.StrengthClass {
		case VeryStrong:
			return "#00FF00"
		case Strong:
			return "#32CD32"
		case Moderate:
			return "#90EE90"
		default:
			return "#98FB98"
		}
	}
	switch l.StrengthClass {
	case VeryStrong:
		return "#FF0000"
	case Strong:
		return "#DC143C"
	case Moderate:
		return "#FF6347"
	default:
		return "#FFA07A"
	}
}
