package levels

import (
	"math"
	"sort"

	"sltp-engine/internal/patterns"
	"sltp-engine/pkg/types"
)

// Detector aggregates swing, pivot, round-number and weekly-map levels
// into one deduplicated, scored list. Stateless aside from configuration;
// safe to call concurrently.
type Detector struct {
	swingLookback   int
	tolerancePips   float64
	atrPeriod       int
	patternLookback int

	swing  *patterns.SwingDetector
	pinBar *patterns.PinBarDetector
}

// NewDetector creates a support/resistance detector.
func NewDetector(cfg types.DetectorConfig) *Detector {
	swingLookback := cfg.SwingLookback
	if swingLookback <= 0 {
		swingLookback = 5
	}
	tolerance := cfg.LevelTolerancePips
	if tolerance <= 0 {
		tolerance = 5.0
	}
	atrPeriod := cfg.ATRPeriod
	if atrPeriod <= 0 {
		atrPeriod = 14
	}
	lookback := cfg.PatternLookback
	if lookback <= 0 {
		lookback = 50
	}
	return &Detector{
		swingLookback:   swingLookback,
		tolerancePips:   tolerance,
		atrPeriod:       atrPeriod,
		patternLookback: lookback,
		swing:           patterns.NewSwingDetector(swingLookback),
		pinBar:          patterns.NewPinBarDetector(cfg.PinBarShadowRatio, cfg.PinBarMaxBodyRatio, cfg.PinBarMinRangePips),
	}
}

// DetectAll runs the full pipeline and returns levels sorted strongest
// first. currentPrice <= 0 means "use the last close". includeWeekly
// opts the weekly map in when at least a week of hourly candles exists.
func (d *Detector) DetectAll(s types.Series, pipValue, currentPrice float64, includeWeekly bool) []SRLevel {
	n := s.Len()
	if n == 0 {
		return nil
	}
	if currentPrice <= 0 {
		currentPrice = s.Close[n-1]
	}

	atr := d.calculateATR(s.High, s.Low, s.Close)

	var all []SRLevel
	all = append(all, d.swingLevels(s)...)
	if n >= 24 {
		all = append(all, d.pivotLevels(s, currentPrice)...)
	}
	all = append(all, d.roundNumberLevels(currentPrice)...)
	if includeWeekly && n >= 168 {
		all = append(all, d.weeklyMapLevels(s, currentPrice)...)
	}

	merged := d.mergeSimilar(all, pipValue)
	scored := d.score(merged, s, pipValue, atr, currentPrice)

	for i := range scored {
		if pipValue > 0 {
			scored[i].DistanceFromPips = math.Abs(scored[i].Price-currentPrice) / pipValue
		}
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].StrengthScore > scored[b].StrengthScore
	})

	return scored
}

// calculateATR is the mean true range of the trailing window, used only
// as a normalizing scale. Short series fall back to the mean candle range.
func (d *Detector) calculateATR(high, low, close []float64) float64 {
	n := len(close)
	if n == 0 {
		return 0
	}
	if n < d.atrPeriod+1 {
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += high[i] - low[i]
		}
		return sum / float64(n)
	}

	tr := make([]float64, n)
	tr[0] = high[0] - low[0]
	for i := 1; i < n; i++ {
		hl := high[i] - low[i]
		hc := math.Abs(high[i] - close[i-1])
		lc := math.Abs(low[i] - close[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}

	sum := 0.0
	for i := n - d.atrPeriod; i < n; i++ {
		sum += tr[i]
	}
	return sum / float64(d.atrPeriod)
}

// timeframeFor assigns context by recency of the bar.
func timeframeFor(index, total int) Timeframe {
	barsBack := total - index
	switch {
	case barsBack <= 1:
		return Hourly
	case barsBack <= 24:
		return Daily
	default:
		return Weekly
	}
}

// swingLevels turns every swing high into a resistance candidate and
// every swing low into a support candidate.
func (d *Detector) swingLevels(s types.Series) []SRLevel {
	var out []SRLevel
	n := s.Len()

	swingHighs, swingLows := d.swing.Detect(s.High, s.Low)

	for _, p := range swingHighs {
		out = append(out, SRLevel{
			Price:           p.PriceLevel,
			Type:            TypeSwingHigh,
			IsSupport:       false,
			StrengthClass:   Weak,
			Touches:         1,
			FirstTouchIndex: p.Index,
			LastTouchIndex:  p.Index,
			Timeframe:       timeframeFor(p.Index, n),
		})
	}
	for _, p := range swingLows {
		out = append(out, SRLevel{
			Price:           p.PriceLevel,
			Type:            TypeSwingLow,
			IsSupport:       true,
			StrengthClass:   Weak,
			Touches:         1,
			FirstTouchIndex: p.Index,
			LastTouchIndex:  p.Index,
			Timeframe:       timeframeFor(p.Index, n),
		})
	}

	return out
}

// pivotLevels computes the classic floor-trader pivot set from the
// trailing 24-candle high/low/close.
func (d *Detector) pivotLevels(s types.Series, currentPrice float64) []SRLevel {
	n := s.Len()
	lookback := 24
	if n-1 < lookback {
		lookback = n - 1
	}

	dailyHigh := maxOf(s.High[n-lookback:])
	dailyLow := minOf(s.Low[n-lookback:])
	dailyClose := s.Close[n-1]

	pivot := (dailyHigh + dailyLow + dailyClose) / 3
	set := []struct {
		price float64
		typ   LevelType
		// nil means "depends on current price"
		isSupport *bool
	}{
		{pivot, TypePivotPoint, nil},
		{2*pivot - dailyLow, TypePivotR1, boolPtr(false)},
		{pivot + (dailyHigh - dailyLow), TypePivotR2, boolPtr(false)},
		{dailyHigh + 2*(pivot-dailyLow), TypePivotR3, boolPtr(false)},
		{2*pivot - dailyHigh, TypePivotS1, boolPtr(true)},
		{pivot - (dailyHigh - dailyLow), TypePivotS2, boolPtr(true)},
		{dailyLow - 2*(dailyHigh-pivot), TypePivotS3, boolPtr(true)},
	}

	out := make([]SRLevel, 0, len(set))
	for _, p := range set {
		isSupport := p.price < currentPrice
		if p.isSupport != nil {
			isSupport = *p.isSupport
		}
		out = append(out, SRLevel{
			Price:           p.price,
			Type:            p.typ,
			IsSupport:       isSupport,
			StrengthClass:   Moderate,
			FirstTouchIndex: n - lookback,
			LastTouchIndex:  n - 1,
			Timeframe:       Daily,
		})
	}
	return out
}

// roundNumberLevels returns 7 psychological levels centered on the
// nearest multiple of the magnitude interval.
func (d *Detector) roundNumberLevels(currentPrice float64) []SRLevel {
	var interval float64
	switch {
	case currentPrice > 100: // JPY pairs
		interval = 1.0
	case currentPrice > 10:
		interval = 0.5
	default:
		interval = 0.01
	}

	base := math.Round(currentPrice/interval) * interval

	out := make([]SRLevel, 0, 7)
	for i := -3; i <= 3; i++ {
		price := base + float64(i)*interval
		out = append(out, SRLevel{
			Price:         price,
			Type:          TypeRoundNumber,
			IsSupport:     price < currentPrice,
			StrengthClass: Weak,
			Timeframe:     Daily,
		})
	}
	return out
}

// weeklyMapLevels derives weekly pivots plus fibonacci retracements from
// the trailing 168-candle window. The weekly high is always resistance
// and the weekly low always support.
func (d *Detector) weeklyMapLevels(s types.Series, currentPrice float64) []SRLevel {
	wm := d.WeeklyMapFor(s)
	n := s.Len()
	lookback := 168
	if n-1 < lookback {
		lookback = n - 1
	}

	set := []struct {
		price     float64
		typ       LevelType
		isSupport bool
	}{
		{wm.WeeklyHigh, TypeWeeklyHigh, false},
		{wm.WeeklyLow, TypeWeeklyLow, true},
		{wm.Pivot, TypePivotPoint, wm.Pivot < currentPrice},
		{wm.R1, TypePivotR1, false},
		{wm.R2, TypePivotR2, false},
		{wm.S1, TypePivotS1, true},
		{wm.S2, TypePivotS2, true},
		{wm.Fib236, TypeFibonacci, wm.Fib236 < currentPrice},
		{wm.Fib382, TypeFibonacci, wm.Fib382 < currentPrice},
		{wm.Fib500, TypeFibonacci, wm.Fib500 < currentPrice},
		{wm.Fib618, TypeFibonacci, wm.Fib618 < currentPrice},
		{wm.Fib786, TypeFibonacci, wm.Fib786 < currentPrice},
	}

	out := make([]SRLevel, 0, len(set))
	for _, p := range set {
		out = append(out, SRLevel{
			Price:           p.price,
			Type:            p.typ,
			IsSupport:       p.isSupport,
			StrengthClass:   Moderate,
			FirstTouchIndex: n - lookback,
			LastTouchIndex:  n - 1,
			Timeframe:       Weekly,
		})
	}
	return out
}

// WeeklyMapFor computes the complete weekly pivot and fibonacci set from
// the trailing 168-candle window.
func (d *Detector) WeeklyMapFor(s types.Series) WeeklyMap {
	n := s.Len()
	lookback := 168
	if n-1 < lookback {
		lookback = n - 1
	}

	weeklyHigh := maxOf(s.High[n-lookback:])
	weeklyLow := minOf(s.Low[n-lookback:])
	weeklyOpen := s.Open[n-lookback]
	weeklyClose := s.Close[n-1]
	weeklyRange := weeklyHigh - weeklyLow

	pivot := (weeklyHigh + weeklyLow + weeklyClose) / 3

	return WeeklyMap{
		Pivot:       pivot,
		R1:          2*pivot - weeklyLow,
		R2:          pivot + weeklyRange,
		R3:          weeklyHigh + 2*(pivot-weeklyLow),
		S1:          2*pivot - weeklyHigh,
		S2:          pivot - weeklyRange,
		S3:          weeklyLow - 2*(weeklyHigh-pivot),
		Fib236:      weeklyHigh - 0.236*weeklyRange,
		Fib382:      weeklyHigh - 0.382*weeklyRange,
		Fib500:      weeklyHigh - 0.500*weeklyRange,
		Fib618:      weeklyHigh - 0.618*weeklyRange,
		Fib786:      weeklyHigh - 0.786*weeklyRange,
		WeeklyHigh:  weeklyHigh,
		WeeklyLow:   weeklyLow,
		WeeklyOpen:  weeklyOpen,
		WeeklyClose: weeklyClose,
	}
}

// mergeSimilar groups candidates within tolerance of the first member of
// the running group. Single pass over the price-sorted list, not full
// clustering: a candidate can be within tolerance of its neighbor yet
// start a new group because it is too far from the group's first member.
func (d *Detector) mergeSimilar(all []SRLevel, pipValue float64) []SRLevel {
	if len(all) == 0 {
		return nil
	}

	tolerance := d.tolerancePips * pipValue

	sorted := make([]SRLevel, len(all))
	copy(sorted, all)
	sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].Price < sorted[b].Price })

	var merged []SRLevel
	group := []SRLevel{sorted[0]}

	for _, l := range sorted[1:] {
		if math.Abs(l.Price-group[0].Price) <= tolerance {
			group = append(group, l)
		} else {
			merged = append(merged, mergeGroup(group))
			group = []SRLevel{l}
		}
	}
	merged = append(merged, mergeGroup(group))

	return merged
}

// mergeGroup collapses a tolerance group into one representative level:
// mean price, summed touches, highest-priority type, coarsest timeframe.
func mergeGroup(group []SRLevel) SRLevel {
	if len(group) == 1 {
		return group[0]
	}

	sum := 0.0
	touches := 0
	firstTouch := group[0].FirstTouchIndex
	lastTouch := group[0].LastTouchIndex
	hasPinBar := false
	hasLegRejection := false
	best := group[0]
	bestTF := group[0].Timeframe

	for _, l := range group {
		sum += l.Price
		touches += l.Touches
		if l.FirstTouchIndex < firstTouch {
			firstTouch = l.FirstTouchIndex
		}
		if l.LastTouchIndex > lastTouch {
			lastTouch = l.LastTouchIndex
		}
		hasPinBar = hasPinBar || l.HasPinBar
		hasLegRejection = hasLegRejection || l.HasLegRejection
		if typePriority[l.Type] > typePriority[best.Type] {
			best = l
		}
		if timeframePriority[l.Timeframe] > timeframePriority[bestTF] {
			bestTF = l.Timeframe
		}
	}

	return SRLevel{
		Price:           sum / float64(len(group)),
		Type:            best.Type,
		IsSupport:       best.IsSupport,
		StrengthClass:   Weak,
		Touches:         touches,
		FirstTouchIndex: firstTouch,
		LastTouchIndex:  lastTouch,
		Timeframe:       bestTF,
		HasPinBar:       hasPinBar,
		HasLegRejection: hasLegRejection,
	}
}

// score applies the additive strength model, capped at 100.
func (d *Detector) score(lvls []SRLevel, s types.Series, pipValue, atr, currentPrice float64) []SRLevel {
	tolerance := d.tolerancePips * pipValue
	n := s.Len()

	pinBars := d.pinBar.Detect(s.Open, s.High, s.Low, s.Close, pipValue, d.patternLookback)

	for i := range lvls {
		l := &lvls[i]
		score := 0.0

		// 1. Touch count: +5 per touch, capped at 25
		touches := countTouches(l.Price, s.High, s.Low, tolerance)
		l.Touches = touches
		score += math.Min(float64(touches)*5, 25)

		// 2. ATR significance: undefined ratio when ATR is zero, term skipped
		if atr > 0 {
			ratio := math.Abs(l.Price-currentPrice) / atr
			l.ATRSignificance = ratio
			if ratio >= 0.5 && ratio <= 2.0 {
				score += 20
			} else if ratio >= 0.25 && ratio <= 3.0 {
				score += 10
			}
		}

		// 3. Pin bar confluence
		for _, pb := range pinBars {
			if s.Low[pb.Index]-tolerance <= l.Price && l.Price <= s.High[pb.Index]+tolerance {
				l.HasPinBar = true
				score += 15
				break
			}
		}

		// 4. Leg rejection: touched and closed away within 3 candles
		if hasLegRejection(l.Price, s.High, s.Low, s.Close, tolerance) {
			l.HasLegRejection = true
			score += 15
		}

		// 5. Level type bonus
		score += typeBonus[l.Type]

		// 6. Recency
		recency := float64(n-l.LastTouchIndex) / float64(n)
		score += math.Max(0, 10*(1-recency))

		l.StrengthScore = math.Min(100, score)
		l.StrengthClass = classify(l.StrengthScore)
		l.DisplayName = l.displayName()
	}

	return lvls
}

// countTouches counts candles whose range intersects the level band.
func countTouches(price float64, high, low []float64, tolerance float64) int {
	touches := 0
	for i := range high {
		if low[i]-tolerance <= price && price <= high[i]+tolerance {
			touches++
		}
	}
	return touches
}

// hasLegRejection reports whether price touched the level and closed
// away from it within 3 candles in the direction the level implies:
// up off a support, down off a resistance.
func hasLegRejection(price float64, high, low, close []float64, tolerance float64) bool {
	for i := 5; i < len(close); i++ {
		if low[i]-tolerance <= price && price <= high[i]+tolerance {
			if i+3 < len(close) {
				if price < close[i] {
					if close[i+3] > close[i] {
						return true
					}
				} else {
					if close[i+3] < close[i] {
						return true
					}
				}
			}
		}
	}
	return false
}

// NearestLevel returns the closest level on the correct side of price:
// for support the highest-priced level strictly below, for resistance
// the lowest-priced level strictly above.
func NearestLevel(lvls []SRLevel, currentPrice float64, isSupport bool) (SRLevel, bool) {
	var best SRLevel
	found := false

	for _, l := range lvls {
		if l.IsSupport != isSupport {
			continue
		}
		if isSupport {
			if l.Price < currentPrice && (!found || l.Price > best.Price) {
				best = l
				found = true
			}
		} else {
			if l.Price > currentPrice && (!found || l.Price < best.Price) {
				best = l
				found = true
			}
		}
	}

	return best, found
}

// MostImportantLevel returns the strongest level on the correct side of
// price within maxDistancePips.
func MostImportantLevel(lvls []SRLevel, currentPrice float64, isSupport bool, maxDistancePips, pipValue float64) (SRLevel, bool) {
	var best SRLevel
	found := false

	for _, l := range lvls {
		if l.IsSupport != isSupport {
			continue
		}
		var distance float64
		if isSupport {
			if l.Price >= currentPrice {
				continue
			}
			distance = (currentPrice - l.Price) / pipValue
		} else {
			if l.Price <= currentPrice {
				continue
			}
			distance = (l.Price - currentPrice) / pipValue
		}
		if distance > maxDistancePips {
			continue
		}
		if !found || l.StrengthScore > best.StrengthScore {
			best = l
			found = true
		}
	}

	return best, found
}

// ByTimeframe filters levels by timeframe context.
func ByTimeframe(lvls []SRLevel, tf Timeframe) []SRLevel {
	var out []SRLevel
	for _, l := range lvls {
		if l.Timeframe == tf {
			out = append(out, l)
		}
	}
	return out
}

func maxOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func boolPtr(b bool) *bool { return &b }
