// Package progress tracks a learner's experience points, levels, daily
// streaks and per-topic mastery.
package progress

import "math"

// MaxLevel caps the level curve.
const MaxLevel = 100

// Curve is a geometric level curve: completing level L costs
// Base * Multiplier^(L-1) XP.
type Curve struct {
	Base       int
	Multiplier float64
}

// DefaultCurve returns the standard curve (100 XP, x1.5 per level).
func DefaultCurve() Curve {
	return Curve{Base: 100, Multiplier: 1.5}
}

// LevelInfo describes where an XP total sits on the curve.
type LevelInfo struct {
	Level        int     `json:"level"`
	XP           int     `json:"xp"`
	LevelStartXP int     `json:"level_start_xp"`
	NextLevelXP  int     `json:"next_level_xp"`
	XPIntoLevel  int     `json:"xp_into_level"`
	XPForLevel   int     `json:"xp_for_level"`
	Percent      float64 `json:"percent"`
}

func (c Curve) normalized() Curve {
	if c.Base <= 0 {
		c.Base = 100
	}
	if c.Multiplier < 1 {
		c.Multiplier = 1
	}
	return c
}

// CostOf returns the XP needed to complete the given level, saturating
// at math.MaxInt on steep curves.
func (c Curve) CostOf(level int) int {
	c = c.normalized()
	if level < 1 {
		level = 1
	}
	cost := math.Round(float64(c.Base) * math.Pow(c.Multiplier, float64(level-1)))
	if cost >= float64(math.MaxInt) {
		return math.MaxInt
	}
	return int(cost)
}

// addSat adds two non-negative XP amounts, saturating at math.MaxInt.
func addSat(a, b int) int {
	if b > math.MaxInt-a {
		return math.MaxInt
	}
	return a + b
}

// LevelFor returns the level for an XP total. Level costs are
// accumulated until the running total exceeds xp. Negative XP counts as 0.
func (c Curve) LevelFor(xp int) int {
	if xp < 0 {
		xp = 0
	}
	total := 0
	for level := 1; level < MaxLevel; level++ {
		total = addSat(total, c.CostOf(level))
		if total > xp {
			return level
		}
	}
	return MaxLevel
}

// StartOf returns the cumulative XP at which the given level begins.
func (c Curve) StartOf(level int) int {
	total := 0
	for l := 1; l < level && l < MaxLevel; l++ {
		total = addSat(total, c.CostOf(l))
	}
	return total
}

// Info returns the position of xp on the curve.
func (c Curve) Info(xp int) LevelInfo {
	if xp < 0 {
		xp = 0
	}
	level := c.LevelFor(xp)
	start := c.StartOf(level)
	cost := c.CostOf(level)

	info := LevelInfo{
		Level:        level,
		XP:           xp,
		LevelStartXP: start,
		NextLevelXP:  addSat(start, cost),
		XPIntoLevel:  xp - start,
		XPForLevel:   cost,
	}
	if level == MaxLevel {
		info.Percent = 100
		return info
	}
	info.Percent = math.Round(1000*float64(info.XPIntoLevel)/float64(cost)) / 10
	return info
}
