// Package tactics holds the formation catalog, the formation extractor, the
// mock analysis generator and the match simulator.
package tactics

// Formation labels offered by the generator.
const (
	Formation433  = "4-3-3"
	Formation4231 = "4-2-3-1"
	Formation343  = "3-4-3"
	Formation352  = "3-5-2"
	Formation442  = "4-4-2"
	Formation532  = "5-3-2"

	DefaultFormation = Formation433
)

// Formations is the closed set the mock generator picks from, in catalog order.
var Formations = []string{
	Formation433,
	Formation4231,
	Formation343,
	Formation352,
	Formation442,
	Formation532,
}

// Pitch palette per line.
const (
	ColorAttack   = "#FCD34D"
	ColorMidfield = "#60A5FA"
	ColorDefence  = "#F87171"
	ColorKeeper   = "#A78BFA"
)

// PositionSlot is one player marker on the pitch. X and Y are percentages of
// the pitch width and height.
type PositionSlot struct {
	Label string  `json:"label"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Color string  `json:"color"`
}

// Point is a user-chosen marker position, also in percent.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

var layouts = map[string][]PositionSlot{
	Formation4231: {
		{"ST", 50, 15, ColorAttack},
		{"LW", 25, 30, ColorAttack},
		{"CAM", 50, 30, ColorAttack},
		{"RW", 75, 30, ColorAttack},
		{"CDM", 40, 45, ColorMidfield},
		{"CDM", 60, 45, ColorMidfield},
		{"LB", 20, 70, ColorDefence},
		{"CB", 40, 70, ColorDefence},
		{"CB", 60, 70, ColorDefence},
		{"RB", 80, 70, ColorDefence},
		{"GK", 50, 88, ColorKeeper},
	},
	Formation433: {
		{"LW", 25, 15, ColorAttack},
		{"ST", 50, 15, ColorAttack},
		{"RW", 75, 15, ColorAttack},
		{"CM", 30, 45, ColorMidfield},
		{"CM", 50, 45, ColorMidfield},
		{"CM", 70, 45, ColorMidfield},
		{"LB", 20, 70, ColorDefence},
		{"CB", 40, 70, ColorDefence},
		{"CB", 60, 70, ColorDefence},
		{"RB", 80, 70, ColorDefence},
		{"GK", 50, 88, ColorKeeper},
	},
	Formation343: {
		{"LW", 25, 15, ColorAttack},
		{"ST", 50, 15, ColorAttack},
		{"RW", 75, 15, ColorAttack},
		{"LM", 15, 45, ColorMidfield},
		{"CM", 38, 45, ColorMidfield},
		{"CM", 62, 45, ColorMidfield},
		{"RM", 85, 45, ColorMidfield},
		{"CB", 30, 70, ColorDefence},
		{"CB", 50, 70, ColorDefence},
		{"CB", 70, 70, ColorDefence},
		{"GK", 50, 88, ColorKeeper},
	},
	Formation352: {
		{"ST", 40, 15, ColorAttack},
		{"ST", 60, 15, ColorAttack},
		{"LM", 15, 40, ColorMidfield},
		{"CM", 35, 45, ColorMidfield},
		{"CDM", 50, 55, ColorMidfield},
		{"CM", 65, 45, ColorMidfield},
		{"RM", 85, 40, ColorMidfield},
		{"CB", 30, 70, ColorDefence},
		{"CB", 50, 70, ColorDefence},
		{"CB", 70, 70, ColorDefence},
		{"GK", 50, 88, ColorKeeper},
	},
	Formation442: {
		{"ST", 40, 15, ColorAttack},
		{"ST", 60, 15, ColorAttack},
		{"LM", 15, 45, ColorMidfield},
		{"CM", 35, 45, ColorMidfield},
		{"CM", 65, 45, ColorMidfield},
		{"RM", 85, 45, ColorMidfield},
		{"LB", 20, 70, ColorDefence},
		{"CB", 40, 70, ColorDefence},
		{"CB", 60, 70, ColorDefence},
		{"RB", 80, 70, ColorDefence},
		{"GK", 50, 88, ColorKeeper},
	},
	Formation532: {
		{"ST", 40, 15, ColorAttack},
		{"ST", 60, 15, ColorAttack},
		{"CM", 30, 45, ColorMidfield},
		{"CM", 50, 45, ColorMidfield},
		{"CM", 70, 45, ColorMidfield},
		{"LWB", 10, 60, ColorDefence},
		{"CB", 30, 70, ColorDefence},
		{"CB", 50, 70, ColorDefence},
		{"CB", 70, 70, ColorDefence},
		{"RWB", 90, 60, ColorDefence},
		{"GK", 50, 88, ColorKeeper},
	},
}

// IsKnown reports whether label is one of the catalog formations.
func IsKnown(label string) bool {
	_, ok := layouts[label]
	return ok
}

// Normalize maps labels outside the catalog to DefaultFormation.
func Normalize(label string) string {
	if IsKnown(label) {
		return label
	}
	return DefaultFormation
}

// PositionsFor returns the 11 default slots for label. Unknown labels get the
// 4-3-3 layout. The returned slice is a copy and may be modified.
func PositionsFor(label string) []PositionSlot {
	src := layouts[Normalize(label)]
	out := make([]PositionSlot, len(src))
	copy(out, src)
	return out
}

// ApplyOverrides moves every slot whose label has an override. Several slots
// can share a label (two CBs), and all of them move together.
func ApplyOverrides(slots []PositionSlot, overrides map[string]Point) []PositionSlot {
	out := make([]PositionSlot, len(slots))
	copy(out, slots)
	if len(overrides) == 0 {
		return out
	}
	for i := range out {
		if p, ok := overrides[out[i].Label]; ok {
			out[i].X = clampPercent(p.X)
			out[i].Y = clampPercent(p.Y)
		}
	}
	return out
}

func clampPercent(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
