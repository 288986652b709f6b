// The world clock: real seconds map onto a compressed sim day, with dawn and
// nightfall edges surfaced so the tick loop can broadcast them.
package world

// Night spans 21:00..05:00; these mirror the activity package's night window.
const (
	dawnHour      = 5.0
	nightfallHour = 21.0
	daysPerSeason = 6
)

var seasonNames = [4]string{"spring", "summer", "autumn", "winter"}

type clock struct {
	dayLength float64 // real seconds per 24 sim hours
	timeOfDay float64 // hours, 0..24
	day       int
}

// advance moves the clock by dt real seconds and reports whether the dawn or
// nightfall boundary was crossed.
func (c *clock) advance(dt float64) (dawn, nightfall bool) {
	before := c.timeOfDay
	c.timeOfDay += dt / c.dayLength * 24
	for c.timeOfDay >= 24 {
		c.timeOfDay -= 24
		c.day++
	}

	dawn = crossed(before, c.timeOfDay, dawnHour)
	nightfall = crossed(before, c.timeOfDay, nightfallHour)
	return dawn, nightfall
}

// crossed reports whether the hour boundary b lies in the half-open interval
// (from, to], accounting for midnight wrap.
func crossed(from, to, b float64) bool {
	if from <= to {
		return from < b && b <= to
	}
	// Wrapped past midnight.
	return b > from || b <= to
}

func (c *clock) isNight() bool {
	return c.timeOfDay < dawnHour || c.timeOfDay > nightfallHour
}

func (c *clock) season() string {
	return seasonNames[(c.day/daysPerSeason)%4]
}
