// Robot status — the robot never sickens or dies, but carries an analogous
// battery/durability/temperature record advanced on the same 1-second cadence.
package lifecycle

import "github.com/talgya/critterworld/internal/needs"

// RobotStatus mirrors a critter lifecycle for the singleton robot.
type RobotStatus struct {
	Battery     float64 `json:"battery"`     // 0..1
	Durability  float64 `json:"durability"`  // 0..1
	Temperature float64 `json:"temperature"` // degrees C
}

const (
	batteryDrainPerTick = 0.0006
	wearPerTick         = 0.00002
	ambientTemp         = 35.0
	tempRelaxPerTick    = 0.05
)

// NewRobotStatus returns a factory-fresh robot.
func NewRobotStatus() RobotStatus {
	return RobotStatus{Battery: 1, Durability: 1, Temperature: ambientTemp}
}

// Tick drains the battery, wears the chassis, and relaxes temperature toward
// ambient, with load heating proportional to how depleted energy is.
func (r *RobotStatus) Tick(n needs.State) {
	r.Battery -= batteryDrainPerTick
	if r.Battery < 0 {
		r.Battery = 0
	}
	r.Durability -= wearPerTick
	if r.Durability < 0 {
		r.Durability = 0
	}

	// Working hard on a low battery runs hot.
	load := 1 - n.Energy
	target := ambientTemp + load*20
	r.Temperature += (target - r.Temperature) * tempRelaxPerTick
}

// Recharge tops up the battery, capped at full.
func (r *RobotStatus) Recharge(amount float64) {
	r.Battery += amount
	if r.Battery > 1 {
		r.Battery = 1
	}
}
