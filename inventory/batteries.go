package inventory

import (
	"context"
)

// BatteryClass is the TPD class modelling a node's backup battery.
const BatteryClass = "TPD_Battery"

var batteryProperties = []string{
	"DeviceID",
	"HealthState",
	"OperationalStatus",
	"RemainingCapacity",
	"Voltage",
}

// Battery is one backup battery. RemainingCapacityMilliWattHours and
// VoltageMillivolts follow CIM_Battery's units; batteries that do not report
// them leave the fields nil.
type Battery struct {
	ID                              string
	Health                          *uint16
	Status                          *uint16
	RemainingCapacityMilliWattHours *float64
	VoltageMillivolts               *float64
}

// Batteries enumerates all backup batteries.
func Batteries(ctx context.Context, q Querier) ([]Battery, error) {
	instances, err := enumerate(ctx, q, BatteryClass, batteryProperties)
	if err != nil {
		return nil, err
	}
	batteries := make([]Battery, 0, len(instances))
	for _, inst := range instances {
		batteries = append(batteries, Battery{
			ID:                              str(inst, "DeviceID"),
			Health:                          optUint16(inst, "HealthState"),
			Status:                          optStatus(inst, "OperationalStatus"),
			RemainingCapacityMilliWattHours: optFloat(inst, "RemainingCapacity"),
			VoltageMillivolts:               optFloat(inst, "Voltage"),
		})
	}
	return batteries, nil
}
