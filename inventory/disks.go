package inventory

import (
	"context"
)

// DiskClass is the TPD class modelling a physical disk drive.
const DiskClass = "TPD_DiskDrive"

var diskProperties = []string{
	"ElementName",
	"HealthState",
	"OperationalStatus",
	"Temperature",
}

// Disk is one physical drive. Temperature is degrees Celsius, and absent on
// drives that do not report it.
type Disk struct {
	Name        string
	Health      *uint16
	Status      *uint16
	Temperature *float64
}

// Disks enumerates all physical drives on the array.
func Disks(ctx context.Context, q Querier) ([]Disk, error) {
	instances, err := enumerate(ctx, q, DiskClass, diskProperties)
	if err != nil {
		return nil, err
	}
	disks := make([]Disk, 0, len(instances))
	for _, inst := range instances {
		disks = append(disks, Disk{
			Name:        str(inst, "ElementName"),
			Health:      optUint16(inst, "HealthState"),
			Status:      optStatus(inst, "OperationalStatus"),
			Temperature: optFloat(inst, "Temperature"),
		})
	}
	return disks, nil
}
