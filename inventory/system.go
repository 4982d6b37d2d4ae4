package inventory

import (
	"context"
)

// SystemClass is the TPD class modelling the array as a whole. It has
// exactly one instance.
const SystemClass = "TPD_StorageSystem"

var systemProperties = []string{
	"ElementName",
	"Model",
	"SerialNumber",
	"HealthState",
	"OperationalStatus",
}

// System is the array itself. Model and SerialNumber become info labels and
// may be empty on older InForm releases.
type System struct {
	Name         string
	Model        string
	SerialNumber string
	Health       *uint16
	Status       *uint16
}

// Systems enumerates the storage system instance.
func Systems(ctx context.Context, q Querier) ([]System, error) {
	instances, err := enumerate(ctx, q, SystemClass, systemProperties)
	if err != nil {
		return nil, err
	}
	systems := make([]System, 0, len(instances))
	for _, inst := range instances {
		systems = append(systems, System{
			Name:         str(inst, "ElementName"),
			Model:        str(inst, "Model"),
			SerialNumber: str(inst, "SerialNumber"),
			Health:       optUint16(inst, "HealthState"),
			Status:       optStatus(inst, "OperationalStatus"),
		})
	}
	return systems, nil
}
