package inventory

import (
	"context"
)

// PoolClass is the TPD class modelling a common provisioning group (CPG).
const PoolClass = "TPD_DynamicStoragePool"

var poolProperties = []string{
	"ElementName",
	"TotalManagedSpace",
	"RemainingManagedSpace",
	"HealthState",
	"OperationalStatus",
}

// Pool is one provisioning group. Managed space figures are reported by the
// array in bytes.
type Pool struct {
	Name           string
	CapacityBytes  *float64
	RemainingBytes *float64
	Health         *uint16
	Status         *uint16
}

// Pools enumerates all provisioning groups on the array.
func Pools(ctx context.Context, q Querier) ([]Pool, error) {
	instances, err := enumerate(ctx, q, PoolClass, poolProperties)
	if err != nil {
		return nil, err
	}
	pools := make([]Pool, 0, len(instances))
	for _, inst := range instances {
		pools = append(pools, Pool{
			Name:           str(inst, "ElementName"),
			CapacityBytes:  optFloat(inst, "TotalManagedSpace"),
			RemainingBytes: optFloat(inst, "RemainingManagedSpace"),
			Health:         optUint16(inst, "HealthState"),
			Status:         optStatus(inst, "OperationalStatus"),
		})
	}
	return pools, nil
}
