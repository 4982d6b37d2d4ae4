package inventory

import (
	"context"
)

// VolumeClass is the TPD class modelling an exported virtual volume.
const VolumeClass = "TPD_StorageVolume"

var volumeProperties = []string{
	"ElementName",
	"BlockSize",
	"NumberOfBlocks",
	"SpaceConsumed",
	"HealthState",
	"OperationalStatus",
}

// Volume is one virtual volume. CapacityBytes is derived from BlockSize and
// NumberOfBlocks and is nil if either is missing. ConsumedKiB is the TPD
// space-consumed extension, reported in KiB.
type Volume struct {
	Name          string
	CapacityBytes *float64
	ConsumedKiB   *float64
	Health        *uint16
	Status        *uint16
}

// Volumes enumerates all virtual volumes on the array.
func Volumes(ctx context.Context, q Querier) ([]Volume, error) {
	instances, err := enumerate(ctx, q, VolumeClass, volumeProperties)
	if err != nil {
		return nil, err
	}
	volumes := make([]Volume, 0, len(instances))
	for _, inst := range instances {
		v := Volume{
			Name:        str(inst, "ElementName"),
			ConsumedKiB: optFloat(inst, "SpaceConsumed"),
			Health:      optUint16(inst, "HealthState"),
			Status:      optStatus(inst, "OperationalStatus"),
		}
		if blockSize, ok := inst.Float("BlockSize"); ok {
			if blocks, ok := inst.Float("NumberOfBlocks"); ok {
				capacity := blockSize * blocks
				v.CapacityBytes = &capacity
			}
		}
		volumes = append(volumes, v)
	}
	return volumes, nil
}
