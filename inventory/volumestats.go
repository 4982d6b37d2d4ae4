package inventory

import (
	"context"
)

// VolumeStatsClass is the block storage statistics class for volumes. The
// counters are cumulative since array boot.
const VolumeStatsClass = "TPD_VolumeStatisticalData"

var volumeStatsProperties = []string{
	"ElementName",
	"ReadIOs",
	"WriteIOs",
	"KBytesRead",
	"KBytesWritten",
	"IOTimeCounter",
}

// VolumeStats is one volume's performance counters. KiB and millisecond
// units are the vendor's; conversion to base units happens in the mapper.
type VolumeStats struct {
	Volume       string
	ReadOps      *float64
	WriteOps     *float64
	ReadKiB      *float64
	WrittenKiB   *float64
	IOTimeMillis *float64
}

// VolumeStatistics enumerates performance counters for all volumes.
func VolumeStatistics(ctx context.Context, q Querier) ([]VolumeStats, error) {
	instances, err := enumerate(ctx, q, VolumeStatsClass, volumeStatsProperties)
	if err != nil {
		return nil, err
	}
	stats := make([]VolumeStats, 0, len(instances))
	for _, inst := range instances {
		stats = append(stats, VolumeStats{
			Volume:       str(inst, "ElementName"),
			ReadOps:      optFloat(inst, "ReadIOs"),
			WriteOps:     optFloat(inst, "WriteIOs"),
			ReadKiB:      optFloat(inst, "KBytesRead"),
			WrittenKiB:   optFloat(inst, "KBytesWritten"),
			IOTimeMillis: optFloat(inst, "IOTimeCounter"),
		})
	}
	return stats, nil
}
