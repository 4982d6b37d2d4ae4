package metrics

import (
	"testing"

	"github.com/storagetools/threepar_exporter/inventory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }
func u16(v uint16) *uint16   { return &v }

func familyByName(t *testing.T, families []Family, name string) Family {
	t.Helper()
	for _, f := range families {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("no family named %v", name)
	return Family{}
}

func TestMapPools(t *testing.T) {
	pools := []inventory.Pool{
		{
			Name:           "FC_r6",
			CapacityBytes:  f64(21990232555520),
			RemainingBytes: f64(8796093022208),
			Health:         u16(5),
			Status:         u16(2),
		},
	}
	families, warnings := MapPools(pools, "3par-edge-01")
	assert.Zero(t, warnings)
	require.Len(t, families, 4)

	capacity := familyByName(t, families, "hpe_pool_capacity_bytes")
	assert.Equal(t, Gauge, capacity.Type)
	assert.Equal(t, []string{"system", "pool"}, capacity.Labels)
	require.Len(t, capacity.Samples, 1)
	assert.Equal(t, []string{"3par-edge-01", "FC_r6"}, capacity.Samples[0].LabelValues)
	assert.Equal(t, 21990232555520.0, capacity.Samples[0].Value)
}

func TestMapPoolsMissingOptional(t *testing.T) {
	pools := []inventory.Pool{
		{Name: "SSD_r1", Health: u16(5), Status: u16(2)}, // no capacity figures
	}
	families, warnings := MapPools(pools, "a")
	assert.Equal(t, 2, warnings) // capacity + free both absent

	// the empty capacity families are dropped entirely
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"hpe_pool_health", "hpe_pool_operational_status"}, names)
}

func TestMapPoolsUnnamedRecord(t *testing.T) {
	pools := []inventory.Pool{
		{CapacityBytes: f64(1), Health: u16(5), Status: u16(2)}, // no name
		{Name: "FC_r6", CapacityBytes: f64(2), RemainingBytes: f64(1), Health: u16(5), Status: u16(2)},
	}
	families, warnings := MapPools(pools, "a")
	assert.Equal(t, 1, warnings)
	capacity := familyByName(t, families, "hpe_pool_capacity_bytes")
	require.Len(t, capacity.Samples, 1)
	assert.Equal(t, "FC_r6", capacity.Samples[0].LabelValues[1])
}

func TestMapVolumesKibConversion(t *testing.T) {
	volumes := []inventory.Volume{
		{Name: "vv", ConsumedKiB: f64(1024), CapacityBytes: f64(1 << 30), Health: u16(5), Status: u16(2)},
	}
	families, warnings := MapVolumes(volumes, "a")
	assert.Zero(t, warnings)

	consumed := familyByName(t, families, "hpe_volume_consumed_bytes")
	require.Len(t, consumed.Samples, 1)
	assert.Equal(t, 1048576.0, consumed.Samples[0].Value) // 1024 KiB exactly
}

func TestMapVolumeStatistics(t *testing.T) {
	stats := []inventory.VolumeStats{
		{
			Volume:       "vv-home",
			ReadOps:      f64(123456),
			WriteOps:     f64(654321),
			ReadKiB:      f64(2048),
			WrittenKiB:   f64(4096),
			IOTimeMillis: f64(1500),
		},
	}
	families, warnings := MapVolumeStatistics(stats, "a")
	assert.Zero(t, warnings)
	require.Len(t, families, 5)

	readBytes := familyByName(t, families, "hpe_volume_read_bytes_total")
	assert.Equal(t, Counter, readBytes.Type)
	assert.Equal(t, 2048.0*1024, readBytes.Samples[0].Value)

	ioTime := familyByName(t, families, "hpe_volume_io_time_seconds_total")
	assert.Equal(t, Counter, ioTime.Type)
	assert.Equal(t, 1.5, ioTime.Samples[0].Value)
}

func TestMapVolumeStatisticsMissingLatency(t *testing.T) {
	stats := []inventory.VolumeStats{
		{Volume: "full", ReadOps: f64(1), WriteOps: f64(2), ReadKiB: f64(3), WrittenKiB: f64(4), IOTimeMillis: f64(5)},
		{Volume: "partial", ReadOps: f64(1), WriteOps: f64(2), ReadKiB: f64(3), WrittenKiB: f64(4)},
	}
	families, warnings := MapVolumeStatistics(stats, "a")
	assert.Equal(t, 1, warnings)

	// both volumes appear in the ops families
	readOps := familyByName(t, families, "hpe_volume_read_operations_total")
	assert.Len(t, readOps.Samples, 2)

	// only the complete one has an I/O time sample
	ioTime := familyByName(t, families, "hpe_volume_io_time_seconds_total")
	require.Len(t, ioTime.Samples, 1)
	assert.Equal(t, "full", ioTime.Samples[0].LabelValues[1])
}

func TestMapPortsSpeedConversion(t *testing.T) {
	ports := []inventory.Port{
		{Name: "0:1:1", SpeedBits: f64(8e9), Health: u16(5), Status: u16(2), OtherStatus: u16(1)},
	}
	families, warnings := MapPorts(ports, "fc", "a")
	assert.Zero(t, warnings)

	speed := familyByName(t, families, "hpe_port_speed_bytes_per_second")
	require.Len(t, speed.Samples, 1)
	assert.Equal(t, 1e9, speed.Samples[0].Value)
	assert.Equal(t, []string{"a", "0:1:1", "fc"}, speed.Samples[0].LabelValues)
}

// TestMapPortsMissingVendorExtension: a port class whose firmware does not
// report OtherOperationalStatus must not inflate the warning count, as the
// extension would then be absent on every scrape forever.
func TestMapPortsMissingVendorExtension(t *testing.T) {
	ports := []inventory.Port{
		{Name: "0:1:1", SpeedBits: f64(8e9), Health: u16(5), Status: u16(2)},
	}
	families, warnings := MapPorts(ports, "fc", "a")
	assert.Zero(t, warnings)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.Name)
	}
	assert.NotContains(t, names, "hpe_port_other_operational_status")
}

func TestMapHardwareStatuses(t *testing.T) {
	records := []inventory.HardwareStatus{
		{ID: "cage0", Health: u16(5), Status: u16(2)},
	}

	for name, mapper := range map[string]func([]inventory.HardwareStatus, string) ([]Family, int){
		"hpe_drive_cage_health":      MapDriveCages,
		"hpe_ide_drive_health":       MapIDEDrives,
		"hpe_physical_memory_health": MapPhysicalMemory,
		"hpe_pci_card_health":        MapPCICards,
	} {
		families, warnings := mapper(records, "a")
		assert.Zero(t, warnings)
		require.Len(t, families, 2)

		health := familyByName(t, families, name)
		require.Len(t, health.Samples, 1)
		assert.Equal(t, 5.0, health.Samples[0].Value)
		assert.Equal(t, "cage0", health.Samples[0].LabelValues[1])
	}
}

func TestMapBatteriesUnitConversion(t *testing.T) {
	batteries := []inventory.Battery{
		{
			ID:                              "0-BAT0",
			Health:                          u16(5),
			Status:                          u16(2),
			RemainingCapacityMilliWattHours: f64(48000),
			VoltageMillivolts:               f64(12300),
		},
	}
	families, warnings := MapBatteries(batteries, "a")
	assert.Zero(t, warnings)

	remaining := familyByName(t, families, "hpe_battery_remaining_capacity_watthours")
	assert.Equal(t, 48.0, remaining.Samples[0].Value)
	voltage := familyByName(t, families, "hpe_battery_voltage_volts")
	assert.Equal(t, 12.3, voltage.Samples[0].Value)
}

func TestMapSystemsInfoLabels(t *testing.T) {
	systems := []inventory.System{
		{Name: "EDGE-01", Model: "HPE_3PAR 8200", SerialNumber: "1612345", Health: u16(5), Status: u16(2)},
	}
	families, warnings := MapSystems(systems, "3par-edge-01")
	assert.Zero(t, warnings)

	info := familyByName(t, families, "hpe_system_info")
	require.Len(t, info.Samples, 1)
	assert.Equal(t, []string{"3par-edge-01", "HPE_3PAR 8200", "1612345"}, info.Samples[0].LabelValues)
	assert.Equal(t, 1.0, info.Samples[0].Value)
}

func TestMapZeroRecords(t *testing.T) {
	families, warnings := MapDisks(nil, "a")
	assert.Zero(t, warnings)
	assert.Empty(t, families)
}

func TestLabelStability(t *testing.T) {
	// two passes over unchanged inventory yield identical series identity
	disks := []inventory.Disk{
		{Name: "0:0:0", Health: u16(5), Status: u16(2), Temperature: f64(31)},
		{Name: "0:0:1", Health: u16(5), Status: u16(2), Temperature: f64(29)},
	}
	first, _ := MapDisks(disks, "a")
	second, _ := MapDisks(disks, "a")
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Name, second[i].Name)
		assert.Equal(t, first[i].Labels, second[i].Labels)
		require.Equal(t, len(first[i].Samples), len(second[i].Samples))
		for j := range first[i].Samples {
			assert.Equal(t, first[i].Samples[j].LabelValues, second[i].Samples[j].LabelValues)
		}
	}
}

func TestDedupeMergesFamiliesByName(t *testing.T) {
	fc, _ := MapPorts([]inventory.Port{{Name: "0:1:1", Health: u16(5), Status: u16(2), OtherStatus: u16(1), SpeedBits: f64(8e9)}}, "fc", "a")
	eth, _ := MapPorts([]inventory.Port{{Name: "0:2:1", Health: u16(5), Status: u16(2), OtherStatus: u16(1), SpeedBits: f64(1e9)}}, "ethernet", "a")

	merged, collisions := Dedupe(append(fc, eth...))
	assert.Zero(t, collisions)

	health := familyByName(t, merged, "hpe_port_health")
	assert.Len(t, health.Samples, 2)
}

func TestDedupeLastWriteWins(t *testing.T) {
	families := []Family{
		{
			Name:   "hpe_pool_capacity_bytes",
			Type:   Gauge,
			Labels: []string{"system", "pool"},
			Samples: []Sample{
				{LabelValues: []string{"a", "FC_r6"}, Value: 1},
				{LabelValues: []string{"a", "FC_r6"}, Value: 2},
				{LabelValues: []string{"a", "SSD_r1"}, Value: 3},
			},
		},
	}
	merged, collisions := Dedupe(families)
	assert.Equal(t, 1, collisions)
	require.Len(t, merged, 1)
	require.Len(t, merged[0].Samples, 2)
	assert.Equal(t, 2.0, merged[0].Samples[0].Value) // last write won
	assert.Equal(t, 3.0, merged[0].Samples[1].Value)
}

func TestDedupePreservesInput(t *testing.T) {
	in := []Family{
		{Name: "hpe_fan_health", Labels: []string{"system", "fan"},
			Samples: []Sample{{LabelValues: []string{"a", "f0"}, Value: 5}}},
	}
	out, _ := Dedupe(in)
	out[0].Samples[0].Value = 99
	assert.Equal(t, 5.0, in[0].Samples[0].Value)
}
