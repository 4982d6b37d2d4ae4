package metrics

import (
	"github.com/storagetools/threepar_exporter/inventory"
)

// sample appends a gauge/counter sample, applying an optional unit
// conversion. A nil value means the array omitted the property; the sample
// is skipped and one warning is returned.
func sample(f *Family, v *float64, convert func(float64) float64, labelValues ...string) int {
	if v == nil {
		return 1
	}
	value := *v
	if convert != nil {
		value = convert(value)
	}
	f.add(value, labelValues...)
	return 0
}

func sampleCode(f *Family, v *uint16, labelValues ...string) int {
	if v == nil {
		return 1
	}
	f.add(float64(*v), labelValues...)
	return 0
}

// MapPools maps provisioning group records. A record without a name cannot
// be labelled and is skipped whole, for one warning.
func MapPools(pools []inventory.Pool, system string) ([]Family, int) {
	capacity := newFamily("hpe_pool_capacity_bytes",
		"Total managed space of the provisioning group.", Gauge, "system", "pool")
	free := newFamily("hpe_pool_free_bytes",
		"Remaining managed space of the provisioning group.", Gauge, "system", "pool")
	health := newFamily("hpe_pool_health",
		"HealthState of the provisioning group as a DMTF code (5 is ok).", Gauge, "system", "pool")
	status := newFamily("hpe_pool_operational_status",
		"OperationalStatus of the provisioning group as a DMTF code (2 is ok).", Gauge, "system", "pool")

	warnings := 0
	for _, p := range pools {
		if p.Name == "" {
			warnings++
			continue
		}
		warnings += sample(capacity, p.CapacityBytes, nil, system, p.Name)
		warnings += sample(free, p.RemainingBytes, nil, system, p.Name)
		warnings += sampleCode(health, p.Health, system, p.Name)
		warnings += sampleCode(status, p.Status, system, p.Name)
	}
	return compact([]*Family{capacity, free, health, status}), warnings
}

// MapVolumes maps virtual volume records.
func MapVolumes(volumes []inventory.Volume, system string) ([]Family, int) {
	capacity := newFamily("hpe_volume_capacity_bytes",
		"Exported size of the virtual volume.", Gauge, "system", "volume")
	consumed := newFamily("hpe_volume_consumed_bytes",
		"Space consumed by the virtual volume on the array.", Gauge, "system", "volume")
	health := newFamily("hpe_volume_health",
		"HealthState of the virtual volume as a DMTF code (5 is ok).", Gauge, "system", "volume")
	status := newFamily("hpe_volume_operational_status",
		"OperationalStatus of the virtual volume as a DMTF code (2 is ok).", Gauge, "system", "volume")

	warnings := 0
	for _, v := range volumes {
		if v.Name == "" {
			warnings++
			continue
		}
		warnings += sample(capacity, v.CapacityBytes, nil, system, v.Name)
		warnings += sample(consumed, v.ConsumedKiB, kibToBytes, system, v.Name)
		warnings += sampleCode(health, v.Health, system, v.Name)
		warnings += sampleCode(status, v.Status, system, v.Name)
	}
	return compact([]*Family{capacity, consumed, health, status}), warnings
}

// MapVolumeStatistics maps per-volume performance counters. These are
// cumulative since array boot, so they carry counter semantics.
func MapVolumeStatistics(stats []inventory.VolumeStats, system string) ([]Family, int) {
	readOps := newFamily("hpe_volume_read_operations_total",
		"Read operations served by the volume since array boot.", Counter, "system", "volume")
	writeOps := newFamily("hpe_volume_write_operations_total",
		"Write operations served by the volume since array boot.", Counter, "system", "volume")
	readBytes := newFamily("hpe_volume_read_bytes_total",
		"Bytes read from the volume since array boot.", Counter, "system", "volume")
	writtenBytes := newFamily("hpe_volume_written_bytes_total",
		"Bytes written to the volume since array boot.", Counter, "system", "volume")
	ioTime := newFamily("hpe_volume_io_time_seconds_total",
		"Cumulative time the volume spent servicing I/O.", Counter, "system", "volume")

	warnings := 0
	for _, s := range stats {
		if s.Volume == "" {
			warnings++
			continue
		}
		warnings += sample(readOps, s.ReadOps, nil, system, s.Volume)
		warnings += sample(writeOps, s.WriteOps, nil, system, s.Volume)
		warnings += sample(readBytes, s.ReadKiB, kibToBytes, system, s.Volume)
		warnings += sample(writtenBytes, s.WrittenKiB, kibToBytes, system, s.Volume)
		warnings += sample(ioTime, s.IOTimeMillis, millisToSeconds, system, s.Volume)
	}
	return compact([]*Family{readOps, writeOps, readBytes, writtenBytes, ioTime}), warnings
}

// MapDisks maps physical drive records.
func MapDisks(disks []inventory.Disk, system string) ([]Family, int) {
	health := newFamily("hpe_disk_health",
		"HealthState of the physical drive as a DMTF code (5 is ok).", Gauge, "system", "disk")
	status := newFamily("hpe_disk_operational_status",
		"OperationalStatus of the physical drive as a DMTF code (2 is ok).", Gauge, "system", "disk")
	temperature := newFamily("hpe_disk_temperature_celsius",
		"Temperature reported by the physical drive.", Gauge, "system", "disk")

	warnings := 0
	for _, d := range disks {
		if d.Name == "" {
			warnings++
			continue
		}
		warnings += sampleCode(health, d.Health, system, d.Name)
		warnings += sampleCode(status, d.Status, system, d.Name)
		warnings += sample(temperature, d.Temperature, nil, system, d.Name)
	}
	return compact([]*Family{health, status, temperature}), warnings
}

// MapPorts maps port records for one protocol (fc, ethernet or sas). The
// three port classes share families, varying only by the protocol label.
func MapPorts(ports []inventory.Port, protocol, system string) ([]Family, int) {
	health := newFamily("hpe_port_health",
		"HealthState of the port as a DMTF code (5 is ok).", Gauge, "system", "port", "protocol")
	status := newFamily("hpe_port_operational_status",
		"OperationalStatus of the port as a DMTF code (2 is ok).", Gauge, "system", "port", "protocol")
	otherStatus := newFamily("hpe_port_other_operational_status",
		"Vendor extension to the port's OperationalStatus. Absent on firmware "+
			"that does not report it.", Gauge, "system", "port", "protocol")
	speed := newFamily("hpe_port_speed_bytes_per_second",
		"Negotiated link speed of the port.", Gauge, "system", "port", "protocol")

	warnings := 0
	for _, p := range ports {
		if p.Name == "" {
			warnings++
			continue
		}
		warnings += sampleCode(health, p.Health, system, p.Name, protocol)
		warnings += sampleCode(status, p.Status, system, p.Name, protocol)
		// the vendor extension is genuinely optional: older firmware omits
		// it class-wide, which should not register as a warning every scrape
		sampleCode(otherStatus, p.OtherStatus, system, p.Name, protocol)
		warnings += sample(speed, p.SpeedBits, bitsToBytes, system, p.Name, protocol)
	}
	return compact([]*Family{health, status, otherStatus, speed}), warnings
}

// MapControllers maps controller node records.
func MapControllers(controllers []inventory.Controller, system string) ([]Family, int) {
	health := newFamily("hpe_controller_health",
		"HealthState of the controller node as a DMTF code (5 is ok).", Gauge, "system", "controller")
	status := newFamily("hpe_controller_operational_status",
		"OperationalStatus of the controller node as a DMTF code (2 is ok).", Gauge, "system", "controller")
	led := newFamily("hpe_controller_led",
		"Service LED of the controller node (0 off, 1 amber, 2 blinking).", Gauge, "system", "controller")

	warnings := 0
	for _, c := range controllers {
		if c.Name == "" {
			warnings++
			continue
		}
		warnings += sampleCode(health, c.Health, system, c.Name)
		warnings += sampleCode(status, c.Status, system, c.Name)
		warnings += sampleCode(led, c.LED, system, c.Name)
	}
	return compact([]*Family{health, status, led}), warnings
}

// MapSystems maps the storage system record. Model and serial become labels
// on an info metric; when absent they are empty rather than warned about,
// as there is no sample to skip.
func MapSystems(systems []inventory.System, system string) ([]Family, int) {
	info := newFamily("hpe_system_info",
		"Model and serial number of the array. Constant 1.", Gauge, "system", "model", "serial")
	health := newFamily("hpe_system_health",
		"HealthState of the array as a DMTF code (5 is ok).", Gauge, "system")
	status := newFamily("hpe_system_operational_status",
		"OperationalStatus of the array as a DMTF code (2 is ok).", Gauge, "system")

	warnings := 0
	for _, s := range systems {
		if s.Name == "" {
			warnings++
			continue
		}
		info.add(1, system, s.Model, s.SerialNumber)
		warnings += sampleCode(health, s.Health, system)
		warnings += sampleCode(status, s.Status, system)
	}
	return compact([]*Family{info, health, status}), warnings
}

// MapBatteries maps backup battery records.
func MapBatteries(batteries []inventory.Battery, system string) ([]Family, int) {
	health := newFamily("hpe_battery_health",
		"HealthState of the backup battery as a DMTF code (5 is ok).", Gauge, "system", "battery")
	status := newFamily("hpe_battery_operational_status",
		"OperationalStatus of the backup battery as a DMTF code (2 is ok).", Gauge, "system", "battery")
	remaining := newFamily("hpe_battery_remaining_capacity_watthours",
		"Remaining charge of the backup battery.", Gauge, "system", "battery")
	voltage := newFamily("hpe_battery_voltage_volts",
		"Output voltage of the backup battery.", Gauge, "system", "battery")

	warnings := 0
	for _, b := range batteries {
		if b.ID == "" {
			warnings++
			continue
		}
		warnings += sampleCode(health, b.Health, system, b.ID)
		warnings += sampleCode(status, b.Status, system, b.ID)
		warnings += sample(remaining, b.RemainingCapacityMilliWattHours, milliwattHoursToWattHours, system, b.ID)
		warnings += sample(voltage, b.VoltageMillivolts, millivoltsToVolts, system, b.ID)
	}
	return compact([]*Family{health, status, remaining, voltage}), warnings
}

// MapFans maps fan records.
func MapFans(fans []inventory.HardwareStatus, system string) ([]Family, int) {
	health := newFamily("hpe_fan_health",
		"HealthState of the fan as a DMTF code (5 is ok).", Gauge, "system", "fan")
	status := newFamily("hpe_fan_operational_status",
		"OperationalStatus of the fan as a DMTF code (2 is ok).", Gauge, "system", "fan")

	warnings := 0
	for _, f := range fans {
		if f.ID == "" {
			warnings++
			continue
		}
		warnings += sampleCode(health, f.Health, system, f.ID)
		warnings += sampleCode(status, f.Status, system, f.ID)
	}
	return compact([]*Family{health, status}), warnings
}

// MapDriveCages maps drive cage records.
func MapDriveCages(cages []inventory.HardwareStatus, system string) ([]Family, int) {
	health := newFamily("hpe_drive_cage_health",
		"HealthState of the drive cage as a DMTF code (5 is ok).", Gauge, "system", "cage")
	status := newFamily("hpe_drive_cage_operational_status",
		"OperationalStatus of the drive cage as a DMTF code (2 is ok).", Gauge, "system", "cage")

	warnings := 0
	for _, c := range cages {
		if c.ID == "" {
			warnings++
			continue
		}
		warnings += sampleCode(health, c.Health, system, c.ID)
		warnings += sampleCode(status, c.Status, system, c.ID)
	}
	return compact([]*Family{health, status}), warnings
}

// MapIDEDrives maps the nodes' internal boot drive records.
func MapIDEDrives(drives []inventory.HardwareStatus, system string) ([]Family, int) {
	health := newFamily("hpe_ide_drive_health",
		"HealthState of the node's internal drive as a DMTF code (5 is ok).", Gauge, "system", "drive")
	status := newFamily("hpe_ide_drive_operational_status",
		"OperationalStatus of the node's internal drive as a DMTF code (2 is ok).", Gauge, "system", "drive")

	warnings := 0
	for _, d := range drives {
		if d.ID == "" {
			warnings++
			continue
		}
		warnings += sampleCode(health, d.Health, system, d.ID)
		warnings += sampleCode(status, d.Status, system, d.ID)
	}
	return compact([]*Family{health, status}), warnings
}

// MapPhysicalMemory maps the nodes' DIMM records.
func MapPhysicalMemory(modules []inventory.HardwareStatus, system string) ([]Family, int) {
	health := newFamily("hpe_physical_memory_health",
		"HealthState of the DIMM as a DMTF code (5 is ok).", Gauge, "system", "memory")
	status := newFamily("hpe_physical_memory_operational_status",
		"OperationalStatus of the DIMM as a DMTF code (2 is ok).", Gauge, "system", "memory")

	warnings := 0
	for _, m := range modules {
		if m.ID == "" {
			warnings++
			continue
		}
		warnings += sampleCode(health, m.Health, system, m.ID)
		warnings += sampleCode(status, m.Status, system, m.ID)
	}
	return compact([]*Family{health, status}), warnings
}

// MapPCICards maps the nodes' PCI adapter records.
func MapPCICards(cards []inventory.HardwareStatus, system string) ([]Family, int) {
	health := newFamily("hpe_pci_card_health",
		"HealthState of the PCI adapter as a DMTF code (5 is ok).", Gauge, "system", "card")
	status := newFamily("hpe_pci_card_operational_status",
		"OperationalStatus of the PCI adapter as a DMTF code (2 is ok).", Gauge, "system", "card")

	warnings := 0
	for _, c := range cards {
		if c.ID == "" {
			warnings++
			continue
		}
		warnings += sampleCode(health, c.Health, system, c.ID)
		warnings += sampleCode(status, c.Status, system, c.ID)
	}
	return compact([]*Family{health, status}), warnings
}

// MapPowerSupplies maps power supply records for one source (cage or node).
func MapPowerSupplies(supplies []inventory.HardwareStatus, source, system string) ([]Family, int) {
	health := newFamily("hpe_power_supply_health",
		"HealthState of the power supply as a DMTF code (5 is ok).", Gauge, "system", "power_supply", "source")
	status := newFamily("hpe_power_supply_operational_status",
		"OperationalStatus of the power supply as a DMTF code (2 is ok).", Gauge, "system", "power_supply", "source")

	warnings := 0
	for _, s := range supplies {
		if s.ID == "" {
			warnings++
			continue
		}
		warnings += sampleCode(health, s.Health, system, s.ID, source)
		warnings += sampleCode(status, s.Status, system, s.ID, source)
	}
	return compact([]*Family{health, status}), warnings
}
