package inventory

import (
	"context"
)

// Remaining enclosure and node hardware classes. These only carry health and
// status; they exist so a dying PSU or cage is visible before the nodes it
// serves. The classes disagree on which property identifies an instance, so
// each collector names its key property explicitly.
const (
	FanClass             = "TPD_Fan"
	CagePowerSupplyClass = "TPD_CagePowerSupply"
	NodePowerSupplyClass = "TPD_NodePowerSupply"
	DriveCageClass       = "TPD_DriveCage"
	IDEDriveClass        = "TPD_IDEDrive"
	PhysicalMemoryClass  = "TPD_PhysicalMemory"
	PCICardClass         = "TPD_PCICard"
)

// HardwareStatus is the common health/status record for enclosure and node
// hardware.
type HardwareStatus struct {
	ID     string
	Health *uint16
	Status *uint16
}

// Fans enumerates all fans.
func Fans(ctx context.Context, q Querier) ([]HardwareStatus, error) {
	return hardwareStatuses(ctx, q, FanClass, "DeviceID")
}

// PowerSupplies enumerates one of the power supply classes (cage or node).
func PowerSupplies(ctx context.Context, q Querier, class string) ([]HardwareStatus, error) {
	return hardwareStatuses(ctx, q, class, "DeviceID")
}

// DriveCages enumerates all drive cages.
func DriveCages(ctx context.Context, q Querier) ([]HardwareStatus, error) {
	return hardwareStatuses(ctx, q, DriveCageClass, "ElementName")
}

// IDEDrives enumerates the nodes' internal boot drives. These are keyed on
// Tag; their ElementName is not unique.
func IDEDrives(ctx context.Context, q Querier) ([]HardwareStatus, error) {
	return hardwareStatuses(ctx, q, IDEDriveClass, "Tag")
}

// PhysicalMemory enumerates the nodes' DIMMs, keyed on serial number.
func PhysicalMemory(ctx context.Context, q Querier) ([]HardwareStatus, error) {
	return hardwareStatuses(ctx, q, PhysicalMemoryClass, "SerialNumber")
}

// PCICards enumerates the nodes' PCI adapters, keyed on Tag.
func PCICards(ctx context.Context, q Querier) ([]HardwareStatus, error) {
	return hardwareStatuses(ctx, q, PCICardClass, "Tag")
}

func hardwareStatuses(ctx context.Context, q Querier, class, idProperty string) ([]HardwareStatus, error) {
	instances, err := enumerate(ctx, q, class, []string{
		idProperty,
		"HealthState",
		"OperationalStatus",
	})
	if err != nil {
		return nil, err
	}
	records := make([]HardwareStatus, 0, len(instances))
	for _, inst := range instances {
		records = append(records, HardwareStatus{
			ID:     str(inst, idProperty),
			Health: optUint16(inst, "HealthState"),
			Status: optStatus(inst, "OperationalStatus"),
		})
	}
	return records, nil
}
