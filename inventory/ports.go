package inventory

import (
	"context"
)

// Port classes share a property set; one collector registration exists per
// class, distinguished by the protocol label on the resulting metrics.
const (
	FCPortClass       = "TPD_FCPort"
	EthernetPortClass = "TPD_EthernetPort"
	SASPortClass      = "TPD_SASPort"
)

var portProperties = []string{
	"ElementName",
	"Speed",
	"HealthState",
	"OperationalStatus",
	"OtherOperationalStatus",
}

// Port is one host/disk/replication port. SpeedBits is the negotiated link
// speed in bits per second; OtherStatus is the TPD vendor extension to
// OperationalStatus.
type Port struct {
	Name        string
	SpeedBits   *float64
	Health      *uint16
	Status      *uint16
	OtherStatus *uint16
}

// Ports enumerates one of the port classes.
func Ports(ctx context.Context, q Querier, class string) ([]Port, error) {
	instances, err := enumerate(ctx, q, class, portProperties)
	if err != nil {
		return nil, err
	}
	ports := make([]Port, 0, len(instances))
	for _, inst := range instances {
		ports = append(ports, Port{
			Name:        str(inst, "ElementName"),
			SpeedBits:   optFloat(inst, "Speed"),
			Health:      optUint16(inst, "HealthState"),
			Status:      optStatus(inst, "OperationalStatus"),
			OtherStatus: optUint16(inst, "OtherOperationalStatus"),
		})
	}
	return ports, nil
}
