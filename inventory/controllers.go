package inventory

import (
	"context"
)

// ControllerClass is the TPD class modelling a controller node.
const ControllerClass = "TPD_NodeSystem"

var controllerProperties = []string{
	"ElementName",
	"HealthState",
	"OperationalStatus",
	"SystemLED",
}

// Controller is one controller node. LED is the node's service LED state.
type Controller struct {
	Name   string
	Health *uint16
	Status *uint16
	LED    *uint16
}

// Controllers enumerates all controller nodes.
func Controllers(ctx context.Context, q Querier) ([]Controller, error) {
	instances, err := enumerate(ctx, q, ControllerClass, controllerProperties)
	if err != nil {
		return nil, err
	}
	controllers := make([]Controller, 0, len(instances))
	for _, inst := range instances {
		controllers = append(controllers, Controller{
			Name:   str(inst, "ElementName"),
			Health: optUint16(inst, "HealthState"),
			Status: optStatus(inst, "OperationalStatus"),
			LED:    optUint16(inst, "SystemLED"),
		})
	}
	return controllers, nil
}
