package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/storagetools/threepar_exporter/wbem"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeQuerier returns canned instances per class, and an error for classes
// in the errs map.
type fakeQuerier struct {
	instances map[string][]wbem.Instance
	errs      map[string]error

	// queried records the classes and property lists requested.
	queried map[string][]string
}

func (f *fakeQuerier) EnumerateInstances(ctx context.Context, className string, properties []string) ([]wbem.Instance, error) {
	if f.queried == nil {
		f.queried = map[string][]string{}
	}
	f.queried[className] = properties
	if err := f.errs[className]; err != nil {
		return nil, err
	}
	return f.instances[className], nil
}

func TestPools(t *testing.T) {
	q := &fakeQuerier{instances: map[string][]wbem.Instance{
		PoolClass: {
			wbem.MakeInstance(PoolClass, map[string]string{
				"ElementName":           "FC_r6",
				"TotalManagedSpace":     "21990232555520",
				"RemainingManagedSpace": "8796093022208",
				"HealthState":           "5",
			}, map[string][]string{
				"OperationalStatus": {"2"},
			}),
		},
	}}

	pools, err := Pools(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, pools, 1)

	p := pools[0]
	assert.Equal(t, "FC_r6", p.Name)
	require.NotNil(t, p.CapacityBytes)
	assert.Equal(t, 21990232555520.0, *p.CapacityBytes)
	require.NotNil(t, p.RemainingBytes)
	assert.Equal(t, 8796093022208.0, *p.RemainingBytes)
	require.NotNil(t, p.Health)
	assert.Equal(t, uint16(5), *p.Health)
	require.NotNil(t, p.Status)
	assert.Equal(t, uint16(2), *p.Status)

	assert.Equal(t, poolProperties, q.queried[PoolClass])
}

func TestPoolsZeroInstances(t *testing.T) {
	q := &fakeQuerier{}
	pools, err := Pools(context.Background(), q)
	require.NoError(t, err)
	assert.Empty(t, pools)
}

func TestPoolsQueryError(t *testing.T) {
	q := &fakeQuerier{errs: map[string]error{
		PoolClass: errors.New("CIM_ERR_ACCESS_DENIED"),
	}}
	_, err := Pools(context.Background(), q)
	require.Error(t, err)
	queryErr := &QueryError{}
	require.ErrorAs(t, err, &queryErr)
	assert.Equal(t, PoolClass, queryErr.Class)
}

func TestVolumesCapacityDerivation(t *testing.T) {
	q := &fakeQuerier{instances: map[string][]wbem.Instance{
		VolumeClass: {
			wbem.MakeInstance(VolumeClass, map[string]string{
				"ElementName":    "vv-home",
				"BlockSize":      "512",
				"NumberOfBlocks": "2097152",
				"SpaceConsumed":  "524288",
				"HealthState":    "5",
			}, map[string][]string{
				"OperationalStatus": {"2"},
			}),
			// BlockSize present but NumberOfBlocks missing: no capacity
			wbem.MakeInstance(VolumeClass, map[string]string{
				"ElementName": "vv-scratch",
				"BlockSize":   "512",
				"HealthState": "10",
			}, nil),
		},
	}}

	volumes, err := Volumes(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, volumes, 2)

	require.NotNil(t, volumes[0].CapacityBytes)
	assert.Equal(t, 512.0*2097152, *volumes[0].CapacityBytes)
	require.NotNil(t, volumes[0].ConsumedKiB)
	assert.Equal(t, 524288.0, *volumes[0].ConsumedKiB)

	assert.Nil(t, volumes[1].CapacityBytes)
	assert.Nil(t, volumes[1].ConsumedKiB)
	assert.Nil(t, volumes[1].Status)
	require.NotNil(t, volumes[1].Health)
	assert.Equal(t, uint16(10), *volumes[1].Health)
}

func TestVolumeStatisticsMissingOptional(t *testing.T) {
	q := &fakeQuerier{instances: map[string][]wbem.Instance{
		VolumeStatsClass: {
			wbem.MakeInstance(VolumeStatsClass, map[string]string{
				"ElementName": "vv-home",
				"ReadIOs":     "123456",
				"WriteIOs":    "654321",
				"KBytesRead":  "1024",
				// KBytesWritten and IOTimeCounter absent
			}, nil),
		},
	}}

	stats, err := VolumeStatistics(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, stats, 1)

	s := stats[0]
	assert.Equal(t, "vv-home", s.Volume)
	require.NotNil(t, s.ReadOps)
	assert.Equal(t, 123456.0, *s.ReadOps)
	require.NotNil(t, s.ReadKiB)
	assert.Equal(t, 1024.0, *s.ReadKiB)
	assert.Nil(t, s.WrittenKiB)
	assert.Nil(t, s.IOTimeMillis)
}

func TestPortsPerClass(t *testing.T) {
	q := &fakeQuerier{instances: map[string][]wbem.Instance{
		FCPortClass: {
			wbem.MakeInstance(FCPortClass, map[string]string{
				"ElementName":            "0:1:1",
				"Speed":                  "8000000000",
				"HealthState":            "5",
				"OtherOperationalStatus": "1",
			}, map[string][]string{
				"OperationalStatus": {"2", "17"},
			}),
		},
		SASPortClass: {},
	}}

	fc, err := Ports(context.Background(), q, FCPortClass)
	require.NoError(t, err)
	require.Len(t, fc, 1)
	assert.Equal(t, "0:1:1", fc[0].Name)
	require.NotNil(t, fc[0].SpeedBits)
	assert.Equal(t, 8e9, *fc[0].SpeedBits)
	require.NotNil(t, fc[0].Status)
	assert.Equal(t, uint16(2), *fc[0].Status) // first element of the array
	require.NotNil(t, fc[0].OtherStatus)
	assert.Equal(t, uint16(1), *fc[0].OtherStatus)

	// a licensed-but-unpopulated class is empty, not an error
	sas, err := Ports(context.Background(), q, SASPortClass)
	require.NoError(t, err)
	assert.Empty(t, sas)
}

func TestQueryErrorIsolation(t *testing.T) {
	// one failing class must not affect another in the same pass
	q := &fakeQuerier{
		instances: map[string][]wbem.Instance{
			FanClass: {
				wbem.MakeInstance(FanClass, map[string]string{
					"DeviceID":    "0-FAN0",
					"HealthState": "5",
				}, map[string][]string{"OperationalStatus": {"2"}}),
			},
		},
		errs: map[string]error{
			BatteryClass: errors.New("CIM_ERR_NOT_SUPPORTED"),
		},
	}

	_, err := Batteries(context.Background(), q)
	require.Error(t, err)

	fans, err := Fans(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, fans, 1)
	assert.Equal(t, "0-FAN0", fans[0].ID)
}

// TestHardwareIdentityProperties pins the property each hardware class is
// keyed on: cages report a usable ElementName, internal drives and PCI cards
// only a Tag, DIMMs only a SerialNumber.
func TestHardwareIdentityProperties(t *testing.T) {
	q := &fakeQuerier{instances: map[string][]wbem.Instance{
		DriveCageClass: {
			wbem.MakeInstance(DriveCageClass, map[string]string{
				"ElementName": "cage0",
				"HealthState": "5",
			}, map[string][]string{"OperationalStatus": {"2"}}),
		},
		IDEDriveClass: {
			wbem.MakeInstance(IDEDriveClass, map[string]string{
				"Tag":         "1.0.0",
				"HealthState": "5",
			}, map[string][]string{"OperationalStatus": {"2"}}),
		},
		PhysicalMemoryClass: {
			wbem.MakeInstance(PhysicalMemoryClass, map[string]string{
				"SerialNumber": "8D4F1C22",
				"HealthState":  "5",
			}, map[string][]string{"OperationalStatus": {"2"}}),
		},
		PCICardClass: {
			wbem.MakeInstance(PCICardClass, map[string]string{
				"Tag":         "0:2:1",
				"HealthState": "5",
			}, map[string][]string{"OperationalStatus": {"2"}}),
		},
	}}

	cages, err := DriveCages(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, cages, 1)
	assert.Equal(t, "cage0", cages[0].ID)
	assert.Contains(t, q.queried[DriveCageClass], "ElementName")

	drives, err := IDEDrives(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, drives, 1)
	assert.Equal(t, "1.0.0", drives[0].ID)
	assert.Contains(t, q.queried[IDEDriveClass], "Tag")

	modules, err := PhysicalMemory(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, modules, 1)
	assert.Equal(t, "8D4F1C22", modules[0].ID)
	assert.Contains(t, q.queried[PhysicalMemoryClass], "SerialNumber")

	cards, err := PCICards(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "0:2:1", cards[0].ID)
	assert.Contains(t, q.queried[PCICardClass], "Tag")
}

func TestControllersLED(t *testing.T) {
	q := &fakeQuerier{instances: map[string][]wbem.Instance{
		ControllerClass: {
			wbem.MakeInstance(ControllerClass, map[string]string{
				"ElementName": "1000000-0",
				"HealthState": "5",
				"SystemLED":   "0",
			}, map[string][]string{"OperationalStatus": {"2"}}),
		},
	}}

	controllers, err := Controllers(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, controllers, 1)
	require.NotNil(t, controllers[0].LED)
	assert.Equal(t, uint16(0), *controllers[0].LED)
}

func TestSystems(t *testing.T) {
	q := &fakeQuerier{instances: map[string][]wbem.Instance{
		SystemClass: {
			wbem.MakeInstance(SystemClass, map[string]string{
				"ElementName":  "3PAR-EDGE-01",
				"Model":        "HPE_3PAR 8200",
				"SerialNumber": "1612345",
				"HealthState":  "5",
			}, map[string][]string{"OperationalStatus": {"2"}}),
		},
	}}

	systems, err := Systems(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, systems, 1)
	assert.Equal(t, "HPE_3PAR 8200", systems[0].Model)
	assert.Equal(t, "1612345", systems[0].SerialNumber)
}

func TestBatteries(t *testing.T) {
	q := &fakeQuerier{instances: map[string][]wbem.Instance{
		BatteryClass: {
			wbem.MakeInstance(BatteryClass, map[string]string{
				"DeviceID":          "0-BAT0",
				"HealthState":       "5",
				"RemainingCapacity": "48000",
				"Voltage":           "12300",
			}, map[string][]string{"OperationalStatus": {"2"}}),
		},
	}}

	batteries, err := Batteries(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, batteries, 1)
	require.NotNil(t, batteries[0].RemainingCapacityMilliWattHours)
	assert.Equal(t, 48000.0, *batteries[0].RemainingCapacityMilliWattHours)
	require.NotNil(t, batteries[0].VoltageMillivolts)
	assert.Equal(t, 12300.0, *batteries[0].VoltageMillivolts)
}

func TestPowerSupplies(t *testing.T) {
	q := &fakeQuerier{instances: map[string][]wbem.Instance{
		CagePowerSupplyClass: {
			wbem.MakeInstance(CagePowerSupplyClass, map[string]string{
				"DeviceID":    "0-PS0",
				"HealthState": "20",
			}, map[string][]string{"OperationalStatus": {"6"}}),
		},
	}}

	supplies, err := PowerSupplies(context.Background(), q, CagePowerSupplyClass)
	require.NoError(t, err)
	require.Len(t, supplies, 1)
	require.NotNil(t, supplies[0].Health)
	assert.Equal(t, uint16(20), *supplies[0].Health)
}
