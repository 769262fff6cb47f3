package departureboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/pidboard/pkg/config"
)

type fakeSource struct {
	snapshot   *Snapshot
	success    bool
	refreshErr error
	refreshes  int
}

func (f *fakeSource) Snapshot() *Snapshot {
	return f.snapshot
}

func (f *fakeSource) Refresh(ctx context.Context) error {
	f.refreshes++
	return f.refreshErr
}

func (f *fakeSource) LastUpdateSuccess() bool {
	return f.success
}

func TestStopSensor(t *testing.T) {
	source := &fakeSource{
		snapshot: Reshape(decodeResponse(t, departureBoardJSON), []string{"U1Z1P", "U3Z1P"}),
		success:  true,
	}

	sensor := NewStopSensor(source, "U1Z1P")

	assert.Equal(t, "U1Z1P", sensor.StopID())
	assert.Equal(t, "Anděl Departures", sensor.Name())
	assert.Equal(t, "U1Z1P_departures", sensor.UniqueID())
	assert.Equal(t, DeviceClassTimestamp, sensor.DeviceClass())
	assert.Equal(t, DeviceInfo{
		Identifiers: []DeviceIdentifier{{Domain: config.Domain, ID: "U1Z1P"}},
		Name:        "Anděl Stop",
		EntryType:   EntryTypeService,
	}, sensor.DeviceInfo())
	assert.True(t, sensor.Available())

	value := sensor.NativeValue()
	require.NotNil(t, value)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), *value)

	attributes := sensor.ExtraStateAttributes()
	assert.Equal(t, "Anděl", attributes["stop_name"])
	assert.Len(t, attributes["departures"], 2)
	assert.Len(t, attributes["infotexts"], 1)
}

func TestStopSensorPlaceholder(t *testing.T) {
	source := &fakeSource{
		snapshot: Reshape(decodeResponse(t, departureBoardJSON), []string{"U1Z1P", "U3Z1P"}),
		success:  true,
	}

	sensor := NewStopSensor(source, "U3Z1P")

	assert.Equal(t, "U3Z1P Departures", sensor.Name())
	assert.Nil(t, sensor.NativeValue())
	assert.True(t, sensor.Available())
}

func TestStopSensorKeepsNameAcrossSnapshots(t *testing.T) {
	source := &fakeSource{
		snapshot: Reshape(decodeResponse(t, departureBoardJSON), []string{"U1Z1P"}),
		success:  true,
	}
	sensor := NewStopSensor(source, "U1Z1P")

	source.snapshot = Reshape(nil, []string{"U1Z1P"})

	assert.Equal(t, "Anděl Departures", sensor.Name())
	assert.Equal(t, "U1Z1P", sensor.ExtraStateAttributes()["stop_name"])
	assert.Nil(t, sensor.NativeValue())
}

func TestStopSensorAvailability(t *testing.T) {
	source := &fakeSource{
		snapshot: Reshape(nil, []string{"U1Z1P"}),
		success:  false,
	}

	sensor := NewStopSensor(source, "U1Z1P")
	assert.False(t, sensor.Available())

	source.success = true
	assert.True(t, sensor.Available())

	missing := NewStopSensor(source, "U9Z9P")
	assert.False(t, missing.Available())
	assert.Nil(t, missing.NativeValue())
	assert.Nil(t, missing.ExtraStateAttributes())
}

func TestStopSensorUpdate(t *testing.T) {
	source := &fakeSource{snapshot: Reshape(nil, []string{"U1Z1P"}), success: true}
	sensor := NewStopSensor(source, "U1Z1P")

	require.NoError(t, sensor.Update(context.Background()))
	assert.Equal(t, 1, source.refreshes)

	source.refreshErr = errors.New("refresh failed")
	assert.Error(t, sensor.Update(context.Background()))
	assert.Equal(t, 2, source.refreshes)
}

func TestStateOf(t *testing.T) {
	source := &fakeSource{
		snapshot: Reshape(decodeResponse(t, departureBoardJSON), []string{"U1Z1P"}),
		success:  true,
	}

	state := StateOf(NewStopSensor(source, "U1Z1P"))

	assert.Equal(t, "U1Z1P_departures", state.UniqueID)
	assert.Equal(t, "Anděl Departures", state.Name)
	assert.True(t, state.Available)
	require.NotNil(t, state.NativeValue)
	assert.Equal(t, "Anděl Stop", state.Device.Name)
	assert.Contains(t, state.ExtraStateAttributes, "departures")
}
