package identity

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDisplayInfo(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		scale         int
		wantErr       bool
		scaledW       int
	}{
		{name: "Regular output", width: 1920, height: 1080, scale: 1, scaledW: 1920},
		{name: "HiDPI output", width: 2880, height: 1800, scale: 2, scaledW: 1440},
		{name: "Scale zero treated as one", width: 1280, height: 1024, scale: 0, scaledW: 1280},
		{name: "Zero width rejected", width: 0, height: 1080, wantErr: true},
		{name: "Negative height rejected", width: 1920, height: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDisplayInfo(tt.width, tt.height, 60, tt.scale, "", DisplayTypeUnknown)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrIncompleteDisplay)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.scaledW, d.ScaledWidth)
			assert.GreaterOrEqual(t, d.Scale, 1)
		})
	}
}

func TestDisplayType_JSON(t *testing.T) {
	d, err := NewDisplayInfo(1920, 1080, 60, 1, "Dell U2412M", DisplayTypeExternal)
	require.NoError(t, err)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"external"`)

	var back DisplayInfo
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, d, back)

	var bad DisplayType
	assert.Error(t, bad.UnmarshalText([]byte("projector")))
}

func TestAggregator_ConcurrentAppend(t *testing.T) {
	agg := NewAggregator()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d, _ := NewDisplayInfo(1000+i, 800, 60, 1, "", DisplayTypeUnknown)
			agg.AppendDisplay(d)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 16, agg.DisplayCount())
	assert.Len(t, agg.Snapshot().Displays, 16)
}

func TestAggregator_Protocol(t *testing.T) {
	agg := NewAggregator()
	agg.GuessProtocol(ProtocolWayland)
	agg.ConfirmProtocol(ProtocolX11)

	assert.Equal(t, ProtocolWayland, agg.Snapshot().WM.ProtocolName)
	assert.False(t, agg.ProtocolConfirmed())

	agg = NewAggregator()
	agg.ConfirmProtocol(ProtocolWayland)
	agg.GuessProtocol(ProtocolX11)
	assert.Equal(t, ProtocolWayland, agg.Snapshot().WM.ProtocolName)
	assert.True(t, agg.ProtocolConfirmed())
}

func TestAggregator_SnapshotIsCopy(t *testing.T) {
	agg := NewAggregator()
	d, _ := NewDisplayInfo(1920, 1080, 60, 1, "", DisplayTypeUnknown)
	agg.AppendDisplay(d)

	snap := agg.Snapshot()
	snap.Displays[0].Width = 1

	assert.Equal(t, 1920, agg.Snapshot().Displays[0].Width)
}

func TestAggregator_SetWMProcessName(t *testing.T) {
	agg := NewAggregator()
	agg.SetWMProcessName("")
	agg.SetWMProcessName("kwin_wayland")
	agg.SetWMProcessName("sway")

	assert.Equal(t, "kwin_wayland", agg.Snapshot().WM.ProcessName)
}
