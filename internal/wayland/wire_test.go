package wayland

import (
	"testing"

	"github.com/pkubaj/fastfetch/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoder_StringPadding(t *testing.T) {
	msg := newMessage(2, registryBind).u32(7).str("wl_output").u32(4).u32(3).bytes()

	// header + name + (len + "wl_output\0" padded to 12) + version + id
	require.Len(t, msg, 8+4+4+12+4+4)

	sender, opcode, size, err := parseHeader(msg)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), sender)
	assert.Equal(t, uint16(registryBind), opcode)
	assert.Equal(t, len(msg), size)

	d := &decoder{body: msg[headerSize:]}
	assert.Equal(t, uint32(7), d.u32())
	assert.Equal(t, "wl_output", d.str())
	assert.Equal(t, uint32(4), d.u32())
	assert.Equal(t, uint32(3), d.u32())
	assert.NoError(t, d.err)
}

func TestDecoder_Truncated(t *testing.T) {
	body := newMessage(1, 0).u32(32).bytes()[headerSize:]
	d := &decoder{body: body}

	assert.Empty(t, d.str())
	assert.ErrorIs(t, d.err, errShortMessage)
	assert.Zero(t, d.u32(), "decoder stays failed")
}

func TestParseHeader_InvalidSize(t *testing.T) {
	h := make([]byte, headerSize)
	order.PutUint32(h[4:], 4<<16)
	_, _, _, err := parseHeader(h)
	assert.Error(t, err)
}

func TestOutputInfo_Display(t *testing.T) {
	tests := []struct {
		name      string
		info      OutputInfo
		wantW     int
		wantH     int
		wantType  identity.DisplayType
		wantError bool
	}{
		{"Normal", OutputInfo{Width: 1920, Height: 1080, Scale: 1, Name: "HDMI-A-1"}, 1920, 1080, identity.DisplayTypeExternal, false},
		{"Rotated 270", OutputInfo{Width: 1920, Height: 1080, Transform: transform270, Name: "DP-1"}, 1080, 1920, identity.DisplayTypeExternal, false},
		{"Flipped 90", OutputInfo{Width: 1920, Height: 1080, Transform: transformFlipped90}, 1080, 1920, identity.DisplayTypeUnknown, false},
		{"Flipped 180 keeps size", OutputInfo{Width: 1920, Height: 1080, Transform: 6, Name: "eDP-1"}, 1920, 1080, identity.DisplayTypeBuiltin, false},
		{"No current mode", OutputInfo{Name: "eDP-1"}, 0, 0, identity.DisplayTypeBuiltin, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := tt.info.Display(false)
			if tt.wantError {
				assert.ErrorIs(t, err, identity.ErrIncompleteDisplay)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantW, d.Width)
			assert.Equal(t, tt.wantH, d.Height)
			assert.Equal(t, tt.wantType, d.Type)
		})
	}
}

func TestOutputInfo_DisplayName(t *testing.T) {
	assert.Equal(t, "Dell-U2412M", OutputInfo{Make: "Dell", Model: "U2412M"}.DisplayName())
	assert.Equal(t, "U2412M", OutputInfo{Make: "unknown", Model: "U2412M"}.DisplayName())
	assert.Equal(t, "Dell", OutputInfo{Make: "Dell", Model: "unknown"}.DisplayName())
	assert.Empty(t, OutputInfo{Make: "unknown", Model: "unknown"}.DisplayName())
}
