package membuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUint(t *testing.T) {
	tests := []struct {
		text    string
		want    int
		wantErr error
	}{
		{"10", 10, nil},
		{"10\n", 10, nil},
		{"42 \t\r\n", 42, nil},
		{"0", 0, nil},
		{"007", 7, nil},
		{"", 0, ErrInvalidArgument},
		{"\n", 0, ErrInvalidArgument},
		{"abc", 0, ErrInvalidArgument},
		{"-1", 0, ErrInvalidArgument},
		{"+1", 1, nil},
		{"+5\n", 5, nil},
		{"+", 0, ErrInvalidArgument},
		{"++1", 0, ErrInvalidArgument},
		{"+-1", 0, ErrInvalidArgument},
		{" 1", 0, ErrInvalidArgument},
		{"0x10", 0, ErrInvalidArgument},
		{"1.5", 0, ErrInvalidArgument},
		{"12abc", 0, ErrInvalidArgument},
		{"99999999999999999999999", 0, ErrOutOfRange},
		{"18446744073709551615", 0, ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := parseUint("value", tt.text)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigPort_Size(t *testing.T) {
	p := newTestPool(t, WithInitialCount(2))
	cfg := p.ConfigPort()

	got, err := cfg.Size(1)
	require.NoError(t, err)
	assert.Equal(t, "256\n", got)

	_, err = cfg.Size(2)
	assert.ErrorIs(t, err, ErrNotAllocated)

	_, err = cfg.Size(4)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestConfigPort_SetSize(t *testing.T) {
	p := newTestPool(t, WithInitialCount(2))
	cfg := p.ConfigPort()

	require.NoError(t, cfg.SetSize(1, "10\n"))
	got, err := cfg.Size(1)
	require.NoError(t, err)
	assert.Equal(t, "10\n", got)

	assert.ErrorIs(t, cfg.SetSize(1, "0"), ErrOutOfRange)
	assert.ErrorIs(t, cfg.SetSize(1, "ten"), ErrInvalidArgument)
	assert.ErrorIs(t, cfg.SetSize(1, "99999999999999999999999"), ErrOutOfRange)
	assert.ErrorIs(t, cfg.SetSize(2, "10"), ErrNotAllocated)
	assert.ErrorIs(t, cfg.SetSize(-1, "10"), ErrOutOfRange)

	got, err = cfg.Size(1)
	require.NoError(t, err)
	assert.Equal(t, "10\n", got)

	require.NoError(t, cfg.SetSize(1, "+5\n"))
	got, err = cfg.Size(1)
	require.NoError(t, err)
	assert.Equal(t, "5\n", got)
}

func TestConfigPort_SetSizeOutOfMemory(t *testing.T) {
	p := newTestPool(t, WithMemoryLimit(300))
	cfg := p.ConfigPort()

	assert.ErrorIs(t, cfg.SetSize(0, "301"), ErrOutOfMemory)

	got, err := cfg.Size(0)
	require.NoError(t, err)
	assert.Equal(t, "256\n", got)
}

func TestConfigPort_Count(t *testing.T) {
	p := newTestPool(t)
	cfg := p.ConfigPort()

	assert.Equal(t, "1\n", cfg.Count())
	assert.Equal(t, "256\n", cfg.DefaultSize())

	require.NoError(t, cfg.SetCount("3\n"))
	assert.Equal(t, "3\n", cfg.Count())

	require.NoError(t, cfg.SetCount("0"))
	assert.Equal(t, "0\n", cfg.Count())

	err := cfg.SetCount("5")
	require.ErrorIs(t, err, ErrOutOfRange)
	var re *RangeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 4, re.Max)

	assert.ErrorIs(t, cfg.SetCount("-2"), ErrInvalidArgument)
	assert.ErrorIs(t, cfg.SetCount(""), ErrInvalidArgument)
	assert.Equal(t, "0\n", cfg.Count())
}

func TestConfigPort_SetCountPartial(t *testing.T) {
	p := newTestPool(t, WithDefaultSize(100), WithMemoryLimit(250))
	cfg := p.ConfigPort()

	err := cfg.SetCount("4")
	require.ErrorIs(t, err, ErrOutOfMemory)
	assert.Equal(t, "2\n", cfg.Count())
}
