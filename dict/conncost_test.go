package dict

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConnectionCostsRoundTrip(t *testing.T) {
	w := NewConnectionCostsWriter(3, 2)
	w.Add(0, 0, 5)
	w.Add(2, 0, -7)
	w.Add(1, 1, 32767)
	w.Add(2, 1, -32768)
	var buf bytes.Buffer
	_, err := w.WriteTo(&buf)
	require.NoError(t, err)

	cc, err := NewConnectionCosts(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, 3, cc.ForwardSize())
	require.Equal(t, 2, cc.BackwardSize())
	tests := []struct {
		forward, backward, cost int
	}{
		{0, 0, 5}, {1, 0, 0}, {2, 0, -7},
		{0, 1, 0}, {1, 1, 32767}, {2, 1, -32768},
	}
	for _, tt := range tests {
		if c := cc.Get(tt.forward, tt.backward); c != tt.cost {
			t.Errorf("cost(%d,%d) should be %d, is %d", tt.forward, tt.backward, tt.cost, c)
		}
	}
}

func TestConnectionCostsTruncateRunningSum(t *testing.T) {
	var o dataOutput
	o.writeHeader(connCostsCodec, formatVersion)
	o.writeVInt(2)
	o.writeVInt(1)
	o.writeZInt(30000)
	o.writeZInt(30000)
	cc, err := NewConnectionCosts(o.Bytes())
	require.NoError(t, err)
	require.Equal(t, 30000, cc.Get(0, 0))
	require.Equal(t, int(int16(-5536)), cc.Get(1, 0))
}

func TestConnectionCostsCorrupt(t *testing.T) {
	var o dataOutput
	o.writeHeader(connCostsCodec, formatVersion)
	o.writeVInt(1000)
	o.writeVInt(1000)
	_, err := NewConnectionCosts(o.Bytes())
	require.ErrorIs(t, err, ErrCorruptData)

	var short dataOutput
	short.writeHeader(connCostsCodec, formatVersion)
	short.writeVInt(2)
	short.writeVInt(2)
	short.writeZInt(1)
	_, err = NewConnectionCosts(short.Bytes())
	require.ErrorIs(t, err, ErrCorruptData)

	_, err = NewConnectionCosts([]byte("not a cost matrix"))
	require.ErrorIs(t, err, ErrFormat)
}
