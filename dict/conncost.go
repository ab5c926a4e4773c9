package dict

import (
	"io"

	"github.com/pkg/errors"
)

// ConnectionCosts is the bigram cost matrix between the right context id of
// a word and the left context id of its successor. Context id 0 stands for
// the beginning and end of the input.
type ConnectionCosts struct {
	forwardSize  int
	backwardSize int
	costs        []int16 // backwardID*forwardSize + forwardID
}

// NewConnectionCosts decodes a connection-cost resource.
//
// The matrix is stored backward-major as zig-zag encoded deltas. Deltas are
// accumulated in 32 bit and every running sum is truncated to 16 bit.
func NewConnectionCosts(data []byte) (*ConnectionCosts, error) {
	in := newDataInput(data)
	if _, err := in.checkHeader(connCostsCodec, formatVersion, formatVersion); err != nil {
		return nil, err
	}
	forwardSize := int(in.readVInt())
	backwardSize := int(in.readVInt())
	if in.err != nil {
		return nil, in.err
	}
	if forwardSize < 0 || backwardSize < 0 || forwardSize*backwardSize > len(data) {
		// every cell needs at least one byte
		return nil, errors.Wrapf(ErrCorruptData, "connection costs: implausible size %dx%d", forwardSize, backwardSize)
	}
	cc := &ConnectionCosts{
		forwardSize:  forwardSize,
		backwardSize: backwardSize,
		costs:        make([]int16, forwardSize*backwardSize),
	}
	var accum int32
	for i := range cc.costs {
		accum += in.readZInt()
		cc.costs[i] = int16(accum)
	}
	if in.err != nil {
		return nil, in.err
	}
	tracer().Debugf("connection costs %dx%d", forwardSize, backwardSize)
	return cc, nil
}

// Get returns the cost of connecting a word with right context forwardID to
// a following word with left context backwardID.
func (cc *ConnectionCosts) Get(forwardID, backwardID int) int {
	return int(cc.costs[backwardID*cc.forwardSize+forwardID])
}

// ForwardSize is the number of right context ids.
func (cc *ConnectionCosts) ForwardSize() int { return cc.forwardSize }

// BackwardSize is the number of left context ids.
func (cc *ConnectionCosts) BackwardSize() int { return cc.backwardSize }

// ConnectionCostsWriter assembles a connection-cost matrix.
type ConnectionCostsWriter struct {
	forwardSize  int
	backwardSize int
	costs        []int16
}

// NewConnectionCostsWriter creates a zero-cost matrix of the given size.
func NewConnectionCostsWriter(forwardSize, backwardSize int) *ConnectionCostsWriter {
	return &ConnectionCostsWriter{
		forwardSize:  forwardSize,
		backwardSize: backwardSize,
		costs:        make([]int16, forwardSize*backwardSize),
	}
}

// Add sets the cost between right context forwardID and left context
// backwardID.
func (w *ConnectionCostsWriter) Add(forwardID, backwardID int, cost int16) {
	w.costs[backwardID*w.forwardSize+forwardID] = cost
}

// WriteTo serializes the matrix.
func (w *ConnectionCostsWriter) WriteTo(out io.Writer) (int64, error) {
	var o dataOutput
	o.writeHeader(connCostsCodec, formatVersion)
	o.writeVInt(int32(w.forwardSize))
	o.writeVInt(int32(w.backwardSize))
	var last int32
	for _, c := range w.costs {
		o.writeZInt(int32(c) - last)
		last = int32(c)
	}
	return o.WriteTo(out)
}
