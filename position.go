package morph

// position holds all lattice nodes ending at one character offset: for every
// path reaching this offset its cost, the right context id of its last word
// and the back pointers needed to recover the path.
//
// The forward columns are filled only while re-scoring a decompounded
// section, see pruneAndRescore.
type position struct {
	pos int

	count       int
	costs       column[int]
	lastRightID column[int]
	backPos     column[int] // end position of the predecessor
	backWordPos column[int] // start of the word; differs from backPos by skipped whitespace
	backIndex   column[int] // node index within the predecessor's position
	backID      column[int] // word id
	backType    column[TokenType]

	forwardCount int
	forwardPos   column[int]
	forwardIndex column[int]
	forwardID    column[int]
	forwardType  column[TokenType]
}

func (p *position) grow() {
	p.costs.ensure(p.count)
	p.lastRightID.ensure(p.count)
	p.backPos.ensure(p.count)
	p.backWordPos.ensure(p.count)
	p.backIndex.ensure(p.count)
	p.backID.ensure(p.count)
	p.backType.ensure(p.count)
}

func (p *position) add(cost, lastRightID, backPos, backWordPos, backIndex, backID int, backType TokenType) {
	p.grow()
	i := p.count
	p.costs[i] = cost
	p.lastRightID[i] = lastRightID
	p.backPos[i] = backPos
	p.backWordPos[i] = backWordPos
	p.backIndex[i] = backIndex
	p.backID[i] = backID
	p.backType[i] = backType
	p.count++
}

func (p *position) addForward(forwardPos, forwardIndex, forwardID int, forwardType TokenType) {
	i := p.forwardCount
	p.forwardPos.ensure(i)
	p.forwardIndex.ensure(i)
	p.forwardID.ensure(i)
	p.forwardType.ensure(i)
	p.forwardPos[i] = forwardPos
	p.forwardIndex[i] = forwardIndex
	p.forwardID[i] = forwardID
	p.forwardType[i] = forwardType
	p.forwardCount++
}

func (p *position) reset() {
	p.count = 0
	p.forwardCount = 0
}

// positionArray is a window of positions over the absolute offsets
// [nextPos-count, nextPos). Positions are recycled in a ring of slots; the
// ring grows when the window outgrows it.
type positionArray struct {
	slots   []*position
	head    int // slot of the oldest live position
	count   int
	nextPos int // first offset not yet in the window
}

// get returns the position for absolute offset pos, extending the window as
// needed. pos must not have been freed.
func (pa *positionArray) get(pos int) *position {
	for pos >= pa.nextPos {
		if pa.count == len(pa.slots) {
			pa.grow()
		}
		p := pa.slots[(pa.head+pa.count)%len(pa.slots)]
		assert(p.count == 0 && p.forwardCount == 0, "recycled position must be empty")
		p.pos = pa.nextPos
		pa.nextPos++
		pa.count++
	}
	assert(pos >= pa.nextPos-pa.count, "position has already been freed")
	p := pa.slots[(pa.head+pos-(pa.nextPos-pa.count))%len(pa.slots)]
	assert(p.pos == pos, "position ring out of sync")
	return p
}

func (pa *positionArray) grow() {
	n := oversize(len(pa.slots) + 1)
	slots := make([]*position, n)
	k := copy(slots, pa.slots[pa.head:])
	copy(slots[k:], pa.slots[:pa.head])
	for i := len(pa.slots); i < n; i++ {
		slots[i] = &position{}
	}
	pa.slots = slots
	pa.head = 0
}

// freeBefore recycles all positions before pos.
func (pa *positionArray) freeBefore(pos int) {
	toFree := pa.count - (pa.nextPos - pos)
	assert(toFree >= 0 && toFree <= pa.count, "cannot free positions outside of the window")
	for i := 0; i < toFree; i++ {
		pa.slots[(pa.head+i)%len(pa.slots)].reset()
	}
	if toFree > 0 {
		pa.head = (pa.head + toFree) % len(pa.slots)
		pa.count -= toFree
	}
}

func (pa *positionArray) reset() {
	for i := 0; i < pa.count; i++ {
		pa.slots[(pa.head+i)%len(pa.slots)].reset()
	}
	pa.head, pa.count, pa.nextPos = 0, 0, 0
}
