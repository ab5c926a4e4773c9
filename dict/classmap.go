package dict

// pagedClassMap maps BMP code units to character class ids.
// It's a two-level page table:
//   - top[hi] = page index (1..numPages), or 0 meaning "page is uniform".
//   - uniform[hi] holds the class of every code unit in a uniform page.
//   - pages is a flat array of numPages*256 entries.
//
// Large script blocks (CJK ideographs, Hangul syllables) are uniform, so a
// typical table needs only a few dozen pages.
type pagedClassMap struct {
	top     [256]uint16 // page index (1-based); 0 means uniform
	uniform [256]byte
	pages   []byte // flat: numPages*256
}

// newPagedClassMap compacts a dense table of 0x10000 class bytes.
func newPagedClassMap(dense []byte) *pagedClassMap {
	assert(len(dense) == 0x10000, "class map must cover the BMP")
	m := &pagedClassMap{}
	for hi := 0; hi < 256; hi++ {
		page := dense[hi<<8 : (hi+1)<<8]
		m.uniform[hi] = page[0]
		for _, c := range page[1:] {
			if c != page[0] {
				m.pages = append(m.pages, page...)
				m.top[hi] = uint16(len(m.pages) >> 8)
				break
			}
		}
	}
	return m
}

// class returns the class id for a BMP code unit.
func (m *pagedClassMap) class(bmp uint16) byte {
	hi := bmp >> 8
	pi := m.top[hi]
	if pi == 0 {
		return m.uniform[hi]
	}
	base := int(pi-1) << 8 // *256
	return m.pages[base+int(bmp&0xFF)]
}

// numPages returns the number of allocated pages.
func (m *pagedClassMap) numPages() int { return len(m.pages) >> 8 }
