package platform

import (
	"sort"

	"github.com/pkg/errors"
)

// Memory hands out writable views of physical memory.
type Memory interface {
	// Region returns size bytes starting at physical address addr.
	Region(addr, size uint64) ([]byte, error)
}

// RAM is a Memory backed by Go allocations, one per region start address.
// Regions are created on first use and grown on demand; it stands in for
// physical memory when images are staged for kexec or in tests.
type RAM struct {
	// Limit caps the size of a single region. Zero means no cap.
	Limit   uint64
	regions map[uint64][]byte
}

// NewRAM returns an empty RAM.
func NewRAM() *RAM {
	return &RAM{regions: map[uint64][]byte{}}
}

// Region implements Memory.
func (r *RAM) Region(addr, size uint64) ([]byte, error) {
	if r.Limit != 0 && size > r.Limit {
		return nil, errors.Errorf("region 0x%x+0x%x exceeds the 0x%x byte limit", addr, size, r.Limit)
	}
	if r.regions == nil {
		r.regions = map[uint64][]byte{}
	}
	region := r.regions[addr]
	if uint64(len(region)) < size {
		grown := make([]byte, size)
		copy(grown, region)
		r.regions[addr] = grown
		region = grown
	}
	return region[:size], nil
}

// Addresses returns the start addresses of all regions handed out so far.
func (r *RAM) Addresses() []uint64 {
	addrs := make([]uint64, 0, len(r.regions))
	for addr := range r.regions {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}
