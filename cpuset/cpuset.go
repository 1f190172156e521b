// Package cpuset implements CPUSet and CPUHelper (spec.md §4.2): a
// fixed-capacity bitmap of logical-CPU ids plus core-count discovery,
// current-core lookup, best-effort pinning and range-list parsing.
//
// Grounded on the teacher's kernel/cpu package, which exposes CPU-level
// primitives (EnableInterrupts, Halt, SwitchPDT, ...) as extern asm stubs
// appropriate for a freestanding kernel. qentengo runs hosted, so the
// equivalent "current CPU" and "pin this thread" operations are expressed
// through golang.org/x/sys/unix (sched_getaffinity/sched_setaffinity,
// getcpu) in cpuhelper_linux.go, following the same golang.org/x/sys
// dependency named in GoogleCloudPlatform-gcsfuse/go.mod.
package cpuset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/qentengo/qentengo/bitscan"
	"github.com/qentengo/qentengo/qerr"
)

// MaxCPUs bounds the number of logical CPUs CPUSet can represent.
const MaxCPUs = 1024

const wordBits = 64
const words = MaxCPUs / wordBits

// CPUSet is a fixed-capacity bitmap of logical-CPU ids.
type CPUSet struct {
	bits [words]uint64
}

// Set marks id as a member of the set. Out-of-range ids are ignored.
func (s *CPUSet) Set(id int) {
	if id < 0 || id >= MaxCPUs {
		return
	}
	s.bits[id/wordBits] |= 1 << uint(id%wordBits)
}

// Clear removes id from the set.
func (s *CPUSet) Clear(id int) {
	if id < 0 || id >= MaxCPUs {
		return
	}
	s.bits[id/wordBits] &^= 1 << uint(id%wordBits)
}

// Test reports whether id is a member of the set.
func (s *CPUSet) Test(id int) bool {
	if id < 0 || id >= MaxCPUs {
		return false
	}
	return s.bits[id/wordBits]&(1<<uint(id%wordBits)) != 0
}

// Count returns the number of ids currently set.
func (s *CPUSet) Count() int {
	n := 0
	for _, w := range s.bits {
		n += bitscan.OnesCount(w)
	}
	return n
}

// Ids returns the sorted list of member ids.
func (s *CPUSet) Ids() []int {
	out := make([]int, 0, s.Count())
	for w, word := range s.bits {
		for word != 0 {
			bit := bitscan.FirstSetBit(word)
			out = append(out, w*wordBits+bit)
			word &^= 1 << uint(bit)
		}
	}
	return out
}

// ParseRange parses a comma-separated list of ids and ranges
// ("1,3-5,64") into a CPUSet, failing on malformed syntax or ids that are
// not present in online (the system's currently-online CPU set), per
// spec.md §4.2.
func ParseRange(text string, online *CPUSet) (CPUSet, error) {
	var out CPUSet

	text = strings.TrimSpace(text)
	if text == "" {
		return out, qerr.Wrap("cpuset.ParseRange", qerr.ErrMalformedRange)
	}

	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return CPUSet{}, qerr.Wrap("cpuset.ParseRange", qerr.ErrMalformedRange)
		}

		lo, hi, err := parseRangePart(part)
		if err != nil {
			return CPUSet{}, err
		}

		for id := lo; id <= hi; id++ {
			if online != nil && !online.Test(id) {
				return CPUSet{}, qerr.Wrap("cpuset.ParseRange", fmt.Errorf("%w: %d", qerr.ErrUnknownCPU, id))
			}
			out.Set(id)
		}
	}

	return out, nil
}

func parseRangePart(part string) (lo, hi int, err error) {
	if dash := strings.IndexByte(part, '-'); dash >= 0 {
		loStr, hiStr := part[:dash], part[dash+1:]
		lo, err = strconv.Atoi(loStr)
		if err != nil {
			return 0, 0, qerr.Wrap("cpuset.ParseRange", qerr.ErrMalformedRange)
		}
		hi, err = strconv.Atoi(hiStr)
		if err != nil {
			return 0, 0, qerr.Wrap("cpuset.ParseRange", qerr.ErrMalformedRange)
		}
		if hi < lo || lo < 0 || hi >= MaxCPUs {
			return 0, 0, qerr.Wrap("cpuset.ParseRange", qerr.ErrMalformedRange)
		}
		return lo, hi, nil
	}

	id, err := strconv.Atoi(part)
	if err != nil || id < 0 || id >= MaxCPUs {
		return 0, 0, qerr.Wrap("cpuset.ParseRange", qerr.ErrMalformedRange)
	}
	return id, id, nil
}
