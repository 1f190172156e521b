package cpuset

import "sync"

// CPUHelper exposes the CPU-topology operations described in spec.md
// §4.2. A zero-value CPUHelper is ready to use; core-count and
// online-set discovery happen once, lazily, on first use.
type CPUHelper struct {
	once    sync.Once
	count   int
	online  CPUSet
}

// DefaultHelper is the package-wide CPUHelper instance used by the
// reserver façade to size and index its per-core pools.
var DefaultHelper CPUHelper

func (h *CPUHelper) init() {
	h.once.Do(func() {
		h.count, h.online = discoverOnline()
	})
}

// CoreCount returns the number of logical CPUs online, discovered once.
func (h *CPUHelper) CoreCount() int {
	h.init()
	return h.count
}

// OnlineSet returns the CPUSet of ids that were online at discovery time.
func (h *CPUHelper) OnlineSet() CPUSet {
	h.init()
	return h.online
}

// CurrentCore returns the id of the CPU currently executing the calling
// goroutine's underlying OS thread. The result may change over time if
// the thread is not pinned (PinToCore).
func (h *CPUHelper) CurrentCore() int {
	h.init()
	c := currentCore()
	if c < 0 || c >= h.count {
		// getcpu can race with CPU hot-unplug/migration between the
		// syscall and this check; clamp rather than hand back a
		// bogus index that would be used to select a ReserverCore.
		return 0
	}
	return c
}

// PinToCore makes a best-effort attempt to confine the calling thread to
// logical CPU id. It returns false if the platform does not support
// affinity pinning or the call failed.
func (h *CPUHelper) PinToCore(id int) bool {
	h.init()
	if id < 0 || id >= h.count {
		return false
	}
	return pinToCore(id)
}

// RangeToBitmap parses text against the helper's online set. See
// ParseRange.
func (h *CPUHelper) RangeToBitmap(text string) (CPUSet, error) {
	h.init()
	return ParseRange(text, &h.online)
}
