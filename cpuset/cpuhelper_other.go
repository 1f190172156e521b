//go:build !linux

package cpuset

import "runtime"

// discoverOnline falls back to runtime.NumCPU on platforms without a
// /sys/devices/system/cpu/online-equivalent interface wired up, per
// spec.md §4.2 ("otherwise core_count falls back to a platform API").
func discoverOnline() (int, CPUSet) {
	n := runtime.NumCPU()
	var set CPUSet
	for id := 0; id < n; id++ {
		set.Set(id)
	}
	return n, set
}

// currentCore has no portable cross-platform equivalent to Linux's getcpu
// outside this build; every thread reports core 0, which is still correct
// for single-arena configurations and degrades gracefully (the façade's
// cross-core release fallback makes correctness independent of this
// value).
func currentCore() int { return 0 }

func pinToCore(int) bool { return false }
