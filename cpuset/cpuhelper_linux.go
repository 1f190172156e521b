//go:build linux

package cpuset

import (
	"os"
	"runtime"
	"strings"

	"golang.org/x/sys/unix"
)

// discoverOnline parses /sys/devices/system/cpu/online (spec.md §4.2: "On
// systems that expose /sys/devices/system/cpu/online or equivalent, that
// list is parsed at startup to populate the online set") and falls back to
// sched_getaffinity, then runtime.NumCPU, if the file is unreadable.
func discoverOnline() (int, CPUSet) {
	if data, err := os.ReadFile("/sys/devices/system/cpu/online"); err == nil {
		if set, err := ParseRange(strings.TrimSpace(string(data)), nil); err == nil && set.Count() > 0 {
			return set.Count(), set
		}
	}

	var affin unix.CPUSet
	if err := unix.SchedGetaffinity(0, &affin); err == nil {
		var set CPUSet
		n := 0
		for id := 0; id < affin.Count() && id < MaxCPUs; id++ {
			if affin.IsSet(id) {
				set.Set(id)
				n++
			}
		}
		if n > 0 {
			return n, set
		}
	}

	n := runtime.NumCPU()
	var set CPUSet
	for id := 0; id < n; id++ {
		set.Set(id)
	}
	return n, set
}

func currentCore() int {
	cpu, err := unix.SchedGetcpu()
	if err != nil {
		return -1
	}
	return cpu
}

func pinToCore(id int) bool {
	var set unix.CPUSet
	set.Zero()
	set.Set(id)

	// Affinity is a thread-level property; lock the calling goroutine to
	// its current OS thread first so the affinity change sticks.
	runtime.LockOSThread()
	return unix.SchedSetaffinity(0, &set) == nil
}
