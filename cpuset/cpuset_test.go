package cpuset

import "testing"

func TestCPUSetSetClearTest(t *testing.T) {
	var s CPUSet
	if s.Test(5) {
		t.Fatal("expected 5 to be unset initially")
	}
	s.Set(5)
	if !s.Test(5) {
		t.Fatal("expected 5 to be set")
	}
	s.Clear(5)
	if s.Test(5) {
		t.Fatal("expected 5 to be cleared")
	}
}

func TestCPUSetCount(t *testing.T) {
	var s CPUSet
	for _, id := range []int{0, 1, 3, 63, 64, 128} {
		s.Set(id)
	}
	if got := s.Count(); got != 6 {
		t.Fatalf("expected count 6, got %d", got)
	}
}

func TestCPUSetOutOfRangeIgnored(t *testing.T) {
	var s CPUSet
	s.Set(-1)
	s.Set(MaxCPUs)
	if s.Count() != 0 {
		t.Fatalf("expected out-of-range ids to be ignored, got count %d", s.Count())
	}
}

func TestParseRange(t *testing.T) {
	var online CPUSet
	for id := 0; id <= 64; id++ {
		online.Set(id)
	}

	set, err := ParseRange("1,3-5,64", &online)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, id := range []int{1, 3, 4, 5, 64} {
		if !set.Test(id) {
			t.Errorf("expected %d to be set", id)
		}
	}
	if got := set.Count(); got != 5 {
		t.Fatalf("expected count 5, got %d", got)
	}
}

func TestParseRangeMalformed(t *testing.T) {
	specs := []string{"", "a", "1-", "-1", "5-2", ","}
	for _, s := range specs {
		if _, err := ParseRange(s, nil); err == nil {
			t.Errorf("ParseRange(%q): expected error, got nil", s)
		}
	}
}

func TestParseRangeUnknownCPU(t *testing.T) {
	var online CPUSet
	online.Set(0)

	if _, err := ParseRange("0,1", &online); err == nil {
		t.Fatal("expected error for id not in online set")
	}
}

func TestCPUHelperCoreCount(t *testing.T) {
	var h CPUHelper
	if h.CoreCount() <= 0 {
		t.Fatal("expected positive core count")
	}
	// Second call should be stable (cached).
	if h.CoreCount() != h.CoreCount() {
		t.Fatal("core count changed between calls")
	}
}

func TestCPUHelperCurrentCoreInRange(t *testing.T) {
	var h CPUHelper
	core := h.CurrentCore()
	if core < 0 || core >= h.CoreCount() {
		t.Fatalf("current core %d out of range [0, %d)", core, h.CoreCount())
	}
}
