//go:build darwin || freebsd

package sysmem

// MAP_STACK does not exist (freebsd) or is not a useful hint (darwin) on
// these platforms' Mmap; stack-hinted reservations fall back to a plain
// anonymous mapping.
const mapStackFlag = 0
