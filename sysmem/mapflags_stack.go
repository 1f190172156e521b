//go:build linux || openbsd || netbsd

package sysmem

import "golang.org/x/sys/unix"

const mapStackFlag = unix.MAP_STACK
