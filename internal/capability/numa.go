// SPDX-License-Identifier: BSD-3-Clause

package capability

import (
	"os"
	"regexp"
)

var nodeDirPattern = regexp.MustCompile(`^node\d+$`)

// numaNodeCount returns the number of NUMA nodes reported by the kernel
// under /sys/devices/system/node, or 1 if that can't be read (e.g.
// non-Linux, containerized without sysfs, or a single-node machine where
// the directory is absent entirely). Always >= 1.
func numaNodeCount() int {
	entries, err := os.ReadDir("/sys/devices/system/node")
	if err != nil {
		return 1
	}
	count := 0
	for _, e := range entries {
		if e.IsDir() && nodeDirPattern.MatchString(e.Name()) {
			count++
		}
	}
	if count == 0 {
		return 1
	}
	return count
}
