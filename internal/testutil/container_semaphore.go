// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"runtime"
	"strconv"
	"sync"
)

// ContainerSemaphore bounds how many container-backed tests run at once
// across the whole test binary. Send to acquire a slot, receive to release:
//
//	sem := testutil.ContainerSemaphore()
//	sem <- struct{}{}
//	defer func() { <-sem }()
//
// DEPFETCH_TEST_CONTAINER_PARALLEL sets the capacity; otherwise it is
// min(GOMAXPROCS, 2).
var ContainerSemaphore = sync.OnceValue(func() chan struct{} {
	return make(chan struct{}, containerSlots())
})

func containerSlots() int {
	n, err := strconv.Atoi(os.Getenv("DEPFETCH_TEST_CONTAINER_PARALLEL"))
	if err != nil || n < 1 {
		return min(runtime.GOMAXPROCS(0), 2)
	}
	return n
}
