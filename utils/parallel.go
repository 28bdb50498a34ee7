package utils

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ParallelFactor controls the max level of parallelization. This might be useful to set in tests where too much
// parallelism actually slows tests down in aggregate.
var ParallelFactor = runtime.GOMAXPROCS(0)

// MinParallelWork is the smallest amount of work GroupWorkParallel splits across goroutines. Smaller workloads
// run on the calling goroutine.
var MinParallelWork = 64

func init() {
	if ParallelFactor <= 0 {
		ParallelFactor = 1
	}
}

// GroupWorkFunc handles the half open range of work items [from, to).
type GroupWorkFunc func(from, to int) error

// GroupWorkParallel splits totalSize work items into at most ParallelFactor contiguous groups and runs each group
// on its own goroutine. The first error returned by any group is returned once every group has finished.
func GroupWorkParallel(totalSize int, groupWork GroupWorkFunc) error {
	if totalSize <= 0 {
		return nil
	}
	numGroups := ParallelFactor
	if totalSize < MinParallelWork || numGroups <= 1 {
		return groupWork(0, totalSize)
	}
	if numGroups > totalSize {
		numGroups = totalSize
	}
	groupSize := totalSize / numGroups
	extra := totalSize % numGroups

	var group errgroup.Group
	from := 0
	for groupNum := 0; groupNum < numGroups; groupNum++ {
		to := from + groupSize
		if groupNum < extra {
			to++
		}
		groupFrom, groupTo := from, to
		group.Go(func() error {
			return groupWork(groupFrom, groupTo)
		})
		from = to
	}
	return group.Wait()
}
