package ecs

import "runtime"

// FaultPolicy decides what the scheduler does when a system fails.
type FaultPolicy string

const (
	// FaultPropagate aborts the frame and returns the error (default).
	FaultPropagate FaultPolicy = "propagate"
	// FaultSkip logs the error and continues with the next system.
	FaultSkip FaultPolicy = "skip"
)

// AllCores is the MaxDegreeOfParallelism value meaning "use every core".
const AllCores = -1

// Options configures the scheduler.
type Options struct {
	EnableParallelExecution bool
	ParallelEntityThreshold int // parallel only when the matched count exceeds this
	MaxDegreeOfParallelism  int // AllCores (-1) or a positive worker cap
	FaultPolicy             FaultPolicy
}

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{
		EnableParallelExecution: true,
		ParallelEntityThreshold: 256,
		MaxDegreeOfParallelism:  AllCores,
		FaultPolicy:             FaultPropagate,
	}
}

// Workers resolves MaxDegreeOfParallelism to a positive worker count.
func (o Options) Workers() int {
	if o.MaxDegreeOfParallelism <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return o.MaxDegreeOfParallelism
}
