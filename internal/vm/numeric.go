package vm

import "math"

// positiveInfinity and undefinedReal are the runtime sentinel values
// pushed by PSI and PSU respectively.
var (
	positiveInfinity = math.Inf(1)
	undefinedReal    = math.NaN()
)
