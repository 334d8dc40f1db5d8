package threads

import (
	"os"
	"runtime"
	"strconv"
)

// processingThreadsEnvVar overrides the computed processing thread count.
const processingThreadsEnvVar = "MERAKD_PROCESSING_THREADS"

// ProcessingThreadCount returns the number of threads that CPU-bound
// processing stages should use: half the logical CPUs, never less than one.
// The MERAKD_PROCESSING_THREADS environment variable overrides it.
func ProcessingThreadCount() int {
	if value := os.Getenv(processingThreadsEnvVar); value != "" {
		if count, err := strconv.Atoi(value); err == nil && count > 0 {
			return count
		}
	}

	count := runtime.NumCPU() / 2
	if count < 1 {
		count = 1
	}
	return count
}
