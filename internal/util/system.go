package util

import (
	"bufio"
	"os"
	"runtime"
	"strings"
)

// SystemInfo contains information about the host system.
type SystemInfo struct {
	Hostname string
	NumCPU   int
	OS       string
	Arch     string
}

// GetSystemInfo collects system information.
func GetSystemInfo() SystemInfo {
	hostname, _ := os.Hostname()
	return SystemInfo{
		Hostname: hostname,
		NumCPU:   runtime.NumCPU(),
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
	}
}

// PhysicalCores returns the number of physical CPU cores. Falls back to half the
// logical CPU count when the topology cannot be read.
func PhysicalCores() int {
	if runtime.GOOS == "linux" {
		if f, err := os.Open("/proc/cpuinfo"); err == nil {
			cores := countCores(bufio.NewScanner(f))
			_ = f.Close()
			if cores > 0 {
				return cores
			}
		}
	}
	return max(runtime.NumCPU()/2, 1)
}

// countCores counts distinct "physical id"/"core id" pairs in /proc/cpuinfo text.
func countCores(scanner *bufio.Scanner) int {
	seen := make(map[string]struct{})
	var pkg string
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "physical id":
			pkg = strings.TrimSpace(value)
		case "core id":
			seen[pkg+":"+strings.TrimSpace(value)] = struct{}{}
		}
	}
	return len(seen)
}

// SuggestedWorkers returns how many videos to analyse at once. Each ffmpeg
// decode is itself multi-threaded, so one worker per four physical cores.
func SuggestedWorkers() int {
	return max(PhysicalCores()/4, 1)
}
