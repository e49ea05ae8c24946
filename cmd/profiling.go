package cmd

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"

	"github.com/spiffcs/checkin/internal/log"
)

// profiles holds the output paths of the optional runtime profiles.
// An empty path disables that profile.
type profiles struct {
	cpu, mem, trace string
}

// start begins the CPU profile and execution trace. The returned stop
// function finishes them and writes the heap profile; it is never nil.
func (p profiles) start() (stop func(), err error) {
	var stops []func()
	stopAll := func() {
		for i := len(stops) - 1; i >= 0; i-- {
			stops[i]()
		}
		if p.mem != "" {
			writeHeapProfile(p.mem)
		}
	}

	if p.cpu != "" {
		f, err := os.Create(p.cpu)
		if err != nil {
			return func() {}, fmt.Errorf("create cpu profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return func() {}, fmt.Errorf("start cpu profile: %w", err)
		}
		stops = append(stops, func() {
			pprof.StopCPUProfile()
			closeProfile(f)
		})
	}

	if p.trace != "" {
		f, err := os.Create(p.trace)
		if err == nil {
			if err = trace.Start(f); err != nil {
				_ = f.Close()
			}
		}
		if err != nil {
			for i := len(stops) - 1; i >= 0; i-- {
				stops[i]()
			}
			return func() {}, fmt.Errorf("start trace: %w", err)
		}
		stops = append(stops, func() {
			trace.Stop()
			closeProfile(f)
		})
	}

	return stopAll, nil
}

func writeHeapProfile(path string) {
	f, err := os.Create(path)
	if err != nil {
		log.Warn("could not create memory profile", "path", path, "error", err)
		return
	}
	defer closeProfile(f)

	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		log.Warn("could not write memory profile", "path", path, "error", err)
	}
}

func closeProfile(f *os.File) {
	if err := f.Close(); err != nil {
		log.Warn("could not close profile", "path", f.Name(), "error", err)
	}
}
