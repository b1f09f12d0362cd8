package processor

import (
	"log/slog"
	"os"

	"github.com/shirou/gopsutil/v4/process"
)

// memoryAdvisor compares process resident memory against the configured
// ceiling at chunk boundaries. It only ever warns; chunk size is the real
// memory bound and the advisory exists to surface a misconfigured one.
type memoryAdvisor struct {
	ceilingBytes uint64
	proc         *process.Process
	log          *slog.Logger
	warned       bool
}

func newMemoryAdvisor(ceilingGB float64, log *slog.Logger) *memoryAdvisor {
	a := &memoryAdvisor{
		ceilingBytes: uint64(ceilingGB * 1024 * 1024 * 1024),
		log:          log,
	}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		a.proc = p
	}
	return a
}

// check logs a single warning when RSS exceeds the ceiling. Failures to
// read memory info are ignored; the advisory must never affect processing.
func (a *memoryAdvisor) check() {
	if a == nil || a.proc == nil || a.ceilingBytes == 0 || a.warned {
		return
	}
	mem, err := a.proc.MemoryInfo()
	if err != nil {
		return
	}
	if mem.RSS > a.ceilingBytes {
		a.warned = true
		a.log.Warn("process memory above configured ceiling, consider a smaller chunk size",
			"rss_mb", mem.RSS/(1024*1024),
			"ceiling_mb", a.ceilingBytes/(1024*1024))
	}
}
