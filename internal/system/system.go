package system

import (
	"fmt"
	"log"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// InitResourceLimits raises the open-file limit; an export run opens one
// file per frame.
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Printf("[!] Failed to read file limit: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Printf("[!] Failed to raise file limit: %v", err)
	} else {
		fmt.Printf("[*] Open file limit raised to %d\n", rLimit.Cur)
	}
}

// HostStats is a snapshot of the machine an export ran on, included in the
// performance report.
type HostStats struct {
	LogicalCPUs int
	LoadAvg1    float64
	MemTotalMB  uint64
	MemUsedPct  float64
}

// Snapshot collects host stats; fields that cannot be read stay zero rather
// than failing the run.
func Snapshot() HostStats {
	var st HostStats

	if n, err := cpu.Counts(true); err == nil {
		st.LogicalCPUs = n
	}
	if avg, err := load.Avg(); err == nil {
		st.LoadAvg1 = avg.Load1
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		st.MemTotalMB = vm.Total / (1024 * 1024)
		st.MemUsedPct = vm.UsedPercent
	}

	return st
}

// Report is the performance summary printed after an export run when stats
// are enabled.
type Report struct {
	Frames   int
	Simulate time.Duration
	Render   time.Duration
	Total    time.Duration
	Host     HostStats
}

func (r Report) Print() {
	fps := 0.0
	if r.Total > 0 {
		fps = float64(r.Frames) / r.Total.Seconds()
	}
	fmt.Printf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Frames: %d\n"+
			"Simulation: %.2fs\n"+
			"Rendering: %.2fs\n"+
			"Total: %.2fs\n"+
			"Effective FPS: %.2f\n"+
			"Host: %d CPUs, load %.2f, mem %.1f%% of %d MB\n"+
			"----------------------------\n",
		r.Frames, r.Simulate.Seconds(), r.Render.Seconds(), r.Total.Seconds(), fps,
		r.Host.LogicalCPUs, r.Host.LoadAvg1, r.Host.MemUsedPct, r.Host.MemTotalMB,
	)
}
