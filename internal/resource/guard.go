// Package resource implements the OS-level safety checks: file
// descriptor and child process accounting, cgroup/kernel pid limits,
// and the worker auto-sizing formula.
package resource

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scoutpool/internal/common"
)

// Guard reads /proc to decide whether the pool can safely start another
// worker, and computes the initial auto-sized worker count.
type Guard struct {
	cfg    *common.ResourceConfig
	logger arbor.ILogger
}

// New constructs a Guard.
func New(cfg *common.ResourceConfig, logger arbor.ILogger) *Guard {
	return &Guard{cfg: cfg, logger: logger}
}

// OpenFileDescriptors counts entries in /proc/self/fd.
func (g *Guard) OpenFileDescriptors() (int, error) {
	entries, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		return 0, fmt.Errorf("reading /proc/self/fd: %w", err)
	}
	return len(entries), nil
}

// ChildProcessCount counts processes in /proc whose PPid is our own pid,
// the browser children a crashed/zombied driver leaves behind.
func (g *Guard) ChildProcessCount() (int, error) {
	self := os.Getpid()
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return 0, fmt.Errorf("reading /proc: %w", err)
	}

	count := 0
	for _, e := range entries {
		pid, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		ppid, err := readPPid(pid)
		if err != nil {
			continue
		}
		if ppid == self {
			count++
		}
	}
	return count, nil
}

func readPPid(pid int) (int, error) {
	data, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "stat"))
	if err != nil {
		return 0, err
	}
	// Format: pid (comm) state ppid ...; comm may contain spaces/parens,
	// so split on the last ')' to skip past it safely.
	s := string(data)
	idx := strings.LastIndex(s, ")")
	if idx < 0 {
		return 0, fmt.Errorf("unexpected stat format for pid %d", pid)
	}
	fields := strings.Fields(s[idx+1:])
	if len(fields) < 2 {
		return 0, fmt.Errorf("unexpected stat fields for pid %d", pid)
	}
	return strconv.Atoi(fields[1])
}

// PidsLimit reads the cgroup v2 pids.max for this process, falling back
// to the kernel-wide pid_max when cgroup v2 is unavailable or the limit
// is "max" (unbounded).
func (g *Guard) PidsLimit() (int, error) {
	if v, err := readCgroupPidsMax(); err == nil && v > 0 {
		return v, nil
	}
	return readKernelPidMax()
}

func readCgroupPidsMax() (int, error) {
	data, err := os.ReadFile("/sys/fs/cgroup/pids.max")
	if err != nil {
		return 0, err
	}
	s := strings.TrimSpace(string(data))
	if s == "max" {
		return 0, fmt.Errorf("unbounded")
	}
	return strconv.Atoi(s)
}

func readKernelPidMax() (int, error) {
	f, err := os.Open("/proc/sys/kernel/pid_max")
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if scanner.Scan() {
		return strconv.Atoi(strings.TrimSpace(scanner.Text()))
	}
	return 0, fmt.Errorf("empty pid_max")
}

// TotalRAMGB reads /proc/meminfo's MemTotal and converts it to gibibytes,
// the real RAM budget AutoSizeWorkers divides by RAMGBPerWorker.
func (g *Guard) TotalRAMGB() (float64, error) {
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0, fmt.Errorf("reading /proc/meminfo: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "MemTotal:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0, fmt.Errorf("unexpected MemTotal line format")
		}
		kb, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return 0, fmt.Errorf("parsing MemTotal value: %w", err)
		}
		return kb / (1024 * 1024), nil
	}
	return 0, fmt.Errorf("MemTotal not found in /proc/meminfo")
}

// CanStartWorker reports whether starting one more worker would cross
// the configured FD/child-process thresholds.
func (g *Guard) CanStartWorker() bool {
	fds, err := g.OpenFileDescriptors()
	if err == nil && fds >= g.cfg.FDThreshold {
		g.logger.Warn().Int("open_fds", fds).Int("threshold", g.cfg.FDThreshold).Msg("fd threshold reached, refusing new worker")
		return false
	}
	children, err := g.ChildProcessCount()
	if err == nil && children >= g.cfg.ChildProcThreshold {
		g.logger.Warn().Int("child_procs", children).Int("threshold", g.cfg.ChildProcThreshold).Msg("child process threshold reached, refusing new worker")
		return false
	}
	return true
}

// AutoSizeWorkers computes the initial pool size:
// min(RAM budget, CPU budget, pid headroom budget, hard cap).
func (g *Guard) AutoSizeWorkers(totalRAMGB float64) int {
	ramBudget := int(totalRAMGB / g.cfg.RAMGBPerWorker)
	cpuBudget := runtime.NumCPU() * 4

	pidsBudget := g.cfg.HardCapWorkers
	if limit, err := g.PidsLimit(); err == nil {
		children, cerr := g.ChildProcessCount()
		if cerr != nil {
			children = 0
		}
		headroom := limit - children - g.cfg.SafetyMargin
		if g.cfg.ProcsPerDriver > 0 && headroom > 0 {
			pidsBudget = headroom / g.cfg.ProcsPerDriver
		} else {
			pidsBudget = 0
		}
	}

	n := min4(ramBudget, cpuBudget, pidsBudget, g.cfg.HardCapWorkers)
	if n < 1 {
		n = 1
	}
	g.logger.Info().
		Int("ram_budget", ramBudget).
		Int("cpu_budget", cpuBudget).
		Int("pids_budget", pidsBudget).
		Int("hard_cap", g.cfg.HardCapWorkers).
		Int("chosen", n).
		Msg("auto-sized worker pool")
	return n
}

func min4(a, b, c, d int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	if d < m {
		m = d
	}
	return m
}
