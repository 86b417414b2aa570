package glcheck

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"
)

// Debugger reports whether a debugger was attached when it was detected and
// raises a breakpoint trap for it.
type Debugger struct {
	Attached bool
	// OnTrap replaces the platform trap when set.
	OnTrap func()
}

// DetectDebugger probes the current process once. Callers keep the result;
// attaching a debugger later is not noticed.
func DetectDebugger() Debugger {
	return Debugger{Attached: debuggerAttached()}
}

// Trap stops in the attached debugger. It does nothing when no debugger was
// detected, since an unhandled SIGTRAP terminates the process.
func (d Debugger) Trap() {
	if !d.Attached {
		return
	}
	if d.OnTrap != nil {
		d.OnTrap()
		return
	}
	trap()
}

// tracerPID extracts the TracerPid field of a /proc/<pid>/status file.
func tracerPID(status []byte) (int, bool) {
	sc := bufio.NewScanner(bytes.NewReader(status))
	for sc.Scan() {
		key, value, ok := strings.Cut(sc.Text(), ":")
		if !ok || key != "TracerPid" {
			continue
		}
		pid, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return 0, false
		}
		return pid, true
	}
	return 0, false
}
