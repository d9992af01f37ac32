package server

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-ps"
)

// errAlreadyRunning is returned when another server process runs on this host.
var errAlreadyRunning = errors.New("another security-server process is already running")

// ensureSingleInstance refuses to start when another process runs the same executable.
func ensureSingleInstance() error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}

	processList, err := ps.Processes()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	others := findOtherInstances(processList, filepath.Base(executable), os.Getpid())
	if len(others) > 0 {
		return fmt.Errorf("%w (pid %d)", errAlreadyRunning, others[0])
	}

	return nil
}

// findOtherInstances returns the PIDs of processes named name, except self.
func findOtherInstances(processList []ps.Process, name string, self int) []int {
	var pids []int

	for _, process := range processList {
		if process.Pid() == self || process.Executable() != name {
			continue
		}

		pids = append(pids, process.Pid())
	}

	return pids
}
