package mount

import (
	"errors"
	"os/exec"
)

// kdbMountCommand shells out to the "kdb mount" command line tool.
type kdbMountCommand struct {
	binary string
}

// NewKDBMountCommand creates an IMountCommand invoking the kdb binary.
func NewKDBMountCommand() IMountCommand {
	return &kdbMountCommand{binary: "kdb"}
}

func (c *kdbMountCommand) Run(mountpoint, file, resolver string, recommends bool, plugins []Plugin) (int, string, error) {
	args := []string{"mount"}
	if recommends {
		args = append(args, "--with-recommends")
	}
	args = append(args, "-R", resolver, file, mountpoint)
	for _, plugin := range plugins {
		args = append(args, plugin.Name)
		for _, conf := range plugin.Config {
			args = append(args, conf.Key+"="+conf.Value)
		}
	}

	out, err := exec.Command(c.binary, args...).CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), string(out), nil
		}
		return -1, string(out), err
	}
	return 0, string(out), nil
}
