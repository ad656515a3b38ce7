package mount

import (
	"strings"

	"github.com/ElektraInitiative/kdbtask/lib/kdb"
	"github.com/ElektraInitiative/kdbtask/lib/store"
)

// --------------------------------------------------------------------------
// Mount Manager
// --------------------------------------------------------------------------

// Manager ensures the mountpoints required by an operation exist before
// any keys are written below them.
type Manager struct {
	store  store.IStore
	cmd    IMountCommand
	dryRun bool
}

// NewManager creates a mount manager.
func NewManager(st store.IStore, cmd IMountCommand, dryRun bool) *Manager {
	return &Manager{store: st, cmd: cmd, dryRun: dryRun}
}

// EnsureMounted processes all mount specifications in order and reports
// whether any mountpoint was created or recreated. Existing mountpoints
// are skipped unless a remount is forced. In dry-run mode nothing is
// mounted, but the would-change answer is still computed.
func (m *Manager) EnsureMounted(specs []Spec) (bool, error) {
	changed := false
	for _, spec := range specs {
		if strings.HasPrefix(spec.Mountpoint, "/") {
			return changed, store.NewErrorf(store.ErrCMountFailure,
				"cascading mountpoint %s is not supported", spec.Mountpoint)
		}

		exists, err := m.mountpointExists(spec.Mountpoint)
		if err != nil {
			return changed, err
		}
		if exists && !spec.Remount {
			continue
		}
		changed = true
		if m.dryRun {
			continue
		}

		var preserved *kdb.KeySet
		if exists {
			if spec.PreserveKeys {
				preserved, _, err = m.store.Get(spec.Mountpoint)
				if err != nil {
					return changed, store.NewErrorf(store.ErrCReadFailure,
						"failed to preserve keys below %s: %v", spec.Mountpoint, err)
				}
			}
			if err := m.unmount(spec.Mountpoint); err != nil {
				return changed, err
			}
		}

		exitCode, output, err := m.cmd.Run(spec.Mountpoint, spec.File, spec.Resolver, spec.Recommends, spec.Plugins)
		if err != nil {
			return changed, store.NewErrorf(store.ErrCMountFailure,
				"failed to run mount command for %s: %v", spec.Mountpoint, err)
		}
		if exitCode != 0 {
			return changed, store.NewErrorf(store.ErrCMountFailure,
				"mounting %s to %s failed with exit code %d: %s", spec.File, spec.Mountpoint, exitCode, output)
		}

		if preserved != nil && preserved.Len() > 0 {
			if _, err := m.store.Set(preserved, spec.Mountpoint); err != nil {
				return changed, store.NewErrorf(store.ErrCWriteFailure,
					"failed to restore preserved keys below %s: %v", spec.Mountpoint, err)
			}
		}
	}
	return changed, nil
}

// mountpointExists checks the mount topology for the given mountpoint.
func (m *Manager) mountpointExists(mountpoint string) (bool, error) {
	topology, rc, err := m.store.Get(kdb.MountpointsRoot)
	if err != nil || rc == store.RetError {
		return false, store.NewErrorf(store.ErrCMountFailure,
			"failed to read mount topology below %s: %v", kdb.MountpointsRoot, err)
	}
	_, ok := topology.Lookup(kdb.MountpointsRoot + "/" + EscapeMountpoint(mountpoint))
	return ok, nil
}

// unmount detaches the mountpoint from the topology.
func (m *Manager) unmount(mountpoint string) error {
	topology, rc, err := m.store.Get(kdb.MountpointsRoot)
	if err != nil || rc == store.RetError {
		return store.NewErrorf(store.ErrCUnmountFailure,
			"failed to read mount topology below %s: %v", kdb.MountpointsRoot, err)
	}
	topology.Cut(kdb.MountpointsRoot + "/" + EscapeMountpoint(mountpoint))
	if _, err := m.store.Set(topology, kdb.MountpointsRoot); err != nil {
		return store.NewErrorf(store.ErrCUnmountFailure,
			"failed to unmount %s: %v", mountpoint, err)
	}
	return nil
}
