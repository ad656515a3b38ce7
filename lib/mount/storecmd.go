package mount

import (
	"github.com/ElektraInitiative/kdbtask/lib/kdb"
	"github.com/ElektraInitiative/kdbtask/lib/store"
)

// --------------------------------------------------------------------------
// Store-Backed Mount Command
// --------------------------------------------------------------------------

// storeMountCommand registers mountpoints directly in the mount topology
// of the store. It serves stores that no external mount tool manages,
// e.g. the in-memory store of a local run.
type storeMountCommand struct {
	store store.IStore
}

// NewStoreMountCommand creates a mount command that writes the topology
// entry itself instead of shelling out.
func NewStoreMountCommand(st store.IStore) IMountCommand {
	return &storeMountCommand{store: st}
}

func (c *storeMountCommand) Run(mountpoint, file, resolver string, recommends bool, plugins []Plugin) (int, string, error) {
	topology, rc, err := c.store.Get(kdb.MountpointsRoot)
	if err != nil || rc == store.RetError {
		return -1, "", err
	}
	entry := kdb.NewKeyValue(kdb.MountpointsRoot+"/"+EscapeMountpoint(mountpoint), file)
	if resolver != "" {
		entry.SetMeta("resolver", resolver)
	}
	for _, p := range plugins {
		entry.SetMeta("plugin/"+p.Name, "1")
	}
	topology.AppendKey(entry)
	if _, err := c.store.Set(topology, kdb.MountpointsRoot); err != nil {
		return -1, "", err
	}
	return 0, "", nil
}
