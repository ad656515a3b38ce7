package mount

import "strings"

// --------------------------------------------------------------------------
// Mount Specification
// --------------------------------------------------------------------------

// PluginConfig is one flat key=value configuration argument of a plugin.
type PluginConfig struct {
	Key   string
	Value string
}

// Plugin names one storage plugin of a mountpoint's backend chain,
// together with its configuration arguments.
type Plugin struct {
	Name   string
	Config []PluginConfig
}

// Spec describes one mountpoint that must exist before keys are written.
type Spec struct {
	Mountpoint   string   // path prefix to bind, e.g. "system:/hosts"
	File         string   // backing configuration file
	Resolver     string   // resolver plugin for the backend
	Recommends   bool     // mount with recommended plugins
	Plugins      []Plugin // storage plugin chain
	Remount      bool     // recreate the mountpoint even if it exists
	PreserveKeys bool     // keep the keys below the mountpoint across a remount
}

// --------------------------------------------------------------------------
// External Mount Command
// --------------------------------------------------------------------------

// IMountCommand invokes the external mount tooling. A non-zero exit code
// with the captured output signals failure; err reports that the command
// could not be run at all.
type IMountCommand interface {
	Run(mountpoint, file, resolver string, recommends bool, plugins []Plugin) (exitCode int, output string, err error)
}

// EscapeMountpoint escapes the path separators of a mountpoint so it can
// be used as a single name segment below the mount topology root.
func EscapeMountpoint(mountpoint string) string {
	return strings.ReplaceAll(mountpoint, "/", `\/`)
}
