// Package mount ensures the mountpoints an operation writes below exist
// beforehand.
//
// Mount topology lives in the database itself, below the reserved
// system:/elektra/mountpoints key. Creating a mountpoint is delegated to
// the external mount command line tool (IMountCommand); unmounting is a
// cut of the topology subtree. A forced remount can optionally preserve
// the keys below the old mountpoint and restore them under the new one.
package mount
