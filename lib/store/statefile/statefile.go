package statefile

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ElektraInitiative/kdbtask/lib/kdb"
)

// entry is the serialized form of one key.
type entry struct {
	Value string            `json:"value,omitempty"`
	Meta  map[string]string `json:"meta,omitempty"`
}

// Load reads a state file into a keyset. A missing file yields an empty
// keyset so a fresh database can be bootstrapped from nothing.
func Load(path string) (*kdb.KeySet, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return kdb.NewKeySet(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file %s: %w", path, err)
	}

	var entries map[string]entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("invalid state file %s: %w", path, err)
	}

	ks := kdb.NewKeySet()
	for name, e := range entries {
		if _, err := kdb.ParseNamespace(name); err != nil {
			return nil, fmt.Errorf("invalid state file %s: %w", path, err)
		}
		k := kdb.NewKeyValue(name, e.Value)
		for mname, mvalue := range e.Meta {
			k.SetMeta(mname, mvalue)
		}
		ks.AppendKey(k)
	}
	return ks, nil
}

// Save writes the keyset to the state file, replacing its content.
func Save(path string, ks *kdb.KeySet) error {
	entries := make(map[string]entry, ks.Len())
	for _, k := range ks.Keys() {
		e := entry{Value: k.Value()}
		for _, mname := range k.MetaNames() {
			if e.Meta == nil {
				e.Meta = make(map[string]string)
			}
			v, _ := k.Meta(mname)
			e.Meta[mname] = v
		}
		entries[k.Name()] = e
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize state: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write state file %s: %w", path, err)
	}
	return nil
}
