package apply

import (
	"fmt"
	"os"

	"github.com/ElektraInitiative/kdbtask/lib/flatten"
	"github.com/ElektraInitiative/kdbtask/lib/mount"
	"github.com/ElektraInitiative/kdbtask/lib/reconcile"
	"github.com/ElektraInitiative/kdbtask/lib/task"
	"gopkg.in/yaml.v3"
)

// --------------------------------------------------------------------------
// Playbook Format
// --------------------------------------------------------------------------

// playbook is the YAML document read by the apply command: a list of
// reconciliation tasks executed in order.
type playbook struct {
	Tasks []playbookTask `yaml:"tasks"`
}

type playbookTask struct {
	Name      string          `yaml:"name"`
	Mount     []mountSpec     `yaml:"mount"`
	Keys      yaml.Node       `yaml:"keys"`
	Remove    yaml.Node       `yaml:"remove"`
	KeepOrder bool            `yaml:"keeporder"`
	Strategy  string          `yaml:"strategy"`
	Recording recordingConfig `yaml:"recording"`
}

type mountSpec struct {
	Mountpoint   string       `yaml:"mountpoint"`
	File         string       `yaml:"file"`
	Resolver     string       `yaml:"resolver"`
	Recommends   bool         `yaml:"recommends"`
	Remount      bool         `yaml:"remount"`
	PreserveKeys bool         `yaml:"preservekeys"`
	Plugins      []pluginSpec `yaml:"plugins"`
}

type pluginSpec struct {
	Name   string            `yaml:"name"`
	Config map[string]string `yaml:"config"`
}

type recordingConfig struct {
	Enable     bool   `yaml:"enable"`
	Root       string `yaml:"root"`
	Reset      bool   `yaml:"reset"`
	RecordSelf bool   `yaml:"recordself"`
}

// loadPlaybook reads and parses a playbook file.
func loadPlaybook(path string) (*playbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read playbook %s: %w", path, err)
	}
	var pb playbook
	if err := yaml.Unmarshal(data, &pb); err != nil {
		return nil, fmt.Errorf("invalid playbook %s: %w", path, err)
	}
	return &pb, nil
}

// toTask converts one playbook entry into an engine task.
func (pt *playbookTask) toTask(dryRun, keepOrder bool) (task.Task, error) {
	strategy, err := reconcile.ParseStrategy(pt.Strategy)
	if err != nil {
		return task.Task{}, fmt.Errorf("task %q: %w", pt.Name, err)
	}

	keys, err := flatten.FromYAML(&pt.Keys)
	if err != nil {
		return task.Task{}, fmt.Errorf("task %q: %w", pt.Name, err)
	}
	remove, err := flatten.FromYAML(&pt.Remove)
	if err != nil {
		return task.Task{}, fmt.Errorf("task %q: %w", pt.Name, err)
	}

	mounts := make([]mount.Spec, 0, len(pt.Mount))
	for _, m := range pt.Mount {
		spec := mount.Spec{
			Mountpoint:   m.Mountpoint,
			File:         m.File,
			Resolver:     m.Resolver,
			Recommends:   m.Recommends,
			Remount:      m.Remount,
			PreserveKeys: m.PreserveKeys,
		}
		for _, p := range m.Plugins {
			plugin := mount.Plugin{Name: p.Name}
			for k, v := range p.Config {
				plugin.Config = append(plugin.Config, mount.PluginConfig{Key: k, Value: v})
			}
			spec.Plugins = append(spec.Plugins, plugin)
		}
		mounts = append(mounts, spec)
	}

	return task.Task{
		Mounts:       mounts,
		Keys:         keys,
		KeysToRemove: remove,
		KeepOrder:    pt.KeepOrder || keepOrder,
		Strategy:     strategy,
		Recording: task.Recording{
			Enable:     pt.Recording.Enable,
			Root:       pt.Recording.Root,
			Reset:      pt.Recording.Reset,
			RecordSelf: pt.Recording.RecordSelf,
		},
		DryRun: dryRun,
	}, nil
}
