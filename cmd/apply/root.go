package apply

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ElektraInitiative/kdbtask/cmd/util"
	"github.com/ElektraInitiative/kdbtask/lib/mount"
	"github.com/ElektraInitiative/kdbtask/lib/store"
	"github.com/ElektraInitiative/kdbtask/lib/store/memstore"
	"github.com/ElektraInitiative/kdbtask/lib/store/statefile"
	"github.com/ElektraInitiative/kdbtask/lib/task"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// ApplyCmd runs the reconciliation tasks of a playbook against the
	// state-file database.
	ApplyCmd = &cobra.Command{
		Use:   "apply [playbook]",
		Short: "Apply the reconciliation tasks of a playbook",
		Args:  cobra.ExactArgs(1),
		RunE:  runApply,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	ApplyCmd.Flags().String("state", "kdbtask-state.json", util.WrapString("Path of the database state file"))
	ApplyCmd.Flags().Bool("dry-run", false, util.WrapString("Report what would change without writing anything"))
	ApplyCmd.Flags().Bool("keep-order", false, util.WrapString("Attach order metadata to every key of every task"))
	ApplyCmd.Flags().String("mount-tool", "store", util.WrapString("How to create mountpoints: store (register in the topology directly) or kdb (invoke the external kdb binary)"))
}

// taskReport is the JSON output of one task run.
type taskReport struct {
	Name      string          `json:"name,omitempty"`
	Changed   bool            `json:"changed"`
	Conflicts []string        `json:"conflicts,omitempty"`
	Warnings  []store.Warning `json:"warnings,omitempty"`
}

func runApply(cmd *cobra.Command, args []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	pb, err := loadPlaybook(args[0])
	if err != nil {
		return err
	}

	statePath := util.GetStatePath()
	dryRun := viper.GetBool("dry-run")
	keepOrder := viper.GetBool("keep-order")

	seed, err := statefile.Load(statePath)
	if err != nil {
		return err
	}
	st := memstore.NewMemStore()
	if _, err := st.Set(seed, "/"); err != nil {
		return fmt.Errorf("failed to seed database from %s: %w", statePath, err)
	}

	var mountCmd mount.IMountCommand
	switch viper.GetString("mount-tool") {
	case "store":
		mountCmd = mount.NewStoreMountCommand(st)
	case "kdb":
		mountCmd = mount.NewKDBMountCommand()
	default:
		return fmt.Errorf("invalid mount-tool %s", viper.GetString("mount-tool"))
	}

	runner := task.NewRunner(st, st, mountCmd)

	reports := make([]taskReport, 0, len(pb.Tasks))
	for _, pt := range pb.Tasks {
		t, err := pt.toTask(dryRun, keepOrder)
		if err != nil {
			return err
		}
		res, err := runner.Run(t)
		if err != nil {
			return fmt.Errorf("task %q failed: %w", pt.Name, err)
		}
		reports = append(reports, taskReport{
			Name:      pt.Name,
			Changed:   res.Changed,
			Conflicts: res.Conflicts,
			Warnings:  res.Warnings,
		})
	}

	if !dryRun {
		final, rc, err := st.Get("/")
		if err != nil || rc == store.RetError {
			return fmt.Errorf("failed to read the final state: %w", err)
		}
		if err := statefile.Save(statePath, final); err != nil {
			return err
		}
	}

	out, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(out))
	return nil
}
