package facts

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ElektraInitiative/kdbtask/cmd/util"
	"github.com/ElektraInitiative/kdbtask/lib/store"
	"github.com/ElektraInitiative/kdbtask/lib/store/memstore"
	"github.com/ElektraInitiative/kdbtask/lib/store/statefile"
	"github.com/spf13/cobra"
)

var (
	// FactsCmd prints the configuration below a root as JSON.
	FactsCmd = &cobra.Command{
		Use:   "facts [root]",
		Short: "Print the configuration below a root key as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runFacts,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	FactsCmd.Flags().String("state", "kdbtask-state.json", util.WrapString("Path of the database state file"))
}

// fact is the JSON output for one key.
type fact struct {
	Value string            `json:"value"`
	Meta  map[string]string `json:"meta,omitempty"`
}

func runFacts(cmd *cobra.Command, args []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	root := "system:/"
	if len(args) == 1 {
		root = args[0]
	}

	seed, err := statefile.Load(util.GetStatePath())
	if err != nil {
		return err
	}
	st := memstore.NewMemStore()
	if _, err := st.Set(seed, "/"); err != nil {
		return err
	}

	ks, rc, err := st.Get(root)
	if err != nil || rc == store.RetError {
		return fmt.Errorf("failed to read configuration below %s: %w", root, err)
	}
	if ks.Len() == 0 {
		return fmt.Errorf("no configuration mounted under %s", root)
	}

	facts := make(map[string]fact, ks.Len())
	for _, k := range ks.Keys() {
		f := fact{Value: k.Value()}
		for _, mname := range k.MetaNames() {
			if f.Meta == nil {
				f.Meta = make(map[string]string)
			}
			v, _ := k.Meta(mname)
			f.Meta[mname] = v
		}
		facts[k.Name()] = f
	}

	out, err := json.MarshalIndent(facts, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(out))
	return nil
}
