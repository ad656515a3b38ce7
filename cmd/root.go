package cmd

import (
	"fmt"
	"os"

	"github.com/ElektraInitiative/kdbtask/cmd/apply"
	"github.com/ElektraInitiative/kdbtask/cmd/facts"
	"github.com/ElektraInitiative/kdbtask/cmd/util"
	"github.com/ElektraInitiative/kdbtask/lib/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "kdbtask",
		Short: "declarative configuration database tasks",
		Long: fmt.Sprintf(`kdbtask (v%s)

A declarative reconciliation engine for a hierarchical key-value
configuration database: flatten a desired configuration tree, merge it
three-way against the live state and apply it transactionally.`, Version),
		PersistentPreRunE: setupLogging,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of kdbtask",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("kdbtask v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(apply.ApplyCmd)
	RootCmd.AddCommand(facts.FactsCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	RootCmd.PersistentFlags().String("log-level", "info", util.WrapString("log level (debug, info, warn, error)"))
}

// setupLogging applies the configured log level to all loggers
func setupLogging(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Root().PersistentFlags()); err != nil {
		return err
	}
	level, err := logger.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return err
	}
	logger.SetLevelAll(level)
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
