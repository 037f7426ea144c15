package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/asadmin/cmd/browse"
	"github.com/ValentinKolb/asadmin/cmd/profiles"
	"github.com/ValentinKolb/asadmin/cmd/records"
	"github.com/ValentinKolb/asadmin/cmd/serve"
	"github.com/spf13/cobra"
)

const (
	Version = "0.4.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "asadmin",
		Short: "admin console for Aerospike clusters",
		Long: fmt.Sprintf(`asadmin (v%s)

An admin console for Aerospike clusters: browse namespaces, sets and
records, search keys and edit records from a terminal UI, a CLI or
through the REST backend.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of asadmin",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "asadmin v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(records.RecordCommands)
	RootCmd.AddCommand(profiles.ProfileCommands)
	RootCmd.AddCommand(browse.BrowseCmd)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
