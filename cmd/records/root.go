package records

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/asadmin/cmd/util"
	"github.com/ValentinKolb/asadmin/rpc/client"
	"github.com/ValentinKolb/asadmin/rpc/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	restClient client.IRESTClient

	// RecordCommands represents the records command group
	RecordCommands = &cobra.Command{
		Use:                "records",
		Short:              "Browse and modify records through the asadmin backend",
		PersistentPreRunE:  setupClient,
		PersistentPostRunE: teardownClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add REST client flags to the records command
	util.SetupClientFlags(RecordCommands)
	util.SetupStoreFlags(RecordCommands)

	RecordCommands.PersistentFlags().String("path", "", util.WrapString("gjson path selecting a part of the JSON output (e.g. '#.key')"))
	RecordCommands.PersistentFlags().Bool("stats", false, util.WrapString("Print the latency of the requests after the command"))

	// Add subcommands
	RecordCommands.AddCommand(connectCmd)
	RecordCommands.AddCommand(disconnectCmd)
	RecordCommands.AddCommand(clusterInfoCmd)
	RecordCommands.AddCommand(namespacesCmd)
	RecordCommands.AddCommand(setsCmd)
	RecordCommands.AddCommand(scanCmd)
	RecordCommands.AddCommand(searchCmd)
	RecordCommands.AddCommand(getCmd)
	RecordCommands.AddCommand(putCmd)
	RecordCommands.AddCommand(addCmd)
	RecordCommands.AddCommand(deleteCmd)
}

// setupClient initializes the REST client
func setupClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	if err := common.InitLoggers(viper.GetString("log-level"), os.Stderr); err != nil {
		return err
	}

	var err error
	restClient, err = util.NewClient()
	return err
}

// teardownClient prints the request statistics and closes the client
func teardownClient(cmd *cobra.Command, _ []string) error {
	if restClient == nil {
		return nil
	}
	if viper.GetBool("stats") {
		fmt.Fprint(cmd.ErrOrStderr(), "\n"+client.FormatStats(restClient.Stats()))
	}
	return restClient.Close()
}

// printJSON writes v to the command output, honoring --path
func printJSON(cmd *cobra.Command, v any) error {
	return util.PrintJSON(cmd.OutOrStdout(), v, viper.GetString("path"))
}
