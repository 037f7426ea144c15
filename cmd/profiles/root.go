package profiles

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/ValentinKolb/asadmin/cmd/util"
	"github.com/ValentinKolb/asadmin/lib/profile"
	"github.com/ValentinKolb/asadmin/rpc/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	manager profile.IManager

	// ProfileCommands represents the profile command group
	ProfileCommands = &cobra.Command{
		Use:               "profile",
		Short:             "Manage saved connection profiles and UI preferences",
		PersistentPreRunE: setupManager,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	util.SetupStoreFlags(ProfileCommands)
	ProfileCommands.PersistentFlags().String("log-level", "warn", util.WrapString("The level at which logs are written to stderr (debug, info, warn, error)"))

	// Add subcommands
	ProfileCommands.AddCommand(listCmd)
	ProfileCommands.AddCommand(addCmd)
	ProfileCommands.AddCommand(updateCmd)
	ProfileCommands.AddCommand(deleteCmd)
	ProfileCommands.AddCommand(useCmd)
	ProfileCommands.AddCommand(activeCmd)
	ProfileCommands.AddCommand(themeCmd)
	ProfileCommands.AddCommand(widthCmd)

	for _, c := range []*cobra.Command{addCmd, updateCmd} {
		c.Flags().String("host", "", util.WrapString("The host of the cluster seed node"))
		c.Flags().Int("port", 0, util.WrapString("The port of the cluster seed node"))
		c.Flags().String("user", "", util.WrapString("The user name"))
		c.Flags().String("password", "", util.WrapString("The password of the user"))
	}
	addCmd.Flags().Bool("use", false, util.WrapString("Make the new profile the active one"))
	updateCmd.Flags().String("name", "", util.WrapString("The new name of the profile"))
	useCmd.Flags().Bool("clear", false, util.WrapString("Clear the active profile instead"))
}

// setupManager opens the profile store
func setupManager(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}
	if err := common.InitLoggers(viper.GetString("log-level"), os.Stderr); err != nil {
		return err
	}
	var err error
	manager, err = util.OpenProfiles()
	return err
}

// --------------------------------------------------------------------------
// Output
// --------------------------------------------------------------------------

// writeProfiles prints profiles as a table, marking the active one
func writeProfiles(out io.Writer, profiles []profile.Profile, activeID string) error {
	if len(profiles) == 0 {
		_, err := fmt.Fprintln(out, "no profiles saved")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\tNAME\tADDRESS\tUSER\tID\tCREATED")
	for _, p := range profiles {
		marker := ""
		if p.ID == activeID {
			marker = "*"
		}
		user := p.Username
		if user == "" {
			user = "-"
		}
		params := p.ConnectParams()
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			marker, p.Name, params.Host+":"+strconv.Itoa(params.Port), user, p.ID, p.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}
