package browse

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/ValentinKolb/asadmin/cmd/util"
	"github.com/ValentinKolb/asadmin/lib/driver"
	"github.com/ValentinKolb/asadmin/lib/profile"
	"github.com/ValentinKolb/asadmin/lib/view"
	"github.com/ValentinKolb/asadmin/rpc/common"
	"github.com/ValentinKolb/asadmin/rpc/server"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// driverREST selects the REST backend of `asadmin serve`
const driverREST = "rest"

var BrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse namespaces, sets and records in an interactive terminal UI",
	Long: `Open the record browser. By default the browser talks to a running asadmin backend (--endpoints).
With --driver memory or --driver aerospike the browser accesses the store directly and needs no backend.`,
	Args: cobra.NoArgs,
	RunE: run,
}

func init() {
	// initialize viper
	cobra.OnInitialize(util.InitConfig)

	util.SetupClientFlags(BrowseCmd)
	util.SetupStoreFlags(BrowseCmd)

	key := "driver"
	BrowseCmd.Flags().String(key, driverREST, util.WrapString("Where records are read from (rest, memory, aerospike). rest uses the backend given by --endpoints"))

	key = "seed"
	BrowseCmd.Flags().Bool(key, false, util.WrapString("(memory driver) Fill the namespace 'test' with sample records"))

	key = "profile"
	BrowseCmd.Flags().String(key, "", util.WrapString("Name or id of the profile to connect with (default: the active profile)"))

	key = "host"
	BrowseCmd.Flags().String(key, driver.DefaultHost, util.WrapString("The cluster host, overrides the profile"))

	key = "port"
	BrowseCmd.Flags().Int(key, driver.DefaultPort, util.WrapString("The cluster port, overrides the profile"))

	key = "user"
	BrowseCmd.Flags().String(key, "", util.WrapString("The cluster user, overrides the profile"))

	key = "password"
	BrowseCmd.Flags().String(key, "", util.WrapString("The cluster password"))

	key = "page-size"
	BrowseCmd.Flags().Int(key, view.DefaultPageSize, util.WrapString(fmt.Sprintf("The initial number of records per page (one of %v)", view.PageSizes)))

	key = "max-records"
	BrowseCmd.Flags().Int(key, 100, util.WrapString("The maximum number of records a scan loads"))

	key = "log-file"
	BrowseCmd.Flags().String(key, "", util.WrapString("File the logs are appended to. Without it logs are discarded since the terminal is in use"))
}

func run(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// logs must not write into the ui
	var logOut io.Writer = io.Discard
	if path := viper.GetString("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	if err := common.InitLoggers(viper.GetString("log-level"), logOut); err != nil {
		return err
	}

	pageSize := viper.GetInt("page-size")
	if !slices.Contains(view.PageSizes, pageSize) {
		return fmt.Errorf("invalid page size %d (expected one of %v)", pageSize, view.PageSizes)
	}

	profiles, err := util.OpenProfiles()
	if err != nil {
		return err
	}
	params, explicit, err := connectParams(cmd, profiles)
	if err != nil {
		return err
	}

	drv, closeDriver, local, err := openDriver(viper.GetString("driver"))
	if err != nil {
		return err
	}
	defer closeDriver()

	theme, err := profiles.Theme()
	if err != nil {
		Logger.Warningf("failed to read theme: %v", err)
		theme = profile.DefaultTheme
	}
	width, err := profiles.EditorWidth()
	if err != nil {
		Logger.Warningf("failed to read editor width: %v", err)
		width = profile.DefaultEditorWidth
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	m := New(ctx, Options{
		Dispatcher:  view.NewDispatcher(drv, view.NewCoordinator(pageSize), viper.GetInt("max-records")),
		Params:      params,
		AutoConnect: local || explicit,
		Profiles:    profiles,
		Theme:       theme,
		EditorWidth: width,
	})
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// openDriver creates the record driver. local is false for the REST backend,
// which may already hold a connection.
func openDriver(name string) (drv driver.IDriver, closeFn func(), local bool, err error) {
	if strings.EqualFold(strings.TrimSpace(name), driverREST) {
		c, err := util.NewClient()
		if err != nil {
			return nil, nil, false, err
		}
		return c, func() { _ = c.Close() }, false, nil
	}

	driverType, err := common.ParseDriverType(name)
	if err != nil {
		return nil, nil, false, err
	}
	drv, err = server.NewDriver(common.ServerConfig{
		Driver:        driverType,
		Seed:          viper.GetBool("seed"),
		TimeoutSecond: int64(viper.GetInt("timeout")),
	})
	if err != nil {
		return nil, nil, false, err
	}
	return drv, func() { _ = drv.Disconnect(context.Background()) }, true, nil
}

// connectParams resolves the cluster to connect to. Explicit flags win over
// the named profile, which wins over the active profile. explicit reports
// whether the user asked for a connection on the command line.
func connectParams(cmd *cobra.Command, profiles profile.IManager) (driver.ConnectParams, bool, error) {
	flags := cmd.Flags()
	host, _ := flags.GetString("host")
	port, _ := flags.GetInt("port")
	user, _ := flags.GetString("user")
	password, _ := flags.GetString("password")
	name, _ := flags.GetString("profile")

	if name != "" {
		p, err := profiles.Find(name)
		if err != nil {
			return driver.ConnectParams{}, false, err
		}
		params := p.ConnectParams()
		if password != "" {
			params.Password = password
		}
		return params, true, nil
	}

	if flags.Changed("host") || flags.Changed("port") || flags.Changed("user") {
		return driver.ConnectParams{Host: host, Port: port, User: user, Password: password}.WithDefaults(), true, nil
	}

	active, ok, err := profiles.Active()
	if err != nil {
		return driver.ConnectParams{}, false, err
	}
	if !ok {
		return driver.ConnectParams{User: user, Password: password}.WithDefaults(), false, nil
	}
	params := active.ConnectParams()
	if password != "" {
		params.Password = password
	}
	return params, false, nil
}
