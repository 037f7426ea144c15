package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	cmdUtil "github.com/ValentinKolb/asadmin/cmd/util"
	"github.com/ValentinKolb/asadmin/rpc/common"
	"github.com/ValentinKolb/asadmin/rpc/server"
	"github.com/ValentinKolb/asadmin/rpc/transport/http"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the asadmin backend",
		Long:    `Start the REST backend of the console with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is ASADMIN_<flag> (e.g. ASADMIN_MAX_RECORDS=500)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(cmdUtil.InitConfig)

	// add flags
	key := "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:8080", cmdUtil.WrapString("The address on which the API will listen"))

	key = "driver"
	ServeCmd.PersistentFlags().String(key, "aerospike", cmdUtil.WrapString("The database driver (aerospike, memory). The memory driver keeps all data in the process and needs no cluster"))

	key = "default-host"
	ServeCmd.PersistentFlags().String(key, "localhost", cmdUtil.WrapString("The cluster host used when a connect request names none"))

	key = "default-port"
	ServeCmd.PersistentFlags().Int(key, 3000, cmdUtil.WrapString("The cluster port used when a connect request names none"))

	key = "max-records"
	ServeCmd.PersistentFlags().Int(key, 100, cmdUtil.WrapString("The number of records a scan returns when the request sets no limit"))

	key = "cors-origin"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Origin allowed to call the API from a browser (e.g. http://localhost:5173 or *). Empty disables CORS"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, 5, cmdUtil.WrapString("Timeout in seconds for connecting to the cluster and for each command"))

	key = "seed"
	ServeCmd.PersistentFlags().Bool(key, false, cmdUtil.WrapString("(memory driver) Fill the namespace 'test' with sample records"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := cmdUtil.BindCommandFlags(cmd); err != nil {
		return err
	}

	// parse the driver
	driverType, err := common.ParseDriverType(viper.GetString("driver"))
	if err != nil {
		return err
	}

	// read the configuration from the command line flags and environment variables
	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.Driver = driverType
	serveCmdConfig.DefaultHost = viper.GetString("default-host")
	serveCmdConfig.DefaultPort = viper.GetInt("default-port")
	serveCmdConfig.MaxRecords = viper.GetInt("max-records")
	serveCmdConfig.CORSOrigin = viper.GetString("cors-origin")
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.Seed = viper.GetBool("seed")
	serveCmdConfig.LogLevel = viper.GetString("log-level")

	return serveCmdConfig.Validate()
}

// run starts the asadmin backend and stops it on SIGINT or SIGTERM
func run(_ *cobra.Command, _ []string) error {
	// Init logger
	if err := common.InitLoggers(serveCmdConfig.LogLevel, os.Stdout); err != nil {
		return err
	}

	drv, err := server.NewDriver(*serveCmdConfig)
	if err != nil {
		return err
	}

	serv := server.NewRESTServer(
		*serveCmdConfig,
		http.NewHttpServerTransport(),
		drv,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serv.Serve(ctx)
}
