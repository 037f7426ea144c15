package server

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/ValentinKolb/asadmin/lib/driver"
	"github.com/ValentinKolb/asadmin/lib/driver/aerospike"
	"github.com/ValentinKolb/asadmin/lib/driver/memory"
	"github.com/ValentinKolb/asadmin/rpc/common"
	"github.com/ValentinKolb/asadmin/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("rpc")

// NewRESTServer creates a new REST server
// It takes a config, transport and the driver the API delegates to as parameters
//
// Usage:
//
//	s := server.NewRESTServer(
//		*config,
//		http.NewHttpServerTransport(),
//		server.NewDriver(*config),
//	)
//
//	if err := s.Serve(ctx); err != nil {
//		panic(err)
//	}
func NewRESTServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	drv driver.IDriver,
) *RESTServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	if config.MaxRecords <= 0 {
		config.MaxRecords = driver.DefaultMaxRecords
	}

	s := &RESTServer{
		config:    config,
		transport: transport,
		driver:    drv,
	}
	s.registerRoutes()

	Logger.Infof("Created REST Server")
	Logger.Infof(config.String())

	return s
}

// NewDriver creates the driver selected by the configuration
func NewDriver(config common.ServerConfig) (driver.IDriver, error) {
	switch config.Driver {
	case common.DriverAerospike:
		return aerospike.NewDriver(time.Duration(config.TimeoutSecond) * time.Second), nil
	case common.DriverMemory:
		opts := []memory.Option{}
		if config.Seed {
			opts = append(opts, memory.WithSampleData())
		}
		return memory.NewDriver(opts...), nil
	default:
		return nil, fmt.Errorf("invalid driver type: %s", config.Driver)
	}
}

// RESTServer serves the REST API of the console
type RESTServer struct {
	config    common.ServerConfig
	transport transport.IRPCServerTransport
	driver    driver.IDriver
}

func (s *RESTServer) registerRoutes() {
	t := s.transport
	t.RegisterHandler("GET /{$}", s.handleRoot)

	// Connection
	t.RegisterHandler("POST "+common.RouteConnect, s.handleConnect)
	t.RegisterHandler("POST "+common.RouteDisconnect, s.handleDisconnect)
	t.RegisterHandler("GET "+common.RouteClusterInfo, s.handleClusterInfo)

	// Namespaces and sets
	t.RegisterHandler("GET "+common.RouteNamespaces, s.handleNamespaces)
	t.RegisterHandler("GET "+common.RouteNamespaces+"/{namespace}/sets", s.handleSets)

	// Records
	t.RegisterHandler("GET "+common.RouteScan, s.handleScan)
	t.RegisterHandler("POST "+common.RouteSearch, s.handleSearch)
	t.RegisterHandler("POST "+common.RouteRecords, s.handlePutRecord)
	t.RegisterHandler("GET "+common.RouteRecords+"/{namespace}/{setName}/{key}", s.handleGetRecord)
	t.RegisterHandler("DELETE "+common.RouteRecords+"/{namespace}/{setName}/{key}", s.handleDeleteRecord)
	t.RegisterHandler("GET "+common.RouteRecords+"/{namespace}/{key}", s.handleGetRecord)
	t.RegisterHandler("DELETE "+common.RouteRecords+"/{namespace}/{key}", s.handleDeleteRecord)
}

// Handler returns the handler of the API, used to embed the server in tests
func (s *RESTServer) Handler() http.Handler {
	return s.transport.Handler(s.config)
}

// Serve starts the REST server and blocks until ctx is done.
// The driver is disconnected on return.
func (s *RESTServer) Serve(ctx context.Context) error {
	defer func() {
		if err := s.driver.Disconnect(context.Background()); err != nil {
			Logger.Warningf("failed to disconnect driver: %v", err)
		}
	}()

	if err := s.autoConnect(ctx); err != nil {
		return err
	}
	return s.transport.Listen(ctx, s.config)
}

// autoConnect connects the memory driver on start, since it has no cluster
// to choose
func (s *RESTServer) autoConnect(ctx context.Context) error {
	if s.config.Driver != common.DriverMemory {
		return nil
	}
	info, err := s.driver.Connect(ctx, s.connectDefaults(driver.ConnectParams{}))
	if err != nil {
		return fmt.Errorf("failed to connect memory driver: %w", err)
	}
	Logger.Infof("memory driver connected: %v", info.Connected)
	return nil
}

// connectDefaults fills in the configured default cluster address
func (s *RESTServer) connectDefaults(p driver.ConnectParams) driver.ConnectParams {
	if p.Host == "" {
		p.Host = s.config.DefaultHost
	}
	if p.Port <= 0 {
		p.Port = s.config.DefaultPort
	}
	return p.WithDefaults()
}
