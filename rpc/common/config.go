package common

import (
	"fmt"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Formatting helpers
// --------------------------------------------------------------------------

type configWriter struct {
	sb strings.Builder
}

func (w *configWriter) addSection(title string) {
	w.sb.WriteString("\n")
	w.sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
}

func (w *configWriter) addField(name, value string) {
	w.sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
}

// --------------------------------------------------------------------------
// REST server configuration struct
// --------------------------------------------------------------------------

// DriverType selects the database driver of the server
type DriverType string

const (
	DriverAerospike DriverType = "aerospike"
	DriverMemory    DriverType = "memory"
)

// ParseDriverType parses a driver name
func ParseDriverType(s string) (DriverType, error) {
	switch d := DriverType(strings.ToLower(strings.TrimSpace(s))); d {
	case DriverAerospike, DriverMemory:
		return d, nil
	default:
		return "", fmt.Errorf("invalid driver %q. must be one of aerospike, memory", s)
	}
}

// ServerConfig holds all configuration parameters of the REST server.
type ServerConfig struct {
	// HTTP api settings
	Endpoint   string
	CORSOrigin string

	// Database driver
	Driver        DriverType
	DefaultHost   string
	DefaultPort   int
	MaxRecords    int
	TimeoutSecond int64

	// Seed fills the memory driver with sample data
	Seed bool

	// Logging configuration
	LogLevel string
}

// Validate checks the configuration for values the server cannot run with
func (c *ServerConfig) Validate() error {
	if _, err := ParseDriverType(string(c.Driver)); err != nil {
		return err
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint must not be empty")
	}
	if c.DefaultPort < 0 || c.DefaultPort > 65535 {
		return fmt.Errorf("invalid default port %d", c.DefaultPort)
	}
	if c.MaxRecords < 0 {
		return fmt.Errorf("max records must not be negative")
	}
	return nil
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var w configWriter

	// REST settings
	w.addSection("REST Server")
	w.addField("Endpoint", c.Endpoint)
	cors := c.CORSOrigin
	if cors == "" {
		cors = "disabled"
	}
	w.addField("CORS Origin", cors)

	// Driver settings
	w.addSection("Driver")
	w.addField("Type", string(c.Driver))
	w.addField("Default Host", fmt.Sprintf("%s:%d", c.DefaultHost, c.DefaultPort))
	w.addField("Max Records", strconv.Itoa(c.MaxRecords))
	w.addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	if c.Driver == DriverMemory {
		w.addField("Sample Data", strconv.FormatBool(c.Seed))
	}

	// Logging configuration
	w.addSection("Logging")
	w.addField("Log Level", c.LogLevel)

	return w.sb.String()
}

// --------------------------------------------------------------------------
// REST client configuration struct
// --------------------------------------------------------------------------

type ClientConfig struct {
	Endpoints     []string
	TimeoutSecond int
	RetryCount    int
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var w configWriter

	// General Client Settings
	w.addSection("Client Configuration")
	w.addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	w.addField("Retry Count", strconv.Itoa(c.RetryCount))

	// Endpoints
	w.addSection("Endpoints")
	for i, endpoint := range c.Endpoints {
		w.addField(strconv.Itoa(i), endpoint)
	}

	return w.sb.String()
}
