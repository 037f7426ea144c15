package util

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ValentinKolb/asadmin/lib/profile"
	"github.com/ValentinKolb/asadmin/lib/store"
	"github.com/ValentinKolb/asadmin/lib/store/lstore"
	"github.com/ValentinKolb/asadmin/rpc/client"
	"github.com/ValentinKolb/asadmin/rpc/common"
	"github.com/ValentinKolb/asadmin/rpc/transport/http"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50

	// EnvPrefix is the prefix of all environment variables (ASADMIN_<FLAG>)
	EnvPrefix = "asadmin"
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// --------------------------------------------------------------------------
// Configuration
// --------------------------------------------------------------------------

// InitConfig initializes configuration from .env files and environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// --------------------------------------------------------------------------
// REST client
// --------------------------------------------------------------------------

// SetupClientFlags adds the REST connection flags to a command
func SetupClientFlags(cmd *cobra.Command) {
	key := "timeout"
	cmd.PersistentFlags().Int(key, 10, WrapString("The timeout in seconds of the client"))

	key = "endpoints"
	cmd.PersistentFlags().String(key, "http://localhost:8080", WrapString("The address of the asadmin backend. Multiple endpoints can be specified as a comma-separated list and are used round robin"))

	key = "retries"
	cmd.PersistentFlags().Int(key, 3, WrapString("How many times to try a request that failed on the network"))

	key = "log-level"
	cmd.PersistentFlags().String(key, "warn", WrapString("The level at which logs are written to stderr (debug, info, warn, error)"))
}

// GetClientConfig reads client configuration from viper
func GetClientConfig() *common.ClientConfig {
	var endpoints []string
	for _, e := range strings.Split(viper.GetString("endpoints"), ",") {
		if e = strings.TrimSpace(e); e != "" {
			endpoints = append(endpoints, e)
		}
	}
	return &common.ClientConfig{
		Endpoints:     endpoints,
		TimeoutSecond: viper.GetInt("timeout"),
		RetryCount:    viper.GetInt("retries"),
	}
}

// NewClient creates a REST client from the viper configuration
func NewClient() (client.IRESTClient, error) {
	return client.NewRESTClient(*GetClientConfig(), http.NewHttpClientTransport())
}

// --------------------------------------------------------------------------
// Local profile store
// --------------------------------------------------------------------------

// SetupStoreFlags adds the flag locating the local profile store
func SetupStoreFlags(cmd *cobra.Command) {
	key := "store-file"
	cmd.PersistentFlags().String(key, DefaultStoreFile(), WrapString("The file in which profiles and preferences are stored"))
}

// DefaultStoreFile returns the default location of the profile store
func DefaultStoreFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "asadmin", "store.db")
}

// OpenStore opens the local store file given by --store-file
func OpenStore() (store.IStore, error) {
	path := viper.GetString("store-file")
	if path == "" {
		path = DefaultStoreFile()
	}
	s, err := lstore.NewFileStore(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile store %s: %w", path, err)
	}
	return s, nil
}

// OpenProfiles opens the profile manager on the configured store file
func OpenProfiles() (profile.IManager, error) {
	s, err := OpenStore()
	if err != nil {
		return nil, err
	}
	return profile.NewManager(s), nil
}

// --------------------------------------------------------------------------
// Output
// --------------------------------------------------------------------------

// PrintJSON writes v as indented JSON. A non empty gjson path selects a part
// of the document (e.g. "#.key" or "0.bins.name").
func PrintJSON(w io.Writer, v any, path string) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if path != "" {
		res := gjson.GetBytes(raw, path)
		if !res.Exists() {
			return fmt.Errorf("path %q matches nothing", path)
		}
		raw = []byte(res.Raw)
	}
	out := pretty.Pretty(raw)
	if len(out) == 0 || out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	if isTerminal(w) {
		out = pretty.Color(out, nil)
	}
	_, err = w.Write(out)
	return err
}

// isTerminal reports whether w is a character device
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
