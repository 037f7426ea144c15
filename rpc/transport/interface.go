package transport

import (
	"context"
	"net/http"

	"github.com/ValentinKolb/asadmin/rpc/common"
)

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// IRPCServerTransport is the interface for the REST server transport
type IRPCServerTransport interface {
	// RegisterHandler registers a handler for a route pattern such as
	// "GET /api/namespaces/{namespace}/sets". Must be called before Handler or Listen.
	RegisterHandler(pattern string, handler http.HandlerFunc)
	// Handler returns the handler serving all registered routes together
	// with the middleware the configuration asks for
	Handler(config common.ServerConfig) http.Handler
	// Listen serves Handler(config) on the configured endpoint until ctx is done
	Listen(ctx context.Context, config common.ServerConfig) error
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// Response is a raw response of the server
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the status code is 2xx
func (r Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IRPCClientTransport is the interface for the REST client transport
type IRPCClientTransport interface {
	// Connect initializes the transport with the given configuration
	Connect(config common.ClientConfig) error
	// Send sends a request to one of the endpoints and returns the response.
	// path may carry a query. body may be nil.
	Send(ctx context.Context, method, path string, body []byte) (Response, error)
	// Close closes the transport connection
	Close() error
}
