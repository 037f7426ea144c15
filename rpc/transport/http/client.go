package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/asadmin/rpc/common"
	"github.com/ValentinKolb/asadmin/rpc/transport"
)

func NewHttpClientTransport() transport.IRPCClientTransport {
	return &httpClientTransport{}
}

type httpClientTransport struct {
	serverURLs []*url.URL
	client     *http.Client
	counter    uint32
	retryCount int
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *httpClientTransport) Connect(config common.ClientConfig) error {
	if len(config.Endpoints) == 0 {
		return fmt.Errorf("no endpoints configured")
	}

	// Parse each server URL
	parsedURLs := make([]*url.URL, len(config.Endpoints))
	for i, server := range config.Endpoints {
		// Endpoints may be given as host:port
		if !strings.Contains(server, "://") {
			server = "http://" + server
		}
		parsedURL, err := url.Parse(strings.TrimRight(server, "/"))
		if err != nil {
			return err
		}
		parsedURLs[i] = parsedURL
	}

	// Create client with default transport
	client := &http.Client{
		Timeout: time.Duration(config.TimeoutSecond) * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	// Set the client and server URLs
	t.client = client
	t.serverURLs = parsedURLs
	t.counter = 0
	t.retryCount = max(1, config.RetryCount)

	// No error
	return nil
}

func (t *httpClientTransport) Send(ctx context.Context, method, path string, body []byte) (transport.Response, error) {
	// Check if the transport is initialized
	if t.client == nil {
		return transport.Response{}, fmt.Errorf("http transport not initialized")
	}

	// Send the request (with retries), each attempt on the next server via round-robin
	var lastErr error
	for i := 0; i < t.retryCount; i++ {
		idx := atomic.AddUint32(&t.counter, 1) % uint32(len(t.serverURLs))
		resp, err := t.do(ctx, t.serverURLs[idx].String()+path, method, body)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		// A cancelled request is not retried
		if ctx.Err() != nil {
			return transport.Response{}, ctx.Err()
		}
		Logger.Debugf("%s %s failed (attempt %d/%d): %v", method, path, i+1, t.retryCount, err)
	}
	return transport.Response{}, lastErr
}

func (t *httpClientTransport) Close() error {
	// Close the client
	if t.client != nil {
		t.client.CloseIdleConnections()
	}

	// Reset the client and server URLs
	t.client = nil
	t.serverURLs = nil

	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// do sends a single request and reads the complete response
func (t *httpClientTransport) do(ctx context.Context, requestURL, method string, body []byte) (transport.Response, error) {
	// Create the request
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpRequest, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return transport.Response{}, err
	}
	if body != nil {
		httpRequest.Header.Set("Content-Type", "application/json")
	}
	httpRequest.Header.Set("Accept", "application/json")

	httpResponse, err := t.client.Do(httpRequest)
	if err != nil {
		return transport.Response{}, err
	}
	defer func() {
		if err := httpResponse.Body.Close(); err != nil {
			Logger.Errorf("Failed to close response body: %v", err)
		}
	}()

	// Read the response body
	respBody, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return transport.Response{}, err
	}
	return transport.Response{StatusCode: httpResponse.StatusCode, Body: respBody}, nil
}
