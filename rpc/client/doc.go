// Package client implements driver.IDriver on top of the REST API served by
// `asadmin serve`, so the record browser and the record commands work the
// same against a local driver and a remote backend.
//
// Error responses are mapped back to the driver errors where possible:
// 404 becomes driver.ErrRecordNotFound and the "not connected" message of the
// server becomes driver.ErrNotConnected. All other error responses are
// returned as *StatusError carrying the status code and the server message.
//
// Every operation records its latency in a go-metrics timer; Stats returns
// count, mean, p50, p99 and max per operation.
//
// Usage Example:
//
//	c, err := client.NewRESTClient(
//		common.ClientConfig{
//			Endpoints:     []string{"localhost:8080"},
//			TimeoutSecond: 5,
//			RetryCount:    3,
//		},
//		http.NewHttpClientTransport(),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer c.Close()
//
//	info, err := c.Connect(ctx, driver.ConnectParams{Host: "localhost", Port: 3000})
//	records, err := c.Scan(ctx, "test", "users", 100)
package client
