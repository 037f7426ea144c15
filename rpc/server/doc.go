// Package server implements the REST backend of the console. Every route is
// a thin translation of an HTTP request into one call of a driver.IDriver
// and of its result into a JSON response.
//
// Routes:
//
//	POST   /api/connect                          connect to a cluster
//	POST   /api/disconnect                       close the connection
//	GET    /api/cluster-info                     connection status and nodes
//	GET    /api/namespaces                       namespaces with statistics
//	GET    /api/namespaces/{namespace}/sets      sets of a namespace
//	GET    /api/records/scan                     scan a set (?namespace&setName&maxRecords)
//	POST   /api/records/search                   key search in a set
//	POST   /api/records                          create or replace a record
//	GET    /api/records/{namespace}/{set}/{key}  read one record
//	DELETE /api/records/{namespace}/{set}/{key}  delete one record
//	GET    /api/records/{namespace}/{key}        read one record of the null set
//	DELETE /api/records/{namespace}/{key}        delete one record of the null set
//
// Failures are answered with {"error": "..."}: 400 for invalid input, 404
// for a missing record and 500 otherwise. A maxRecords of zero or below is
// invalid input; an absent maxRecords uses the configured default.
//
// Usage Example:
//
//	drv, err := server.NewDriver(config)
//	if err != nil {
//	  log.Fatal(err)
//	}
//
//	s := server.NewRESTServer(config, http.NewHttpServerTransport(), drv)
//
//	// blocks until ctx is cancelled
//	if err := s.Serve(ctx); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// The memory driver is connected when the server starts, the aerospike
// driver waits for a connect request.
package server
