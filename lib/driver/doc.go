/*
Package driver defines IDriver, the backing store behind the console.

Two implementations exist:

  - aerospike: talks to a real cluster through the native Go client. Namespaces
    and sets are read with info commands, records with scans and single key
    operations.
  - memory: keeps namespaces, sets and records in process. It is used when no
    cluster is available ("mock mode") and by the tests of the packages above.

A third implementation lives in rpc/client and forwards every call to the REST
backend started with `asadmin serve`, so the record browser works the same way
against a local driver or a remote backend.

Searches are key pattern matches evaluated on a bounded scan: at most
SearchScanLimit records are read and at most MaxResults matches are returned.
Every data operation on a disconnected driver fails with ErrNotConnected.
*/
package driver
