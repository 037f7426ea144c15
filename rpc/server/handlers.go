package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/ValentinKolb/asadmin/lib/driver"
	"github.com/ValentinKolb/asadmin/lib/record"
	"github.com/ValentinKolb/asadmin/rpc/common"
)

// maxBodyBytes limits the size of request bodies
const maxBodyBytes = 8 << 20

// errBadRequest marks errors caused by the request rather than the driver
var errBadRequest = errors.New("bad request")

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// writeJSON writes v with the given status code
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		Logger.Errorf("failed to encode response: %v", err)
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		Logger.Debugf("failed to write response: %v", err)
	}
}

// writeError maps err to a status code and writes it as ErrorResponse
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var fieldErr *record.FieldError
	switch {
	case errors.Is(err, errBadRequest), errors.As(err, &fieldErr):
		status = http.StatusBadRequest
	case errors.Is(err, driver.ErrRecordNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		Logger.Warningf("request failed: %v", err)
	}
	writeJSON(w, status, common.ErrorResponse{Error: err.Error()})
}

// badRequest returns an error answered with 400
func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// decode reads a JSON body into v. An empty body leaves v unchanged if
// allowEmpty is set.
func decode(r *http.Request, v any, allowEmpty bool) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return badRequest("failed to read request body: %v", err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		if allowEmpty {
			return nil
		}
		return badRequest("request body is empty")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return badRequest("malformed request body: %v", err)
	}
	return nil
}

// nonNil makes sure empty lists are encoded as [] instead of null
func nonNil[T any](s []T) []T {
	if s == nil {
		return make([]T, 0)
	}
	return s
}

// --------------------------------------------------------------------------
// Connection
// --------------------------------------------------------------------------

func (s *RESTServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "asadmin backend is running\n")
}

func (s *RESTServer) handleConnect(w http.ResponseWriter, r *http.Request) {
	var params driver.ConnectParams
	if err := decode(r, &params, true); err != nil {
		writeError(w, err)
		return
	}
	info, err := s.driver.Connect(r.Context(), s.connectDefaults(params))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *RESTServer) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	if err := s.driver.Disconnect(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *RESTServer) handleClusterInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.driver.ClusterInfo(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// --------------------------------------------------------------------------
// Namespaces and sets
// --------------------------------------------------------------------------

func (s *RESTServer) handleNamespaces(w http.ResponseWriter, r *http.Request) {
	namespaces, err := s.driver.ListNamespaces(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(namespaces))
}

func (s *RESTServer) handleSets(w http.ResponseWriter, r *http.Request) {
	sets, err := s.driver.ListSets(r.Context(), r.PathValue("namespace"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(sets))
}

// --------------------------------------------------------------------------
// Records
// --------------------------------------------------------------------------

func (s *RESTServer) handleScan(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	namespace := q.Get("namespace")
	if namespace == "" {
		writeError(w, badRequest("namespace is required"))
		return
	}
	maxRecords := s.config.MaxRecords
	if raw := q.Get("maxRecords"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, badRequest("invalid maxRecords %q", raw))
			return
		}
		maxRecords = n
	}
	records, err := s.driver.Scan(r.Context(), namespace, q.Get("setName"), maxRecords)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(records))
}

func (s *RESTServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req record.SearchRequest
	if err := decode(r, &req, false); err != nil {
		writeError(w, err)
		return
	}
	if req.Namespace == "" {
		writeError(w, badRequest("namespace is required"))
		return
	}
	if req.SearchType == "" {
		req.SearchType = record.MatchExact
	}
	records, err := s.driver.Search(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(records))
}

func (s *RESTServer) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := s.driver.GetRecord(r.Context(), r.PathValue("namespace"), r.PathValue("setName"), r.PathValue("key"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *RESTServer) handlePutRecord(w http.ResponseWriter, r *http.Request) {
	var rec record.Record
	if err := decode(r, &rec, false); err != nil {
		writeError(w, err)
		return
	}
	if err := rec.Validate(); err != nil {
		writeError(w, err)
		return
	}
	stored, err := s.driver.PutRecord(r.Context(), rec)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

func (s *RESTServer) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.driver.DeleteRecord(r.Context(), r.PathValue("namespace"), r.PathValue("setName"), r.PathValue("key"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, common.DeleteResponse{Deleted: deleted})
}
