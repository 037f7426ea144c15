package record

import (
	"encoding/json"
	"fmt"
	"strings"
)

// --------------------------------------------------------------------------
// Bins
// --------------------------------------------------------------------------

// Bins is the ordered set of named fields of a record. Names are unique.
type Bins []Field

// NewBins builds bins from name/value fields. A repeated name is an error.
func NewBins(fields ...Field) (Bins, error) {
	out := make(Bins, 0, len(fields))
	for _, f := range fields {
		if _, ok := out.Get(f.Name); ok {
			return nil, &FieldError{Field: f.Name, Err: ErrDuplicateBin}
		}
		out = append(out, f)
	}
	return out, nil
}

// Get returns the value of a bin.
func (b Bins) Get(name string) (Value, bool) {
	for _, f := range b {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Set writes a bin, keeping the position of an existing one.
func (b *Bins) Set(name string, v Value) {
	for i := range *b {
		if (*b)[i].Name == name {
			(*b)[i].Value = v
			return
		}
	}
	*b = append(*b, Field{Name: name, Value: v})
}

// Names returns the bin names in order.
func (b Bins) Names() []string {
	names := make([]string, len(b))
	for i, f := range b {
		names[i] = f.Name
	}
	return names
}

// AsValue returns the bins as a map value.
func (b Bins) AsValue() Value { return Map(b...) }

// Clone returns a deep copy.
func (b Bins) Clone() Bins {
	if b == nil {
		return nil
	}
	out := make(Bins, len(b))
	for i, f := range b {
		out[i] = Field{Name: f.Name, Value: f.Value.Clone()}
	}
	return out
}

// MarshalJSON writes the bins as a JSON object in bin order.
func (b Bins) MarshalJSON() ([]byte, error) {
	return Map(b...).MarshalJSON()
}

// UnmarshalJSON reads a JSON object (or null) into the bins.
func (b *Bins) UnmarshalJSON(data []byte) error {
	v, err := ParseJSON(data)
	if err != nil {
		return err
	}
	switch v.Kind() {
	case KindNull:
		*b = nil
	case KindMap:
		*b = Bins(v.Fields())
	default:
		return fmt.Errorf("bins must be a JSON object, got %s", v.Kind())
	}
	return nil
}

// --------------------------------------------------------------------------
// Record
// --------------------------------------------------------------------------

// ExpirationNever marks a record that does not expire.
const ExpirationNever = "never"

// TTLNeverExpire is the ttl that disables expiration of a record.
const TTLNeverExpire int64 = -1

// Record is one row of a set.
type Record struct {
	Namespace  string  `json:"namespace"`
	SetName    string  `json:"setName"`
	Key        string  `json:"key"`
	Bins       Bins    `json:"bins"`
	TTL        *int64  `json:"ttl"`                  // nil uses the store default
	Generation *uint32 `json:"generation,omitempty"` // read only
	Expiration string  `json:"expiration,omitempty"` // display only: RFC 3339 timestamp or ExpirationNever
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := r
	out.Bins = r.Bins.Clone()
	if r.TTL != nil {
		ttl := *r.TTL
		out.TTL = &ttl
	}
	if r.Generation != nil {
		gen := *r.Generation
		out.Generation = &gen
	}
	return out
}

// Identity returns the (namespace, set, key) triple identifying the record.
func (r Record) Identity() string {
	return r.Namespace + "/" + r.SetName + "/" + r.Key
}

// Validate checks the invariants of a record that is about to be written.
// An empty SetName is the null set of the namespace.
func (r Record) Validate() error {
	switch {
	case strings.TrimSpace(r.Namespace) == "":
		return &FieldError{Field: "namespace", Err: ErrRequired}
	case r.Key == "":
		return &FieldError{Field: "key", Err: ErrRequired}
	case len(r.Bins) == 0:
		return &FieldError{Field: "bins", Err: ErrNoBins}
	}
	seen := make(map[string]struct{}, len(r.Bins))
	for _, f := range r.Bins {
		if f.Name == "" {
			return &FieldError{Field: "bins", Err: ErrRequired, Msg: "bin name is empty"}
		}
		if _, ok := seen[f.Name]; ok {
			return &FieldError{Field: f.Name, Err: ErrDuplicateBin}
		}
		seen[f.Name] = struct{}{}
	}
	if r.TTL != nil && *r.TTL < TTLNeverExpire {
		return &FieldError{Field: "ttl", Err: ErrInvalid, Msg: fmt.Sprintf("ttl %d is not allowed", *r.TTL)}
	}
	return nil
}

// --------------------------------------------------------------------------
// Namespaces, sets and cluster info
// --------------------------------------------------------------------------

// Namespace is a top-level logical database.
type Namespace struct {
	Name              string            `json:"name"`
	MasterObjects     int64             `json:"masterObjects"`
	ReplicationFactor int64             `json:"replicationFactor,omitempty"`
	StorageEngine     string            `json:"storageEngine,omitempty"`
	Config            map[string]string `json:"config,omitempty"`
	Sets              []Set             `json:"sets,omitempty"`
}

// Set is a named subdivision of a namespace.
type Set struct {
	Namespace       string `json:"namespace,omitempty"`
	SetName         string `json:"setName"`
	ObjectCount     int64  `json:"objectCount"`
	MemoryDataBytes int64  `json:"memoryDataBytes"`
	DeviceDataBytes int64  `json:"deviceDataBytes"`
}

// Node is one member of the connected cluster.
type Node struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Active  bool   `json:"active"`
}

// ConnectionInfo describes the connection status of the backend.
type ConnectionInfo struct {
	Connected   bool   `json:"connected"`
	ClusterName string `json:"clusterName,omitempty"`
	Nodes       []Node `json:"nodes,omitempty"`
	Message     string `json:"message,omitempty"`
}

// --------------------------------------------------------------------------
// Key search
// --------------------------------------------------------------------------

// MatchType selects how a search pattern is compared with record keys.
type MatchType string

const (
	MatchExact    MatchType = "EXACT"
	MatchPrefix   MatchType = "PREFIX"
	MatchSuffix   MatchType = "SUFFIX"
	MatchContains MatchType = "CONTAINS"
)

// ParseMatchType parses a match type name (case insensitive).
func ParseMatchType(s string) (MatchType, error) {
	switch mt := MatchType(strings.ToUpper(strings.TrimSpace(s))); mt {
	case MatchExact, MatchPrefix, MatchSuffix, MatchContains:
		return mt, nil
	case "":
		return MatchExact, nil
	default:
		return "", fmt.Errorf("invalid match type %q (expected one of EXACT, PREFIX, SUFFIX, CONTAINS)", s)
	}
}

// Matches reports whether key matches pattern under the match type.
func (m MatchType) Matches(key, pattern string) bool {
	switch m {
	case MatchExact:
		return key == pattern
	case MatchPrefix:
		return strings.HasPrefix(key, pattern)
	case MatchSuffix:
		return strings.HasSuffix(key, pattern)
	case MatchContains:
		return strings.Contains(key, pattern)
	default:
		return false
	}
}

// UnmarshalJSON accepts the match type names in any case.
func (m *MatchType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	mt, err := ParseMatchType(s)
	if err != nil {
		return err
	}
	*m = mt
	return nil
}

// SearchRequest is a filtered query against one set.
type SearchRequest struct {
	Namespace     string    `json:"namespace"`
	SetName       string    `json:"setName"`
	SearchPattern string    `json:"searchPattern"`
	SearchType    MatchType `json:"searchType"`
	MaxResults    int       `json:"maxResults,omitempty"`
}
