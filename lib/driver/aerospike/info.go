package aerospike

import (
	"encoding/hex"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ValentinKolb/asadmin/lib/record"
	as "github.com/aerospike/aerospike-client-go/v7"
)

// --------------------------------------------------------------------------
// Info protocol parsing
// --------------------------------------------------------------------------

// parsePairs parses "k1=v1:k2=v2" into a map. Namespace statistics are
// separated by ';' on current servers, so both separators are accepted.
// Items without '=' are ignored.
func parsePairs(s string) map[string]string {
	out := make(map[string]string)
	for _, item := range strings.FieldsFunc(s, func(r rune) bool { return r == ':' || r == ';' }) {
		k, v, ok := strings.Cut(item, "=")
		if !ok || k == "" {
			continue
		}
		out[k] = v
	}
	return out
}

// parseList splits a ';' separated info response, dropping empty entries.
func parseList(s string) []string {
	var out []string
	for _, item := range strings.Split(strings.TrimSpace(s), ";") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// parseInt returns 0 for missing or malformed numbers.
func parseInt(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// parseNamespace builds a namespace from the response of "namespace/<ns>".
func parseNamespace(name, info string) record.Namespace {
	cfg := parsePairs(info)
	return record.Namespace{
		Name:              name,
		MasterObjects:     parseInt(cfg["master-objects"]),
		ReplicationFactor: parseInt(cfg["replication-factor"]),
		StorageEngine:     cfg["storage-engine"],
		Config:            cfg,
	}
}

// parseSets builds the sets of a namespace from the response of "sets/<ns>".
// Each set is a ';' terminated list of ':' separated pairs.
func parseSets(namespace, info string) []record.Set {
	out := make([]record.Set, 0)
	for _, entry := range parseList(info) {
		data := make(map[string]string)
		for _, pair := range strings.Split(entry, ":") {
			if k, v, ok := strings.Cut(pair, "="); ok {
				data[k] = v
			}
		}
		name, ok := data["set"]
		if !ok {
			// servers before 3.9 call it set_name
			if name, ok = data["set_name"]; !ok {
				continue
			}
		}
		out = append(out, record.Set{
			Namespace:       namespace,
			SetName:         name,
			ObjectCount:     parseInt(data["objects"]),
			MemoryDataBytes: parseInt(data["memory_data_bytes"]),
			DeviceDataBytes: parseInt(data["device_data_bytes"]),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SetName < out[j].SetName })
	return out
}

// --------------------------------------------------------------------------
// Record conversion
// --------------------------------------------------------------------------

// DigestKeyPrefix marks the key of a record that was stored without its
// user key. The rest of the key is the hex encoded digest.
const DigestKeyPrefix = "digest:"

// keyString returns the user key of a record, or the prefixed hex digest if
// the key was not stored with the record.
func keyString(key *as.Key) string {
	if key == nil {
		return ""
	}
	if v := key.Value(); v != nil && v.GetObject() != nil {
		if s, ok := v.GetObject().(string); ok {
			return s
		}
		return v.String()
	}
	return DigestKeyPrefix + hex.EncodeToString(key.Digest())
}

// recordKey builds the client key for a record key. Keys produced by
// keyString for digest only records address the record by its digest.
func recordKey(namespace, setName, key string) (*as.Key, as.Error) {
	if digest, ok := parseDigestKey(key); ok {
		return as.NewKeyWithDigest(namespace, setName, nil, digest)
	}
	return as.NewKey(namespace, setName, key)
}

func parseDigestKey(key string) ([]byte, bool) {
	raw, ok := strings.CutPrefix(key, DigestKeyPrefix)
	if !ok || len(raw) != 2*20 {
		return nil, false
	}
	digest, err := hex.DecodeString(raw)
	if err != nil {
		return nil, false
	}
	return digest, true
}

// toBins converts client bins to sorted record bins.
func toBins(bins as.BinMap) record.Bins {
	names := make([]string, 0, len(bins))
	for name := range bins {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make(record.Bins, 0, len(bins))
	for _, name := range names {
		out = append(out, record.Field{Name: name, Value: record.FromNative(bins[name])})
	}
	return out
}

// fromBins converts record bins to a client bin map.
func fromBins(bins record.Bins) as.BinMap {
	out := make(as.BinMap, len(bins))
	for _, f := range bins {
		out[f.Name] = f.Value.ToNative()
	}
	return out
}

// toRecord converts a client record. expiration is the ttl in seconds the
// client reports; math.MaxUint32 means the record never expires.
func toRecord(namespace, setName string, rec *as.Record, now time.Time) record.Record {
	gen := rec.Generation
	out := record.Record{
		Namespace:  namespace,
		SetName:    setName,
		Key:        keyString(rec.Key),
		Bins:       toBins(rec.Bins),
		Generation: &gen,
	}
	if out.SetName == "" && rec.Key != nil {
		out.SetName = rec.Key.SetName()
	}
	ttl := record.TTLNeverExpire
	out.Expiration = record.ExpirationNever
	if rec.Expiration != math.MaxUint32 {
		ttl = int64(rec.Expiration)
		out.Expiration = now.Add(time.Duration(rec.Expiration) * time.Second).UTC().Format(time.RFC3339)
	}
	out.TTL = &ttl
	return out
}

// expiration maps a record ttl to the write policy expiration: nil keeps the
// namespace default, TTLNeverExpire disables expiration.
func expiration(ttl *int64) uint32 {
	switch {
	case ttl == nil, *ttl == 0:
		return as.TTLServerDefault
	case *ttl == record.TTLNeverExpire:
		return as.TTLDontExpire
	case *ttl >= math.MaxUint32-1:
		return math.MaxUint32 - 2
	default:
		return uint32(*ttl)
	}
}
