package record

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// Placeholder shown for null or missing values.
const Placeholder = "-"

var editJSONOptions = &pretty.Options{Width: 80, Prefix: "", Indent: "  ", SortKeys: false}

// --------------------------------------------------------------------------
// Display formatting
// --------------------------------------------------------------------------

// Display formats a bin value for a table cell: null becomes "-",
// structures their canonical JSON text, scalars their natural form.
func Display(v Value) string {
	if v.IsNull() {
		return Placeholder
	}
	if v.IsStructure() {
		return v.Canonical()
	}
	return v.natural()
}

// DisplayBin formats the named bin of a record; missing bins show as "-".
func DisplayBin(r Record, name string) string {
	v, ok := r.Bins.Get(name)
	if !ok {
		return Placeholder
	}
	return Display(v)
}

// BinNames returns the union of bin names over all records, in the order
// in which they are first seen.
func BinNames(records []Record) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, r := range records {
		for _, f := range r.Bins {
			if _, ok := seen[f.Name]; ok {
				continue
			}
			seen[f.Name] = struct{}{}
			names = append(names, f.Name)
		}
	}
	return names
}

// --------------------------------------------------------------------------
// Edit formatting
// --------------------------------------------------------------------------

// ForEdit returns v with every string that holds a serialized JSON object
// or array replaced by the decoded structure. The descent continues into
// maps, lists and the decoded structures. Other strings, including ones
// that look like JSON scalars, are kept as they are.
func ForEdit(v Value) Value {
	switch v.Kind() {
	case KindString:
		s, _ := v.Str()
		if parsed, ok := parseStructure(s); ok {
			return ForEdit(parsed)
		}
		return v
	case KindMap:
		fields := make([]Field, len(v.Fields()))
		for i, f := range v.Fields() {
			fields[i] = Field{Name: f.Name, Value: ForEdit(f.Value)}
		}
		return Map(fields...)
	case KindList:
		items := make([]Value, len(v.Items()))
		for i, it := range v.Items() {
			items[i] = ForEdit(it)
		}
		return List(items...)
	default:
		return v
	}
}

// parseStructure decodes s if it is a valid JSON object or array.
func parseStructure(s string) (Value, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || !gjson.Valid(trimmed) {
		return Value{}, false
	}
	if res := gjson.Parse(trimmed); !res.IsObject() && !res.IsArray() {
		return Value{}, false
	}
	parsed, err := ParseJSON([]byte(trimmed))
	if err != nil {
		return Value{}, false
	}
	return parsed, true
}

// EditBins applies ForEdit to every bin.
func EditBins(b Bins) Bins {
	out := make(Bins, len(b))
	for i, f := range b {
		out[i] = Field{Name: f.Name, Value: ForEdit(f.Value)}
	}
	return out
}

// EditText renders bins as the indented JSON document shown in the editor.
func EditText(b Bins) string {
	raw, err := EditBins(b).MarshalJSON()
	if err != nil {
		return "{}"
	}
	return string(pretty.PrettyOptions(raw, editJSONOptions))
}

// ParseEditText parses the editor document back into bins. The document
// must be a JSON object; anything else is a field error on "bins".
func ParseEditText(text string) (Bins, error) {
	v, err := ParseJSON([]byte(text))
	if err != nil {
		return nil, &FieldError{Field: "bins", Err: ErrMalformed, Msg: "Invalid JSON format for bins: " + err.Error()}
	}
	if v.Kind() != KindMap {
		return nil, &FieldError{Field: "bins", Err: ErrMalformed, Msg: "Invalid JSON format for bins: expected an object"}
	}
	return Bins(v.Fields()), nil
}

// ParseTTL parses the ttl form field. Empty input means the store default.
func ParseTTL(text string) (*int64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	ttl, err := strconv.ParseInt(text, 10, 64)
	if err != nil || ttl < TTLNeverExpire {
		return nil, &FieldError{Field: "ttl", Err: ErrInvalid, Msg: "TTL must be a whole number of seconds"}
	}
	return &ttl, nil
}

// EditRecord applies the text of the editor to a copy of r. Identity fields
// are not editable; ttl and bins are replaced.
func EditRecord(r Record, binsText, ttlText string) (Record, error) {
	bins, err := ParseEditText(binsText)
	if err != nil {
		return Record{}, err
	}
	ttl, err := ParseTTL(ttlText)
	if err != nil {
		return Record{}, err
	}
	out := Record{
		Namespace: r.Namespace,
		SetName:   r.SetName,
		Key:       r.Key,
		Bins:      bins,
		TTL:       ttl,
	}
	if err := out.Validate(); err != nil {
		return Record{}, err
	}
	return out, nil
}
