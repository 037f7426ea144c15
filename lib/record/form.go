package record

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldType is the declared type of a bin authored through the new-record form.
type FieldType string

const (
	FieldString FieldType = "string"
	FieldNumber FieldType = "number"
	FieldBool   FieldType = "boolean"
	FieldJSON   FieldType = "json"
)

// ParseFieldType parses a declared bin type. Empty input means string.
func ParseFieldType(s string) (FieldType, error) {
	switch ft := FieldType(strings.ToLower(strings.TrimSpace(s))); ft {
	case "":
		return FieldString, nil
	case FieldString, FieldNumber, FieldBool, FieldJSON:
		return ft, nil
	case "bool":
		return FieldBool, nil
	case "structured", "object", "map", "list":
		return FieldJSON, nil
	default:
		return "", fmt.Errorf("invalid bin type %q (expected one of string, number, boolean, json)", s)
	}
}

// BinInput is one bin row of the new-record form, as raw text.
type BinInput struct {
	Name  string
	Value string
	Type  FieldType
}

// ParseBinInput parses a bin written as "name[:type]=value". The value is
// everything after the first '='.
func ParseBinInput(spec string) (BinInput, error) {
	head, value, ok := strings.Cut(spec, "=")
	if !ok {
		return BinInput{}, fmt.Errorf("invalid bin %q: expected name[:type]=value", spec)
	}
	name, typ, _ := strings.Cut(head, ":")
	ft, err := ParseFieldType(typ)
	if err != nil {
		return BinInput{}, fmt.Errorf("invalid bin %q: %w", spec, err)
	}
	return BinInput{Name: strings.TrimSpace(name), Value: value, Type: ft}, nil
}

// ParseBinLines parses one bin per non blank line with ParseBinInput.
func ParseBinLines(text string) ([]BinInput, error) {
	var out []BinInput
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		in, err := ParseBinInput(line)
		if err != nil {
			return nil, &FieldError{Field: "bins", Err: ErrMalformed, Msg: err.Error()}
		}
		out = append(out, in)
	}
	return out, nil
}

// Coerce converts the raw text of a bin row to its declared type. omit is
// true when the row carries no value and must not be written. Boolean rows
// are never omitted: anything but "true" is an explicit false.
func Coerce(in BinInput) (v Value, omit bool, err error) {
	if in.Type == FieldBool {
		return Bool(strings.TrimSpace(in.Value) == "true"), false, nil
	}
	if in.Value == "" {
		return Value{}, true, nil
	}
	switch in.Type {
	case FieldNumber:
		text := strings.TrimSpace(in.Value)
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return Int(i), false, nil
		}
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Value{}, false, &FieldError{Field: in.Name, Err: ErrInvalid, Msg: fmt.Sprintf("%q is not a number", in.Value)}
		}
		return Float(f), false, nil
	case FieldJSON:
		parsed, err := ParseJSON([]byte(in.Value))
		if err != nil {
			return Value{}, false, &FieldError{Field: in.Name, Err: ErrMalformed, Msg: "invalid JSON: " + err.Error()}
		}
		return parsed, false, nil
	case FieldString, "":
		return String(in.Value), false, nil
	default:
		return Value{}, false, &FieldError{Field: in.Name, Err: ErrInvalid, Msg: fmt.Sprintf("unknown type %q", in.Type)}
	}
}

// Form is the raw input of the new-record form.
type Form struct {
	Namespace string
	SetName   string
	Key       string
	TTL       string
	Bins      []BinInput
}

// Build validates the form and produces the record to write. Nothing is
// produced when any field fails; the first failure is returned.
func (f Form) Build() (Record, error) {
	if f.Namespace == "" || f.SetName == "" || f.Key == "" {
		missing := "namespace"
		switch {
		case f.Namespace == "":
		case f.SetName == "":
			missing = "setName"
		default:
			missing = "key"
		}
		return Record{}, &FieldError{Field: missing, Err: ErrRequired, Msg: "Namespace, Set Name, and Key are required"}
	}

	bins := Bins{}
	for _, in := range f.Bins {
		// rows without a name are ignored, as are empty non boolean rows
		if in.Name == "" || (in.Value == "" && in.Type != FieldBool) {
			continue
		}
		if _, dup := bins.Get(in.Name); dup {
			return Record{}, &FieldError{Field: in.Name, Err: ErrDuplicateBin}
		}
		v, omit, err := Coerce(in)
		if err != nil {
			return Record{}, err
		}
		if omit {
			continue
		}
		bins = append(bins, Field{Name: in.Name, Value: v})
	}
	if len(bins) == 0 {
		return Record{}, &FieldError{Field: "bins", Err: ErrNoBins}
	}

	ttl, err := ParseTTL(f.TTL)
	if err != nil {
		return Record{}, err
	}

	r := Record{
		Namespace: f.Namespace,
		SetName:   f.SetName,
		Key:       f.Key,
		Bins:      bins,
		TTL:       ttl,
	}
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	return r, nil
}
