// Package record holds the data model of the console (records, namespaces,
// sets, cluster info) and the normalizer that turns bin values into their
// display and edit forms.
//
// Bin values are modelled as the closed variant Value:
//
//	null | string | number | boolean | map (ordered) | list
//
// Numbers keep their literal text and maps keep the order of their fields,
// so a value that is decoded from JSON and encoded again is byte for byte
// identical. This is what makes the editor round trip exact:
//
//	text := record.EditText(rec.Bins)        // strings holding JSON are expanded
//	bins, err := record.ParseEditText(text)  // malformed input is a *FieldError
//
// New records authored through typed form fields are built with Form.Build,
// which applies the coercion rules of Coerce and rejects duplicate bin names
// before anything is written.
package record
