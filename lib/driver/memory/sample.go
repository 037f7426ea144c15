package memory

import (
	"fmt"

	"github.com/ValentinKolb/asadmin/lib/record"
)

// WithSampleData fills the first namespace with a "users" and a "products"
// set, so the console has something to browse in mock mode.
func WithSampleData() Option {
	return func(m *memoryImpl) {
		if len(m.namespaces) == 0 {
			return
		}
		for _, r := range sampleRecords(m.namespaces[0]) {
			if _, err := m.put(r); err != nil {
				panic(fmt.Sprintf("invalid sample record %s: %v", r.Identity(), err))
			}
		}
	}
}

func sampleRecords(ns string) []record.Record {
	names := []string{"alice", "bob", "bobby", "carol", "dave", "erin", "frank", "grace", "heidi", "ivan",
		"judy", "mallory", "niaj", "olivia", "peggy", "rupert", "sybil", "trent", "victor", "walter",
		"xavier", "yvonne", "zoe", "jimbob", "bobcat"}

	out := make([]record.Record, 0, len(names)+3)
	for i, name := range names {
		profile := fmt.Sprintf(`{"tags":["user"],"address":{"city":"Ulm","zip":"%05d"}}`, 89000+i)
		out = append(out, record.Record{
			Namespace: ns,
			SetName:   "users",
			Key:       name,
			Bins: record.Bins{
				{Name: "name", Value: record.String(name)},
				{Name: "age", Value: record.Int(int64(20 + i))},
				{Name: "active", Value: record.Bool(i%3 != 0)},
				{Name: "profile", Value: record.String(profile)},
			},
		})
	}

	products := []struct {
		key   string
		price float64
		stock int64
	}{
		{"sku-1001", 9.99, 12},
		{"sku-1002", 24.5, 0},
		{"sku-1003", 3, 250},
	}
	for _, p := range products {
		out = append(out, record.Record{
			Namespace: ns,
			SetName:   "products",
			Key:       p.key,
			Bins: record.Bins{
				{Name: "price", Value: record.Float(p.price)},
				{Name: "stock", Value: record.Int(p.stock)},
				{Name: "dimensions", Value: record.List(record.Int(10), record.Int(20), record.Null())},
			},
		})
	}
	return out
}
