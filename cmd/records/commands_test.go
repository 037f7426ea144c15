package records

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ValentinKolb/asadmin/lib/record"
)

func testRecords() []record.Record {
	return []record.Record{
		{Key: "alice", Bins: record.Bins{{Name: "name", Value: record.String("Alice")}, {Name: "age", Value: record.Int(30)}}},
		{Key: "bob", Bins: record.Bins{{Name: "name", Value: record.String("Bob")}, {Name: "tags", Value: record.List(record.String("x"))}}},
		{Key: "carol", Bins: record.Bins{{Name: "age", Value: record.Int(41)}}},
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	if err := writeTable(&buf, testRecords(), 10, 1); err != nil {
		t.Fatalf("writeTable failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d:\n%s", len(lines), buf.String())
	}
	if fields := strings.Fields(lines[0]); strings.Join(fields, ",") != "KEY,NAME,AGE,TAGS" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if fields := strings.Fields(lines[2]); strings.Join(fields, ",") != `bob,Bob,-,["x"]` {
		t.Errorf("unexpected row %q", lines[2])
	}
	if lines[5] != "page 1 of 1 (3 records)" {
		t.Errorf("unexpected footer %q", lines[5])
	}
}

func TestWriteTablePaging(t *testing.T) {
	records := make([]record.Record, 25)
	for i := range records {
		records[i] = record.Record{Key: string(rune('a' + i)), Bins: record.Bins{{Name: "n", Value: record.Int(int64(i))}}}
	}

	var buf bytes.Buffer
	if err := writeTable(&buf, records, 10, 3); err != nil {
		t.Fatalf("writeTable failed: %v", err)
	}
	if !strings.Contains(buf.String(), "page 3 of 3 (25 records)") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "\nj ") || !strings.Contains(buf.String(), "\nu ") {
		t.Errorf("page 3 should hold keys u-y:\n%s", buf.String())
	}

	if err := writeTable(&buf, records, 10, 4); err == nil {
		t.Error("expected error for page 4 of 3")
	}
	if err := writeTable(&buf, records, 30, 1); err == nil {
		t.Error("expected error for page size 30")
	}

	buf.Reset()
	if err := writeTable(&buf, nil, 20, 1); err != nil {
		t.Fatalf("writeTable failed: %v", err)
	}
	if buf.String() != "no records\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
}
