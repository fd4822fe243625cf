package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-15")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if d.String() != "2026-03-15" {
		t.Errorf("Expected 2026-03-15, got %s", d.String())
	}

	for _, bad := range []string{"", "2026/03/15", "15-03-2026", "2026-13-01", "2026-02-30", "yesterday"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("Expected error parsing %q", bad)
		}
	}
}

func TestDateComparisons(t *testing.T) {
	a := NewDate(2026, time.March, 15)
	b := NewDate(2026, time.March, 16)

	if !a.Before(b) || b.Before(a) {
		t.Error("Expected a < b")
	}
	if !b.After(a) || a.After(b) {
		t.Error("Expected b > a")
	}
	if !a.Equal(NewDate(2026, time.March, 15)) {
		t.Error("Expected same calendar dates to be equal")
	}
	if !a.AddDays(1).Equal(b) {
		t.Error("Expected AddDays(1) to advance one day")
	}
	if !NewDate(2026, time.January, 31).AddDays(1).Equal(NewDate(2026, time.February, 1)) {
		t.Error("Expected AddDays to roll over month boundaries")
	}
}

func TestDateOfTruncatesTime(t *testing.T) {
	d := DateOf(time.Date(2026, time.July, 4, 23, 59, 59, 0, time.UTC))
	if d.String() != "2026-07-04" {
		t.Errorf("Expected 2026-07-04, got %s", d.String())
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2026, time.December, 31)

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(data) != `"2026-12-31"` {
		t.Errorf("Expected quoted date string, got %s", data)
	}

	var decoded Date
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !decoded.Equal(d) {
		t.Errorf("Expected %v after round trip, got %v", d, decoded)
	}

	if err := json.Unmarshal([]byte(`"not-a-date"`), &decoded); err == nil {
		t.Error("Expected error decoding malformed date")
	}
	if err := json.Unmarshal([]byte(`20261231`), &decoded); err == nil {
		t.Error("Expected error decoding non-string date")
	}
}

func TestDateScan(t *testing.T) {
	var d Date

	if err := d.Scan(time.Date(2026, time.May, 1, 10, 30, 0, 0, time.UTC)); err != nil {
		t.Fatalf("Expected no error scanning time.Time, got %v", err)
	}
	if d.String() != "2026-05-01" {
		t.Errorf("Expected 2026-05-01, got %s", d.String())
	}

	if err := d.Scan("2026-06-02"); err != nil {
		t.Fatalf("Expected no error scanning string, got %v", err)
	}
	if d.String() != "2026-06-02" {
		t.Errorf("Expected 2026-06-02, got %s", d.String())
	}

	if err := d.Scan([]byte("2026-07-03")); err != nil {
		t.Fatalf("Expected no error scanning []byte, got %v", err)
	}
	if d.String() != "2026-07-03" {
		t.Errorf("Expected 2026-07-03, got %s", d.String())
	}

	if err := d.Scan(42); err == nil {
		t.Error("Expected error scanning unsupported type")
	}
}
