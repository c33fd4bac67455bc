package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDateParseAndString(t *testing.T) {
	date, err := ParseDate("2025-06-10")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	if date != (Date{Year: 2025, Month: time.June, Day: 10}) {
		t.Fatalf("unexpected date: %+v", date)
	}
	if date.String() != "2025-06-10" {
		t.Fatalf("unexpected string: %s", date.String())
	}

	if _, err := ParseDate("10/06/2025"); err == nil {
		t.Fatal("expected parse error for unsupported layout")
	}
}

func TestDateOfNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	late := time.Date(2025, time.June, 11, 1, 30, 0, 0, loc)

	if got := DateOf(late); got != (Date{Year: 2025, Month: time.June, Day: 10}) {
		t.Fatalf("expected UTC calendar day, got %+v", got)
	}
}

func TestDateAddDaysCrossesMonths(t *testing.T) {
	date := Date{Year: 2025, Month: time.June, Day: 28}
	if got := date.AddDays(5); got != (Date{Year: 2025, Month: time.July, Day: 3}) {
		t.Fatalf("unexpected date: %+v", got)
	}
	if got := date.AddDays(-28); got != (Date{Year: 2025, Month: time.May, Day: 31}) {
		t.Fatalf("unexpected date: %+v", got)
	}
}

func TestDateOrdering(t *testing.T) {
	earlier := Date{Year: 2025, Month: time.June, Day: 10}
	later := Date{Year: 2025, Month: time.June, Day: 11}

	if !earlier.Before(later) || later.Before(earlier) {
		t.Fatal("expected earlier < later")
	}
	if !later.After(earlier) || earlier.After(later) {
		t.Fatal("expected later > earlier")
	}
	if earlier.Before(earlier) || earlier.After(earlier) {
		t.Fatal("expected a date not to order against itself")
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	type payload struct {
		Day Date `json:"day"`
	}

	data, err := json.Marshal(payload{Day: Date{Year: 2025, Month: time.June, Day: 10}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"day":"2025-06-10"}` {
		t.Fatalf("unexpected json: %s", data)
	}

	var decoded payload
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Day != (Date{Year: 2025, Month: time.June, Day: 10}) {
		t.Fatalf("unexpected decoded date: %+v", decoded.Day)
	}

	if err := json.Unmarshal([]byte(`{"day":20250610}`), &decoded); err == nil {
		t.Fatal("expected error for non-string date")
	}
}
