package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestRecordFromMap_IgnoresModelRawMessage(t *testing.T) {
	rec := RecordFromMap(map[string]interface{}{
		"amount":      json.Number("20000"),
		"purpose":     "ăn sáng",
		"raw_message": "something the model invented",
	})

	if rec.RawMessage != "" {
		t.Errorf("RawMessage = %q, want empty until stamped", rec.RawMessage)
	}
	if rec.Amount != json.Number("20000") {
		t.Errorf("Amount = %v, want 20000", rec.Amount)
	}
	if rec.Category != nil {
		t.Errorf("Category = %v, want nil for missing field", rec.Category)
	}
}

func TestDisplay(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{"nil", nil, ""},
		{"number", json.Number("2000000"), "2000000"},
		{"string", "ăn uống", "ăn uống"},
		{"bool", true, "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Display(tt.in); got != tt.want {
				t.Errorf("Display(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLedgerRow_Values(t *testing.T) {
	userID := int64(9)
	ingested := time.Date(2024, 1, 1, 0, 0, 0, 123_000_000, time.FixedZone("ICT", 7*3600))
	rec := &Record{
		Amount:     json.Number("20000"),
		Purpose:    "ăn sáng",
		Category:   "ăn uống",
		Time:       "2024-01-01T07:00:00+07:00",
		Source:     "chưa rõ",
		RawMessage: "an sang 20k",
	}

	got := NewLedgerRow(ingested, 1, &userID, "u", rec).Values()

	want := []interface{}{
		"2023-12-31T17:00:00.123Z",
		int64(1),
		int64(9),
		"u",
		json.Number("20000"),
		"ăn sáng",
		"ăn uống",
		"2024-01-01T07:00:00+07:00",
		"chưa rõ",
		"an sang 20k",
	}
	if len(got) != len(want) {
		t.Fatalf("len(Values()) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("column %d = %#v, want %#v", i, got[i], want[i])
		}
	}
}

func TestLedgerRow_ValuesWithoutSender(t *testing.T) {
	got := NewLedgerRow(time.Now(), 1, nil, "", &Record{RawMessage: "x"}).Values()
	if got[2] != nil {
		t.Errorf("user id column = %#v, want nil", got[2])
	}
	if got[3] != "" {
		t.Errorf("username column = %#v, want empty", got[3])
	}
}

func TestLedgerColumnsMatchValues(t *testing.T) {
	row := NewLedgerRow(time.Now(), 1, nil, "", &Record{})
	if len(LedgerColumns) != len(row.Values()) {
		t.Fatalf("LedgerColumns has %d names, Values returns %d cells", len(LedgerColumns), len(row.Values()))
	}
}
