package feature

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"

	"github.com/kailas-cloud/mqttguard/internal/domain"
)

func validRecord() Record {
	rec := make(Record, Count)
	for i, f := range Fields() {
		if f.Kind() == Boolean {
			rec[f.Name()] = i%2 == 0
		} else {
			rec[f.Name()] = json.Number("7")
		}
	}
	return rec
}

func TestDecode_Object(t *testing.T) {
	rec, err := Decode([]byte(` {"ip_df": true, "ip_ttl": 64, "tcp_tdelta": -3.5} `))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec["ip_df"] != true {
		t.Errorf("ip_df: got %v", rec["ip_df"])
	}
	if rec["ip_ttl"] != json.Number("64") {
		t.Errorf("ip_ttl: got %#v", rec["ip_ttl"])
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"not json", "not json"},
		{"json string", `"not json"`},
		{"array", `[1, 2, 3]`},
		{"number", `42`},
		{"null", `null`},
		{"truncated", `{"ip_df": tru`},
		{"trailing object", `{"a": 1}{"b": 2}`},
		{"trailing garbage", `{"a": 1} x`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode([]byte(tc.body))
			if !errors.Is(err, domain.ErrMalformedPayload) {
				t.Fatalf("expected ErrMalformedPayload, got %v", err)
			}
		})
	}
}

func TestEncode_CanonicalOrder(t *testing.T) {
	rec := make(Record, Count)
	for i, name := range Order() {
		f, _, _ := Lookup(name)
		if f.Kind() == Boolean {
			rec[name] = json.Number("1")
			continue
		}
		rec[name] = json.Number(jsonInt(i + 100))
	}

	vec, err := Encode(rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != Count {
		t.Fatalf("len: got %d, want %d", len(vec), Count)
	}
	for i, f := range Fields() {
		want := float64(i + 100)
		if f.Kind() == Boolean {
			want = 1
		}
		if vec[i] != want {
			t.Errorf("column %d (%s): got %v, want %v", i, f.Name(), vec[i], want)
		}
	}
}

func TestEncode_BooleanCoercionMatchesNumeric(t *testing.T) {
	withBools := validRecord()
	withNums := validRecord()
	for _, f := range Fields() {
		if f.Kind() != Boolean {
			continue
		}
		if withBools[f.Name()] == true {
			withNums[f.Name()] = json.Number("1")
		} else {
			withNums[f.Name()] = json.Number("0")
		}
	}

	a, err := Encode(withBools)
	if err != nil {
		t.Fatalf("bools: %v", err)
	}
	b, err := Encode(withNums)
	if err != nil {
		t.Fatalf("numbers: %v", err)
	}
	if !slices.Equal(a, b) {
		t.Errorf("vectors differ:\nbools:   %v\nnumbers: %v", a, b)
	}
}

func TestEncode_NumbersPassThrough(t *testing.T) {
	rec := validRecord()
	rec["tcp_tdelta"] = json.Number("-1234.5")
	rec["tcp_l20_avg"] = 3.25
	rec["mqtt_len"] = 12

	vec, err := Encode(rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vec[18] != -1234.5 || vec[19] != 3.25 || vec[20] != 12 {
		t.Errorf("got %v %v %v", vec[18], vec[19], vec[20])
	}
}

func TestEncode_MissingFields(t *testing.T) {
	vec, err := Encode(Record{"ip_df": true})
	if vec != nil {
		t.Error("expected nil vector on error")
	}

	var se *domain.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SchemaError, got %v", err)
	}
	if !errors.Is(err, domain.ErrSchemaMismatch) {
		t.Error("expected ErrSchemaMismatch")
	}
	if len(se.Missing) != Count-1 {
		t.Errorf("missing: got %d, want %d", len(se.Missing), Count-1)
	}
	if se.Missing[0] != "packet_len" || slices.Contains(se.Missing, "ip_df") {
		t.Errorf("unexpected missing list: %v", se.Missing)
	}
}

func TestEncode_UnknownFieldRejected(t *testing.T) {
	rec := validRecord()
	rec["zeta"] = json.Number("1")
	rec["alpha"] = true

	_, err := Encode(rec)

	var se *domain.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SchemaError, got %v", err)
	}
	if !slices.Equal(se.Unknown, []string{"alpha", "zeta"}) {
		t.Errorf("unknown: got %v", se.Unknown)
	}
	if len(se.Missing) != 0 || len(se.Invalid) != 0 {
		t.Errorf("unexpected extra problems: %+v", se)
	}
}

func TestEncode_InvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		field  string
		value  any
		reason string
	}{
		{"bool for numeric", "ip_ttl", true, "expected number, got boolean"},
		{"string for numeric", "ip_ttl", "64", "expected number, got string"},
		{"null for numeric", "ip_len", nil, "expected number, got null"},
		{"array for numeric", "ip_len", []any{json.Number("1")}, "expected number, got array"},
		{"object for boolean", "tcp_syn", map[string]any{}, "expected boolean, got object"},
		{"string for boolean", "tcp_syn", "true", "expected boolean, got string"},
		{"two for boolean", "tcp_syn", json.Number("2"), "expected boolean or 0/1"},
		{"fraction for boolean", "tcp_syn", json.Number("0.5"), "expected boolean or 0/1"},
		{"overflow", "tcp_tdelta", json.Number("1e400"), "number out of range"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := validRecord()
			rec[tc.field] = tc.value

			_, err := Encode(rec)

			var se *domain.SchemaError
			if !errors.As(err, &se) {
				t.Fatalf("expected *SchemaError, got %v", err)
			}
			if len(se.Invalid) != 1 {
				t.Fatalf("invalid: got %+v", se.Invalid)
			}
			if se.Invalid[0].Name != tc.field || se.Invalid[0].Reason != tc.reason {
				t.Errorf("got %+v, want {%s %s}", se.Invalid[0], tc.field, tc.reason)
			}
		})
	}
}

func TestEncode_Deterministic(t *testing.T) {
	rec := validRecord()
	first, err := Encode(rec)
	if err != nil {
		t.Fatal(err)
	}
	for _i := 0; _i < 10; _i++ {
		again, err := Encode(rec)
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(first, again) {
			t.Fatal("Encode is not deterministic")
		}
	}
}

func jsonInt(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}
