// Package feature defines the canonical model input schema and the codec
// that turns a decoded JSON record into a model input vector.
package feature

// SchemaVersion identifies the canonical order below. Bump it whenever the
// order, names or kinds change; the model artifact must be retrained to match.
const SchemaVersion = "mqtt-headers/v1"

// Kind is the value kind accepted for a field.
type Kind string

// Field kind constants.
const (
	Numeric Kind = "numeric"
	// Boolean fields accept true/false and the numbers 0/1.
	Boolean Kind = "boolean"
)

// Field is an immutable value object describing one model input column.
type Field struct {
	name string
	kind Kind
}

// Name returns the field name.
func (f Field) Name() string { return f.name }

// Kind returns the accepted value kind.
func (f Field) Kind() Kind { return f.kind }

// canonical is the column order of the packet header CSV the forest was
// trained on. Index i here is column i of the model input.
var canonical = [...]Field{
	{"packet_len", Numeric},
	{"ip_len", Numeric},
	{"ip_df", Boolean},
	{"ip_mf", Boolean},
	{"ip_ttl", Numeric},
	{"tcp_len", Numeric},
	{"tcp_pdu_size", Numeric},
	{"tcp_ack", Boolean},
	{"tcp_cwr", Boolean},
	{"tcp_ece", Boolean},
	{"tcp_fin", Boolean},
	{"tcp_ns", Boolean},
	{"tcp_push", Boolean},
	{"tcp_reset", Boolean},
	{"tcp_syn", Boolean},
	{"tcp_urg", Boolean},
	{"tcp_src_port", Numeric},
	{"tcp_dst_port", Numeric},
	{"tcp_tdelta", Numeric},
	{"tcp_l20_avg", Numeric},
	{"mqtt_len", Numeric},
	{"mqtt_topic_len", Numeric},
	{"mqtt_msg_type", Numeric},
	{"mqtt_qos_lvl", Numeric},
}

// Count is the model input width.
const Count = len(canonical)

var index = func() map[string]int {
	m := make(map[string]int, Count)
	for i, f := range canonical {
		m[f.name] = i
	}
	return m
}()

// Fields returns a copy of the canonical fields in order.
func Fields() []Field {
	out := make([]Field, Count)
	copy(out, canonical[:])
	return out
}

// Order returns the canonical field names in order.
func Order() []string {
	out := make([]string, Count)
	for i, f := range canonical {
		out[i] = f.name
	}
	return out
}

// Lookup returns the field with the given name and its column index.
func Lookup(name string) (Field, int, bool) {
	i, ok := index[name]
	if !ok {
		return Field{}, -1, false
	}
	return canonical[i], i, true
}
