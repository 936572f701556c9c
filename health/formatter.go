package health

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// UnknownReason is the reason reported for failures that carry none.
const UnknownReason = "UNKNOWN ERROR"

// MessageTypeError is the type of every message entry produced by the Formatter.
const MessageTypeError = "error"

// Status is the reported status of a check.
type Status string

const (
	// StatusOK indicates the check passed.
	StatusOK Status = "ok"
	// StatusError indicates the check failed.
	StatusError Status = "error"
)

// Message is one structured error entry of a failed check.
type Message struct {
	Type    string `json:"type" yaml:"type"`
	Message any    `json:"message" yaml:"message"`
}

// Record is the presentation record of a single check.
type Record struct {
	Status  Status    `json:"status" yaml:"status"`
	Message []Message `json:"message,omitempty" yaml:"message,omitempty"`
}

// FormattedOutcome is the wire-shaped version of a RawOutcome.
//
// It encodes as {"<Name>": Record, "time": TimeMillis}.
type FormattedOutcome struct {
	Name       string
	Record     Record
	TimeMillis float64
}

// OK reports whether the check passed.
func (f FormattedOutcome) OK() bool {
	return f.Record.Status == StatusOK
}

// MarshalJSON encodes the outcome with the check name as key and time as sibling.
func (f FormattedOutcome) MarshalJSON() ([]byte, error) {
	name, err := json.Marshal(f.Name)
	if err != nil {
		return nil, err
	}
	record, err := json.Marshal(f.Record)
	if err != nil {
		return nil, err
	}
	ms, err := json.Marshal(f.TimeMillis)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(name) + len(record) + len(ms) + 12)
	buf.WriteByte('{')
	buf.Write(name)
	buf.WriteByte(':')
	buf.Write(record)
	buf.WriteString(`,"time":`)
	buf.Write(ms)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML encodes the outcome in the same shape as MarshalJSON.
func (f FormattedOutcome) MarshalYAML() (any, error) {
	return map[string]any{
		f.Name:       f.Record,
		ReservedName: f.TimeMillis,
	}, nil
}

// Formatter converts raw outcomes into formatted outcomes.
// The zero value is ready to use and reports UnknownReason for failures
// without a reason.
type Formatter struct {
	// UnknownReason replaces missing failure reasons. Default: "UNKNOWN ERROR".
	UnknownReason string
}

// Format converts a RawOutcome with the default Formatter.
func Format(raw RawOutcome) FormattedOutcome {
	return Formatter{}.Format(raw)
}

// Format converts a RawOutcome. It is pure and never fails: malformed input
// still produces a well-formed outcome.
func (f Formatter) Format(raw RawOutcome) FormattedOutcome {
	micros := raw.ElapsedMicros
	if micros < 0 {
		micros = 0
	}
	out := FormattedOutcome{
		Name:       raw.Name,
		TimeMillis: float64(micros) / 1000,
	}

	switch s := deref(raw.Signal).(type) {
	case OK:
		out.Record = Record{Status: StatusOK}
	case Failure:
		out.Record = f.errorRecord(s.Reason)
	default:
		out.Record = f.errorRecord(nil)
	}

	return out
}

func (f Formatter) errorRecord(reason any) Record {
	return Record{
		Status: StatusError,
		Message: []Message{{
			Type:    MessageTypeError,
			Message: f.safeReason(reason),
		}},
	}
}

// safeReason guards against reasons whose Error or String methods panic.
func (f Formatter) safeReason(reason any) (out any) {
	defer func() {
		if recover() != nil {
			out = f.unknown()
		}
	}()
	return f.normalizeReason(reason)
}

func (f Formatter) unknown() string {
	if f.UnknownReason == "" {
		return UnknownReason
	}
	return f.UnknownReason
}

// normalizeReason maps a reason to a value every encoder can serialize.
func (f Formatter) normalizeReason(reason any) any {
	switch r := reason.(type) {
	case nil:
		return f.unknown()
	case string:
		if r == "" {
			return f.unknown()
		}
		return r
	case error:
		if msg := r.Error(); msg != "" {
			return msg
		}
		return f.unknown()
	case fmt.Stringer:
		return r.String()
	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, []string:
		return r
	case float32, float64, map[string]any, []any:
		// NaN, Inf and nested channels or funcs cannot be encoded.
		if _, err := json.Marshal(r); err != nil {
			return fmt.Sprintf("%v", r)
		}
		return r
	default:
		return fmt.Sprintf("%v", r)
	}
}
