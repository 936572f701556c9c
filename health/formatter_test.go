package health

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"
)

type stringerReason struct{ code int }

func (s stringerReason) String() string { return fmt.Sprintf("code %d", s.code) }

type panickyError struct{}

func (*panickyError) Error() string { panic("broken Error()") }

func TestFormat_OK(t *testing.T) {
	got := Format(RawOutcome{Name: "db", ElapsedMicros: 1500, Signal: OK{}})

	if got.Name != "db" {
		t.Errorf("Name = %v, want db", got.Name)
	}
	if got.Record.Status != StatusOK {
		t.Errorf("Status = %v, want ok", got.Record.Status)
	}
	if got.Record.Message != nil {
		t.Errorf("Message = %v, want nil", got.Record.Message)
	}
	if got.TimeMillis != 1.5 {
		t.Errorf("TimeMillis = %v, want 1.5", got.TimeMillis)
	}
}

func TestFormat_Failure(t *testing.T) {
	got := Format(RawOutcome{Name: "disk", ElapsedMicros: 42, Signal: Failure{Reason: "disk full"}})

	if got.Record.Status != StatusError {
		t.Errorf("Status = %v, want error", got.Record.Status)
	}
	want := []Message{{Type: "error", Message: "disk full"}}
	if !reflect.DeepEqual(got.Record.Message, want) {
		t.Errorf("Message = %#v, want %#v", got.Record.Message, want)
	}
	if got.TimeMillis != 0.042 {
		t.Errorf("TimeMillis = %v, want 0.042", got.TimeMillis)
	}
}

func TestFormat_UnspecifiedEqualsUnknownFailure(t *testing.T) {
	unspecified := Format(RawOutcome{Name: "boom", ElapsedMicros: 7, Signal: Unspecified{}})
	explicit := Format(RawOutcome{Name: "boom", ElapsedMicros: 7, Signal: Failure{Reason: UnknownReason}})

	if !reflect.DeepEqual(unspecified, explicit) {
		t.Errorf("Unspecified = %#v, want %#v", unspecified, explicit)
	}
	if unspecified.Record.Message[0].Message != "UNKNOWN ERROR" {
		t.Errorf("message = %v, want UNKNOWN ERROR", unspecified.Record.Message[0].Message)
	}
}

func TestFormat_ReasonNormalization(t *testing.T) {
	tests := []struct {
		name   string
		signal Signal
		want   any
	}{
		{"verbatim string", Failure{Reason: "  spaced  reason\n"}, "  spaced  reason\n"},
		{"nil reason", Failure{Reason: nil}, UnknownReason},
		{"empty reason", Failure{Reason: ""}, UnknownReason},
		{"error reason", Failure{Reason: errors.New("refused")}, "refused"},
		{"stringer reason", Failure{Reason: stringerReason{code: 7}}, "code 7"},
		{"number reason", Failure{Reason: 42}, 42},
		{"map reason", Failure{Reason: map[string]any{"free": 0}}, map[string]any{"free": 0}},
		{"opaque reason", Failure{Reason: struct{ A int }{A: 1}}, "{1}"},
		{"NaN reason", Failure{Reason: math.NaN()}, "NaN"},
		{"infinite reason", Failure{Reason: math.Inf(1)}, "+Inf"},
		{"slice holding NaN", Failure{Reason: []any{1, math.NaN()}}, "[1 NaN]"},
		{"encodable slice", Failure{Reason: []any{"a", 1}}, []any{"a", 1}},
		{"panicking error", Failure{Reason: &panickyError{}}, UnknownReason},
		{"nil signal", nil, UnknownReason},
		{"pointer failure", &Failure{Reason: "down"}, "down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Format(RawOutcome{Name: "c", Signal: tt.signal})
			if got.Record.Status != StatusError {
				t.Fatalf("Status = %v, want error", got.Record.Status)
			}
			if len(got.Record.Message) != 1 {
				t.Fatalf("len(Message) = %d, want 1", len(got.Record.Message))
			}
			if got.Record.Message[0].Type != MessageTypeError {
				t.Errorf("Type = %v, want error", got.Record.Message[0].Type)
			}
			if !reflect.DeepEqual(got.Record.Message[0].Message, tt.want) {
				t.Errorf("Message = %#v, want %#v", got.Record.Message[0].Message, tt.want)
			}
		})
	}
}

func TestFormat_NegativeElapsedClamped(t *testing.T) {
	got := Format(RawOutcome{Name: "c", ElapsedMicros: -5, Signal: OK{}})
	if got.TimeMillis != 0 {
		t.Errorf("TimeMillis = %v, want 0", got.TimeMillis)
	}
}

func TestFormat_TimeIsMicrosDividedByThousand(t *testing.T) {
	for _, micros := range []int64{0, 1, 999, 1000, 123456, 987654321} {
		got := Format(RawOutcome{Name: "c", ElapsedMicros: micros, Signal: Unspecified{}})
		if want := float64(micros) / 1000; got.TimeMillis != want {
			t.Errorf("micros %d: TimeMillis = %v, want %v", micros, got.TimeMillis, want)
		}
	}
}

func TestFormatter_CustomUnknownReason(t *testing.T) {
	f := Formatter{UnknownReason: "no reason given"}
	got := f.Format(RawOutcome{Name: "c", Signal: Unspecified{}})
	if got.Record.Message[0].Message != "no reason given" {
		t.Errorf("Message = %v, want custom reason", got.Record.Message[0].Message)
	}
}

func TestFormat_Idempotent(t *testing.T) {
	raw := RawOutcome{Name: "disk", ElapsedMicros: 2500, Signal: Failure{Reason: "disk full"}}

	first, err := json.Marshal(Format(raw))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	second, err := json.Marshal(Format(raw))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("formatting twice differs:\n%s\n%s", first, second)
	}
}

func TestFormattedOutcome_MarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  RawOutcome
		want string
	}{
		{
			name: "ok",
			raw:  RawOutcome{Name: "db", ElapsedMicros: 1234, Signal: OK{}},
			want: `{"db":{"status":"ok"},"time":1.234}`,
		},
		{
			name: "failure",
			raw:  RawOutcome{Name: "disk", ElapsedMicros: 500, Signal: Failure{Reason: "disk full"}},
			want: `{"disk":{"status":"error","message":[{"type":"error","message":"disk full"}]},"time":0.5}`,
		},
		{
			name: "crash",
			raw:  RawOutcome{Name: "boom", ElapsedMicros: 0, Signal: Unspecified{}},
			want: `{"boom":{"status":"error","message":[{"type":"error","message":"UNKNOWN ERROR"}]},"time":0}`,
		},
		{
			name: "escaped name",
			raw:  RawOutcome{Name: `we"ird`, ElapsedMicros: 1000, Signal: OK{}},
			want: `{"we\"ird":{"status":"ok"},"time":1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(Format(tt.raw))
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Marshal() = %s, want %s", got, tt.want)
			}
		})
	}
}
