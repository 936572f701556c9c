package health

import (
	"encoding/json"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

// Encoder serializes report documents.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: Encode returns an error only when v cannot be serialized.
type Encoder interface {
	// Encode serializes v.
	Encode(v any) ([]byte, error)

	// ContentType returns the media type of the encoded output.
	ContentType() string
}

// JSONEncoder encodes documents with encoding/json.
type JSONEncoder struct{}

// Encode serializes v as JSON.
func (JSONEncoder) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

// ContentType returns "application/json".
func (JSONEncoder) ContentType() string {
	return "application/json"
}

// JSONIterEncoder encodes documents with json-iterator in its
// standard-library compatible configuration.
type JSONIterEncoder struct{}

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

// Encode serializes v as JSON.
func (JSONIterEncoder) Encode(v any) ([]byte, error) {
	return jsonIter.Marshal(v)
}

// ContentType returns "application/json".
func (JSONIterEncoder) ContentType() string {
	return "application/json"
}

// YAMLEncoder encodes documents as YAML.
type YAMLEncoder struct{}

// Encode serializes v as YAML.
func (YAMLEncoder) Encode(v any) (out []byte, err error) {
	// yaml.v3 panics on values it cannot represent.
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("yaml: %v", r)
		}
	}()
	return yaml.Marshal(v)
}

// ContentType returns "application/yaml".
func (YAMLEncoder) ContentType() string {
	return "application/yaml"
}

// EncoderByName returns the encoder registered under name:
// "json" (default for empty), "jsoniter" or "yaml".
func EncoderByName(name string) (Encoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return JSONEncoder{}, nil
	case "jsoniter":
		return JSONIterEncoder{}, nil
	case "yaml":
		return YAMLEncoder{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoder, name)
	}
}

var (
	_ Encoder = JSONEncoder{}
	_ Encoder = JSONIterEncoder{}
	_ Encoder = YAMLEncoder{}
)
