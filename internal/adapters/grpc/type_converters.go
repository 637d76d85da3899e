package grpc

import (
	"bytes"
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Payload conversion helpers for the Go <-> structpb boundary. Values travel
// as their JSON encoding so the json tags of commands and views are the
// wire contract.

// ToStruct converts any JSON-encodable value into a Struct
func ToStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("payload is not a JSON object: %w", err)
	}
	return out, nil
}

// FromStruct decodes a Struct into v. Unknown fields are rejected.
func FromStruct(in *structpb.Struct, v interface{}) error {
	if in == nil {
		in = &structpb.Struct{}
	}
	data, err := protojson.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to read payload: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("malformed payload: %w", err)
	}
	return nil
}

// stringField reads a top-level string field, or "" when absent
func stringField(in *structpb.Struct, name string) string {
	if in == nil {
		return ""
	}
	if v, ok := in.GetFields()[name]; ok {
		return v.GetStringValue()
	}
	return ""
}
