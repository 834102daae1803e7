package transmission

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

const resultSuccess = "success"

type envelope struct {
	Method    string         `json:"method"`
	Arguments map[string]any `json:"arguments"`
}

// reply is the inbound half of the envelope. Arguments may hold any JSON
// value shape; only the response decoder decides what it needs.
type reply struct {
	Result       *string
	Arguments    any
	HasArguments bool
}

func encodeEnvelope(method string, args map[string]any) ([]byte, error) {
	if args == nil {
		args = map[string]any{}
	}
	body, err := json.Marshal(envelope{Method: method, Arguments: args})
	if err != nil {
		return nil, &EncodeError{Method: method, Err: err}
	}
	return body, nil
}

// parseValue decodes raw JSON into a generic value tree. Numbers stay
// json.Number so integer attributes keep full precision.
func parseValue(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &DecodeError{Kind: DecodeJSON, Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("trailing data after json value")
		}
		return nil, &DecodeError{Kind: DecodeJSON, Err: err}
	}
	return v, nil
}

func parseEnvelope(body []byte) (reply, error) {
	v, err := parseValue(body)
	if err != nil {
		return reply{}, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return reply{}, invalidType("object", "")
	}

	var r reply
	if raw, ok := obj["result"]; ok && raw != nil {
		s, ok := raw.(string)
		if !ok {
			return reply{}, invalidType("string", "result")
		}
		r.Result = &s
	}
	r.Arguments, r.HasArguments = obj["arguments"]
	return r, nil
}

// arguments validates the result marker and returns the arguments payload.
// An absent result is treated as success because some daemon methods omit it.
func (r reply) arguments() (any, error) {
	if r.Result != nil && *r.Result != resultSuccess {
		return nil, &DaemonError{Message: *r.Result}
	}
	if !r.HasArguments {
		return nil, missingField("arguments")
	}
	return r.Arguments, nil
}
