package gateway

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/Keksclan/goRawrSheets/ops"
)

// errUnexpectedShape is the generic message returned when a body matches
// none of the tolerated shapes. The body itself is never echoed back.
const errUnexpectedShape = "unexpected response from remote store"

// Normalize turns a raw response body into the data of a successful
// response, or an *ops.Error describing the failure. Tolerated shapes:
//
//	[...]                                   bare array
//	{"data": [...]}
//	{"data": {"items": [...]}}
//	{"data": {...}}                         single record
//	{"success": true, "data": <any>}        data may be absent
//	{"result": <any>}
//	{"items": [...]}
//	{"success": false, "error"|"message": "..."}
//	{"error": "..."}
//
// Anything else is a normalization error.
func Normalize(body []byte) (json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || !json.Valid(body) {
		return nil, &ops.Error{Kind: ops.KindNormalization, Msg: errUnexpectedShape}
	}

	switch body[0] {
	case '[':
		return json.RawMessage(body), nil
	case '{':
	default:
		return nil, &ops.Error{Kind: ops.KindNormalization, Msg: errUnexpectedShape}
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, &ops.Error{Kind: ops.KindNormalization, Msg: errUnexpectedShape, Err: err}
	}

	if raw, ok := obj["success"]; ok {
		var success bool
		if err := json.Unmarshal(raw, &success); err != nil {
			return nil, &ops.Error{Kind: ops.KindNormalization, Msg: errUnexpectedShape}
		}
		if !success {
			return nil, &ops.Error{Kind: ops.KindRemote, Msg: failureMessage(obj)}
		}
		data, ok := obj["data"]
		if !ok || isNull(data) {
			return nil, nil
		}
		if items, ok := itemsOf(data); ok {
			return items, nil
		}
		return data, nil
	}

	if data, ok := obj["data"]; ok {
		if isArray(data) {
			return data, nil
		}
		if items, ok := itemsOf(data); ok {
			return items, nil
		}
		if isObject(data) {
			return data, nil
		}
		return nil, &ops.Error{Kind: ops.KindNormalization, Msg: errUnexpectedShape}
	}
	if result, ok := obj["result"]; ok {
		return result, nil
	}
	if items, ok := obj["items"]; ok && isArray(items) {
		return items, nil
	}
	if _, ok := obj["error"]; ok {
		return nil, &ops.Error{Kind: ops.KindRemote, Msg: failureMessage(obj)}
	}
	return nil, &ops.Error{Kind: ops.KindNormalization, Msg: errUnexpectedShape}
}

// failureMessage picks the human-readable reason out of a failure body.
func failureMessage(obj map[string]json.RawMessage) string {
	for _, k := range []string{"error", "message"} {
		raw, ok := obj[k]
		if !ok || isNull(raw) {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
			continue
		}
		return string(raw)
	}
	return "remote store reported a failure"
}

// itemsOf unwraps {"items": [...]}.
func itemsOf(raw json.RawMessage) (json.RawMessage, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var obj struct {
		Items json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil || !isArray(obj.Items) {
		return nil, false
	}
	return obj.Items, true
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
