package cache

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/Keksclan/goRawrSheets/ops"
)

// Entry is the envelope persisted for each cached response.
type Entry struct {
	Value    ops.Response
	StoredAt time.Time
	TTL      time.Duration
}

// Valid reports whether the entry is still fresh at now.
func (e Entry) Valid(now time.Time) bool {
	return now.Sub(e.StoredAt) < e.TTL
}

// Codec turns entries into bytes and back.
type Codec interface {
	Encode(e Entry) ([]byte, error)
	Decode(data []byte) (Entry, error)
}

// JSONCodec encodes entries as JSON with the TTL in whole milliseconds.
type JSONCodec struct{}

type jsonEntry struct {
	Value    ops.Response `json:"value"`
	StoredAt int64        `json:"storedAt"`
	TTLMs    int64        `json:"ttlMs"`
}

var errMalformedEntry = errors.New("cache: malformed entry")

// Encode serializes e.
func (JSONCodec) Encode(e Entry) ([]byte, error) {
	return json.Marshal(jsonEntry{
		Value:    e.Value,
		StoredAt: e.StoredAt.UnixMilli(),
		TTLMs:    e.TTL.Milliseconds(),
	})
}

// Decode parses data. Envelopes without a timestamp or with a non-positive
// TTL are rejected, so garbage that happens to be valid JSON is still a miss.
func (JSONCodec) Decode(data []byte) (Entry, error) {
	var je jsonEntry
	if err := json.Unmarshal(data, &je); err != nil {
		return Entry{}, err
	}
	if je.StoredAt <= 0 || je.TTLMs <= 0 || !je.Value.Success {
		return Entry{}, errMalformedEntry
	}
	return Entry{
		Value:    je.Value,
		StoredAt: time.UnixMilli(je.StoredAt),
		TTL:      time.Duration(je.TTLMs) * time.Millisecond,
	}, nil
}
