package ops

import (
	"maps"
	"net/url"
)

// Params are the string parameters sent alongside an operation.
type Params map[string]string

// Clone returns a copy of p that is safe to mutate.
func (p Params) Clone() Params {
	if p == nil {
		return Params{}
	}
	return maps.Clone(p)
}

// KeySeparator separates the operation name from the encoded parameters in a
// cache key.
const KeySeparator = "?"

// Key derives the cache key for op and params. The key is the operation name
// alone when params is empty, otherwise the name followed by the
// query-encoded parameters sorted by name. Encoding escapes the separator
// characters, so distinct parameter sets never collide.
func Key(op Operation, params Params) string {
	if len(params) == 0 {
		return op.String()
	}
	v := make(url.Values, len(params))
	for k, val := range params {
		v.Set(k, val)
	}
	return op.String() + KeySeparator + v.Encode()
}

// KeyPrefix returns the prefix shared by every parameterized key of op.
func KeyPrefix(op Operation) string {
	return op.String() + KeySeparator
}
