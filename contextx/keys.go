package contextx

type ctxKey uint8

// Keys for the values this package stores in a context.
const (
	actorKey ctxKey = iota + 1
	requestIDKey
	sessionIDKey
)
