package gateway

// Kind classifies a gateway failure so callers branch on a typed value
// instead of sniffing message text.
type Kind int

const (
	// KindNetwork covers transport failures and unexpected server errors.
	KindNetwork Kind = iota
	// KindInvalid covers rejected input: bad credentials, malformed requests.
	KindInvalid
	// KindExpired covers expired, revoked, or otherwise dead sessions.
	KindExpired
	// KindNotFound covers missing resources, including a deleted account's profile.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindExpired:
		return "expired"
	case KindNotFound:
		return "not_found"
	default:
		return "network"
	}
}

// Error is the failure type every gateway call returns.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String() + " error"
	}
	return e.Message
}

// KindOf returns the gateway kind for err, or KindNetwork for foreign errors.
func KindOf(err error) Kind {
	if ge, ok := err.(*Error); ok {
		return ge.Kind
	}
	return KindNetwork
}
