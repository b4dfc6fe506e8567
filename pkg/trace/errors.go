package trace

type constError string

func (e constError) Error() string { return string(e) }

const (
	// ErrTruncatedTrace is returned when the input ends before the announced
	// number of requests.
	ErrTruncatedTrace = constError("truncated trace")

	// ErrMalformedTrace is returned when a token is not an integer or when
	// the announced number of requests is negative.
	ErrMalformedTrace = constError("malformed trace")
)
