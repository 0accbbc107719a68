package proto

// DecodeError reports a frame that was truncated, oversized, malformed or
// did not match the expected payload schema.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string { return "decode: " + e.Op + ": " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }
