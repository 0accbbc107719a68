package proto

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// HeaderSize is the length of the big-endian uint32 prefix of every frame.
const HeaderSize = 4

// MaxPayloadSize caps the body of a single frame. Requests are a hostname
// and a path, so anything near this is garbage.
const MaxPayloadSize = 64 * 1024

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("proto: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		MaxNestedLevels: 16,
	}.DecMode()
	if err != nil {
		panic("proto: CBOR decoder initialization failed: " + err.Error())
	}
}

// Validator is implemented by payloads that can reject a value which
// decoded cleanly but is not meaningful.
type Validator interface {
	Validate() error
}

// Encode serializes v and prefixes it with its length. Values the decoder
// would reject through Validator are refused here too.
func Encode[T any](v T) ([]byte, error) {
	if val, ok := any(v).(Validator); ok {
		if err := val.Validate(); err != nil {
			return nil, fmt.Errorf("encoding payload: %w", err)
		}
	}
	data, err := encMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	if len(data) > MaxPayloadSize {
		return nil, fmt.Errorf("payload size %d exceeds maximum %d", len(data), MaxPayloadSize)
	}
	out := make([]byte, HeaderSize+len(data))
	binary.BigEndian.PutUint32(out[:HeaderSize], uint32(len(data)))
	copy(out[HeaderSize:], data)
	return out, nil
}

// Write encodes v and writes the whole frame to w.
func Write[T any](w io.Writer, v T) error {
	frame, err := Encode(v)
	if err != nil {
		return err
	}
	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

// Decode reads exactly one frame from r and deserializes it into T. It
// never reads past the end of the frame. Every failure is a *DecodeError
// and the returned value is the zero T.
func Decode[T any](r io.Reader) (T, error) {
	var zero T
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return zero, &DecodeError{Op: "reading frame length", Err: err}
	}
	length := binary.BigEndian.Uint32(header[:])
	if length > MaxPayloadSize {
		return zero, &DecodeError{Op: "checking frame length", Err: fmt.Errorf("payload size %d exceeds maximum %d", length, MaxPayloadSize)}
	}
	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return zero, &DecodeError{Op: "reading frame body", Err: err}
	}
	return Unmarshal[T](data)
}

// Unmarshal deserializes a frame body (without the length prefix). Trailing
// bytes after the payload are rejected.
func Unmarshal[T any](data []byte) (T, error) {
	var zero, v T
	if err := decMode.Unmarshal(data, &v); err != nil {
		return zero, &DecodeError{Op: "decoding payload", Err: err}
	}
	if val, ok := any(v).(Validator); ok {
		if err := val.Validate(); err != nil {
			return zero, &DecodeError{Op: "validating payload", Err: err}
		}
	}
	return v, nil
}
