package proto

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

func TestEncodeDecodeOpen(t *testing.T) {
	cases := []OpenInfo{
		{OriginHost: "boxA", RemoteDirPath: "/home/u/proj"},
		{OriginHost: "", RemoteDirPath: ""},
		{OriginHost: "dev-01.example.internal", RemoteDirPath: "/srv/日本語/with space"},
	}
	for _, info := range cases {
		frame, err := Encode(NewOpen(info))
		if err != nil {
			t.Fatal(err)
		}
		got, err := Decode[Request](bytes.NewReader(frame))
		if err != nil {
			t.Fatalf("decode %+v: %v", info, err)
		}
		if got.Kind != KindOpen || got.Open == nil || *got.Open != info {
			t.Errorf("roundtrip: got %+v, want open %+v", got, info)
		}
	}
}

func TestEncodeLengthPrefix(t *testing.T) {
	frame, err := Encode(NewOpen(OpenInfo{OriginHost: "h", RemoteDirPath: "/p"}))
	if err != nil {
		t.Fatal(err)
	}
	n := binary.BigEndian.Uint32(frame[:HeaderSize])
	if int(n) != len(frame)-HeaderSize {
		t.Errorf("length prefix %d, body %d", n, len(frame)-HeaderSize)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	req := NewOpen(OpenInfo{OriginHost: "boxA", RemoteDirPath: "/home/u/proj"})
	a, err := Encode(req)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Encode(req)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("encoding not stable: %x vs %x", a, b)
	}
}

func TestDecodePipelinedFrames(t *testing.T) {
	first := OpenInfo{OriginHost: "a", RemoteDirPath: "/one"}
	second := OpenInfo{OriginHost: "b", RemoteDirPath: "/two/longer/path"}
	var buf bytes.Buffer
	if err := Write(&buf, NewOpen(first)); err != nil {
		t.Fatal(err)
	}
	firstLen := buf.Len()
	if err := Write(&buf, NewOpen(second)); err != nil {
		t.Fatal(err)
	}
	total := buf.Len()

	got1, err := Decode[Request](&buf)
	if err != nil {
		t.Fatal(err)
	}
	if consumed := total - buf.Len(); consumed != firstLen {
		t.Errorf("first decode consumed %d bytes, want %d", consumed, firstLen)
	}
	got2, err := Decode[Request](&buf)
	if err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("%d bytes left after second decode", buf.Len())
	}
	if *got1.Open != first || *got2.Open != second {
		t.Errorf("got %+v then %+v", *got1.Open, *got2.Open)
	}
	if _, err := Decode[Request](&buf); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF on empty stream, got %v", err)
	}
}

func TestDecodeTruncatedBody(t *testing.T) {
	frame, err := Encode(NewOpen(OpenInfo{OriginHost: "boxA", RemoteDirPath: "/home/u/proj"}))
	if err != nil {
		t.Fatal(err)
	}
	for cut := 1; cut < len(frame); cut++ {
		got, err := Decode[Request](bytes.NewReader(frame[:cut]))
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Fatalf("cut at %d: expected DecodeError, got %v", cut, err)
		}
		if got.Kind != 0 || got.Open != nil {
			t.Errorf("cut at %d: partially populated value %+v", cut, got)
		}
	}
}

func TestDecodeOversizedFrame(t *testing.T) {
	var header [HeaderSize]byte
	binary.BigEndian.PutUint32(header[:], MaxPayloadSize+1)
	_, err := Decode[Request](bytes.NewReader(header[:]))
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestDecodeGarbagePayload(t *testing.T) {
	body := []byte{0xff, 0x00, 0x13, 0x37}
	var buf bytes.Buffer
	var header [HeaderSize]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(body)))
	buf.Write(header[:])
	buf.Write(body)
	_, err := Decode[Request](&buf)
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestDecodeUnknownKind(t *testing.T) {
	frame := rawFrame(t, Request{Kind: Kind(9), Open: &OpenInfo{OriginHost: "x"}})
	_, err := Decode[Request](bytes.NewReader(frame))
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError for unknown kind, got %v", err)
	}
}

func TestEncodeRejectsInvalidUTF8(t *testing.T) {
	cases := []OpenInfo{
		{OriginHost: "boxA", RemoteDirPath: "/home/u/\xff\xfeproj"},
		{OriginHost: "box\xc3", RemoteDirPath: "/home/u/proj"},
	}
	for _, info := range cases {
		if frame, err := Encode(NewOpen(info)); err == nil {
			t.Errorf("expected encode error for %q, got %d byte frame", info, len(frame))
		}
		var buf bytes.Buffer
		if err := Write(&buf, NewOpen(info)); err == nil || buf.Len() != 0 {
			t.Errorf("expected write to fail without output for %q, wrote %d bytes", info, buf.Len())
		}
	}
}

func TestDecodeOpenWithoutPayload(t *testing.T) {
	frame := rawFrame(t, Request{Kind: KindOpen})
	if _, err := Decode[Request](bytes.NewReader(frame)); err == nil {
		t.Error("expected error for open request without payload")
	}
}

func TestCodecIsGeneric(t *testing.T) {
	type other struct {
		N int    `cbor:"n"`
		S string `cbor:"s"`
	}
	frame, err := Encode(other{N: 42, S: "x"})
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decode[other](bytes.NewReader(frame))
	if err != nil {
		t.Fatal(err)
	}
	if got.N != 42 || got.S != "x" {
		t.Errorf("got %+v", got)
	}
}

// rawFrame frames v without validation, as a misbehaving peer would.
func rawFrame(t *testing.T, v any) []byte {
	t.Helper()
	data, err := encMode.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	out := make([]byte, HeaderSize+len(data))
	binary.BigEndian.PutUint32(out[:HeaderSize], uint32(len(data)))
	copy(out[HeaderSize:], data)
	return out
}
