package wire

import (
	"bytes"
	"testing"
	"time"
)

func mustDecode(t *testing.T, b []byte) ([]byte, *time.Time) {
	t.Helper()
	p, exp, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	return p, exp
}

func TestRoundTripNoExpiry(t *testing.T) {
	cases := [][]byte{
		nil,
		{},
		[]byte(`"hello"`),
		{0, 1, 2, 3, 4},
	}
	for _, payload := range cases {
		enc := Encode(payload, nil)
		p, exp := mustDecode(t, enc)
		if !bytes.Equal(p, payload) && !(len(p) == 0 && len(payload) == 0) {
			t.Fatalf("payload mismatch: got %q want %q", p, payload)
		}
		if exp != nil {
			t.Fatalf("expected nil expiry, got %v", exp)
		}
	}
}

func TestRoundTripExpiryMillisecondPrecision(t *testing.T) {
	at := time.Now().Add(90 * time.Second)
	enc := Encode([]byte("x"), &at)
	_, exp := mustDecode(t, enc)
	if exp == nil {
		t.Fatalf("expected expiry, got nil")
	}
	if exp.UnixMilli() != at.UnixMilli() {
		t.Fatalf("expiry mismatch: got %d want %d", exp.UnixMilli(), at.UnixMilli())
	}
}

func TestDecodeRejectsForeignValues(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
	}{
		{"not json", []byte("plain text")},
		{"json string", []byte(`"just a string"`)},
		{"json array", []byte(`[1,2,3]`)},
		{"object without data", []byte(`{"name":"x"}`)},
		{"null data", []byte(`{"data":null,"expiry":1}`)},
		{"empty", nil},
	}
	for _, tc := range cases {
		if _, _, err := Decode(tc.in); err != ErrMalformed {
			t.Fatalf("%s: expected ErrMalformed, got %v", tc.name, err)
		}
	}
}

func TestDecodeForeignEnvelopeShapedObject(t *testing.T) {
	// base64 "aGk=" is "hi"; a hand-written envelope must still parse
	p, exp := mustDecode(t, []byte(`{"data":"aGk=","expiry":1234}`))
	if string(p) != "hi" {
		t.Fatalf("payload: got %q want %q", p, "hi")
	}
	if exp == nil || exp.UnixMilli() != 1234 {
		t.Fatalf("expiry: got %v want 1234ms", exp)
	}
}
