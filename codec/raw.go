package codec

// Bytes is an identity codec for []byte values. Useful when the value is
// already a raw byte slice and only the envelope framing is wanted.
type Bytes struct{}

func (Bytes) Encode(b []byte) ([]byte, error) { return b, nil }
func (Bytes) Decode(b []byte) ([]byte, error) { return b, nil }

// String is a trivial codec for Go string values. Assumes UTF-8, performs no
// validation. Note that with String the legacy read path returns foreign
// values verbatim, matching the original raw-string fallback exactly.
type String struct{}

func (String) Encode(s string) ([]byte, error) { return []byte(s), nil }
func (String) Decode(b []byte) (string, error) { return string(b), nil }
