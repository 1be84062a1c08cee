// Package codec provides payload serialization for localstore. The encoded
// bytes travel inside the store's JSON envelope, so any byte output is fine;
// JSON is the default because foreign JSON values can still be decoded on the
// legacy read path.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
