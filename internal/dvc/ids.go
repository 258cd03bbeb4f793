package dvc

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/speps/go-hashids/v2"
)

const idCacheSize = 4096

// IDCodec turns integer row ids into short public strings and back.
// The encoding is reversible and collision free but not secret.
type IDCodec struct {
	hashids *hashids.HashID
	encoded *lru.Cache[int64, string]
	decoded *lru.Cache[string, int64]
}

// NewIDCodec creates a codec. Different salts produce unrelated encodings.
func NewIDCodec(salt string, minLength int) (*IDCodec, error) {
	data := hashids.NewData()
	data.Salt = salt
	data.MinLength = minLength

	h, err := hashids.NewWithData(data)
	if err != nil {
		return nil, fmt.Errorf("creating hashids: %w", err)
	}
	encoded, err := lru.New[int64, string](idCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating encode cache: %w", err)
	}
	decoded, err := lru.New[string, int64](idCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating decode cache: %w", err)
	}

	return &IDCodec{hashids: h, encoded: encoded, decoded: decoded}, nil
}

// Encode returns the public form of id. Row ids are never negative, which
// is the only input hashids rejects.
func (c *IDCodec) Encode(id int64) string {
	if s, ok := c.encoded.Get(id); ok {
		return s
	}
	s, err := c.hashids.EncodeInt64([]int64{id})
	if err != nil {
		return ""
	}
	c.encoded.Add(id, s)
	c.decoded.Add(s, id)
	return s
}

// Decode reverses Encode. Strings that were not produced by this codec
// return ErrNotFound.
func (c *IDCodec) Decode(s string) (int64, error) {
	if id, ok := c.decoded.Get(s); ok {
		return id, nil
	}
	ids, err := c.hashids.DecodeInt64WithError(s)
	if err != nil || len(ids) != 1 || ids[0] < 0 {
		return 0, notFoundError("id", s)
	}
	c.decoded.Add(s, ids[0])
	c.encoded.Add(ids[0], s)
	return ids[0], nil
}
