package crypto

import (
	"errors"
	"strings"
)

// ErrMalformedShareToken indicates a token that decrypted but does not
// carry the expected payload shape.
var ErrMalformedShareToken = errors.New("malformed share token")

// ShareCodec turns (userHash, lessonHash) pairs into opaque URL-safe
// tokens handed out by the sharing endpoints. Tokens are encrypted, so a
// recipient cannot enumerate other users' lessons from one.
type ShareCodec struct {
	enc *Encryptor
}

// NewShareCodec creates a ShareCodec over a 32-byte AES-256 key.
func NewShareCodec(key []byte) (*ShareCodec, error) {
	enc, err := NewEncryptor(key)
	if err != nil {
		return nil, err
	}
	return &ShareCodec{enc: enc}, nil
}

// EncodeLesson issues a share token for a user's lesson record.
func (c *ShareCodec) EncodeLesson(userHash, lessonHash string) (string, error) {
	return c.enc.EncryptURL(userHash + ":" + lessonHash)
}

// DecodeLesson resolves a share token back to its (userHash, lessonHash)
// pair.
func (c *ShareCodec) DecodeLesson(token string) (userHash, lessonHash string, err error) {
	payload, err := c.enc.DecryptURL(token)
	if err != nil {
		return "", "", err
	}
	parts := strings.SplitN(payload, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", ErrMalformedShareToken
	}
	return parts[0], parts[1], nil
}

// EncodeResult issues a share token for a single result snapshot.
func (c *ShareCodec) EncodeResult(resultHash string) (string, error) {
	return c.enc.EncryptURL("result:" + resultHash)
}

// DecodeResult resolves a result share token to the snapshot hash.
func (c *ShareCodec) DecodeResult(token string) (string, error) {
	payload, err := c.enc.DecryptURL(token)
	if err != nil {
		return "", err
	}
	resultHash, ok := strings.CutPrefix(payload, "result:")
	if !ok || resultHash == "" {
		return "", ErrMalformedShareToken
	}
	return resultHash, nil
}
