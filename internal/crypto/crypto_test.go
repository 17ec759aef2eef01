package crypto

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEncryptor(t *testing.T) *Encryptor {
	t.Helper()
	key := make([]byte, KeySize)
	for i := range key {
		key[i] = byte(i)
	}
	enc, err := NewEncryptor(key)
	require.NoError(t, err)
	return enc
}

func TestNewEncryptor(t *testing.T) {
	t.Run("valid key size", func(t *testing.T) {
		enc, err := NewEncryptor(make([]byte, KeySize))
		require.NoError(t, err)
		assert.NotNil(t, enc)
	})

	t.Run("wrong key sizes rejected", func(t *testing.T) {
		for _, size := range []int{0, 16, 64} {
			_, err := NewEncryptor(make([]byte, size))
			assert.ErrorIs(t, err, ErrInvalidKeySize)
		}
	})

	t.Run("from generated base64 key", func(t *testing.T) {
		encoded, err := GenerateKey()
		require.NoError(t, err)
		enc, err := NewEncryptorFromBase64(encoded)
		require.NoError(t, err)
		assert.NotNil(t, enc)
	})

	t.Run("invalid base64 key rejected", func(t *testing.T) {
		_, err := NewEncryptorFromBase64("!!!not-base64!!!")
		assert.Error(t, err)
	})
}

func TestEncryptDecrypt(t *testing.T) {
	enc := testEncryptor(t)

	t.Run("round trip", func(t *testing.T) {
		ciphertext, err := enc.Encrypt("user-1:lesson-9")
		require.NoError(t, err)
		assert.NotEqual(t, "user-1:lesson-9", ciphertext)

		plaintext, err := enc.Decrypt(ciphertext)
		require.NoError(t, err)
		assert.Equal(t, "user-1:lesson-9", plaintext)
	})

	t.Run("empty string passes through", func(t *testing.T) {
		ciphertext, err := enc.Encrypt("")
		require.NoError(t, err)
		assert.Empty(t, ciphertext)
	})

	t.Run("same plaintext yields distinct ciphertexts", func(t *testing.T) {
		a, err := enc.Encrypt("payload")
		require.NoError(t, err)
		b, err := enc.Encrypt("payload")
		require.NoError(t, err)
		assert.NotEqual(t, a, b, "random nonce per call")
	})

	t.Run("tampered ciphertext fails authentication", func(t *testing.T) {
		ciphertext, err := enc.Encrypt("payload")
		require.NoError(t, err)

		raw, err := base64.StdEncoding.DecodeString(ciphertext)
		require.NoError(t, err)
		raw[len(raw)-1] ^= 0xff

		_, err = enc.Decrypt(base64.StdEncoding.EncodeToString(raw))
		assert.ErrorIs(t, err, ErrDecryptionFailed)
	})

	t.Run("wrong key fails authentication", func(t *testing.T) {
		other, err := NewEncryptor(make([]byte, KeySize))
		require.NoError(t, err)

		ciphertext, err := enc.Encrypt("payload")
		require.NoError(t, err)
		_, err = other.Decrypt(ciphertext)
		assert.ErrorIs(t, err, ErrDecryptionFailed)
	})

	t.Run("truncated ciphertext rejected", func(t *testing.T) {
		_, err := enc.Decrypt(base64.StdEncoding.EncodeToString([]byte{1, 2, 3}))
		assert.ErrorIs(t, err, ErrCiphertextTooShort)
	})
}

func TestEncryptURL(t *testing.T) {
	enc := testEncryptor(t)

	token, err := enc.EncryptURL("user-1:lesson-9")
	require.NoError(t, err)
	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "/")
	assert.NotContains(t, token, "=")

	plaintext, err := enc.DecryptURL(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1:lesson-9", plaintext)

	_, err = enc.DecryptURL("%%%")
	assert.Error(t, err)
}
