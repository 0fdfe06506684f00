package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"

	"github.com/githuba42r/imagetools/internal/common"
)

// PairingSecret is a freshly issued shared secret. The full Secret value
// ("id.random") is shown to the operator once; only ID, Salt and Hash are
// persisted.
type PairingSecret struct {
	ID     string
	Secret string
	Salt   []byte
	Hash   []byte
}

// NewPairingSecret mints a shared secret for legacy pairing. The id part
// allows the server to locate the record without storing the secret itself.
func NewPairingSecret() (*PairingSecret, error) {
	id := uuid.NewString()
	random, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, err
	}
	salt := common.GenerateRandByteArray(16)
	return &PairingSecret{
		ID:     id,
		Secret: id + "." + random,
		Salt:   salt,
		Hash:   HashSecret(random, salt),
	}, nil
}

// SplitSecret separates a presented shared secret into its id and random
// parts. Secrets without the separator are invalid.
func SplitSecret(secret string) (id, random string, err error) {
	id, random, found := strings.Cut(secret, ".")
	if !found || id == "" || random == "" {
		return "", "", common.ErrorUnauthorized
	}
	return id, random, nil
}

// HashSecret derives the storage hash of a shared secret's random part
// using argon2id.
func HashSecret(random string, salt []byte) []byte {
	return argon2.IDKey([]byte(random), salt, 1, 64*1024, 4, 32)
}

// VerifySecret reports whether the candidate matches the stored hash, in
// constant time.
func VerifySecret(random string, salt, hash []byte) bool {
	return subtle.ConstantTimeCompare(HashSecret(random, salt), hash) == 1
}
