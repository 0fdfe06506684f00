package auth

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/githuba42r/imagetools/internal/common"
)

// OpaquePair is a freshly minted opaque token together with the hash that
// goes into storage. Only the hash is ever persisted.
type OpaquePair struct {
	Token string
	Hash  string
}

// NewOpaqueToken generates a random opaque token (64 hex chars) and its
// storage hash.
func NewOpaqueToken() (*OpaquePair, error) {
	token, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, err
	}
	return &OpaquePair{Token: token, Hash: HashToken(token)}, nil
}

// HashToken returns the hex-encoded SHA-256 of an opaque token. Lookups
// go through the hash so the plain value never touches the database.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
