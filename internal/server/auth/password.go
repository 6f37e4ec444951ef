package auth

import (
	"crypto/subtle"

	"github.com/dmitrijs2005/lifekeeper/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	saltLen      = 16
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

func derive(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// HashPassword returns an argon2id hash of password under a fresh random salt.
func HashPassword(password string) (hash, salt []byte) {
	salt = common.GenerateRandByteArray(saltLen)
	pw := []byte(password)
	defer common.WipeByteArray(pw)
	return derive(pw, salt), salt
}

// VerifyPassword reports whether password hashes to hash under salt.
func VerifyPassword(password string, hash, salt []byte) bool {
	if len(hash) == 0 || len(salt) == 0 {
		return false
	}
	pw := []byte(password)
	defer common.WipeByteArray(pw)
	candidate := derive(pw, salt)
	return subtle.ConstantTimeCompare(candidate, hash) == 1
}
