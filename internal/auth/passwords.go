package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

// PasswordHasher produces and checks PHC-formatted argon2id hashes.
type PasswordHasher struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLen     uint32
	KeyLen      uint32
}

var DefaultHasher = PasswordHasher{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLen:     16,
	KeyLen:      32,
}

var errMalformedHash = errors.New("invalid argon2id hash format")

func HashPassword(plaintext string) (string, error) {
	return DefaultHasher.Hash(plaintext)
}

func VerifyPassword(hash, plaintext string) (bool, error) {
	return DefaultHasher.Verify(hash, plaintext)
}

func (h PasswordHasher) Hash(plaintext string) (string, error) {
	salt := make([]byte, h.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}

	key := argon2.IDKey([]byte(plaintext), salt, h.Iterations, h.Memory, h.Parallelism, h.KeyLen)

	b64 := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.Memory,
		h.Iterations,
		h.Parallelism,
		b64.EncodeToString(salt),
		b64.EncodeToString(key),
	), nil
}

// Verify checks plaintext against hash using the parameters encoded in the
// hash itself, so hashes made with older settings keep working.
func (PasswordHasher) Verify(hash, plaintext string) (bool, error) {
	params, salt, key, err := decodeHash(hash)
	if err != nil {
		return false, err
	}

	otherKey := argon2.IDKey([]byte(plaintext), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLen)
	return subtle.ConstantTimeCompare(key, otherKey) == 1, nil
}

func decodeHash(hash string) (PasswordHasher, []byte, []byte, error) {
	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return PasswordHasher{}, nil, nil, errMalformedHash
	}
	if parts[2] != "v="+strconv.Itoa(argon2.Version) {
		return PasswordHasher{}, nil, nil, errors.New("unsupported argon2 version")
	}

	var p PasswordHasher
	for _, kv := range strings.Split(parts[3], ",") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return PasswordHasher{}, nil, nil, errors.New("invalid argon2 params")
		}
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return PasswordHasher{}, nil, nil, fmt.Errorf("invalid argon2 param %q", k)
		}
		switch k {
		case "m":
			p.Memory = uint32(n)
		case "t":
			p.Iterations = uint32(n)
		case "p":
			if n > 255 {
				return PasswordHasher{}, nil, nil, errors.New("invalid argon2 parallelism param")
			}
			p.Parallelism = uint8(n)
		default:
			return PasswordHasher{}, nil, nil, errors.New("unknown argon2 param")
		}
	}
	if p.Memory == 0 || p.Iterations == 0 || p.Parallelism == 0 {
		return PasswordHasher{}, nil, nil, errors.New("missing argon2 params")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return PasswordHasher{}, nil, nil, errors.New("invalid argon2 salt")
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return PasswordHasher{}, nil, nil, errors.New("invalid argon2 key")
	}
	p.SaltLen = uint32(len(salt))
	p.KeyLen = uint32(len(key))
	if p.SaltLen == 0 || p.KeyLen == 0 {
		return PasswordHasher{}, nil, nil, errors.New("invalid argon2 salt/key")
	}

	return p, salt, key, nil
}
