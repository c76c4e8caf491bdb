// Package security holds credential hashing for customers and admins.
package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/bsthardware/storefront-backend/pkg/config"
)

var (
	ErrInvalidHash   = errors.New("invalid argon2id hash")
	ErrEmptyPassword = errors.New("password cannot be empty")
)

// Ambiguous glyphs (0/O, 1/l/I) are left out so generated passwords can be
// read off a terminal.
const tempPasswordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"

// ArgonParams are the Argon2id cost settings. They are stored in every
// digest, so changing them never invalidates existing hashes.
type ArgonParams struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLen     uint32
	KeyLen      uint32
}

// digest is the PHC-style string form:
// $argon2id$v=19$m=<kb>,t=<iterations>,p=<lanes>$<salt>$<key>
type digest struct {
	params ArgonParams
	salt   []byte
	key    []byte
}

func (d digest) String() string {
	b64 := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, d.params.Memory, d.params.Time, d.params.Parallelism,
		b64.EncodeToString(d.salt), b64.EncodeToString(d.key))
}

func parseDigest(encoded string) (digest, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return digest{}, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return digest{}, ErrInvalidHash
	}

	var d digest
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &d.params.Memory, &d.params.Time, &d.params.Parallelism); err != nil {
		return digest{}, ErrInvalidHash
	}
	if d.params.Memory == 0 || d.params.Time == 0 || d.params.Parallelism == 0 {
		return digest{}, ErrInvalidHash
	}

	var err error
	if d.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return digest{}, ErrInvalidHash
	}
	if d.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(d.key) == 0 {
		return digest{}, ErrInvalidHash
	}
	d.params.SaltLen = uint32(len(d.salt))
	d.params.KeyLen = uint32(len(d.key))
	return d, nil
}

func derive(password string, salt []byte, p ArgonParams) []byte {
	return argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Parallelism, p.KeyLen)
}

// Hasher hashes new credentials with one parameter set and verifies digests
// produced under any parameters.
type Hasher struct {
	params ArgonParams
}

func NewHasher(cfg config.PasswordConfig) *Hasher {
	return &Hasher{params: paramsFromConfig(cfg)}
}

func (h *Hasher) Hash(password string) (string, error) {
	return hashWithParams(password, h.params)
}

func (h *Hasher) Verify(password, encoded string) (bool, error) {
	return VerifyPassword(password, encoded)
}

// NeedsRehash reports whether encoded was produced with weaker or different
// settings than the hasher's current ones.
func (h *Hasher) NeedsRehash(encoded string) bool {
	d, err := parseDigest(encoded)
	if err != nil {
		return true
	}
	return d.params != h.params
}

// HashPassword hashes with parameters taken from cfg.
func HashPassword(password string, cfg config.PasswordConfig) (string, error) {
	return hashWithParams(password, paramsFromConfig(cfg))
}

func hashWithParams(password string, params ArgonParams) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	salt := make([]byte, params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return digest{params: params, salt: salt, key: derive(password, salt, params)}.String(), nil
}

// VerifyPassword compares in constant time. A malformed digest is an error,
// a wrong password is (false, nil).
func VerifyPassword(password, encoded string) (bool, error) {
	d, err := parseDigest(encoded)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(d.key, derive(password, d.salt, d.params)) == 1, nil
}

func paramsFromConfig(cfg config.PasswordConfig) ArgonParams {
	clamp := func(v, lo, hi int) int { return max(lo, min(v, hi)) }
	return ArgonParams{
		Memory:      uint32(clamp(cfg.ArgonMemoryKB, 8, 512*1024)),
		Time:        uint32(clamp(cfg.ArgonTime, 1, 10)),
		Parallelism: uint8(clamp(cfg.ArgonParallelism, 1, 255)),
		SaltLen:     uint32(clamp(cfg.ArgonSaltLen, 8, 64)),
		KeyLen:      uint32(clamp(cfg.ArgonKeyLen, 16, 64)),
	}
}

// GenerateTempPassword returns length characters drawn uniformly from an
// unambiguous alphabet. Used for bootstrap admin credentials.
func GenerateTempPassword(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive")
	}
	limit := big.NewInt(int64(len(tempPasswordAlphabet)))
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b.WriteByte(tempPasswordAlphabet[idx.Int64()])
	}
	return b.String(), nil
}
