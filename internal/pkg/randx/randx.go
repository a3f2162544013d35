/*
Package randx generates identifiers: UUIDs for persisted entities and
cryptographically random Base62 strings for session identifiers and default
display names.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	// Base62Chars defines the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the number of characters in Base62Chars.
	Base62Len = int64(len(Base62Chars))

	// SessionIDLength is the length of a generated session identifier.
	SessionIDLength = 32

	nicknameRandomLength = 6
)

// Base62 returns a random Base62 string of length n drawn from crypto/rand.
func Base62(n int) (string, error) {
	result := make([]byte, n)

	for i := 0; i < n; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random base62 character: %w", err)
		}

		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}

// SessionID returns a new random session identifier.
func SessionID() (string, error) {
	return Base62(SessionIDLength)
}

// NewID returns a UUID v4 string for events, messages and users.
func NewID() string {
	return uuid.New().String()
}

// IsValidID reports whether id is a canonical UUID string.
func IsValidID(id string) bool {
	parsed, err := uuid.Parse(id)
	return err == nil && parsed.String() == id
}

// UserNickname generates a default display name with a "Hiker_" prefix.
func UserNickname() (string, error) {
	suffix, err := Base62(nicknameRandomLength)
	if err != nil {
		return "", err
	}
	return "Hiker_" + suffix, nil
}
