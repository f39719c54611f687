package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// InviteCodeLength is the fixed length of team invite codes.
const InviteCodeLength = 8

var inviteCodeCharset = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

// GenerateInviteCode produces an 8-character uppercase alphanumeric code.
func GenerateInviteCode() (string, error) {
	result := make([]rune, InviteCodeLength)
	for i := range result {
		idx, err := randInt(len(inviteCodeCharset))
		if err != nil {
			return "", err
		}
		result[i] = inviteCodeCharset[idx]
	}
	return string(result), nil
}

// GenerateVerificationToken produces an opaque token for email verification
// links.
func GenerateVerificationToken() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func randInt(max int) (int, error) {
	if max <= 0 {
		return 0, fmt.Errorf("invalid max %d", max)
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()), nil
}
