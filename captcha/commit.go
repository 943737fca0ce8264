package captcha

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// SaltLength is the number of characters reserved at the front of
// every commitment token for the salt. Verification re-extracts the
// salt from this prefix, so the prefix convention is part of the token
// format and must not change between issue and verify.
const SaltLength = 6

// Commit binds a challenge text to a fresh random salt. The returned
// commitment is self-describing: its first SaltLength characters are
// the salt, followed by the hex-encoded keyed digest of the text. No
// server-side record of either is needed.
func Commit(challenge string) (commitment, salt string) {
	salt = randomString(SaltLength, alphanumeric)
	return commitWithSalt(challenge, salt), salt
}

func commitWithSalt(text, salt string) string {
	mac := hmac.New(sha256.New, []byte(salt))
	mac.Write([]byte(text))
	return salt + hex.EncodeToString(mac.Sum(nil))
}

// VerifyCommitment reports whether answer matches the text the
// commitment was issued for. Tokens too short to contain a salt prefix
// are a mismatch, not an error, and the comparison over the full token
// is constant-time.
func VerifyCommitment(commitment, answer string) bool {
	if len(commitment) < SaltLength+1 {
		return false
	}
	salt := commitment[:SaltLength]
	recomputed := commitWithSalt(answer, salt)
	return subtle.ConstantTimeCompare([]byte(recomputed), []byte(commitment)) == 1
}
