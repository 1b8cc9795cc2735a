package branches

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const (
	upperChars   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerChars   = "abcdefghijklmnopqrstuvwxyz"
	digitChars   = "0123456789"
	specialChars = "!@#$%^&*"

	passwordLength = 12
)

// AdminEmail derives the branch administrator e-mail: the branch name in
// lower case with whitespace runs replaced by dots, at domain.
func AdminEmail(branchName, domain string) string {
	prefix := strings.Join(strings.Fields(strings.ToLower(branchName)), ".")
	return prefix + "@" + domain
}

// GeneratePassword returns a random password of twelve characters holding at
// least one upper case letter, one lower case letter, one digit and one
// special character.
func GeneratePassword() (string, error) {
	all := upperChars + lowerChars + digitChars + specialChars
	out := make([]byte, 0, passwordLength)
	for _, set := range []string{upperChars, lowerChars, digitChars, specialChars} {
		c, err := pick(set)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}
	for len(out) < passwordLength {
		c, err := pick(all)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}
	for i := len(out) - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		k := int(j.Int64())
		out[i], out[k] = out[k], out[i]
	}
	return string(out), nil
}

func pick(set string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		return 0, err
	}
	return set[n.Int64()], nil
}
