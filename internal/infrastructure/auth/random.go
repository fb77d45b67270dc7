package auth

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"strconv"

	"github.com/you/storeapi/domain"
)

const tokenSize = 32

var otpSpan = big.NewInt(900000)

// SecretGeneratorImpl implements domain.SecretGenerator on crypto/rand
type SecretGeneratorImpl struct{}

// NewSecretGenerator creates a new secret generator
func NewSecretGenerator() domain.SecretGenerator {
	return SecretGeneratorImpl{}
}

// OTP returns a six digit code uniformly distributed over [100000, 999999]
func (SecretGeneratorImpl) OTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpSpan)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

// Token returns 32 random bytes as hex
func (SecretGeneratorImpl) Token() (string, error) {
	return hexToken(tokenSize)
}

func hexToken(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
