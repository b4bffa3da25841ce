package helpers

import "golang.org/x/crypto/bcrypt"

// PasswordHasher wraps bcrypt with a configurable work factor.
type PasswordHasher struct {
	Cost int
	// dummy is compared against when the account does not exist so that
	// unknown identifiers cost the same as wrong passwords.
	dummy []byte
}

func NewPasswordHasher(cost int) (*PasswordHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, bcrypt.InvalidCostError(cost)
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("campus-resource-tracker"), cost)
	if err != nil {
		return nil, err
	}
	return &PasswordHasher{Cost: cost, dummy: dummy}, nil
}

// HashPassword hashes the plain text password using bcrypt
func (h *PasswordHasher) HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareHashAndPassword compares a bcrypt hash with a plain password
func (h *PasswordHasher) CompareHashAndPassword(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// BurnCompare spends one comparison on the dummy hash and always fails.
func (h *PasswordHasher) BurnCompare(plain string) bool {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(plain))
	return false
}
