package hash

import (
	"golang.org/x/crypto/bcrypt"
)

// Bcrypt hashes passwords with a configurable cost factor. The zero value is
// not usable; construct with New.
type Bcrypt struct {
	cost int
}

func New(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost}
}

func (b *Bcrypt) Hash(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), b.cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Check reports whether plain matches hashed. A mismatch is not an error;
// bcrypt's comparison is constant-time over the derived key.
func (b *Bcrypt) Check(plain, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
