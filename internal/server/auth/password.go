package auth

import (
	"fmt"
	"sync"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes and verifies passwords with bcrypt at a fixed cost.
type PasswordHasher struct {
	cost int

	dummyOnce sync.Once
	dummy     []byte
}

// NewPasswordHasher returns a hasher using cost. Values outside bcrypt's
// allowed range fall back to bcrypt.DefaultCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns the bcrypt hash of password. The salt is embedded in the result.
func (h *PasswordHasher) Hash(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// Compare reports whether password matches hash. An empty hash is compared
// against a throwaway hash of the same cost and always fails, so callers can
// spend the same time on unknown users as on wrong passwords.
func (h *PasswordHasher) Compare(hash, password string) bool {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword(h.dummyHash(), []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (h *PasswordHasher) dummyHash() []byte {
	h.dummyOnce.Do(func() {
		seed, err := common.MakeRandHexString(16)
		if err != nil {
			seed = "taskkeeper"
		}
		h.dummy, _ = bcrypt.GenerateFromPassword([]byte(seed), h.cost)
	})
	return h.dummy
}
