package core

import (
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// SharedPassword is the export password, kept only as a bcrypt hash.
type SharedPassword struct {
	hash []byte
}

func NewSharedPassword(pwd string) (SharedPassword, error) {
	if pwd == "" {
		return SharedPassword{}, errors.New("shared password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return SharedPassword{}, errors.Wrap(err, "hashing shared password")
	}
	return SharedPassword{hash: hash}, nil
}

// Check reports whether pwd is the shared password.
func (p SharedPassword) Check(pwd string) bool {
	return pwd != "" && len(p.hash) > 0 && bcrypt.CompareHashAndPassword(p.hash, []byte(pwd)) == nil
}
