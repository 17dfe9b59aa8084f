package httpx

import (
	"crypto/subtle"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// CoachVerifier checks the shared coach credential. The password is kept
// only as a bcrypt hash.
type CoachVerifier struct {
	user string
	hash []byte
}

func NewCoachVerifier(user, pass string) (*CoachVerifier, error) {
	return newCoachVerifier(user, pass, bcrypt.DefaultCost)
}

func newCoachVerifier(user, pass string, cost int) (*CoachVerifier, error) {
	if user == "" {
		return nil, errors.New("coach user is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pass), cost)
	if err != nil {
		return nil, errors.Wrap(err, "hash coach password")
	}
	return &CoachVerifier{user: user, hash: hash}, nil
}

func (v *CoachVerifier) Verify(user, pass string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(v.user)) == 1
	passOK := bcrypt.CompareHashAndPassword(v.hash, []byte(pass)) == nil
	return userOK && passOK
}
