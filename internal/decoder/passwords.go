package decoder

import (
	"errors"
)

// ErrNoCandidates is returned by TryPasswords for an empty candidate list.
var ErrNoCandidates = errors.New("no candidate passwords")

// TryPasswords calls attempt for each candidate in order and stops at the
// first success, returning that password and how many attempts were made.
// When every candidate fails the last error is returned.
func TryPasswords(candidates []string, attempt func(password string) error) (string, int, error) {
	if len(candidates) == 0 {
		return "", 0, ErrNoCandidates
	}
	var lastErr error
	for i, pw := range candidates {
		if err := attempt(pw); err != nil {
			lastErr = err
			continue
		}
		return pw, i + 1, nil
	}
	return "", len(candidates), lastErr
}
