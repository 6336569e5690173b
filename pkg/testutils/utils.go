package testutils

import (
	. "github.com/onsi/gomega"
)

// Must fails the current test if err is not nil and returns the value otherwise.
func Must[T any](o T, err error) T {
	ExpectWithOffset(1, err).To(Succeed())
	return o
}

// MustBeSuccessful fails the current test for a non-nil error.
func MustBeSuccessful(err error) {
	ExpectWithOffset(1, err).To(Succeed())
}

// MustFailWith expects an error matching the given target.
func MustFailWith(err error, target error) {
	ExpectWithOffset(1, err).To(HaveOccurred())
	ExpectWithOffset(1, err).To(MatchError(target))
}
