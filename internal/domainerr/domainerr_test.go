package domainerr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errSample = New("ErrSample", http.StatusBadGateway, "urn:problem:test/err-sample", "sample failed")

func TestDomainError_IsMatchesCopies(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	wrapped := fmt.Errorf("outer: %w", errSample.WithCause(cause).WithDetail("try again"))

	assert.ErrorIs(t, wrapped, errSample)
	assert.ErrorIs(t, wrapped, cause)

	var de *DomainError
	assert.ErrorAs(t, wrapped, &de)
	assert.Equal(t, "try again", de.ProblemDetail())
	assert.Equal(t, http.StatusBadGateway, de.ProblemStatus())
}

func TestDomainError_ErrorIncludesCauseButDetailDoesNot(t *testing.T) {
	err := errSample.WithCause(errors.New("535 auth failed"))
	assert.Contains(t, err.Error(), "535 auth failed")
	assert.NotContains(t, err.ProblemDetail(), "535")
}

func TestDomainError_WithCauseNil(t *testing.T) {
	assert.Same(t, errSample, errSample.WithCause(nil))
}

func TestDomainError_DefaultStatus(t *testing.T) {
	e := &DomainError{Code: "ErrX"}
	assert.Equal(t, http.StatusInternalServerError, e.ProblemStatus())
}

func TestDomainError_WithContextDoesNotMutateSentinel(t *testing.T) {
	e := errSample.WithContext(map[string]any{"failedRecipients": []string{"a@example.com"}})
	assert.NotNil(t, e.ProblemContext())
	assert.Nil(t, errSample.ProblemContext())
}
