package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeUnavailable, "counter store unreachable")

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, CodeUnavailable, CodeOf(err))
	assert.Equal(t, "counter store unreachable", MessageOf(err))
}

func TestIsFindsCodeThroughWrapping(t *testing.T) {
	inner := New(CodeIssuedUnrecorded, "number issued but audit append failed")
	outer := fmt.Errorf("handling allocate: %w", inner)

	assert.True(t, Is(outer, CodeIssuedUnrecorded))
	assert.False(t, Is(outer, CodeUnavailable))
	assert.True(t, HasCode(outer, CodeIssuedUnrecorded))
}

func TestCodeOfUnknownError(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	assert.Equal(t, "internal error", MessageOf(errors.New("boom")))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeInvalidInput:      http.StatusBadRequest,
		CodeBadRequest:        http.StatusBadRequest,
		CodeNotFound:          http.StatusNotFound,
		CodeConflict:          http.StatusConflict,
		CodeWardNotRegistered: http.StatusUnprocessableEntity,
		CodeUnauthorized:      http.StatusUnauthorized,
		CodeForbidden:         http.StatusForbidden,
		CodeUnavailable:       http.StatusServiceUnavailable,
		CodeIssuedUnrecorded:  http.StatusBadGateway,
		CodeLinkageFailure:    http.StatusBadGateway,
		CodeInternal:          http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), string(code))
	}
}

func TestErrorString(t *testing.T) {
	err := New(CodeConflict, "ward already registered")
	assert.Equal(t, "conflict: ward already registered", err.Error())

	wrapped := Wrap(errors.New("duplicate key"), CodeConflict, "ward already registered")
	require.Contains(t, wrapped.Error(), "duplicate key")
}
