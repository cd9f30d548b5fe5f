package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[*Error]int{
		Validation("bad date"):      http.StatusBadRequest,
		NotFound("booking missing"): http.StatusNotFound,
		LimitExceeded("too many"):   http.StatusBadRequest,
		BusinessRule("not active"):  http.StatusBadRequest,
		Forbidden("no"):             http.StatusForbidden,
		Conflict("taken"):           http.StatusConflict,
		StoreTimeout(nil):           http.StatusRequestTimeout,
		{Kind: "weird"}:             http.StatusInternalServerError,
	}
	for e, want := range cases {
		assert.Equal(t, want, e.HTTPStatus(), e.Message)
	}
}

func TestAsThroughWrapping(t *testing.T) {
	base := Conflict("room %s is taken", "101").WithDetails([]string{"GRC-0001"})
	wrapped := fmt.Errorf("create booking: %w", base)

	ae, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, KindConflict, ae.Kind)
	assert.Equal(t, "room 101 is taken", ae.Message)
	assert.Equal(t, []string{"GRC-0001"}, ae.Details)

	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindConflict, KindOf(wrapped))
}

func TestWithDetailsDoesNotMutate(t *testing.T) {
	base := Validation("x")
	_ = base.WithDetails("d")
	assert.Nil(t, base.Details)
}
