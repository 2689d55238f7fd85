package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "bidscout-engine/internal/errors"
)

func TestDomainError_MessageAndUnwrap(t *testing.T) {
	cause := stderrors.New("net::ERR_TIMED_OUT")
	err := apperrors.Navigation("goto https://example.com", cause)

	assert.Equal(t, "NAVIGATION: goto https://example.com: net::ERR_TIMED_OUT", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.NotEmpty(t, err.StackTrace())
}

func TestDomainError_NoCause(t *testing.T) {
	err := apperrors.InvalidSession("session expired", nil)
	assert.Equal(t, "INVALID_SESSION: session expired", err.Error())
	assert.NotEmpty(t, err.Stack)
}

func TestTypeOf(t *testing.T) {
	wrapped := fmt.Errorf("login workana: %w", apperrors.Authentication("no redirect", nil))
	assert.Equal(t, apperrors.ErrTypeAuthentication, apperrors.TypeOf(wrapped))
	assert.Equal(t, apperrors.ErrTypeInternal, apperrors.TypeOf(stderrors.New("boom")))
}

func TestIs_WalksNestedDomainErrors(t *testing.T) {
	inner := apperrors.SelectorTimeout("wait #email", nil)
	outer := apperrors.Authentication("login form not found", inner)

	require.True(t, apperrors.Is(outer, apperrors.ErrTypeAuthentication))
	assert.True(t, apperrors.Is(outer, apperrors.ErrTypeSelectorTimeout))
	assert.False(t, apperrors.Is(outer, apperrors.ErrTypeNavigation))
	assert.False(t, apperrors.Is(nil, apperrors.ErrTypeNavigation))
}
