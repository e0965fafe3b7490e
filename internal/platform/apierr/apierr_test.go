package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsCarryStatusAndCode(t *testing.T) {
	cases := []struct {
		err    *Error
		status int
		code   string
	}{
		{PermissionDenied("stage %s", "ONBOARDING"), http.StatusForbidden, CodePermissionDenied},
		{NotFound("university"), http.StatusNotFound, CodeNotFound},
		{Conflict("full"), http.StatusConflict, CodeConflict},
		{ProviderUnavailable("down"), http.StatusServiceUnavailable, CodeProviderUnavailable},
		{RateLimited("slow down"), http.StatusTooManyRequests, CodeRateLimited},
		{Validation("bad"), http.StatusBadRequest, CodeValidation},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.Status, tc.code)
		assert.Equal(t, tc.code, tc.err.Code)
	}
}

func TestAsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("shortlist add: %w", Conflict("university already shortlisted"))
	ae, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeConflict, ae.Code)
	assert.Equal(t, "university already shortlisted", ae.Error())
	assert.Equal(t, CodeConflict, CodeOf(wrapped))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
}
