package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_IsMatchesItsKindOnly(t *testing.T) {
	testCases := map[string]struct {
		err      error
		sentinel error
	}{
		"invalid order":      {err: InvalidOrder("order must have at least one item"), sentinel: ErrInvalidOrder},
		"not found":          {err: NotFound("abc"), sentinel: ErrNotFound},
		"invalid transition": {err: InvalidTransition("abc", "new", "ready"), sentinel: ErrInvalidTransition},
		"store":              {err: Store("insert order", errors.New("conn reset")), sentinel: ErrStore},
	}

	all := []error{ErrInvalidOrder, ErrNotFound, ErrInvalidTransition, ErrStore}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			wrapped := fmt.Errorf("handler: %w", tc.err)
			for _, s := range all {
				assert.Equal(t, s == tc.sentinel, errors.Is(wrapped, s), "sentinel %v", s)
			}
		})
	}
}

func TestInvalidTransition_CarriesStatuses(t *testing.T) {
	err := InvalidTransition("abc", "new", "ready")

	var e *Error
	require.True(t, errors.As(fmt.Errorf("wrap: %w", err), &e))
	assert.Equal(t, "new", e.Current)
	assert.Equal(t, "ready", e.Requested)
	assert.Equal(t, "InvalidTransition: cannot move from 'new' to 'ready'", e.Error())
}

func TestStore_UnwrapsCause(t *testing.T) {
	cause := errors.New("conn reset")
	err := Store("insert order", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "StoreError: insert order: conn reset", err.Error())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(fmt.Errorf("x: %w", NotFound("a"))))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.Equal(t, Kind(""), KindOf(nil))
}
