package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIs_MatchesByKind(t *testing.T) {
	err := NewError(ErrKindAuthRequired, "token expired")
	assert.True(t, errors.Is(err, ErrAuthRequired))
	assert.False(t, errors.Is(err, ErrNetwork))

	wrapped := fmt.Errorf("fetching items: %w", err)
	assert.True(t, errors.Is(wrapped, ErrAuthRequired))
}

func TestWrapError_PreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapError(ErrKindNetwork, cause, "media server is unreachable")

	assert.Equal(t, "media server is unreachable", err.Error())
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, ErrKindNetwork, KindOf(err))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"context canceled", context.Canceled, ErrKindCancelled},
		{"deadline exceeded", context.DeadlineExceeded, ErrKindCancelled},
		{"wrapped cancellation", fmt.Errorf("search: %w", context.Canceled), ErrKindCancelled},
		{"taxonomy error", NewError(ErrKindNotFound, "no music library"), ErrKindNotFound},
		{"wrapped taxonomy error", fmt.Errorf("load: %w", NewError(ErrKindServerRejected, "bad filter")), ErrKindServerRejected},
		{"unknown error", errors.New("something odd"), ErrKindNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestIsCancelled(t *testing.T) {
	assert.True(t, IsCancelled(context.Canceled))
	assert.True(t, IsCancelled(NewError(ErrKindCancelled, "navigated away")))
	assert.False(t, IsCancelled(NewError(ErrKindNetwork, "timeout")))
	assert.False(t, IsCancelled(nil))
}

func TestErrorMessageFallbacks(t *testing.T) {
	withCause := &Error{Kind: ErrKindNetwork, Cause: errors.New("dial tcp: refused")}
	assert.Equal(t, "dial tcp: refused", withCause.Error())

	bare := &Error{Kind: ErrKindAuthRequired}
	assert.Equal(t, "auth_required", bare.Error())
}
