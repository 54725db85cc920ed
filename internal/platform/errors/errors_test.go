package errors

import (
	"context"
	"fmt"
	"net"
	"testing"

	"dlcheck/internal/testutil"
)

func TestWrap(t *testing.T) {
	t.Run("wraps error with context", func(t *testing.T) {
		baseErr := New("base error")
		wrapped := Wrap(baseErr, "additional context")

		testutil.AssertNotNil(t, wrapped, "wrapped error should not be nil")
		testutil.AssertTrue(t, Is(wrapped, baseErr), "should be able to unwrap to base error")
		testutil.AssertEqual(t, wrapped.Error(), "additional context: base error", "error message")
	})

	t.Run("returns nil when wrapping nil", func(t *testing.T) {
		testutil.AssertTrue(t, Wrap(nil, "context") == nil, "wrapping nil should return nil")
	})

	t.Run("multiple wraps preserve chain", func(t *testing.T) {
		baseErr := New("base")
		wrapped := Wrap(Wrap(baseErr, "layer 1"), "layer 2")

		testutil.AssertTrue(t, Is(wrapped, baseErr), "should unwrap to base error")
		testutil.AssertEqual(t, wrapped.Error(), "layer 2: layer 1: base", "full chain")
	})
}

func TestWrapf(t *testing.T) {
	wrapped := Wrapf(ErrInvalidResponse, "probe %s", "https://example.com/f")
	testutil.AssertTrue(t, Is(wrapped, ErrInvalidResponse), "sentinel preserved")
	testutil.AssertEqual(t, wrapped.Error(), "probe https://example.com/f: invalid response", "formatted message")
	testutil.AssertTrue(t, Wrapf(nil, "x %d", 1) == nil, "wrapping nil should return nil")
}

func TestMark(t *testing.T) {
	cause := New("dial failed")
	marked := Mark(cause, ErrConnectionFailed)

	testutil.AssertTrue(t, Is(marked, ErrConnectionFailed), "marked with sentinel")
	testutil.AssertTrue(t, Is(marked, cause), "cause still reachable")

	again := Mark(marked, ErrConnectionFailed)
	testutil.AssertEqual(t, again.Error(), marked.Error(), "marking twice is a no-op")
	testutil.AssertTrue(t, Mark(nil, ErrTimeout) == nil, "nil stays nil")
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "deadline exceeded",
			err:  fmt.Errorf("get: %w", context.DeadlineExceeded),
			want: ErrTimeout,
		},
		{
			name: "net timeout",
			err:  timeoutErr{},
			want: ErrTimeout,
		},
		{
			name: "op error",
			err:  &net.OpError{Op: "dial", Net: "tcp", Err: New("connection refused")},
			want: ErrConnectionFailed,
		},
		{
			name: "dns error",
			err:  &net.DNSError{Err: "no such host", Name: "nowhere.invalid"},
			want: ErrConnectionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			testutil.AssertTrue(t, Is(got, tt.want), fmt.Sprintf("expected %v in chain of %v", tt.want, got))
		})
	}

	t.Run("unrelated error unchanged", func(t *testing.T) {
		err := New("boom")
		testutil.AssertTrue(t, Classify(err) == err, "should return same error")
	})

	t.Run("nil", func(t *testing.T) {
		testutil.AssertNil(t, Classify(nil), "nil in, nil out")
	})
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{ErrTimeout, true},
		{Wrap(ErrConnectionFailed, "probe"), true},
		{ErrInterpretation, true},
		{New("anything else"), true},
		{ErrUnsupportedService, false},
		{ErrRedirectLimit, false},
		{ErrInvalidInput, false},
		{context.Canceled, false},
	}

	for _, tt := range tests {
		name := "nil"
		if tt.err != nil {
			name = tt.err.Error()
		}
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, IsRetryable(tt.err), tt.want, "IsRetryable")
		})
	}
}

func TestIsHelpers(t *testing.T) {
	testutil.AssertTrue(t, IsTimeout(Wrap(ErrTimeout, "x")), "IsTimeout")
	testutil.AssertTrue(t, IsConnectionFailed(Wrap(ErrConnectionFailed, "x")), "IsConnectionFailed")
	testutil.AssertTrue(t, IsInterpretation(Wrap(ErrInterpretation, "x")), "IsInterpretation")
	testutil.AssertTrue(t, IsUnsupportedService(ErrUnsupportedService), "IsUnsupportedService")
	testutil.AssertTrue(t, IsInvalidPlugin(Wrapf(ErrInvalidPlugin, "provider %s", "x")), "IsInvalidPlugin")
	testutil.AssertFalse(t, IsTimeout(ErrConnectionFailed), "IsTimeout negative")
}
