package nats

import (
	"errors"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := newErr(ErrTimeout, "slow subject %s", "foo")
	if !errors.Is(err, &Error{Code: ErrTimeout}) {
		t.Error("errors.Is should match on Code")
	}
	if errors.Is(err, &Error{Code: ErrBadSubject}) {
		t.Error("errors.Is should not match a different Code")
	}
}

func TestWrapErrPreservesCause(t *testing.T) {
	cause := errors.New("boom")
	err := wrapErr(ErrConnectionRefused, cause, "dial failed")
	if !errors.Is(err, cause) {
		t.Error("errors.Is should unwrap to the original cause")
	}
}

func TestErrorBuilderIncludesSubject(t *testing.T) {
	err := NewError(ErrBadSubject).WithMessage("bad").WithSubject("foo.*").Build()
	if got := err.Error(); got == "" {
		t.Fatal("Error() returned empty string")
	}
	if err.Subject != "foo.*" {
		t.Errorf("Subject = %q, want foo.*", err.Subject)
	}
}
