// Package tester holds the few assertion helpers the middleware tests share.
package tester

import (
	"errors"
	"reflect"
	"testing"
)

// Eq fails the test unless got and want are deeply equal.
func Eq[T any](t *testing.T, got, want T, msgAndArgs ...any) {
	t.Helper()
	if !reflect.DeepEqual(got, want) {
		if len(msgAndArgs) > 0 {
			t.Fatalf("%v: got=%v want=%v", msgAndArgs[0], got, want)
		}
		t.Fatalf("got=%v want=%v", got, want)
	}
}

// True fails the test unless cond holds. A format string with args may follow.
func True(t *testing.T, cond bool, msgAndArgs ...any) {
	t.Helper()
	if cond {
		return
	}
	switch {
	case len(msgAndArgs) > 1:
		if f, ok := msgAndArgs[0].(string); ok {
			t.Fatalf(f, msgAndArgs[1:]...)
		}
		t.Fatalf("%v", msgAndArgs[0])
	case len(msgAndArgs) == 1:
		t.Fatalf("%v", msgAndArgs[0])
	default:
		t.Fatalf("expected condition to be true")
	}
}

// NoErr fails the test on a non-nil error.
func NoErr(t *testing.T, err error, msgAndArgs ...any) {
	t.Helper()
	if err != nil {
		if len(msgAndArgs) > 0 {
			t.Fatalf("%v: %v", msgAndArgs[0], err)
		}
		t.Fatalf("unexpected error: %v", err)
	}
}

// ErrAs fails the test unless err wraps an error of type E.
func ErrAs[E error](t *testing.T, err error) E {
	t.Helper()
	var target E
	if !errors.As(err, &target) {
		t.Fatalf("expected %T in chain, got %v", target, err)
	}
	return target
}
