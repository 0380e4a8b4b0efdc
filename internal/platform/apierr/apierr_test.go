package apierr

import (
	"errors"
	"testing"
)

func TestErrorText(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		e    *Error
		want string
	}{
		{nil, ""},
		{New(500, "X", cause), "boom"},
		{&Error{Status: 400, Code: "BAD", Message: "bad input"}, "bad input"},
		{&Error{Code: "BAD"}, "BAD"},
		{&Error{Status: 503}, "api error (503)"},
		{&Error{}, "api error"},
	}
	for _, tt := range tests {
		if got := tt.e.Error(); got != tt.want {
			t.Fatalf("got %q want %q", got, tt.want)
		}
	}
	if !errors.Is(New(500, "X", cause), cause) {
		t.Fatal("Unwrap should expose the cause")
	}
}
