package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "bare",
			err:  New(ErrCodeInvalidAction, "unknown action %q", "flip"),
			want: `INVALID_ACTION: unknown action "flip"`,
		},
		{
			name: "with cause",
			err:  Wrap(ErrCodeInternal, errors.New("exit status 1"), "render %s", "png"),
			want: "INTERNAL_ERROR: render png: exit status 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("rsvg-convert not found")
	err := Wrap(ErrCodeUnsupported, cause, "png output")

	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestCodeLookup(t *testing.T) {
	stdWrapped := fmt.Errorf("load: %w", New(ErrCodeInvalidConfig, "bad width"))
	nested := Wrap(ErrCodeInternal, New(ErrCodeInvalidKind, "inner"), "outer")

	tests := []struct {
		name    string
		err     error
		code    Code
		is      Code
		invalid bool
	}{
		{"direct", New(ErrCodeInvalidFormat, "gif"), ErrCodeInvalidFormat, ErrCodeInvalidFormat, true},
		{"through fmt wrapping", stdWrapped, ErrCodeInvalidConfig, ErrCodeInvalidConfig, true},
		{"outermost code wins", nested, ErrCodeInternal, ErrCodeInternal, false},
		{"session lookup", New(ErrCodeSessionNotFound, "expired"), ErrCodeSessionNotFound, ErrCodeSessionNotFound, false},
		{"plain", errors.New("plain"), "", ErrCodeInternal, false},
		{"nil", nil, "", ErrCodeInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			wantIs := tt.code != "" && tt.code == tt.is
			if got := Is(tt.err, tt.is); got != wantIs {
				t.Errorf("Is(%q) = %v, want %v", tt.is, got, wantIs)
			}
			if got := IsInvalid(tt.err); got != tt.invalid {
				t.Errorf("IsInvalid() = %v, want %v", got, tt.invalid)
			}
		})
	}
}

func TestGetCodeOr(t *testing.T) {
	if got := GetCodeOr(New(ErrCodeTooManySessions, "full"), ErrCodeInternal); got != ErrCodeTooManySessions {
		t.Errorf("GetCodeOr() = %q, want %q", got, ErrCodeTooManySessions)
	}
	if got := GetCodeOr(errors.New("boom"), ErrCodeInternal); got != ErrCodeInternal {
		t.Errorf("GetCodeOr() = %q, want %q", got, ErrCodeInternal)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"structured", New(ErrCodeInvalidStyle, "unknown style %q", "neon"), `unknown style "neon"`},
		{"structured with cause", Wrap(ErrCodeInvalidPath, errors.New("denied"), "write out.svg"), "write out.svg"},
		{"wrapped by fmt", fmt.Errorf("render: %w", New(ErrCodeInvalidVizType, "bad type")), "bad type"},
		{"plain", errors.New("disk full"), "disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
