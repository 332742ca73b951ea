package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err:  &AppError{Code: ErrCodeNotFound, Message: "book not found"},
			want: "book not found",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeSSOExchangeFailed,
				Message: "Single sign-on failed",
				Cause:   errors.New("token expired"),
			},
			want: "Single sign-on failed: token expired",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("redis down")
	err := Wrap(cause, ErrCodeUnavailable, "storage unavailable")

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(%v, cause) = false, want true", err)
	}
}

func TestAuthErrorConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		is      func(error) bool
		wantMsg string
	}{
		{"invalid credentials", InvalidCredentials(), IsInvalidCredentials, "Invalid credentials"},
		{"account disabled", AccountDisabled(), IsAccountDisabled, "Account is deactivated"},
		{"sso exchange failed", SSOExchangeFailed(errors.New("boom")), IsSSOExchangeFailed, "Single sign-on failed"},
		{
			"malformed session",
			MalformedPersistedSession(errors.New("bad json")),
			IsMalformedPersistedSession,
			"persisted session is malformed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.is(tt.err) {
				t.Errorf("predicate returned false for %v", tt.err)
			}
			wrapped := fmt.Errorf("login: %w", tt.err)
			if !tt.is(wrapped) {
				t.Errorf("predicate returned false for wrapped %v", wrapped)
			}
			if got := UserMessage(wrapped, "fallback"); got != tt.wantMsg {
				t.Errorf("UserMessage() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestValidationField(t *testing.T) {
	err := ValidationField("email", "Email is required")
	if err.Code != ErrCodeValidation {
		t.Errorf("ValidationField().Code = %v, want %v", err.Code, ErrCodeValidation)
	}
	if GetField(err) != "email" {
		t.Errorf("GetField() = %v, want email", GetField(err))
	}
}

func TestWrap_NilError(t *testing.T) {
	if err := Wrap(nil, ErrCodeInternal, "noop"); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %v, want empty", got)
	}
	if got := GetCode(fmt.Errorf("wrap: %w", NotFound("x"))); got != ErrCodeNotFound {
		t.Errorf("GetCode(wrapped) = %v, want %v", got, ErrCodeNotFound)
	}
}

func TestUserMessage_Fallback(t *testing.T) {
	if got := UserMessage(errors.New("dial tcp"), "Sign in failed"); got != "Sign in failed" {
		t.Errorf("UserMessage() = %q, want fallback", got)
	}
}
