package middleware

import (
	"errors"
	"fmt"
	"testing"
)

func TestAPIError(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want string
		code int
		msg  string
	}{
		{
			name: "without cause",
			err:  NewAPIError(404, "resource not found", nil),
			want: "api error 404: resource not found",
			code: 404,
			msg:  "resource not found",
		},
		{
			name: "with cause",
			err:  NewAPIError(500, "internal error", errors.New("underlying error")),
			want: "api error 500: internal error: underlying error",
			code: 500,
			msg:  "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code() != tt.code {
				t.Errorf("Code() = %v, want %v", tt.err.Code(), tt.code)
			}
			if tt.err.Message() != tt.msg {
				t.Errorf("Message() = %v, want %v", tt.err.Message(), tt.msg)
			}
			if tt.err.Error() != tt.want {
				t.Errorf("Error() = %v, want %v", tt.err.Error(), tt.want)
			}
		})
	}
}

func TestAPIError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := NewAPIError(500, "internal error", cause)

	if err.Unwrap() != cause {
		t.Error("Unwrap() should return the cause")
	}
	if unwrapped := NewAPIError(404, "not found", nil).Unwrap(); unwrapped != nil {
		t.Errorf("Unwrap() with no cause = %v, want nil", unwrapped)
	}
}

func TestAuthenticationError(t *testing.T) {
	err := NewAuthenticationError("invalid token")

	if got, want := err.Error(), "authentication failed: invalid token"; got != want {
		t.Errorf("Error() = %v, want %v", got, want)
	}
	if !errors.Is(err, ErrAuthentication) {
		t.Error("AuthenticationError should match ErrAuthentication with errors.Is")
	}
}

func TestServerError(t *testing.T) {
	err := NewServerError(503, "service unavailable")

	if err.StatusCode() != 503 {
		t.Errorf("StatusCode() = %v, want 503", err.StatusCode())
	}
	if err.Message() != "service unavailable" {
		t.Errorf("Message() = %v, want 'service unavailable'", err.Message())
	}
	if got, want := err.Error(), "server error 503: service unavailable"; got != want {
		t.Errorf("Error() = %v, want %v", got, want)
	}
	if !errors.Is(err, ErrServer) {
		t.Error("ServerError should match ErrServer with errors.Is")
	}
}

func TestErrors_CanBeWrapped(t *testing.T) {
	wrapped := fmt.Errorf("request failed: %w", NewAuthenticationError("token expired"))

	if !errors.Is(wrapped, ErrAuthentication) {
		t.Error("wrapped AuthenticationError should still match ErrAuthentication")
	}

	var target *AuthenticationError
	if !errors.As(wrapped, &target) {
		t.Fatal("should be able to extract AuthenticationError with errors.As")
	}
	if target.Error() != "authentication failed: token expired" {
		t.Errorf("extracted Error() = %v", target.Error())
	}
}
