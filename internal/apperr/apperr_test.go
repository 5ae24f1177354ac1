package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: Validation("name too short"), want: http.StatusBadRequest},
		{name: "not found", err: NotFound("worker not found"), want: http.StatusNotFound},
		{name: "forbidden", err: Forbidden("admin only"), want: http.StatusForbidden},
		{name: "conflict", err: Conflict("already assigned"), want: http.StatusConflict},
		{name: "wrapped", err: fmt.Errorf("load: %w", NotFound("gone")), want: http.StatusNotFound},
		{name: "infrastructure", err: errors.New("connection reset"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Fatalf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("wrap: %w", Forbidden("only admins may delete workers"))

	if !errors.Is(err, ErrForbidden) {
		t.Fatal("expected errors.Is to match ErrForbidden")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatal("forbidden error must not match ErrNotFound")
	}
	if err.Error() != "wrap: only admins may delete workers" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
