package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "Not authorized"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "Access denied", detailsOK: true},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeRateLimit, status: http.StatusTooManyRequests, publicMsg: "rate limit exceeded"},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "Internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	detail := map[string]any{"field": "foo"}
	base.WithDetails(detail)
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeForbidden, "no entry"))
	if got := As(err); got == nil || got.Code() != CodeForbidden {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
	if !IsCode(err, CodeForbidden) || IsCode(err, CodeNotFound) {
		t.Fatalf("IsCode returned wrong result")
	}
}

func TestPublicMessageHidesServerSideText(t *testing.T) {
	if got := New(CodeNotFound, "Cart not found").PublicMessage(); got != "Cart not found" {
		t.Fatalf("expected domain message, got %q", got)
	}
	if got := New(CodeValidation, "").PublicMessage(); got != "validation failed" {
		t.Fatalf("expected fallback message, got %q", got)
	}
	if got := Wrap(CodeInternal, stdErrors.New("dial tcp"), "list products").PublicMessage(); got != "Internal server error" {
		t.Fatalf("internal detail leaked: %q", got)
	}
	if got := Wrap(CodeDependency, nil, "redis down").PublicMessage(); got != "dependency unavailable" {
		t.Fatalf("dependency detail leaked: %q", got)
	}
}

func TestErrorStringIncludesCause(t *testing.T) {
	err := Wrap(CodeInternal, stdErrors.New("dial tcp"), "list products")
	if got := err.Error(); got != "INTERNAL_ERROR: list products: dial tcp" {
		t.Fatalf("unexpected error string %q", got)
	}
	if got := New(CodeNotFound, "").Error(); got != "NOT_FOUND" {
		t.Fatalf("unexpected error string %q", got)
	}
}

func TestDumpCapturesPgFields(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key", TableName: "users", Message: "duplicate key value"}
	err := Wrap(CodeConflict, pgErr, "insert user")

	d := Dump(err)
	if d.Code != CodeConflict {
		t.Fatalf("expected conflict code, got %s", d.Code)
	}
	if d.PGCode != "23505" || d.PGConstraint != "users_email_key" || d.PGTable != "users" {
		t.Fatalf("unexpected pg fields %+v", d)
	}
	if len(d.Chain) != 2 {
		t.Fatalf("expected 2 chain entries, got %d", len(d.Chain))
	}
	fields := d.Fields()
	if fields["pg_code"] != "23505" || fields["error_code"] != CodeConflict {
		t.Fatalf("unexpected fields %+v", fields)
	}
	if _, ok := fields["sqlite_code"]; ok {
		t.Fatalf("sqlite code should be omitted for postgres errors")
	}
}

func TestDumpCapturesSQLiteCode(t *testing.T) {
	liteErr := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}
	d := Dump(Wrap(CodeConflict, liteErr, "insert user"))
	if d.SQLiteCode == "" || d.PGCode != "" {
		t.Fatalf("unexpected dump %+v", d)
	}
}
