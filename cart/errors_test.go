package cart

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestTranslateError(t *testing.T) {
	other := errors.New("disk full")
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"record not found", fmt.Errorf("find: %w", gorm.ErrRecordNotFound), ErrNotFound},
		{"duplicated key", gorm.ErrDuplicatedKey, ErrConcurrencyConflict},
		{"unique violation", &pgconn.PgError{Code: "23505"}, ErrConcurrencyConflict},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, ErrConcurrencyConflict},
		{"deadlock", fmt.Errorf("tx: %w", &pgconn.PgError{Code: "40P01"}), ErrConcurrencyConflict},
		{"other pg error", &pgconn.PgError{Code: "23503"}, nil},
		{"unrelated", other, other},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := translateError(tc.in)
			switch {
			case tc.in == nil:
				if got != nil {
					t.Fatalf("got %v, want nil", got)
				}
			case tc.want == nil:
				if errors.Is(got, ErrConcurrencyConflict) || errors.Is(got, ErrNotFound) {
					t.Fatalf("got %v, want the error passed through", got)
				}
			default:
				if !errors.Is(got, tc.want) {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}
