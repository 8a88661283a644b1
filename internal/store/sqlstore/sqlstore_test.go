package sqlstore

import (
	"context"
	"testing"

	"github.com/bgoatlas/bgoatlas/internal/store/storetest"
)

func TestSQLStoreContract(t *testing.T) {
	s, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	storetest.Run(t, s)
}

func TestSchemaIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		t.Fatalf("re-applying schema should be a no-op, got %v", err)
	}
}
