package kvstore

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cockroachdb/cockroach-go/v2/testserver"
	"github.com/jackc/pgx/v5/pgxpool"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	if os.Getenv("NUSAIBA_INTEGRATION") == "" {
		os.Exit(m.Run())
	}

	server, err := testserver.NewTestServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "start cockroach test server: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, server.PGURL().String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to cockroach test server: %v\n", err)
		server.Stop()
		os.Exit(1)
	}

	testPool = pool

	code := m.Run()

	pool.Close()
	server.Stop()

	os.Exit(code)
}

func requirePostgres(t *testing.T) *Postgres {
	t.Helper()
	if testPool == nil {
		t.Skip("set NUSAIBA_INTEGRATION=1 to run postgres kv tests")
	}

	kv, err := NewPostgres(context.Background(), testPool)
	if err != nil {
		t.Fatalf("create postgres kv: %v", err)
	}
	return kv
}

func TestPostgresGetSetDelete(t *testing.T) {
	ctx := context.Background()
	kv := requirePostgres(t)

	if _, ok, err := kv.Get(ctx, "pg-missing"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	if err := kv.Set(ctx, "pg-users", `[{"id":"u1"}]`); err != nil {
		t.Fatalf("set: %v", err)
	}

	value, ok, err := kv.Get(ctx, "pg-users")
	if err != nil || !ok || value != `[{"id":"u1"}]` {
		t.Fatalf("unexpected get result: %q ok=%v err=%v", value, ok, err)
	}

	if err := kv.Set(ctx, "pg-users", `[]`); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	value, _, _ = kv.Get(ctx, "pg-users")
	if value != `[]` {
		t.Fatalf("expected upserted value, got %q", value)
	}

	if err := kv.Delete(ctx, "pg-users"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := kv.Get(ctx, "pg-users"); ok {
		t.Fatal("expected key to be gone")
	}
}
