package federatedstore

import (
	"errors"
	"sync"
	"testing"

	"github.com/dalemusser/newsgeo/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestStore_CreateDuplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	link, err := store.Create(ctx, "Alice@Example.com")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if link.Email != "alice@example.com" {
		t.Errorf("Create() Email = %q, want normalized", link.Email)
	}
	if _, err := store.Create(ctx, "alice@example.com"); !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("Create() duplicate error = %v, want ErrDuplicateEmail", err)
	}
}

func TestStore_EnsureLinked(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.EnsureLinked(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("EnsureLinked() error = %v", err)
	}
	if !created {
		t.Error("first EnsureLinked() should create the link")
	}

	created, err = store.EnsureLinked(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("EnsureLinked() error = %v", err)
	}
	if created {
		t.Error("second EnsureLinked() should not create another link")
	}
}

func TestStore_EnsureLinked_Concurrent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.EnsureLinked(ctx, "race@example.com"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("EnsureLinked() error = %v", err)
	}

	n, err := db.Collection(CollectionName).CountDocuments(ctx, bson.M{"email": "race@example.com"})
	if err != nil {
		t.Fatalf("CountDocuments() error = %v", err)
	}
	if n != 1 {
		t.Errorf("links for race@example.com = %d, want 1", n)
	}
}
