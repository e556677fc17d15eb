package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/explorer-knowledge/Whatsapp-Finance-Manager-Bot/internal/classify"
	"github.com/explorer-knowledge/Whatsapp-Finance-Manager-Bot/internal/models"
)

func TestRegistryLazyAndIsolated(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRegistry(dir, classify.NewDefault(), 10)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	defer r.Close()

	a, err := r.Store("911111111111")
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	b, err := r.Store("922222222222")
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	// Same phone returns the same handle.
	a2, _ := r.Store("911111111111")
	if a != a2 {
		t.Fatal("expected the same store handle for repeated lookups")
	}

	// Writes to one user are invisible to another.
	if _, err := a.AddTransaction(models.KindExpense, "2024-06-15", 100, "Other", "chai"); err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	listing, err := b.ViewTransactions("", "", "", 0)
	if err != nil {
		t.Fatalf("ViewTransactions: %v", err)
	}
	if !listing.Empty() {
		t.Fatalf("user B sees user A's data: %+v", listing)
	}
}

func TestRegistryDeleteUserData(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRegistry(dir, classify.NewDefault(), 10)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	defer r.Close()

	s, _ := r.Store("911111111111")
	s.AddTransaction(models.KindExpense, "2024-06-15", 100, "Other", "chai")

	if err := r.DeleteUserData("911111111111"); err != nil {
		t.Fatalf("DeleteUserData: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "911111111111.db")); !os.IsNotExist(err) {
		t.Fatalf("ledger file still present after deletion: %v", err)
	}

	// A fresh store starts empty.
	s2, err := r.Store("911111111111")
	if err != nil {
		t.Fatalf("Store after delete: %v", err)
	}
	listing, _ := s2.ViewTransactions("", "", "", 0)
	if !listing.Empty() {
		t.Fatalf("ledger not empty after deletion: %+v", listing)
	}

	// Deleting a user with no ledger is not an error.
	if err := r.DeleteUserData("933333333333"); err != nil {
		t.Fatalf("DeleteUserData on missing ledger: %v", err)
	}
}

func TestUsersRegistry(t *testing.T) {
	u, err := NewUsers(filepath.Join(t.TempDir(), "users.db"))
	if err != nil {
		t.Fatalf("NewUsers: %v", err)
	}
	defer u.Close()

	if _, err := u.Get("911111111111"); err != ErrUserNotFound {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}

	created, err := u.Create("911111111111")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.PrivacyAccepted {
		t.Fatal("new user should not have accepted privacy yet")
	}
	if created.UniqueID == "" {
		t.Fatal("new user should get a unique id")
	}
	if created.Name != "User" {
		t.Fatalf("name = %q, want default User", created.Name)
	}

	if err := u.SetPrivacyAccepted("911111111111", true); err != nil {
		t.Fatalf("SetPrivacyAccepted: %v", err)
	}
	got, _ := u.Get("911111111111")
	if !got.PrivacyAccepted {
		t.Fatal("privacy acceptance not persisted (cache not invalidated?)")
	}

	if err := u.SetName("911111111111", "Asha"); err != nil {
		t.Fatalf("SetName: %v", err)
	}
	if name := u.Name("911111111111"); name != "Asha" {
		t.Fatalf("name = %q, want Asha", name)
	}
	if err := u.SetName("900000000000", "Nobody"); err != ErrUserNotFound {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}
