package sheetimport

import (
	"testing"

	"gorm.io/gorm"

	"bitbucket.org/digitalshadow/shadow_backend/config"
)

func TestStoreResolvesConnectionPerCall(t *testing.T) {
	var shared *gorm.DB
	store := &Store{db: func() *gorm.DB { return shared }}

	if store.db() != nil {
		t.Fatal("no connection configured yet")
	}

	// A connection appearing after construction must be picked up.
	shared = &gorm.DB{}
	if store.db() != shared {
		t.Error("connection must be resolved at call time, not at construction")
	}
}

func TestNewStorePinsExplicitConnection(t *testing.T) {
	pinned := &gorm.DB{}
	if got := NewStore(pinned).db(); got != pinned {
		t.Errorf("explicit connection not used, got %p want %p", got, pinned)
	}
}

func TestNewStoreDefersToSharedConnection(t *testing.T) {
	if got := NewStore(nil).db(); got != config.GetDB() {
		t.Error("nil connection must defer to the shared config connection")
	}
}
