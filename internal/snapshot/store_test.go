package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Andriiklymiuk/ung-sub008/internal/clock"
	"github.com/Andriiklymiuk/ung-sub008/internal/ung/domain"
)

func newTestStore(t *testing.T) (*Store, *clock.Fake) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	fake := clock.NewFake(time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC))
	store, err := NewStore(Params{DB: db, GenID: node, Clock: fake, Log: zap.NewNop()})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store, fake
}

func TestSaveAndLoad(t *testing.T) {
	store, fake := newTestStore(t)

	records := []map[string]any{{"id": 1, "number": "INV-001"}}
	if err := store.Save(context.Background(), domain.EntityInvoice, records); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, capturedAt, err := store.Load(context.Background(), domain.EntityInvoice)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !capturedAt.Equal(fake.Now().UTC()) {
		t.Fatalf("captured at = %s, want %s", capturedAt, fake.Now().UTC())
	}

	var got []map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 1 || got[0]["number"] != "INV-001" {
		t.Fatalf("unexpected payload: %v", got)
	}
}

func TestSaveUpserts(t *testing.T) {
	store, fake := newTestStore(t)

	if err := store.Save(context.Background(), domain.EntityClient, []int{1}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	fake.Advance(time.Hour)
	if err := store.Save(context.Background(), domain.EntityClient, []int{1, 2}); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	data, capturedAt, err := store.Load(context.Background(), domain.EntityClient)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var got []int
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected the newer batch, got %v", got)
	}
	if !capturedAt.Equal(fake.Now().UTC()) {
		t.Fatalf("capture time not updated: %s", capturedAt)
	}
}

func TestLoadMissingEntity(t *testing.T) {
	store, _ := newTestStore(t)

	_, _, err := store.Load(context.Background(), domain.EntityExpense)
	if !errors.Is(err, domain.ErrNoSnapshotAvailable) {
		t.Fatalf("expected no-snapshot error, got %v", err)
	}
}

func TestEntitiesStoredIndependently(t *testing.T) {
	store, _ := newTestStore(t)

	if err := store.Save(context.Background(), domain.EntityInvoice, []int{1}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(context.Background(), domain.EntityClient, []int{2, 3}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, _, err := store.Load(context.Background(), domain.EntityInvoice)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var got []int
	json.Unmarshal(data, &got)
	if len(got) != 1 {
		t.Fatalf("invoice snapshot clobbered: %v", got)
	}
}
