package analytics

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Session{}, &Inquiry{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// recordingBus captures every broadcast snapshot in publication order.
type recordingBus struct {
	mu     sync.Mutex
	events []Inquiry
}

func (b *recordingBus) Broadcast(inq *Inquiry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, *inq)
}

func (b *recordingBus) snapshot() []Inquiry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Inquiry, len(b.events))
	copy(out, b.events)
	return out
}

func (b *recordingBus) eventsFor(inquiryID string) []Inquiry {
	var out []Inquiry
	for _, e := range b.snapshot() {
		if e.ID == inquiryID {
			out = append(out, e)
		}
	}
	return out
}

// nopBus discards broadcasts.
type nopBus struct{}

func (nopBus) Broadcast(*Inquiry) {}
