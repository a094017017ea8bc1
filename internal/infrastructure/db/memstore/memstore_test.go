package memstore

import (
	"context"
	"testing"

	"github.com/stairstreak/leaderboard-system/internal/core/ports"
)

func TestInsertAndQueryAll(t *testing.T) {
	s := New()
	ctx := context.Background()

	id1, err := s.Insert(ctx, "things", ports.Record{"name": "first"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	id2, _ := s.Insert(ctx, "things", ports.Record{"name": "second"})
	if id1 == "" || id1 == id2 {
		t.Fatalf("expected distinct non-empty ids, got %q and %q", id1, id2)
	}

	recs, err := s.QueryAll(ctx, "things")
	if err != nil {
		t.Fatalf("query all: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	// Insertion order is preserved.
	if recs[0]["name"] != "first" || recs[1]["name"] != "second" {
		t.Errorf("unexpected order: %v", recs)
	}
}

func TestQueryWhere(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.Insert(ctx, "things", ports.Record{"owner": "a"})
	s.Insert(ctx, "things", ports.Record{"owner": "b"})
	s.Insert(ctx, "things", ports.Record{"owner": "a"})

	recs, err := s.QueryWhere(ctx, "things", "owner", "a")
	if err != nil {
		t.Fatalf("query where: %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("expected 2 matches, got %d", len(recs))
	}
}

func TestUpdateMergesPartial(t *testing.T) {
	s := New()
	ctx := context.Background()
	id, _ := s.Insert(ctx, "things", ports.Record{"name": "old", "kept": "yes"})

	if err := s.Update(ctx, "things", id, ports.Record{"name": "new"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	recs, _ := s.QueryAll(ctx, "things")
	if recs[0]["name"] != "new" || recs[0]["kept"] != "yes" {
		t.Errorf("expected merged record, got %v", recs[0])
	}

	if err := s.Update(ctx, "things", "missing", ports.Record{"x": 1}); err == nil {
		t.Error("expected error updating a missing record")
	}
}

func TestDeleteAndClear(t *testing.T) {
	s := New()
	ctx := context.Background()
	id, _ := s.Insert(ctx, "things", ports.Record{"n": 1})
	s.Insert(ctx, "things", ports.Record{"n": 2})

	if err := s.Delete(ctx, "things", id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if recs, _ := s.QueryAll(ctx, "things"); len(recs) != 1 {
		t.Fatalf("expected 1 record after delete, got %d", len(recs))
	}
	if err := s.Delete(ctx, "things", id); err == nil {
		t.Error("expected error deleting twice")
	}

	if err := s.Clear(ctx, "things"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if recs, _ := s.QueryAll(ctx, "things"); len(recs) != 0 {
		t.Errorf("expected empty collection after clear, got %d records", len(recs))
	}
}

func TestSubscribeReceivesFullContents(t *testing.T) {
	s := New()
	ctx := context.Background()

	var last []ports.Record
	calls := 0
	unsubscribe, err := s.Subscribe("things", func(recs []ports.Record) {
		last = recs
		calls++
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	s.Insert(ctx, "things", ports.Record{"n": 1})
	s.Insert(ctx, "things", ports.Record{"n": 2})
	if calls != 2 || len(last) != 2 {
		t.Fatalf("expected 2 calls with full contents, got calls=%d len=%d", calls, len(last))
	}

	// Other collections do not trigger this subscriber.
	s.Insert(ctx, "other", ports.Record{"n": 3})
	if calls != 2 {
		t.Errorf("expected no notification for other collection, got %d calls", calls)
	}

	unsubscribe()
	s.Insert(ctx, "things", ports.Record{"n": 4})
	if calls != 2 {
		t.Errorf("expected no notification after unsubscribe, got %d calls", calls)
	}
}

func TestReadsReturnClones(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.Insert(ctx, "things", ports.Record{"name": "original"})

	recs, _ := s.QueryAll(ctx, "things")
	recs[0]["name"] = "mutated"

	again, _ := s.QueryAll(ctx, "things")
	if again[0]["name"] != "original" {
		t.Error("store contents must not be mutable through read results")
	}
}
