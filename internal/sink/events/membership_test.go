package events

import (
	"context"
	"testing"

	"github.com/kgraph/sink/pkg/blockstream"
	"github.com/kgraph/sink/pkg/ids"
	"github.com/kgraph/sink/pkg/kg"
)

func TestHandleEditorAddedAndRemoved(t *testing.T) {
	store := newFakeStore()
	h := testHandler(store)
	version := kg.BlockVersion(1)

	if err := h.HandleSpaceCreated(context.Background(), blockstream.SpaceCreated{DAOAddress: "0xDAO", Network: "ethereum"}, testMeta(), version); err != nil {
		t.Fatalf("HandleSpaceCreated: %v", err)
	}
	if err := h.HandleEditorAdded(context.Background(), blockstream.EditorAdded{DAOAddress: "0xDAO", Editor: "0xEd"}, testMeta(), version); err != nil {
		t.Fatalf("HandleEditorAdded: %v", err)
	}
	if n := len(store.liveRelationsByType(kg.RelationEditor)); n != 1 {
		t.Fatalf("expected 1 live editor relation, got %d", n)
	}
	accountID := kg.EntityID(ids.AccountID("0xEd"))
	if _, ok := store.entities[accountID]; !ok {
		t.Fatalf("expected lazily created account %s", accountID)
	}

	if err := h.HandleEditorRemoved(context.Background(), blockstream.EditorRemoved{DAOAddress: "0xDAO", Editor: "0xEd"}, testMeta(), version); err != nil {
		t.Fatalf("HandleEditorRemoved: %v", err)
	}
	if n := len(store.liveRelationsByType(kg.RelationEditor)); n != 0 {
		t.Fatalf("expected 0 live editor relations after removal, got %d", n)
	}
}

func TestHandleMemberAdded_UnknownSpaceNoops(t *testing.T) {
	store := newFakeStore()
	h := testHandler(store)
	if err := h.HandleMemberAdded(context.Background(), blockstream.MemberAdded{DAOAddress: "0xGhost", Member: "0xM"}, testMeta(), kg.BlockVersion(1)); err != nil {
		t.Fatalf("expected no-op, got error: %v", err)
	}
	if len(store.entities) != 0 {
		t.Fatalf("expected no writes, got %+v", store.entities)
	}
}

func TestHandleMemberRemoved_AlreadyRemovedIsNotAnError(t *testing.T) {
	store := newFakeStore()
	h := testHandler(store)
	version := kg.BlockVersion(1)
	if err := h.HandleSpaceCreated(context.Background(), blockstream.SpaceCreated{DAOAddress: "0xDAO", Network: "ethereum"}, testMeta(), version); err != nil {
		t.Fatalf("HandleSpaceCreated: %v", err)
	}
	if err := h.HandleMemberRemoved(context.Background(), blockstream.MemberRemoved{DAOAddress: "0xDAO", Member: "0xNeverJoined"}, testMeta(), version); err != nil {
		t.Fatalf("expected a no-op removal to succeed, got %v", err)
	}
}
