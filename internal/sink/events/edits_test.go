package events

import (
	"context"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/kgraph/sink/pkg/blockstream"
	"github.com/kgraph/sink/pkg/kg"
	"github.com/kgraph/sink/pkg/wire"
)

// fakeContentStore is a map-backed ipfs.Client double keyed by content URI.
type fakeContentStore map[string][]byte

func (f fakeContentStore) Fetch(ctx context.Context, uri string) ([]byte, error) {
	b, ok := f[uri]
	if !ok {
		return nil, kg.ErrNotFound
	}
	return b, nil
}

func encodeTextValue(s string) []byte {
	buf := protowire.AppendTag(nil, 1, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(wire.ValueTypeText))
	buf = protowire.AppendTag(buf, 2, protowire.BytesType)
	buf = protowire.AppendString(buf, s)
	return buf
}

func encodeTriple(entity, attribute string, value []byte) []byte {
	buf := protowire.AppendTag(nil, 1, protowire.BytesType)
	buf = protowire.AppendString(buf, entity)
	buf = protowire.AppendTag(buf, 2, protowire.BytesType)
	buf = protowire.AppendString(buf, attribute)
	buf = protowire.AppendTag(buf, 3, protowire.BytesType)
	buf = protowire.AppendBytes(buf, value)
	return buf
}

func encodeOp(opType wire.OpType, triple []byte) []byte {
	buf := protowire.AppendTag(nil, 1, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(opType))
	buf = protowire.AppendTag(buf, 2, protowire.BytesType)
	buf = protowire.AppendBytes(buf, triple)
	return buf
}

func encodeEdit(actionType wire.ActionType, ops ...[]byte) []byte {
	buf := protowire.AppendTag(nil, 1, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(actionType))
	for _, op := range ops {
		buf = protowire.AppendTag(buf, 5, protowire.BytesType)
		buf = protowire.AppendBytes(buf, op)
	}
	return buf
}

// frame prefixes msg with its varint length, matching wire.SplitFrames.
func frame(msg []byte) []byte {
	return append(protowire.AppendVarint(nil, uint64(len(msg))), msg...)
}

func TestHandleEditsPublished_AppliesSetTripleOps(t *testing.T) {
	store := newFakeStore()
	h := testHandler(store)
	version := kg.BlockVersion(1)

	if err := h.HandleSpaceCreated(context.Background(), blockstream.SpaceCreated{DAOAddress: "0xDAO", Network: "ethereum"}, testMeta(), version); err != nil {
		t.Fatalf("HandleSpaceCreated: %v", err)
	}

	triple := encodeTriple("entity-1", "system:attribute:name", encodeTextValue("Widget"))
	op := encodeOp(wire.OpTypeSetTriple, triple)
	edit := encodeEdit(wire.ActionTypeAddEdit, op)
	content := fakeContentStore{"ipfs://edit-1": frame(edit)}
	h.Content = content

	evt := blockstream.EditPublished{DAOAddress: "0xDAO", ContentURI: "ipfs://edit-1"}
	if err := h.HandleEditsPublished(context.Background(), evt, testMeta(), version); err != nil {
		t.Fatalf("HandleEditsPublished: %v", err)
	}

	bag, ok := store.entities["entity-1"]
	if !ok {
		t.Fatal("expected entity-1 to have been written")
	}
	if bag["system:attribute:name"].Raw != "Widget" {
		t.Fatalf("unexpected attribute value: %+v", bag["system:attribute:name"])
	}
}

func TestHandleEditsPublished_ImportReplaysEachEdit(t *testing.T) {
	store := newFakeStore()
	h := testHandler(store)
	version := kg.BlockVersion(1)

	if err := h.HandleSpaceCreated(context.Background(), blockstream.SpaceCreated{DAOAddress: "0xDAO", Network: "ethereum"}, testMeta(), version); err != nil {
		t.Fatalf("HandleSpaceCreated: %v", err)
	}

	edit1 := encodeEdit(wire.ActionTypeAddEdit, encodeOp(wire.OpTypeSetTriple, encodeTriple("e1", "a1", encodeTextValue("v1"))))
	edit2 := encodeEdit(wire.ActionTypeAddEdit, encodeOp(wire.OpTypeSetTriple, encodeTriple("e2", "a2", encodeTextValue("v2"))))
	importMsg := encodeImportPayload(wire.ActionTypeImportSpace, "ipfs://edit-1", "ipfs://edit-2")

	content := fakeContentStore{
		"ipfs://import": frame(importMsg),
		"ipfs://edit-1": frame(edit1),
		"ipfs://edit-2": frame(edit2),
	}
	h.Content = content

	evt := blockstream.EditPublished{DAOAddress: "0xDAO", ContentURI: "ipfs://import"}
	if err := h.HandleEditsPublished(context.Background(), evt, testMeta(), version); err != nil {
		t.Fatalf("HandleEditsPublished: %v", err)
	}

	if store.entities["e1"]["a1"].Raw != "v1" || store.entities["e2"]["a2"].Raw != "v2" {
		t.Fatalf("expected both imported edits applied, got %+v", store.entities)
	}
}

// encodeImportPayload wraps an Import message's field with a leading
// ActionType field, mirroring how IpfsMetadata.Type is decoded from the same
// bytes an Import message occupies (field 1 is shared across all three
// envelope shapes).
func encodeImportPayload(actionType wire.ActionType, edits ...string) []byte {
	buf := protowire.AppendTag(nil, 1, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(actionType))
	for _, e := range edits {
		buf = protowire.AppendTag(buf, 1, protowire.BytesType)
		buf = protowire.AppendString(buf, e)
	}
	return buf
}

func TestHandleEditsPublished_UnknownSpaceNoops(t *testing.T) {
	store := newFakeStore()
	h := testHandler(store)
	h.Content = fakeContentStore{}

	evt := blockstream.EditPublished{DAOAddress: "0xGhost", ContentURI: "ipfs://whatever"}
	if err := h.HandleEditsPublished(context.Background(), evt, testMeta(), kg.BlockVersion(1)); err != nil {
		t.Fatalf("expected no-op, got error: %v", err)
	}
	if len(store.entities) != 0 {
		t.Fatalf("expected no writes, got %+v", store.entities)
	}
}

func TestHandleEditsPublished_DecodeErrorIsSkippedNotFatal(t *testing.T) {
	store := newFakeStore()
	h := testHandler(store)
	version := kg.BlockVersion(1)

	if err := h.HandleSpaceCreated(context.Background(), blockstream.SpaceCreated{DAOAddress: "0xDAO", Network: "ethereum"}, testMeta(), version); err != nil {
		t.Fatalf("HandleSpaceCreated: %v", err)
	}

	garbage := []byte{0xFF, 0xFF, 0xFF}
	h.Content = fakeContentStore{"ipfs://bad": frame(garbage)}

	evt := blockstream.EditPublished{DAOAddress: "0xDAO", ContentURI: "ipfs://bad"}
	if err := h.HandleEditsPublished(context.Background(), evt, testMeta(), version); err != nil {
		t.Fatalf("expected decode errors to be skipped, not propagated: %v", err)
	}
}
