package events

import (
	"context"
	"testing"
	"time"

	"github.com/kgraph/sink/pkg/blockstream"
	"github.com/kgraph/sink/pkg/ids"
	"github.com/kgraph/sink/pkg/kg"
)

func TestHandleProposalCreatedExecutedAndVoteCast(t *testing.T) {
	store := newFakeStore()
	h := testHandler(store)
	version := kg.BlockVersion(1)

	if err := h.HandleSpaceCreated(context.Background(), blockstream.SpaceCreated{DAOAddress: "0xDAO", Network: "ethereum"}, testMeta(), version); err != nil {
		t.Fatalf("HandleSpaceCreated: %v", err)
	}

	created := blockstream.ProposalCreated{
		ProposalID: "prop-1",
		DAOAddress: "0xDAO",
		Creator:    "0xCreator",
		ActionType: string(kg.ProposalAddEdit),
		ContentURI: "ipfs://edit-hash",
		StartDate:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := h.HandleProposalCreated(context.Background(), created, testMeta(), version); err != nil {
		t.Fatalf("HandleProposalCreated: %v", err)
	}

	bag, ok := store.entities["prop-1"]
	if !ok {
		t.Fatal("expected proposal entity to exist")
	}
	if bag[kg.AttrProposalStatus].Raw != string(kg.ProposalStatusProposed) {
		t.Fatalf("expected Proposed status, got %+v", bag[kg.AttrProposalStatus])
	}
	if bag[kg.AttrProposalContentHash].Raw != "ipfs://edit-hash" {
		t.Fatalf("expected content hash triple, got %+v", bag[kg.AttrProposalContentHash])
	}

	vote := blockstream.VoteCast{ProposalID: "prop-1", Voter: "0xVoter", Support: true}
	if err := h.HandleVoteCast(context.Background(), vote, testMeta(), version); err != nil {
		t.Fatalf("HandleVoteCast: %v", err)
	}
	voteBag, ok := store.entities[kg.EntityID("prop-1|vote|"+ids.AccountID("0xVoter"))]
	if !ok {
		t.Fatal("expected vote entity to exist")
	}
	if voteBag[kg.AttrVoteChoice].Raw != string(kg.VoteAccept) {
		t.Fatalf("expected Accept choice, got %+v", voteBag[kg.AttrVoteChoice])
	}

	executed := blockstream.ProposalExecuted{ProposalID: "prop-1", DAOAddress: "0xDAO"}
	if err := h.HandleProposalExecuted(context.Background(), executed, testMeta(), version); err != nil {
		t.Fatalf("HandleProposalExecuted: %v", err)
	}
	if store.entities["prop-1"][kg.AttrProposalStatus].Raw != string(kg.ProposalStatusExecuted) {
		t.Fatalf("expected Executed status, got %+v", store.entities["prop-1"][kg.AttrProposalStatus])
	}
}

func TestHandleVoteCast_UnknownProposalNoops(t *testing.T) {
	store := newFakeStore()
	h := testHandler(store)
	vote := blockstream.VoteCast{ProposalID: "ghost", Voter: "0xVoter", Support: true}
	if err := h.HandleVoteCast(context.Background(), vote, testMeta(), kg.BlockVersion(1)); err != nil {
		t.Fatalf("expected no-op, got error: %v", err)
	}
	if len(store.entities) != 0 {
		t.Fatalf("expected no writes, got %+v", store.entities)
	}
}
