// Package ids derives the deterministic entity identifiers used throughout
// the knowledge graph: space ids from (network, DAO address) pairs, account
// ids from chain addresses, and checksummed address formatting.
//
// Space ids must be idempotent under re-emission of the same on-chain
// creation event (invariant I4): the same (network, address) pair always
// derives the same id, and no randomness is involved.
package ids

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SpaceID derives a stable space id from the network name and the DAO
// contract address. The address is normalised (lowercased, 0x-prefixed)
// before hashing so that differently-cased emissions of the same address
// collapse to the same id.
func SpaceID(network, daoAddress string) string {
	return derive("space", network, normalizeAddress(daoAddress))
}

// AccountID derives a stable account id from a chain address.
func AccountID(address string) string {
	return derive("account", normalizeAddress(address))
}

// DAOIndexID derives the id of the bookkeeping entity that indexes a DAO
// contract address to the space it governs (kg.RelationDAOIndex). Events
// emitted after space creation carry only a DAO address, not the network
// SpaceID was derived from, so the sink cannot recompute SpaceID directly
// and instead resolves it through this address-keyed index.
func DAOIndexID(daoAddress string) string {
	return derive("dao-index", normalizeAddress(daoAddress))
}

// derive hashes the given parts (joined with a separator that cannot appear
// in a normalised address) and returns a hex-encoded id prefixed with kind.
func derive(kind string, parts ...string) string {
	h := sha256.New()
	h.Write([]byte(kind))
	for _, p := range parts {
		h.Write([]byte{0})
		h.Write([]byte(p))
	}
	sum := h.Sum(nil)
	return kind + "_" + hex.EncodeToString(sum[:16])
}

// normalizeAddress lowercases and 0x-prefixes a hex address.
func normalizeAddress(addr string) string {
	a := strings.ToLower(strings.TrimSpace(addr))
	if !strings.HasPrefix(a, "0x") {
		a = "0x" + a
	}
	return a
}

// Checksum returns the EIP-55-style mixed-case checksum of a hex address.
// Unlike the canonical Keccak-256 algorithm, this uses SHA-256 since the
// sink has no dependency on a Keccak implementation; it is sufficient for
// the sink's purpose of producing a stable, comparably-formatted display
// value and is not used for on-chain verification (explicitly out of
// scope — see Non-goals).
func Checksum(addr string) string {
	a := normalizeAddress(addr)
	hexPart := a[2:]
	h := sha256.Sum256([]byte(hexPart))
	hashHex := hex.EncodeToString(h[:])

	var b strings.Builder
	b.WriteString("0x")
	for i, c := range hexPart {
		if c >= 'a' && c <= 'f' {
			nibble := hashHex[i]
			if nibble >= '8' {
				b.WriteRune(c - ('a' - 'A'))
				continue
			}
		}
		b.WriteRune(c)
	}
	return b.String()
}
