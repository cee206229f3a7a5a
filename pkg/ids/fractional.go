package ids

import "strings"

// FractionalIndexAlphabet is the ordered symbol set used to generate
// lexicographic fractional indices for relation siblings.
const FractionalIndexAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// FirstIndex returns the fractional index for the first element of an
// otherwise-empty ordered list.
func FirstIndex() string {
	return "a0"
}

// IndexBetween returns a lexicographic string strictly between before and
// after, suitable as a relation's fractional index. Either bound may be
// empty: an empty before means "no lower bound", an empty after means "no
// upper bound".
func IndexBetween(before, after string) string {
	if before == "" && after == "" {
		return FirstIndex()
	}
	if before == "" {
		return decrementPrefix(after)
	}
	if after == "" {
		return incrementSuffix(before)
	}
	if before >= after {
		// Defensive: callers should never pass an inverted range, but
		// fall back to simple append rather than producing a corrupt key.
		return incrementSuffix(before)
	}
	return midpoint(before, after)
}

// midpoint walks before and after symbol by symbol, treating a position
// past the end of before as the alphabet's lowest symbol. At the first
// position where the two diverge it picks a symbol strictly between them
// (splitting the alphabet range in half) and stops; that alone is enough to
// make the result sort strictly between before and after regardless of
// what either string does afterward. If the two symbols are adjacent in
// the alphabet it carries the shared prefix one position further, copying
// the rest of before if any, then appends a trailing midpoint symbol, since
// the divergence has already been pushed later than any remaining
// difference between the two inputs.
func midpoint(before, after string) string {
	alphabet := FractionalIndexAlphabet
	result := make([]byte, 0, len(before)+1)

	i := 0
	for {
		bc := alphabet[0]
		if i < len(before) {
			bc = before[i]
		}
		if i >= len(after) {
			// Unreachable given IndexBetween's before>=after guard (after
			// would have to be a strict prefix of before, which makes
			// before >= after), kept only as a defensive fallback.
			result = append(result, bc)
			return string(result) + string(alphabet[len(alphabet)/2])
		}
		ac := after[i]
		if bc == ac {
			result = append(result, bc)
			i++
			continue
		}

		bcIdx := strings.IndexByte(alphabet, bc)
		acIdx := strings.IndexByte(alphabet, ac)
		if acIdx-bcIdx > 1 {
			result = append(result, alphabet[bcIdx+(acIdx-bcIdx)/2])
			return string(result)
		}

		result = append(result, bc)
		i++
		for i < len(before) {
			result = append(result, before[i])
			i++
		}
		result = append(result, alphabet[len(alphabet)/2])
		return string(result)
	}
}

// incrementSuffix appends a midpoint character to extend key past before,
// producing a key that sorts strictly after it.
func incrementSuffix(before string) string {
	alphabet := FractionalIndexAlphabet
	return before + string(alphabet[len(alphabet)/2])
}

// decrementPrefix produces a key that sorts strictly before after by
// prepending the lowest alphabet symbol.
func decrementPrefix(after string) string {
	alphabet := FractionalIndexAlphabet
	if len(after) == 0 {
		return string(alphabet[0]) + "0"
	}
	return string(alphabet[0]) + after
}
