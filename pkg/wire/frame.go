package wire

import "google.golang.org/protobuf/encoding/protowire"

// SplitFrames splits a length-prefixed stream of protobuf messages (each
// message preceded by its byte length as a varint) into individual message
// buffers. The content store serves single payloads in practice (one
// message per IPFS object), but edits embedded inside a larger archive use
// this framing, so decoders accept both shapes uniformly.
func SplitFrames(buf []byte) ([][]byte, error) {
	var frames [][]byte
	for len(buf) > 0 {
		size, n := protowire.ConsumeVarint(buf)
		if n < 0 {
			return nil, decodeErr("frame", errTruncated)
		}
		buf = buf[n:]
		if uint64(len(buf)) < size {
			return nil, decodeErr("frame", errTruncated)
		}
		frames = append(frames, buf[:size])
		buf = buf[size:]
	}
	return frames, nil
}
