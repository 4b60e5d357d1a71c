package utils

import (
	"crypto/rand" // secure randomness for code generation
)

// RoomCodeAlphabet is the character set room codes are drawn from.
// Uppercase letters and digits keep codes easy to read out loud and
// unambiguous when typed on a phone.
const RoomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RoomCodeLength is the default length of a generated room code.  At
// 36^8 possible codes, collisions stay rare even with millions of
// rooms, so the insert-and-retry loop in the room repository almost
// always succeeds on the first attempt.
const RoomCodeLength = 8

// NewRoomCode returns a random candidate room code of the given
// length drawn uniformly from RoomCodeAlphabet.  The caller is
// responsible for uniqueness: the rooms.room_code UNIQUE constraint
// is the final authority and the repository retries on collision.
func NewRoomCode(length int) (string, error) {
	if length <= 0 {
		length = RoomCodeLength
	}
	out := make([]byte, length)
	// Rejection sampling keeps the draw uniform: 252 is the largest
	// multiple of len(alphabet) below 256, so bytes at or above it
	// are discarded instead of biasing the low characters.
	max := byte(256 - 256%len(RoomCodeAlphabet))
	buf := make([]byte, length)
	filled := 0
	for filled < length {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= max {
				continue
			}
			out[filled] = RoomCodeAlphabet[int(b)%len(RoomCodeAlphabet)]
			filled++
			if filled == length {
				break
			}
		}
	}
	return string(out), nil
}
