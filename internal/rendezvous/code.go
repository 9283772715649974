// Package rendezvous maps short room codes to host addresses so that
// participants can find a host without exchanging URLs.
package rendezvous

import (
	"crypto/rand"
	"errors"
	"strings"
)

const (
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	CodeLength   = 4
	peerPrefix   = "wavelength-"
)

var (
	ErrInvalidCode  = errors.New("invalid room code")
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomTaken    = errors.New("room code already taken")
)

func NewRoomCode() string {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		return strings.Repeat("A", CodeLength)
	}
	for i := range buf {
		buf[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
	}
	return string(buf)
}

// Normalize upper-cases and trims user input.
func Normalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

func Valid(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for _, r := range code {
		if !strings.ContainsRune(codeAlphabet, r) {
			return false
		}
	}
	return true
}

// PeerID is the well-known host identifier derived from a room code.
func PeerID(code string) string {
	return peerPrefix + Normalize(code)
}
