// Package domain contains entities without logic, just meta-data.
package domain

import "strings"

const (
	MaxPlayers = 6
	MinPlayers = 3

	MaxNameLen = 24
)

// PlayerID is an opaque connection identity assigned by the adapter.
type PlayerID string

type Player struct {
	ID      PlayerID `json:"id"`
	Name    string   `json:"name"`
	Score   int      `json:"score"`
	IsAdmin bool     `json:"isAdmin"`
	Avatar  Avatar   `json:"avatar"`
}

// NormalizeName trims and collapses internal whitespace. Name
// uniqueness inside a room is always checked on the normalized form.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
