// Package gamedata is the read-only content provider: ability, class, enemy,
// encounter group, NPC, and item definitions embedded as JSON.
package gamedata

import "embed"

// dataFS embeds all JSON content files from this directory at build time.
//
//go:embed *.json
var dataFS embed.FS
