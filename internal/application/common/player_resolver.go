package common

import (
	"strings"

	"github.com/andrescamacho/xnova-go/internal/domain/shared"
)

// ResolvePlayerID turns the opaque identifier handed over by a front-end
// into a PlayerID. Identifiers may carry a "tg:" style namespace prefix,
// which is kept as part of the id so that different front-ends never collide.
//
// Business rules:
//   - surrounding whitespace is ignored
//   - the namespace, when present, is lower-cased
//   - the resulting id must satisfy shared.NewPlayerID
func ResolvePlayerID(raw string) (shared.PlayerID, error) {
	raw = strings.TrimSpace(raw)
	if ns, id, ok := strings.Cut(raw, ":"); ok && ns != "" && id != "" {
		raw = strings.ToLower(ns) + ":" + strings.TrimSpace(id)
	}
	return shared.NewPlayerID(raw)
}
