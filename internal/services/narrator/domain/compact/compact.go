// Package compact reduces raw content documents to the minimal structs that
// feed prompt assembly, and degrades them further when a rendered document
// exceeds its token cap.
package compact

import (
	"github.com/mistvale/loreweave/internal/services/narrator/domain/content"
)

const (
	// MaxSynopsisChars caps an adventure synopsis at compaction time.
	MaxSynopsisChars = 280
	// MaxCastEntries caps the adventure cast list at compaction time.
	MaxCastEntries = 12
	// MaxNPCSummaryChars caps an NPC summary at compaction time.
	MaxNPCSummaryChars = 160
	// DefaultDocCap is the per-document token cap the degradation ladders
	// enforce when the caller does not supply one.
	DefaultDocCap = 300
)

// World is the compacted form of a world document.
type World struct {
	ID        string
	Name      string
	Timeworld *content.Timeworld
}

// Adventure is the compacted form of an adventure document.
type Adventure struct {
	ID       string
	Name     string
	Synopsis string
	Cast     []content.CastMember
}

// NPC is the compacted form of an NPC document. ID and Version are left
// zero by CompactNPC; the caller stamps them after compaction.
type NPC struct {
	ID        string
	Version   string
	Name      string
	Archetype string
	Summary   string
	Style     content.Style
	Tags      []string
}

// CompactWorld resolves the locale overlay for a world document and clones
// its timeworld so later degradation never touches the source document.
func CompactWorld(doc content.WorldDoc, locale string) World {
	w := World{
		ID:   doc.ID,
		Name: doc.LocalName(locale),
	}
	if doc.Timeworld != nil {
		tw := *doc.Timeworld
		tw.Seasons = append([]content.Season(nil), doc.Timeworld.Seasons...)
		w.Timeworld = &tw
	}
	return w
}

// CompactAdventure resolves locale overlays, clamps the synopsis to
// MaxSynopsisChars, and keeps the first MaxCastEntries cast members in
// their original order.
func CompactAdventure(doc content.AdventureDoc, locale string) Adventure {
	cast := doc.Cast
	if len(cast) > MaxCastEntries {
		cast = cast[:MaxCastEntries]
	}
	return Adventure{
		ID:       doc.ID,
		Name:     doc.LocalName(locale),
		Synopsis: clampRunes(doc.LocalSynopsis(locale), MaxSynopsisChars),
		Cast:     append([]content.CastMember(nil), cast...),
	}
}

// CompactNPC resolves locale overlays and clamps the summary to
// MaxNPCSummaryChars. It is a pure content transform: identity fields stay
// zero until the caller stamps them.
func CompactNPC(doc content.NPCDoc, locale string) NPC {
	return NPC{
		Name:      doc.LocalName(locale),
		Archetype: doc.Archetype,
		Summary:   clampRunes(doc.LocalSummary(locale), MaxNPCSummaryChars),
		Style:     doc.LocalStyle(locale),
		Tags:      append([]string(nil), doc.Tags...),
	}
}

func clampRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
