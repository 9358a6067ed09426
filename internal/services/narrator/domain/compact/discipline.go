package compact

import (
	"github.com/mistvale/loreweave/internal/services/narrator/domain/token"
)

const (
	castCapFirst  = 8
	castCapSecond = 4
)

// DisciplineWorld walks the world degradation ladder until the rendered
// document fits capTokens: drop the seasons list, then drop the timeworld
// entirely. Each step re-estimates before the next applies, and a document
// that already fits is returned untouched. The final token cost is returned
// even when the ladder is exhausted and the document still exceeds the cap.
func DisciplineWorld(w *World, capTokens int) int {
	cost := token.Estimate(w.Render())
	if cost <= capTokens {
		return cost
	}
	if w.Timeworld != nil && len(w.Timeworld.Seasons) > 0 {
		w.Timeworld.Seasons = nil
		cost = token.Estimate(w.Render())
		if cost <= capTokens {
			return cost
		}
	}
	if w.Timeworld != nil {
		w.Timeworld = nil
		cost = token.Estimate(w.Render())
	}
	return cost
}

// DisciplineAdventure walks the adventure degradation ladder until the
// rendered document fits capTokens: cap the cast at eight, then at four,
// then clear the synopsis. Steps always run in that order and never repeat.
func DisciplineAdventure(a *Adventure, capTokens int) int {
	cost := token.Estimate(a.Render())
	if cost <= capTokens {
		return cost
	}
	if len(a.Cast) > castCapFirst {
		a.Cast = a.Cast[:castCapFirst]
		cost = token.Estimate(a.Render())
		if cost <= capTokens {
			return cost
		}
	}
	if len(a.Cast) > castCapSecond {
		a.Cast = a.Cast[:castCapSecond]
		cost = token.Estimate(a.Render())
		if cost <= capTokens {
			return cost
		}
	}
	if a.Synopsis != "" {
		a.Synopsis = ""
		cost = token.Estimate(a.Render())
	}
	return cost
}
