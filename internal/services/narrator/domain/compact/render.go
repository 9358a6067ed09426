package compact

import "strings"

// Render produces the prompt block for a compacted world. Field order is
// fixed so repeated renders of the same value are byte-identical.
func (w World) Render() string {
	lines := []string{"### World: " + w.Name}
	if w.Timeworld != nil {
		if w.Timeworld.Era != "" {
			lines = append(lines, "Era: "+w.Timeworld.Era)
		}
		if w.Timeworld.Calendar != "" {
			lines = append(lines, "Calendar: "+w.Timeworld.Calendar)
		}
		if len(w.Timeworld.Seasons) > 0 {
			parts := make([]string, 0, len(w.Timeworld.Seasons))
			for _, s := range w.Timeworld.Seasons {
				if s.Mood != "" {
					parts = append(parts, s.Name+" ("+s.Mood+")")
					continue
				}
				parts = append(parts, s.Name)
			}
			lines = append(lines, "Seasons: "+strings.Join(parts, "; "))
		}
	}
	return strings.Join(lines, "\n")
}

// Render produces the prompt block for a compacted adventure.
func (a Adventure) Render() string {
	lines := []string{"### Scenario: " + a.Name}
	if a.Synopsis != "" {
		lines = append(lines, "Synopsis: "+a.Synopsis)
	}
	if len(a.Cast) > 0 {
		parts := make([]string, 0, len(a.Cast))
		for _, m := range a.Cast {
			if m.Role != "" {
				parts = append(parts, m.Name+" ("+m.Role+")")
				continue
			}
			parts = append(parts, m.Name)
		}
		lines = append(lines, "Cast: "+strings.Join(parts, "; "))
	}
	return strings.Join(lines, "\n")
}

// Render produces the prompt block for a compacted NPC.
func (n NPC) Render() string {
	lines := []string{"### NPC: " + n.Name}
	if n.Archetype != "" {
		lines = append(lines, "Archetype: "+n.Archetype)
	}
	if n.Summary != "" {
		lines = append(lines, "Summary: "+n.Summary)
	}
	if n.Style.Voice != "" {
		lines = append(lines, "Voice: "+n.Style.Voice)
	}
	if n.Style.Register != "" {
		lines = append(lines, "Register: "+n.Style.Register)
	}
	if len(n.Tags) > 0 {
		lines = append(lines, "Tags: "+strings.Join(n.Tags, ", "))
	}
	return strings.Join(lines, "\n")
}
