package orchestrator

import (
	"strings"

	"github.com/morezero/salaatflow-assistant/pkg/genclient"
	"github.com/morezero/salaatflow-assistant/pkg/intent"
)

const systemPrompt = `You are SalaatFlow Assistant, a helpful companion for managing spiritual tasks (prayers and good deeds) and sharing Islamic information.

Principles:
- Use respectful Islamic terminology. When mentioning Prophet Muhammad, add (peace be upon him). Greet with "As-salamu alaykum" when appropriate.
- Reply in the user's language: English, or Roman Urdu when the user writes Roman Urdu.
- Be concise and clear. Ask a clarifying question when the request is ambiguous.
- Do not invent tasks, masjids, prayer times or hadith. The user can ask you directly to create, list, update, complete or delete tasks, find masjids, check prayer times or read a hadith.

Task categories: Farz (the five daily prayers and Jummah), Sunnah, Nafl, Deed and Other.`

// systemInstruction returns the fixed system context plus a language directive.
func systemInstruction(lang intent.Language) string {
	if lang == intent.Urdu {
		return systemPrompt + "\n\nThe user is writing in Roman Urdu. Reply in Roman Urdu."
	}
	return systemPrompt + "\n\nThe user is writing in English. Reply in English."
}

// trailingHistory keeps the last limit non-empty turns.
func trailingHistory(turns []Turn, limit int) []genclient.Turn {
	out := make([]genclient.Turn, 0, len(turns))
	for _, t := range turns {
		if strings.TrimSpace(t.Content) == "" {
			continue
		}
		out = append(out, genclient.Turn{Role: t.Role, Content: t.Content})
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}
