package orchestrator

import (
	"fmt"
	"strings"

	"github.com/morezero/salaatflow-assistant/pkg/intent"
	"github.com/morezero/salaatflow-assistant/pkg/registry"
	"github.com/morezero/salaatflow-assistant/pkg/tools"
)

// field renders data[key] as text, or "" when absent.
func field(data map[string]any, key string) string {
	v, ok := data[key]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func pick(lang intent.Language, en, ur string) string {
	if lang == intent.Urdu {
		return ur
	}
	return en
}

// formatReply renders a successful tool result as the assistant's reply.
func formatReply(tool string, data map[string]any, lang intent.Language) string {
	switch tool {
	case registry.ToolCreateTask:
		return formatTaskCreated(tools.Record(data, "task"), lang)
	case registry.ToolListTasks:
		return formatTaskList(tools.Records(data, "tasks"), lang)
	case registry.ToolUpdateTask:
		t := tools.Record(data, "task")
		return pick(lang,
			fmt.Sprintf("Task %q has been updated.", field(t, "title")),
			fmt.Sprintf("Task %q update ho gaya.", field(t, "title")))
	case registry.ToolDeleteTask:
		return pick(lang,
			fmt.Sprintf("Task #%s has been deleted.", field(data, "task_id")),
			fmt.Sprintf("Task #%s delete ho gaya.", field(data, "task_id")))
	case registry.ToolCompleteTask:
		t := tools.Record(data, "task")
		return pick(lang,
			fmt.Sprintf("Task %q marked as completed. May Allah accept it.", field(t, "title")),
			fmt.Sprintf("Task %q mukammal ho gaya. Allah qabool farmaye.", field(t, "title")))
	case registry.ToolListMasjids, registry.ToolSearchMasjids:
		return formatMasjidList(tools.Records(data, "masjids"), lang)
	case registry.ToolGetMasjidDetails:
		return formatMasjid(tools.Record(data, "masjid"), lang)
	case registry.ToolGetPrayerTimes:
		return formatPrayerTimes(data, lang)
	case registry.ToolGetCurrentPrayer:
		return formatCurrentPrayer(data, lang)
	case registry.ToolGetDailyHadith, registry.ToolGetRandomHadith:
		return formatHadith(tools.Record(data, "hadith"), lang)
	default:
		return pick(lang, "Done.", "Ho gaya.")
	}
}

func formatTaskCreated(t map[string]any, lang intent.Language) string {
	var b strings.Builder
	b.WriteString(pick(lang, "Task created successfully!", "Task ban gaya!"))
	fmt.Fprintf(&b, "\n\nTitle: %s", field(t, "title"))
	if p := field(t, "priority"); p != "" {
		fmt.Fprintf(&b, "\nPriority: %s", p)
	}
	if c := field(t, "category"); c != "" {
		fmt.Fprintf(&b, "\nCategory: %s", c)
	}
	if p := field(t, "linked_prayer"); p != "" {
		fmt.Fprintf(&b, "\n%s: %s", pick(lang, "Linked prayer", "Namaz"), p)
	}
	if d := field(t, "due_datetime"); d != "" {
		fmt.Fprintf(&b, "\n%s: %s", pick(lang, "Due", "Waqt"), d)
	}
	return b.String()
}

func formatTaskList(tasks []map[string]any, lang intent.Language) string {
	if len(tasks) == 0 {
		return pick(lang,
			"You don't have any tasks yet. Would you like to create one?",
			"Aapke paas abhi koi task nahi hai. Kya naya task banayein?")
	}
	var b strings.Builder
	b.WriteString(pick(lang,
		fmt.Sprintf("Your tasks (%d total):\n", len(tasks)),
		fmt.Sprintf("Aapke tasks (%d):\n", len(tasks))))
	for i, t := range tasks {
		mark := "⏳"
		if done, _ := t["completed"].(bool); done {
			mark = "✅"
		}
		fmt.Fprintf(&b, "\n%d. %s %s", i+1, mark, field(t, "title"))
		if id := field(t, "id"); id != "" {
			fmt.Fprintf(&b, " (#%s)", id)
		}
		if p := field(t, "linked_prayer"); p != "" {
			fmt.Fprintf(&b, " [%s]", p)
		}
		if p := field(t, "priority"); p != "" {
			fmt.Fprintf(&b, "\n   Priority: %s", p)
		}
	}
	return b.String()
}

func formatMasjidList(masjids []map[string]any, lang intent.Language) string {
	if len(masjids) == 0 {
		return pick(lang, "No masjids found.", "Koi masjid nahi mili.")
	}
	var b strings.Builder
	b.WriteString(pick(lang,
		fmt.Sprintf("Found %d masjid(s):\n", len(masjids)),
		fmt.Sprintf("%d masjid(ein) mili:\n", len(masjids))))
	for i, m := range masjids {
		fmt.Fprintf(&b, "\n%d. %s", i+1, field(m, "name"))
		if id := field(m, "id"); id != "" {
			fmt.Fprintf(&b, " (#%s)", id)
		}
		if loc := joinNonEmpty(", ", field(m, "area_name"), field(m, "city")); loc != "" {
			fmt.Fprintf(&b, "\n   Area: %s", loc)
		}
		if f, d := field(m, "fajr_time"), field(m, "dhuhr_time"); f != "" || d != "" {
			fmt.Fprintf(&b, "\n   Fajr: %s | Dhuhr: %s", f, d)
		}
	}
	return b.String()
}

func formatMasjid(m map[string]any, lang intent.Language) string {
	var b strings.Builder
	b.WriteString(field(m, "name"))
	if addr := joinNonEmpty(", ", field(m, "address"), field(m, "area_name"), field(m, "city")); addr != "" {
		fmt.Fprintf(&b, "\n%s: %s", pick(lang, "Address", "Pata"), addr)
	}
	for _, pf := range tools.PrayerFields {
		if v := field(m, pf.Field); v != "" {
			fmt.Fprintf(&b, "\n%s: %s", pf.Prayer, v)
		}
	}
	return b.String()
}

func formatPrayerTimes(data map[string]any, lang intent.Language) string {
	name := field(data, "masjid_name")
	if p := field(data, "prayer"); p != "" {
		if t := field(data, "prayer_time"); t != "" {
			return pick(lang,
				fmt.Sprintf("%s - %s time: %s", name, p, t),
				fmt.Sprintf("%s - %s ka waqt: %s hai", name, p, t))
		}
	}
	times, _ := data["prayer_times"].(map[string]any)
	var b strings.Builder
	b.WriteString(pick(lang,
		fmt.Sprintf("Prayer times at %s:", name),
		fmt.Sprintf("%s ke namaz ke auqat:", name)))
	for _, pf := range tools.PrayerFields {
		if v := field(times, pf.Prayer); v != "" {
			fmt.Fprintf(&b, "\n%s: %s", pf.Prayer, v)
		}
	}
	return b.String()
}

func formatCurrentPrayer(data map[string]any, lang intent.Language) string {
	prayer := field(data, "current_prayer")
	if prayer == "" {
		prayer = field(data, "prayer")
	}
	t := field(data, "prayer_time")
	name := field(data, "masjid_name")
	return pick(lang,
		fmt.Sprintf("The next prayer at %s is %s at %s.", name, prayer, t),
		fmt.Sprintf("%s mein agli namaz %s hai, %s baje.", name, prayer, t))
}

func formatHadith(h map[string]any, lang intent.Language) string {
	text := field(h, "hadith_text_en")
	if lang == intent.Urdu {
		if ur := field(h, "hadith_text_ur"); ur != "" {
			text = ur
		}
	}
	if text == "" {
		text = field(h, "text")
	}
	if src := field(h, "source"); src != "" {
		text = fmt.Sprintf("%s\n\n- %s", text, src)
	}
	return text
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
