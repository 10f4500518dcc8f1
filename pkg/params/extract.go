// Package params extracts intent-specific slots from an utterance.
package params

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/morezero/salaatflow-assistant/pkg/intent"
)

// Priority values as the assistant speaks them; the task backend expects them title-cased.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// CategoryFarz is assigned to tasks linked to one of the five daily prayers.
const CategoryFarz = "Farz"

// Params is the slot map for one utterance. Zero values mean "not present".
type Params struct {
	Title        string   `json:"title,omitempty"`
	Description  string   `json:"description,omitempty"`
	LinkedPrayer string   `json:"linked_prayer,omitempty"`
	Priority     string   `json:"priority,omitempty"`
	Category     string   `json:"category,omitempty"`
	Time         string   `json:"time,omitempty"`
	Tomorrow     bool     `json:"tomorrow,omitempty"`
	TaskID       int      `json:"task_id,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
	Completed    *bool    `json:"completed,omitempty"`
	MasjidID     int      `json:"masjid_id,omitempty"`
	Area         string   `json:"area,omitempty"`
	City         string   `json:"city,omitempty"`
	Name         string   `json:"name,omitempty"`
}

// HasTaskReference reports whether an explicit task number was given.
func (p Params) HasTaskReference() bool {
	return p.TaskID > 0
}

// Prayers are the five canonical daily prayer names.
var Prayers = []string{"Fajr", "Dhuhr", "Asr", "Maghrib", "Isha"}

var prayerAliases = map[string]string{
	"fajr":    "Fajr",
	"dhuhr":   "Dhuhr",
	"zuhr":    "Dhuhr",
	"zohr":    "Dhuhr",
	"asr":     "Asr",
	"maghrib": "Maghrib",
	"isha":    "Isha",
	"esha":    "Isha",
}

// KnownAreas are matched case-insensitively for masjid searches.
var KnownAreas = []string{"North Nazimabad", "DHA", "Clifton", "Gulshan", "Malir"}

var knownAreaRes = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(KnownAreas))
	for i, a := range KnownAreas {
		out[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(a) + `\b`)
	}
	return out
}()

var knownCities = []string{"Karachi", "Lahore", "Islamabad", "Rawalpindi", "Hyderabad", "Peshawar", "Quetta", "Multan", "Faisalabad"}

// titleStopWords are stripped from creation utterances to derive a title.
var titleStopWords = setOf(
	"task", "tasks", "bana", "banao", "create", "add", "do", "kr", "kar", "karo",
	"ka", "ki", "ke", "a", "an", "new", "please", "plz", "ek", "mera", "meri", "mere",
	"urgent", "zaruri", "important", "remind", "me",
)

// leadingConnectors are dropped from the front of a derived title.
var leadingConnectors = setOf("to", "for", "of", "ko", "liye", "that")

// trailingConnectors are dropped from the end of a derived title.
var trailingConnectors = setOf("at", "by", "on", "ko", "se", "to", "for", "my")

// significantStopWords never count towards task-title overlap.
var significantStopWords = setOf(
	"task", "tasks", "the", "and", "for", "with", "from", "this", "that", "my", "mera", "meri", "mere",
	"delete", "remove", "cancel", "hatao", "mitao", "complete", "completed", "done", "finish", "finished",
	"mark", "update", "edit", "change", "modify", "rename", "make", "set", "mukammal", "gaya", "hogaya",
	"bana", "banao", "create", "add", "kar", "karo", "please", "wala", "wali", "wale",
	"urgent", "high", "low", "medium", "priority",
)

var (
	taskRefRe   = regexp.MustCompile(`(?i)(?:#\s*(\d+)\b|\btasks?\s*(?:#|no\.?|number)?\s*(\d+)\b)`)
	masjidRefRe = regexp.MustCompile(`(?i)\bmasjids?\s*(?:#|id|no\.?|number)?\s*(\d+)\b`)
	hashRefRe   = regexp.MustCompile(`#\s*(\d+)\b`)
	time12Re    = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
	time24Re    = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	areaInRe    = regexp.MustCompile(`(?i)\bin\s+([a-z][a-z\-]*(?:\s+[a-z][a-z\-]*)?)`)
	areaMeinRe  = regexp.MustCompile(`(?i)\b([a-z][a-z\-]*(?:\s+[a-z][a-z\-]*)?)\s+(?:mein|me)\b`)
	nameRe      = regexp.MustCompile(`(?i)\b(?:named|called|naam)\s+(.+?)(?:\s+(?:in|mein)\b|[?.!,]|$)`)
	renameRe    = regexp.MustCompile(`(?i)\b(?:rename|title)\b.*?\bto\s+(.+?)\s*[?.!]*$`)
	tokenRe     = regexp.MustCompile(`[\p{L}\p{N}']+`)
)

// areaNoise are words the generic "in X" capture must not treat as an area.
var areaNoise = setOf("the", "my", "area", "city", "masjid", "masjids", "mosque", "karachi", "a", "an")

// Extract returns the slots for text under in. It never fails; missing
// slots are left empty.
func Extract(text string, in intent.Intent) Params {
	p := Params{}
	switch in {
	case intent.CreateTask:
		p.Title = Title(text)
		p.Description = strings.TrimSpace(text)
		p.LinkedPrayer = LinkedPrayer(text)
		p.Priority = Priority(text)
		if p.Priority == "" {
			p.Priority = PriorityMedium
		}
		if p.LinkedPrayer != "" {
			p.Category = CategoryFarz
		}
		p.Time = ClockTime(text)
		p.Tomorrow = mentionsTomorrow(text)

	case intent.UpdateTask, intent.DeleteTask, intent.CompleteTask:
		p.TaskID = TaskReference(text)
		if p.TaskID == 0 {
			p.Keywords = SignificantWords(text)
		}
		if in == intent.UpdateTask {
			p.Priority = Priority(text)
			p.LinkedPrayer = LinkedPrayer(text)
			p.Time = ClockTime(text)
			if m := renameRe.FindStringSubmatch(text); m != nil {
				p.Title = strings.TrimSpace(m[1])
			}
		}

	case intent.ListTasks:
		p.Priority = Priority(text)
		p.Category = listCategory(text)
		p.Completed = completionFilter(text)

	case intent.GetMasjidDetails, intent.GetPrayerTimes, intent.GetCurrentPrayer:
		p.MasjidID = MasjidReference(text)
		p.LinkedPrayer = LinkedPrayer(text)

	case intent.SearchMasjids, intent.ListMasjids:
		p.City = City(text)
		p.Area = Area(text)
		if m := nameRe.FindStringSubmatch(text); m != nil {
			p.Name = strings.TrimSpace(m[1])
		}
	}
	return p
}

// Title strips stop words from text; if nothing is left it returns the
// trimmed text itself so a title is never empty.
func Title(text string) string {
	raw := strings.TrimSpace(text)
	words := strings.Fields(raw)
	var kept []string
	for i, w := range words {
		bare := bareWord(w)
		if bare == "" || titleStopWords[bare] || isClockToken(bare) {
			continue
		}
		// "5 pm": the hour is part of the clock time.
		if i+1 < len(words) && isHourToken(bare) {
			if next := bareWord(words[i+1]); next == "am" || next == "pm" {
				continue
			}
		}
		kept = append(kept, strings.Trim(w, ".,!?;:\""))
	}
	for len(kept) > 0 && leadingConnectors[strings.ToLower(kept[0])] {
		kept = kept[1:]
	}
	for len(kept) > 0 && trailingConnectors[strings.ToLower(kept[len(kept)-1])] {
		kept = kept[:len(kept)-1]
	}
	if len(kept) == 0 {
		return raw
	}
	return strings.Join(kept, " ")
}

func bareWord(w string) string {
	return strings.ToLower(strings.Trim(w, ".,!?;:\"'"))
}

func isHourToken(w string) bool {
	if time24Re.MatchString(w) {
		return true
	}
	h, err := strconv.Atoi(w)
	return err == nil && h >= 0 && h <= 23
}

func isClockToken(w string) bool {
	return time24Re.MatchString(w) || w == "am" || w == "pm" || time12Re.MatchString(w)
}

// LinkedPrayer returns the canonical prayer name mentioned in text, or "".
func LinkedPrayer(text string) string {
	for _, w := range tokenRe.FindAllString(strings.ToLower(text), -1) {
		if name, ok := prayerAliases[w]; ok {
			return name
		}
	}
	return ""
}

// Priority returns high or low when an urgency keyword is present, "" otherwise.
func Priority(text string) string {
	words := setOf(tokenRe.FindAllString(strings.ToLower(text), -1)...)
	switch {
	case words["urgent"] || words["zaruri"] || words["zaroori"] || words["important"] || words["high"]:
		return PriorityHigh
	case words["low"] || words["kam"]:
		return PriorityLow
	case words["medium"]:
		return PriorityMedium
	default:
		return ""
	}
}

// ClockTime returns the first clock-like token as 24h "HH:MM", or "".
func ClockTime(text string) string {
	if m := time12Re.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if h < 1 || h > 12 || minute > 59 {
			return ""
		}
		pm := strings.EqualFold(m[3], "pm")
		switch {
		case pm && h != 12:
			h += 12
		case !pm && h == 12:
			h = 0
		}
		return fmt.Sprintf("%02d:%02d", h, minute)
	}
	if m := time24Re.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if h > 23 || minute > 59 {
			return ""
		}
		return fmt.Sprintf("%02d:%02d", h, minute)
	}
	return ""
}

// TaskReference returns the task number in "#3" or "task 3", or 0.
func TaskReference(text string) int {
	m := taskRefRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	for _, g := range m[1:] {
		if g != "" {
			n, err := strconv.Atoi(g)
			if err == nil && n > 0 {
				return n
			}
		}
	}
	return 0
}

// MasjidReference returns the masjid id in "masjid 3" or "#3", or 0.
func MasjidReference(text string) int {
	m := masjidRefRe.FindStringSubmatch(text)
	if m == nil {
		m = hashRefRe.FindStringSubmatch(text)
	}
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// Area returns a known area when one is named, otherwise the phrase after
// "in" or before "mein", title-cased. Cities are not areas.
func Area(text string) string {
	for i, re := range knownAreaRes {
		if re.MatchString(text) {
			return KnownAreas[i]
		}
	}
	for _, re := range []*regexp.Regexp{areaInRe, areaMeinRe} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if a := cleanArea(m[1]); a != "" {
				return a
			}
		}
	}
	return ""
}

func cleanArea(s string) string {
	var kept []string
	for _, w := range strings.Fields(strings.ToLower(s)) {
		if areaNoise[w] || isCity(w) || significantStopWords[w] {
			continue
		}
		kept = append(kept, w)
	}
	if len(kept) == 0 {
		return ""
	}
	return cases.Title(language.English).String(strings.Join(kept, " "))
}

// City returns a known city named in text, or "".
func City(text string) string {
	for _, w := range tokenRe.FindAllString(strings.ToLower(text), -1) {
		for _, c := range knownCities {
			if w == strings.ToLower(c) {
				return c
			}
		}
	}
	return ""
}

func isCity(w string) bool {
	for _, c := range knownCities {
		if w == strings.ToLower(c) {
			return true
		}
	}
	return false
}

// SignificantWords returns the distinct lower-cased words of text that are
// at least three letters long and not stop or command words.
func SignificantWords(text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, w := range tokenRe.FindAllString(strings.ToLower(text), -1) {
		w = strings.Trim(w, "'")
		if len([]rune(w)) < 3 || significantStopWords[w] || seen[w] {
			continue
		}
		if _, err := strconv.Atoi(w); err == nil {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

// Overlap counts the significant words of title that appear in keywords.
func Overlap(keywords []string, title string) int {
	want := setOf(keywords...)
	n := 0
	for _, w := range SignificantWords(title) {
		if want[w] {
			n++
		}
	}
	return n
}

func mentionsTomorrow(text string) bool {
	words := setOf(tokenRe.FindAllString(strings.ToLower(text), -1)...)
	return words["tomorrow"] || words["kal"]
}

func listCategory(text string) string {
	words := setOf(tokenRe.FindAllString(strings.ToLower(text), -1)...)
	for _, c := range []string{"Farz", "Sunnah", "Nafl", "Deed"} {
		if words[strings.ToLower(c)] {
			return c
		}
	}
	return ""
}

func completionFilter(text string) *bool {
	words := setOf(tokenRe.FindAllString(strings.ToLower(text), -1)...)
	var v bool
	switch {
	case words["pending"] || words["incomplete"] || words["remaining"] || words["baqi"]:
		v = false
	case words["completed"] || words["done"] || words["finished"] || words["mukammal"]:
		v = true
	default:
		return nil
	}
	return &v
}

func setOf(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
