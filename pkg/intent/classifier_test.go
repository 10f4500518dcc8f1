package intent

import (
	"strings"
	"testing"
)

func TestClassify_Intents(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		text string
		want Intent
	}{
		{"Fajr ka task bana do", CreateTask},
		{"Create a task", CreateTask},
		{"Add a new task to read Quran after Isha", CreateTask},
		{"Isha ke baad task add karo", CreateTask},
		{"remind me to give sadaqah", CreateTask},
		{"Show my tasks", ListTasks},
		{"mere tasks dikhao", ListTasks},
		{"show completed tasks", ListTasks},
		{"show my fajr tasks", ListTasks},
		{"Delete task #999", DeleteTask},
		{"remove the quran task", DeleteTask},
		{"task 3 hatao", DeleteTask},
		{"mark task 2 as done", CompleteTask},
		{"Complete task #3", CompleteTask},
		{"quran task mukammal ho gaya", CompleteTask},
		{"update task 4", UpdateTask},
		{"change my tahajjud task title", UpdateTask},
		{"make task 5 urgent", UpdateTask},
		{"What is the next prayer?", GetCurrentPrayer},
		{"abhi konsi namaz hai", GetCurrentPrayer},
		{"Fajr ka time kya hai?", GetPrayerTimes},
		{"prayer times for masjid 2", GetPrayerTimes},
		{"Mujhe aaj ki namaz ka time batao", GetPrayerTimes},
		{"what is the prayer timing today", GetPrayerTimes},
		{"show masjid 7 details", GetMasjidDetails},
		{"info about masjid", GetMasjidDetails},
		{"find a masjid in Clifton", SearchMasjids},
		{"DHA mein konsi masjid hai", SearchMasjids},
		{"namaz kahan parhun", SearchMasjids},
		{"list all masjids", ListMasjids},
		{"koi hadith sunao", GetRandomHadith},
		{"give me a random hadith", GetRandomHadith},
		{"Aaj ka hadith sunao", GetDailyHadith},
		{"Show me today's hadith", GetDailyHadith},
		{"Hello", Conversation},
		{"Assalam o alaikum, aap kaise hain?", Conversation},
		{"", Conversation},
	}

	for _, tt := range tests {
		got := c.Classify(tt.text, "")
		if got.Intent != tt.want {
			t.Errorf("intent:classifier_test - Classify(%q).Intent = %q, want %q", tt.text, got.Intent, tt.want)
		}
	}
}

func TestClassify_PriorityOrder(t *testing.T) {
	c := NewClassifier(nil)

	// Matches both completion and creation triggers; completion comes first.
	got := c.Classify("done with the task, now add a new task", "")
	if got.Intent != CompleteTask {
		t.Errorf("intent:classifier_test - expected complete_task to win, got %q", got.Intent)
	}

	// Matches deletion and listing; deletion comes first.
	got = c.Classify("delete the task from my list", "")
	if got.Intent != DeleteTask {
		t.Errorf("intent:classifier_test - expected delete_task to win, got %q", got.Intent)
	}

	order := c.Rules().Order()
	if order[0] != CompleteTask || order[1] != DeleteTask || order[2] != UpdateTask {
		t.Errorf("intent:classifier_test - mutation rules must lead the order, got %v", order[:3])
	}
	if order[len(order)-1] != GetDailyHadith {
		t.Errorf("intent:classifier_test - daily hadith must be the last rule, got %v", order[len(order)-1])
	}
}

func TestClassify_Deterministic(t *testing.T) {
	c := NewClassifier(nil)
	for i := 0; i < 50; i++ {
		a := c.Classify("Fajr ka task bana do", "")
		b := NewClassifier(nil).Classify("Fajr ka task bana do", "")
		if a != b {
			t.Fatalf("intent:classifier_test - non-deterministic classification: %+v vs %+v", a, b)
		}
	}
}

func TestClassify_CaseFolding(t *testing.T) {
	c := NewClassifier(nil)
	if got := c.Classify("DELETE   TASK   #3", ""); got.Intent != DeleteTask {
		t.Errorf("intent:classifier_test - upper-case input classified as %q", got.Intent)
	}
}

func TestDetectLanguage(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		text string
		want Language
	}{
		{"Show me today's hadith", English},
		{"Aaj ka hadith sunao", Urdu},
		{"Fajr ka time kya hai?", Urdu},
		{"Add a task to pray", English},
		{"Fajr ka task bana do", Urdu},
		// A single marker is not enough.
		{"kal remind me", English},
		// Markers must be whole words: "kahani" and "main street" do not count.
		{"read a kahani on main street", English},
	}
	for _, tt := range tests {
		if got := c.DetectLanguage(tt.text); got != tt.want {
			t.Errorf("intent:classifier_test - DetectLanguage(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestClassify_HintOverrides(t *testing.T) {
	c := NewClassifier(nil)

	if got := c.Classify("Aaj ka hadith sunao", "en"); got.Language != English {
		t.Errorf("intent:classifier_test - hint en ignored, got %q", got.Language)
	}
	if got := c.Classify("Show me today's hadith", "ur"); got.Language != Urdu {
		t.Errorf("intent:classifier_test - hint ur ignored, got %q", got.Language)
	}
	if got := c.Classify("Aaj ka hadith sunao", "fr"); got.Language != Urdu {
		t.Errorf("intent:classifier_test - invalid hint should fall back to detection, got %q", got.Language)
	}
}

func TestParseRules(t *testing.T) {
	rs := DefaultRules()
	if rs.Version() == "" {
		t.Fatal("intent:classifier_test - embedded rules have no version")
	}

	tests := []struct {
		name string
		yaml string
		err  string
	}{
		{"bad version", "version: \"x\"\nrules:\n  - intent: create_task\n    patterns: ['a']\n", "invalid rules version"},
		{"unsupported major", "version: \"2.0.0\"\nrules:\n  - intent: create_task\n    patterns: ['a']\n", "does not satisfy"},
		{"no rules", "version: \"1.0.0\"\n", "no rules"},
		{"unknown intent", "version: \"1.0.0\"\nrules:\n  - intent: fly\n    patterns: ['a']\n", "unusable intent"},
		{"conversation rule", "version: \"1.0.0\"\nrules:\n  - intent: conversation\n    patterns: ['a']\n", "unusable intent"},
		{"bad regex", "version: \"1.0.0\"\nrules:\n  - intent: create_task\n    patterns: ['(']\n", "pattern"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRules([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.err) {
				t.Errorf("intent:classifier_test - ParseRules error = %v, want containing %q", err, tt.err)
			}
		})
	}
}

func TestRequiresIdentity(t *testing.T) {
	for _, i := range All() {
		want := i == CreateTask || i == ListTasks || i == UpdateTask || i == DeleteTask || i == CompleteTask
		if i.RequiresIdentity() != want {
			t.Errorf("intent:classifier_test - %s.RequiresIdentity() = %v, want %v", i, !want, want)
		}
	}
}
