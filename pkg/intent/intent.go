// Package intent provides deterministic language and intent classification
// for assistant utterances.
package intent

// Intent is the action category inferred from an utterance.
type Intent string

const (
	CreateTask       Intent = "create_task"
	ListTasks        Intent = "list_tasks"
	UpdateTask       Intent = "update_task"
	DeleteTask       Intent = "delete_task"
	CompleteTask     Intent = "complete_task"
	ListMasjids      Intent = "list_masjids"
	GetMasjidDetails Intent = "get_masjid_details"
	SearchMasjids    Intent = "search_masjids"
	GetPrayerTimes   Intent = "get_prayer_times"
	GetCurrentPrayer Intent = "get_current_prayer"
	GetDailyHadith   Intent = "get_daily_hadith"
	GetRandomHadith  Intent = "get_random_hadith"
	Conversation     Intent = "conversation"
)

// Language is a supported reply language.
type Language string

const (
	English Language = "en"
	Urdu    Language = "ur"
)

// identityRequired lists the intents that act on a caller's own tasks.
var identityRequired = map[Intent]bool{
	CreateTask:   true,
	ListTasks:    true,
	UpdateTask:   true,
	DeleteTask:   true,
	CompleteTask: true,
}

// All returns every intent, conversation last.
func All() []Intent {
	return []Intent{
		CreateTask, ListTasks, UpdateTask, DeleteTask, CompleteTask,
		ListMasjids, GetMasjidDetails, SearchMasjids,
		GetPrayerTimes, GetCurrentPrayer,
		GetDailyHadith, GetRandomHadith,
		Conversation,
	}
}

// Valid reports whether i is a known intent.
func (i Intent) Valid() bool {
	for _, known := range All() {
		if i == known {
			return true
		}
	}
	return false
}

// RequiresIdentity reports whether the intent may only run for an identified caller.
func (i Intent) RequiresIdentity() bool {
	return identityRequired[i]
}

// IsTaskMutation reports whether the intent changes an existing task.
func (i Intent) IsTaskMutation() bool {
	return i == UpdateTask || i == DeleteTask || i == CompleteTask
}

// ParseLanguage returns the language for a caller hint; ok is false for
// anything other than "en" or "ur".
func ParseLanguage(s string) (Language, bool) {
	switch Language(s) {
	case English:
		return English, true
	case Urdu:
		return Urdu, true
	default:
		return "", false
	}
}
