package tools

import (
	"context"
	"strings"

	"github.com/morezero/salaatflow-assistant/pkg/registry"
)

// PrayerFields maps prayer names to the masjid record fields holding their times.
var PrayerFields = []struct {
	Prayer string
	Field  string
}{
	{"Fajr", "fajr_time"},
	{"Dhuhr", "dhuhr_time"},
	{"Asr", "asr_time"},
	{"Maghrib", "maghrib_time"},
	{"Isha", "isha_time"},
	{"Jummah", "jummah_time"},
}

// GetPrayerTimes issues GET /masjids/{id} and reduces the record to its
// prayer schedule. A "prayer" argument selects a single prayer.
func (s *Set) GetPrayerTimes(ctx context.Context, callerID string, args registry.Args) registry.Result {
	id, errRes := s.masjidID(args)
	if errRes != nil {
		return *errRes
	}
	res := s.backend.Do(ctx, call(registry.ToolGetPrayerTimes, id, callerID))
	if !res.Success {
		return res
	}

	times := map[string]any{}
	for _, pf := range PrayerFields {
		if v, ok := res.Data[pf.Field]; ok && v != nil {
			times[pf.Prayer] = v
		}
	}
	if len(times) == 0 {
		return registry.Fail(registry.ErrNotFound, "masjid %d has no prayer times", id)
	}

	out := map[string]any{
		"masjid_id":    id,
		"masjid_name":  res.Data["name"],
		"area_name":    res.Data["area_name"],
		"prayer_times": times,
	}
	if p, ok := args.String(ArgPrayer); ok {
		for _, pf := range PrayerFields {
			if strings.EqualFold(pf.Prayer, p) {
				out["prayer"] = pf.Prayer
				out["prayer_time"] = times[pf.Prayer]
			}
		}
	}
	res.Data = out
	return res
}

// GetCurrentPrayer issues GET /masjids/{id}/current-prayer. The backend
// decides which prayer is next, wrapping to Fajr after Isha.
func (s *Set) GetCurrentPrayer(ctx context.Context, callerID string, args registry.Args) registry.Result {
	id, errRes := s.masjidID(args)
	if errRes != nil {
		return *errRes
	}
	return s.backend.Do(ctx, call(registry.ToolGetCurrentPrayer, id, callerID))
}
