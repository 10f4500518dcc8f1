package tools

import (
	"context"

	"github.com/morezero/salaatflow-assistant/pkg/registry"
)

// GetDailyHadith issues GET /hadith/daily.
func (s *Set) GetDailyHadith(ctx context.Context, callerID string, args registry.Args) registry.Result {
	return s.backend.Do(ctx, call(registry.ToolGetDailyHadith, 0, callerID))
}

// GetRandomHadith issues GET /hadith/random.
func (s *Set) GetRandomHadith(ctx context.Context, callerID string, args registry.Args) registry.Result {
	return s.backend.Do(ctx, call(registry.ToolGetRandomHadith, 0, callerID))
}
