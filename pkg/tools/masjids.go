package tools

import (
	"context"
	"net/url"

	"github.com/morezero/salaatflow-assistant/pkg/registry"
)

func locationQuery(args registry.Args) url.Values {
	q := url.Values{}
	if v, ok := args.String(ArgArea); ok {
		q.Set("area", v)
	}
	if v, ok := args.String(ArgCity); ok {
		q.Set("city", v)
	}
	return q
}

// masjidID returns the masjid id argument, falling back to the configured default.
func (s *Set) masjidID(args registry.Args) (int, *registry.Result) {
	if id, ok := args.Int(ArgMasjidID); ok && id > 0 {
		return id, nil
	}
	if s.opts.DefaultMasjidID > 0 {
		return s.opts.DefaultMasjidID, nil
	}
	r := registry.Fail(registry.ErrInvalidRequest, "a masjid id is required")
	return 0, &r
}

// ListMasjids issues GET /masjids with optional area and city filters.
func (s *Set) ListMasjids(ctx context.Context, callerID string, args registry.Args) registry.Result {
	c := call(registry.ToolListMasjids, 0, callerID)
	c.Query = locationQuery(args)
	return s.backend.Do(ctx, c)
}

// GetMasjidDetails issues GET /masjids/{id}.
func (s *Set) GetMasjidDetails(ctx context.Context, callerID string, args registry.Args) registry.Result {
	id, errRes := s.masjidID(args)
	if errRes != nil {
		return *errRes
	}
	return s.backend.Do(ctx, call(registry.ToolGetMasjidDetails, id, callerID))
}

// SearchMasjids issues GET /masjids/search by name, area or city.
func (s *Set) SearchMasjids(ctx context.Context, callerID string, args registry.Args) registry.Result {
	q := locationQuery(args)
	if v, ok := args.String(ArgName); ok {
		q.Set("name", v)
	}
	c := call(registry.ToolSearchMasjids, 0, callerID)
	c.Query = q
	return s.backend.Do(ctx, c)
}
