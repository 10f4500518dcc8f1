package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/morezero/salaatflow-assistant/pkg/params"
	"github.com/morezero/salaatflow-assistant/pkg/registry"
	"github.com/morezero/salaatflow-assistant/pkg/tools"
)

// MinKeywordOverlap is the number of significant words a task title must
// share with the utterance to be picked without an explicit number.
const MinKeywordOverlap = 2

// resolveTask finds the task an utterance refers to by title keywords.
// It lists the caller's tasks and returns the first whose title shares at
// least MinKeywordOverlap significant words. A failed listing is returned
// as is; no match is a not_found result.
func (o *Orchestrator) resolveTask(ctx context.Context, callerID string, keywords []string) (int, registry.Result) {
	if len(keywords) < MinKeywordOverlap {
		slog.InfoContext(ctx, fmt.Sprintf("%s - Task reference unresolved: only %d keyword(s)", logPrefix, len(keywords)))
		return 0, registry.Fail(registry.ErrNotFound, "no task number given and too few keywords to match a title")
	}

	res := o.tools.Execute(ctx, registry.ToolListTasks, callerID, registry.Args{})
	if !res.Success {
		return 0, res
	}

	for _, t := range tools.Records(res.Data, "tasks") {
		title := field(t, "title")
		if params.Overlap(keywords, title) < MinKeywordOverlap {
			continue
		}
		id, ok := registry.Args(t).Int("id")
		if !ok || id <= 0 {
			continue
		}
		slog.InfoContext(ctx, fmt.Sprintf("%s - Resolved task reference %v to #%d %q", logPrefix, keywords, id, title))
		return id, registry.OK(nil)
	}

	slog.InfoContext(ctx, fmt.Sprintf("%s - No task matched keywords %v", logPrefix, keywords))
	return 0, registry.Fail(registry.ErrNotFound, "no task matches %v", keywords)
}
