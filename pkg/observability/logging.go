package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/stagehand/pkg/domain"
)

// LogHooks logs every coordinator event at Info (suppressions at Warn are already
// logged by the coordinator, so they are logged here at Debug).
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	if logger == nil {
		logger = slog.Default()
	}
	log := func(level slog.Level) func(context.Context, *domain.ContainerEvent) {
		return func(ctx context.Context, e *domain.ContainerEvent) {
			logger.Log(ctx, level, "container_"+string(e.Type),
				"container", e.ContainerID,
				"engine_id", e.EngineID,
				"signal", string(e.Signal),
				"stage", e.Stage.String(),
				"top", e.TopID,
			)
		}
	}
	return domain.LifecycleHooks{
		OnSignal:     log(slog.LevelInfo),
		OnSuppressed: log(slog.LevelDebug),
		OnAttach:     log(slog.LevelInfo),
		OnDetach:     log(slog.LevelInfo),
	}
}
