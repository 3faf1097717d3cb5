package utils

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"churn-analytics/pkg/logger"

	"go.uber.org/zap"
)

// GoSafe runs fn on its own goroutine. A panic is logged with its stack and
// alerted instead of taking the process down.
func GoSafe(ctx context.Context, log *logger.Logger, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.ErrorContextWithAlert(ctx, "Recovered from panic",
					logger.StringField("panic", fmt.Sprint(r)),
					zap.StackSkip("stack", 2),
				)
			}
		}()
		fn()
	}()
}

// ShouldContinue reports false once ctx is done, logging the caller that
// stopped.
func ShouldContinue(ctx context.Context, log *logger.Logger) bool {
	if ctx.Err() == nil {
		return true
	}
	log.WarnContext(ctx, "Context cancelled",
		logger.StringField("caller", callerName(2)),
		logger.ErrorField(ctx.Err()),
	)
	return false
}

func callerName(skip int) string {
	pc, _, _, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknown"
	}
	name := fn.Name()
	return name[strings.LastIndex(name, "/")+1:]
}
