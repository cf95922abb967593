package utils

import (
	"context"

	"bitbucket.org/mmdatafocus/weinfuse_backend/appctx"
)

var (
	ContextKeyCorrelationId = appctx.ContextKeyCorrelationId
	ContextKeySyncRunId     = appctx.ContextKeySyncRunId
	ContextKeyTriggeredBy   = appctx.ContextKeyTriggeredBy
)

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}

func GetSyncRunIdFromContext(ctx context.Context) (uint, bool) {
	return appctx.GetUint(ctx, ContextKeySyncRunId)
}

func SetSyncRunIdInContext(ctx context.Context, runId uint) context.Context {
	return appctx.Set(ctx, ContextKeySyncRunId, runId)
}

func GetTriggeredByFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyTriggeredBy)
}

func SetTriggeredByInContext(ctx context.Context, triggeredBy string) context.Context {
	return appctx.Set(ctx, ContextKeyTriggeredBy, triggeredBy)
}
