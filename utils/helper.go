package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/weinfuse_backend/config"
	"github.com/bsm/redislock"
	"github.com/go-playground/validator/v10"
)

func NewTrue() *bool {
	b := true
	return &b
}

func NewFalse() *bool {
	b := false
	return &b
}

// ObtainRunLock takes a single-flight lock for one sync run so a manual
// trigger cannot race a Pub/Sub redelivery of the same work. The returned
// release func is safe to call on a nil lock path.
func ObtainRunLock(ctx context.Context, lockKey string, ttl time.Duration, moduleName string, functionName string) (func(), error) {
	logger := config.GetLogger()
	locker := config.GetRedisLock()
	if locker == nil {
		// Avoid nil-pointer panics when Redis lock isn't initialized yet.
		config.LogError(logger, moduleName, functionName, "Redis lock not initialized", lockKey, errors.New("redis lock is nil"))
		return nil, errors.New("service not ready (redis lock not initialized)")
	}
	lock, err := locker.Obtain(ctx, lockKey, ttl, nil)
	if err == redislock.ErrNotObtained {
		config.LogError(logger, moduleName, functionName, "Could not obtain run lock", lockKey, err)
		return nil, ErrorRunLocked
	} else if err != nil {
		config.LogError(logger, moduleName, functionName, "Error obtaining run lock", lockKey, err)
		return nil, err
	}
	release := func() {
		_ = lock.Release(context.Background())
	}
	return release, nil
}

func ProcessValidationErrors(err error) map[string]string {
	errorResponse := make(map[string]string)
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errorResponse["error"] = err.Error()
		return errorResponse
	}
	for _, fieldErr := range validationErrors {
		errorResponse[fieldErr.Field()] = fmt.Sprintf("failed on %s", fieldErr.Tag())
	}
	return errorResponse
}
