package renderer

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
)

// Failure categories. Every error leaving this package is marked with one.
var (
	ErrEnvironment  = errors.New("environment error")
	ErrAsset        = errors.New("asset error")
	ErrConstruction = errors.New("api construction error")
	ErrRuntime      = errors.New("runtime error")
)

func markf(category error, err error, format string, args ...interface{}) error {
	return errors.Mark(errors.Wrapf(err, format, args...), category)
}

// construction wraps a failed create call, keeping the driver result code.
func construction(err error, res common.VkResult, what string) error {
	return markf(ErrConstruction, err, "failed to create %s (%s)", what, res)
}

// Category names the failure category of err, or "unknown".
func Category(err error) string {
	switch {
	case errors.Is(err, ErrEnvironment):
		return "environment"
	case errors.Is(err, ErrAsset):
		return "asset"
	case errors.Is(err, ErrConstruction):
		return "construction"
	case errors.Is(err, ErrRuntime):
		return "runtime"
	default:
		return "unknown"
	}
}
