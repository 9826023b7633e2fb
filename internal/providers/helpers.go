package providers

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/GriffinCanCode/fsagent/internal/types"
)

func success(data map[string]interface{}) (*types.Result, error) {
	return &types.Result{
		Success: true,
		Data:    data,
	}, nil
}

// failure reports an operation that ran and failed. The error is carried in
// the result, not returned.
func failure(err error, code string) (*types.Result, error) {
	errMsg := err.Error()
	return &types.Result{
		Success: false,
		Error:   &errMsg,
		Code:    code,
	}, nil
}

// reject reports a call that could not be dispatched at all.
func reject(code, format string, args ...interface{}) (*types.Result, error) {
	err := fmt.Errorf(format, args...)
	errMsg := err.Error()
	return &types.Result{
		Success: false,
		Error:   &errMsg,
		Code:    code,
	}, err
}

func requestID(appCtx *types.Context) string {
	if appCtx != nil && appCtx.RequestID != "" {
		return appCtx.RequestID
	}
	return uuid.NewString()
}
