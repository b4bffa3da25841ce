package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope every endpoint answers with.
type APIResponse[T any] struct {
	Status    int       `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      T         `json:"data"`
	Meta      any       `json:"meta,omitempty"`
	Error     any       `json:"error,omitempty"`
}

// ListMeta accompanies collection responses.
type ListMeta struct {
	Count int `json:"count"`
}

func envelope[T any](ctx *gin.Context, status int, ok bool, message string) APIResponse[T] {
	return APIResponse[T]{
		Status:    status,
		Timestamp: time.Now().UTC(),
		RequestID: ctx.GetString("request_id"),
		Success:   ok,
		Message:   message,
	}
}

// Success writes the envelope with data and returns it.
func Success[T any](ctx *gin.Context, status int, data T, message string, meta any) APIResponse[T] {
	if status == 0 {
		status = http.StatusOK
	}
	resp := envelope[T](ctx, status, true, message)
	resp.Data = data
	resp.Meta = meta
	ctx.JSON(status, resp)
	return resp
}

// List writes a 200 collection response. Items are never serialized as null.
func List[T any](ctx *gin.Context, items []T, message string) APIResponse[[]T] {
	if items == nil {
		items = []T{}
	}
	return Success(ctx, http.StatusOK, items, message, ListMeta{Count: len(items)})
}

// Error writes the envelope, aborts the handler chain and returns it.
// err carries field details or a diagnostic code and may be nil.
func Error[T any](ctx *gin.Context, status int, message string, err any) APIResponse[T] {
	if status == 0 {
		status = http.StatusBadRequest
	}
	resp := envelope[T](ctx, status, false, message)
	resp.Error = err
	ctx.AbortWithStatusJSON(status, resp)
	return resp
}
