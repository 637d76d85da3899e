package grpc

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/andrescamacho/xnova-go/internal/adapters/frontend"
	"github.com/andrescamacho/xnova-go/internal/domain/colony"
	"github.com/andrescamacho/xnova-go/internal/domain/shared"
)

// ErrorPayload is the in-band representation of an error the player can
// act on
type ErrorPayload struct {
	Code    shared.ErrorCode       `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// RemoteError is an in-band error received from the daemon
type RemoteError struct {
	Payload ErrorPayload
}

func (e *RemoteError) Error() string {
	return e.Payload.Message
}

// ErrorCode returns the code reported by the daemon
func (e *RemoteError) ErrorCode() shared.ErrorCode {
	return e.Payload.Code
}

// errorPayload describes err with the fields a front-end needs to explain it
func errorPayload(err error) ErrorPayload {
	payload := ErrorPayload{Code: shared.CodeOf(err), Message: err.Error()}

	var (
		insufficient  *colony.InsufficientResourcesError
		queueFull     *colony.QueueFullError
		prerequisite  *colony.PrerequisiteNotMetError
		notCancel     *colony.NotCancellableError
		validationErr *shared.ValidationError
	)
	switch {
	case errors.As(err, &insufficient):
		shortfall := make(map[string]interface{}, len(insufficient.Shortfall))
		for kind, v := range insufficient.Shortfall {
			shortfall[string(kind)] = v
		}
		payload.Details = map[string]interface{}{"shortfall": shortfall}
	case errors.As(err, &queueFull):
		payload.Details = map[string]interface{}{
			"category": queueFull.Category.String(),
			"current":  queueFull.Current,
			"max":      queueFull.Max,
		}
	case errors.As(err, &prerequisite):
		payload.Details = map[string]interface{}{
			"requirement": prerequisite.Requirement,
			"required":    prerequisite.Required,
			"current":     prerequisite.Current,
		}
	case errors.As(err, &notCancel):
		payload.Details = map[string]interface{}{
			"job_id":      int64(notCancel.JobID),
			"last_job_id": int64(notCancel.LastJobID),
		}
	case errors.As(err, &validationErr):
		payload.Details = map[string]interface{}{"field": validationErr.Field}
	}
	return payload
}

// toStatus maps an infrastructure failure onto a gRPC status
func toStatus(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case shared.CodeOf(err) == shared.CodeIOError:
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// fromStatus turns a failed call into an error for the client side
func fromStatus(method string, err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%s failed: %w", method, err)
	}
	switch st.Code() {
	case codes.Unavailable:
		return shared.NewIOError(method, errors.New(st.Message()))
	case codes.ResourceExhausted:
		return fmt.Errorf("%s throttled: %s", method, st.Message())
	default:
		return fmt.Errorf("%s failed: %w", method, err)
	}
}

// isInBand reports whether err is returned inside a successful response
func isInBand(err error) bool {
	return frontend.IsUserFacing(err)
}
