package common

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/andrescamacho/xnova-go/internal/application/mediator"
	"github.com/andrescamacho/xnova-go/internal/domain/shared"
)

// RequestName returns the bare type name of a request,
// e.g. "*commands.StartJobCommand" becomes "StartJobCommand"
func RequestName(request mediator.Request) string {
	if request == nil {
		return "UnknownRequest"
	}
	name := strings.TrimPrefix(reflect.TypeOf(request).String(), "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

// LoggingMiddleware attaches a request-scoped logger to the context and logs
// the outcome of every request. Business rule violations are logged at info,
// everything else that fails at error.
func LoggingMiddleware(base *zap.Logger) mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		logger := base.With(zap.String("request", RequestName(request)))
		ctx = WithLogger(ctx, logger)

		start := time.Now()
		response, err := next(ctx, request)
		elapsed := zap.Duration("elapsed", time.Since(start))

		switch {
		case err == nil:
			logger.Debug("request handled", elapsed)
		case shared.CodeOf(err).IsBusinessRule(), shared.CodeOf(err) == shared.CodeValidation, shared.CodeOf(err) == shared.CodeNotFound:
			logger.Info("request rejected", elapsed, zap.String("code", string(shared.CodeOf(err))), zap.Error(err))
		default:
			logger.Error("request failed", elapsed, zap.String("code", string(shared.CodeOf(err))), zap.Error(err))
		}
		return response, err
	}
}

// NewValidator returns a validator that reports fields by their json name
func NewValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}

// ValidationMiddleware checks `validate` struct tags before the handler runs
func ValidationMiddleware(validate *validator.Validate) mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		if err := validate.StructCtx(ctx, request); err != nil {
			var fieldErrors validator.ValidationErrors
			if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
				fe := fieldErrors[0]
				return nil, shared.NewValidationError(fe.Field(), validationMessage(fe))
			}
			var invalid *validator.InvalidValidationError
			if errors.As(err, &invalid) {
				// not a struct; nothing to validate
				return next(ctx, request)
			}
			return nil, shared.NewValidationError("request", err.Error())
		}
		return next(ctx, request)
	}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
