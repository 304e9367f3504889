package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/Gouliath1/portfolio-tracker-sub001/src/model"

	logger "github.com/sirupsen/logrus"
)

const (
	FieldHandler = "handler"
	FieldMethod  = "http_method"
	FieldRequest = "request_id"

	exceptionWriteTimeout = 2 * time.Second
)

type exceptionRecorder interface {
	Create(ctx context.Context, exc *model.Exception) error
}

// ExceptionHook persists error-level log entries written by HTTP handlers.
type ExceptionHook struct {
	Service  string
	recorder exceptionRecorder
}

func NewExceptionHook(service string, recorder exceptionRecorder) *ExceptionHook {
	return &ExceptionHook{Service: service, recorder: recorder}
}

func (h *ExceptionHook) Levels() []logger.Level {
	return []logger.Level{logger.PanicLevel, logger.FatalLevel, logger.ErrorLevel}
}

func (h *ExceptionHook) Fire(entry *logger.Entry) error {
	module, ok := entry.Data[FieldHandler].(string)
	if !ok || module == "" {
		return nil
	}

	message := entry.Message
	if err, ok := entry.Data[logger.ErrorKey].(error); ok && err != nil {
		message = fmt.Sprintf("%s: %v", message, err)
	}

	exc := &model.Exception{
		Service:   h.Service,
		Module:    module,
		Method:    stringField(entry, FieldMethod),
		Message:   message,
		Level:     entry.Level.String(),
		RequestID: stringField(entry, FieldRequest),
	}

	ctx, cancel := context.WithTimeout(context.Background(), exceptionWriteTimeout)
	defer cancel()
	return h.recorder.Create(ctx, exc)
}

func stringField(entry *logger.Entry, key string) string {
	v, _ := entry.Data[key].(string)
	return v
}
