package mindwise

import (
	"context"
	"errors"
	"time"

	internalaudit "github.com/kpaternoster/mindwiseapp-sub004/internal/audit"
	"github.com/kpaternoster/mindwiseapp-sub004/keyval"
)

const (
	auditEventRestoreCompleted  = "restore_completed"
	auditEventSignInSuccess     = "sign_in_success"
	auditEventSignInFailure     = "sign_in_failure"
	auditEventSignUpSuccess     = "sign_up_success"
	auditEventSignUpFailure     = "sign_up_failure"
	auditEventActivationSuccess = "activation_success"
	auditEventActivationEmpty   = "activation_empty"
	auditEventActivationFailure = "activation_failure"
	auditEventSignOutSuccess    = "sign_out_success"
	auditEventSignOutFailure    = "sign_out_failure"
)

// AuditErrorCode is the stable error label carried in [AuditEvent.Error].
type AuditErrorCode string

const (
	auditErrEmptyToken         AuditErrorCode = "empty_token"
	auditErrStorageUnavailable AuditErrorCode = "storage_unavailable"
	auditErrNotReady           AuditErrorCode = "engine_not_ready"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		EventID:   internalaudit.NewEventID(),
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		DeviceID:  deviceIDFromContext(ctx),
		Platform:  platformFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrEmptyToken):
		return auditErrEmptyToken
	case errors.Is(err, keyval.ErrUnavailable):
		return auditErrStorageUnavailable
	case errors.Is(err, ErrEngineNotReady):
		return auditErrNotReady
	default:
		return auditErrInternal
	}
}
