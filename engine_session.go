package mindwise

import (
	"context"
	"log"
	"time"
)

// Restore loads the persisted session at process start. It runs at most
// once; repeat calls are no-ops. Storage failures are swallowed and treated
// as "no session" — there is no interactive caller to report to during
// startup — and Loading flips to false unconditionally.
//
// Restore never schedules identity provisioning unless
// Config.Provision.OnRestore is set.
func (e *Engine) Restore(ctx context.Context) {
	if e == nil || !e.restored.CompareAndSwap(false, true) {
		return
	}

	e.opMu.Lock()
	defer e.opMu.Unlock()

	token, ok, err := e.store.Get(ctx, e.config.Session.TokenKey)
	if err != nil {
		log.Print("mindwise: session restore read failed, starting signed out")
		token, ok = "", false
	}

	e.stateMu.Lock()
	if ok {
		e.token = token
	}
	e.loading = false
	e.stateMu.Unlock()

	e.metricInc(MetricRestoreCompleted)
	if ok {
		e.metricInc(MetricRestoreSignedIn)
	}
	e.emitAudit(ctx, auditEventRestoreCompleted, true, nil, func() map[string]string {
		return map[string]string{
			"session_found": boolLabel(ok),
		}
	})

	if ok && e.config.Provision.OnRestore {
		e.dispatchProvision(token)
	}
}

// SignIn durably persists token and activates the in-memory session. The
// durable write completes before the in-memory flag flips, so a crash
// between the two steps never leaves memory ahead of storage. Storage
// failures propagate to the caller with the session unchanged, so the UI
// can offer a retry.
//
// On success an identity-provisioning job is scheduled fire-and-forget when
// Config.Provision.OnSignIn is set.
func (e *Engine) SignIn(ctx context.Context, token string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}
	if e.metrics != nil && e.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() {
			e.metrics.Observe(MetricSignInLatency, time.Since(start))
		}()
	}
	if token == "" {
		e.metricInc(MetricSignInFailure)
		e.emitAudit(ctx, auditEventSignInFailure, false, ErrEmptyToken, nil)
		return ErrEmptyToken
	}

	e.opMu.Lock()
	defer e.opMu.Unlock()

	if err := e.store.Set(ctx, e.config.Session.TokenKey, token); err != nil {
		e.metricInc(MetricSignInFailure)
		e.emitAudit(ctx, auditEventSignInFailure, false, err, func() map[string]string {
			return map[string]string{
				"reason": "persist_failed",
			}
		})
		return err
	}

	e.setToken(token)

	e.metricInc(MetricSignInSuccess)
	e.emitAudit(ctx, auditEventSignInSuccess, true, nil, nil)

	if e.config.Provision.OnSignIn {
		e.dispatchProvision(token)
	}
	return nil
}

// SignUp durably persists token WITHOUT activating the in-memory session.
// It models the first half of the two-phase account-creation flow: the
// credential exists, but the session stays pending until
// [Engine.SignInAfterSignUp] runs. No provisioning is scheduled.
//
// A second SignUp before activation silently overwrites the pending token;
// the durable key carries no version.
func (e *Engine) SignUp(ctx context.Context, token string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}
	if token == "" {
		e.metricInc(MetricSignUpFailure)
		e.emitAudit(ctx, auditEventSignUpFailure, false, ErrEmptyToken, nil)
		return ErrEmptyToken
	}

	e.opMu.Lock()
	defer e.opMu.Unlock()

	if err := e.store.Set(ctx, e.config.Session.TokenKey, token); err != nil {
		e.metricInc(MetricSignUpFailure)
		e.emitAudit(ctx, auditEventSignUpFailure, false, err, func() map[string]string {
			return map[string]string{
				"reason": "persist_failed",
			}
		})
		return err
	}

	e.metricInc(MetricSignUpSuccess)
	e.emitAudit(ctx, auditEventSignUpSuccess, true, nil, nil)
	return nil
}

// SignInAfterSignUp completes the two-phase flow started by [Engine.SignUp]:
// it re-reads the persisted token and activates the in-memory session from
// it, so the caller never has to hold the token across the confirmation
// step. A missing token is not an error — there is simply nothing to
// activate and the session stays signed out. Storage read failures
// propagate.
func (e *Engine) SignInAfterSignUp(ctx context.Context) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}

	e.opMu.Lock()
	defer e.opMu.Unlock()

	token, ok, err := e.store.Get(ctx, e.config.Session.TokenKey)
	if err != nil {
		e.emitAudit(ctx, auditEventActivationFailure, false, err, nil)
		return err
	}
	if !ok {
		e.metricInc(MetricActivationEmpty)
		e.emitAudit(ctx, auditEventActivationEmpty, true, nil, nil)
		return nil
	}

	e.setToken(token)

	e.metricInc(MetricActivationSuccess)
	e.emitAudit(ctx, auditEventActivationSuccess, true, nil, nil)

	if e.config.Provision.OnSignIn {
		e.dispatchProvision(token)
	}
	return nil
}

// StoredToken reads the persisted session token directly from durable
// storage, bypassing the in-memory cache. It is valid before Restore
// completes and never triggers state updates; API clients use it to attach
// the bearer credential. Returns "" with a nil error when no token is
// stored.
func (e *Engine) StoredToken(ctx context.Context) (string, error) {
	if e == nil || e.store == nil {
		return "", ErrEngineNotReady
	}
	token, _, err := e.store.Get(ctx, e.config.Session.TokenKey)
	if err != nil {
		return "", err
	}
	return token, nil
}

// SignOut deletes the persisted token and the provisioning bookkeeping key,
// then clears the in-memory session. Durable deletes run first so memory is
// never ahead of storage. The call is idempotent: signing out while signed
// out is an error-free no-op.
//
// An identity-removal job is scheduled fire-and-forget on success.
func (e *Engine) SignOut(ctx context.Context) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}

	e.opMu.Lock()
	defer e.opMu.Unlock()

	// Bookkeeping key first: if this delete fails the token survives too,
	// and memory stays untouched, so no state diverges.
	if err := e.store.Delete(ctx, e.config.Provision.LastTokenKey); err != nil {
		e.metricInc(MetricSignOutFailure)
		e.emitAudit(ctx, auditEventSignOutFailure, false, err, func() map[string]string {
			return map[string]string{
				"reason": "bookkeeping_delete_failed",
			}
		})
		return err
	}
	if err := e.store.Delete(ctx, e.config.Session.TokenKey); err != nil {
		e.metricInc(MetricSignOutFailure)
		e.emitAudit(ctx, auditEventSignOutFailure, false, err, func() map[string]string {
			return map[string]string{
				"reason": "token_delete_failed",
			}
		})
		return err
	}

	e.setToken("")

	e.metricInc(MetricSignOutSuccess)
	e.emitAudit(ctx, auditEventSignOutSuccess, true, nil, nil)

	e.dispatchRemoval()
	return nil
}

func (e *Engine) dispatchProvision(token string) {
	if e.provision == nil {
		return
	}
	if e.provision.Provision(token) {
		e.metricInc(MetricProvisionDispatched)
	} else {
		e.metricInc(MetricProvisionDropped)
	}
}

func (e *Engine) dispatchRemoval() {
	if e.provision == nil {
		return
	}
	if e.provision.Remove() {
		e.metricInc(MetricRemovalDispatched)
	}
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
