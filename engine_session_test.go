package mindwise

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/kpaternoster/mindwiseapp-sub004/keyval"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return mr, rdb
}

type recordingProvisioner struct {
	mu          sync.Mutex
	provisioned []string
	removals    int
	err         error
}

func (p *recordingProvisioner) ProvisionIfSubscribed(_ context.Context, token string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.provisioned = append(p.provisioned, token)
	return p.err
}

func (p *recordingProvisioner) RemoveExternalUserID(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removals++
	return p.err
}

func (p *recordingProvisioner) tokens() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.provisioned))
	copy(out, p.provisioned)
	return out
}

func (p *recordingProvisioner) removalCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.removals
}

func sessionTestConfig() Config {
	cfg := defaultConfig()
	cfg.Metrics.Enabled = true
	return cfg
}

func newSessionEngine(t *testing.T, cfg Config, prov IdentityProvisioner) (*Engine, *miniredis.Miniredis) {
	t.Helper()
	mr, rdb := newTestRedis(t)

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithProvisioner(prov).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine, mr
}

// eventually polls cond until it holds or the deadline passes. Used for
// assertions on fire-and-forget work.
func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func storageKey(cfg Config, key string) string {
	return cfg.Storage.RedisPrefix + ":" + key
}

func TestRestoreWithPersistedToken(t *testing.T) {
	cfg := sessionTestConfig()
	engine, mr := newSessionEngine(t, cfg, nil)
	mr.Set(storageKey(cfg, cfg.Session.TokenKey), "abc123")

	if !engine.Loading() {
		t.Fatal("expected loading before restore")
	}

	engine.Restore(context.Background())

	if !engine.IsSignedIn() {
		t.Fatal("expected signed in after restoring persisted token")
	}
	if engine.Loading() {
		t.Fatal("expected loading false after restore")
	}
	if got := engine.Token(); got != "abc123" {
		t.Fatalf("expected token abc123, got %q", got)
	}
}

func TestRestoreEmptyStore(t *testing.T) {
	engine, _ := newSessionEngine(t, sessionTestConfig(), nil)

	engine.Restore(context.Background())

	if engine.IsSignedIn() {
		t.Fatal("expected signed out with empty store")
	}
	if engine.Loading() {
		t.Fatal("expected loading false after restore")
	}
}

func TestRestoreStorageFailureSwallowed(t *testing.T) {
	engine, mr := newSessionEngine(t, sessionTestConfig(), nil)
	mr.SetError("storage down")

	engine.Restore(context.Background())

	if engine.IsSignedIn() {
		t.Fatal("expected signed out when restore read fails")
	}
	if engine.Loading() {
		t.Fatal("expected loading false even when restore read fails")
	}
}

func TestRestoreRunsAtMostOnce(t *testing.T) {
	cfg := sessionTestConfig()
	engine, mr := newSessionEngine(t, cfg, nil)

	engine.Restore(context.Background())

	// A token appearing after the first restore must not be picked up by a
	// second call; restore belongs to process start only.
	mr.Set(storageKey(cfg, cfg.Session.TokenKey), "late")
	engine.Restore(context.Background())

	if engine.IsSignedIn() {
		t.Fatal("expected second restore to be a no-op")
	}
}

func TestRestoreDoesNotProvisionByDefault(t *testing.T) {
	cfg := sessionTestConfig()
	prov := &recordingProvisioner{}
	engine, mr := newSessionEngine(t, cfg, prov)
	mr.Set(storageKey(cfg, cfg.Session.TokenKey), "abc123")

	engine.Restore(context.Background())
	engine.Close()

	if got := prov.tokens(); len(got) != 0 {
		t.Fatalf("expected no provisioning on restore, got %v", got)
	}
}

func TestRestoreProvisionsWhenConfigured(t *testing.T) {
	cfg := sessionTestConfig()
	cfg.Provision.OnRestore = true
	prov := &recordingProvisioner{}
	engine, mr := newSessionEngine(t, cfg, prov)
	mr.Set(storageKey(cfg, cfg.Session.TokenKey), "abc123")

	engine.Restore(context.Background())

	eventually(t, func() bool {
		got := prov.tokens()
		return len(got) == 1 && got[0] == "abc123"
	}, "expected provisioning with restored token")
}

func TestSignInPersistsThenActivates(t *testing.T) {
	cfg := sessionTestConfig()
	engine, mr := newSessionEngine(t, cfg, nil)
	ctx := context.Background()
	engine.Restore(ctx)

	if err := engine.SignIn(ctx, "tok-1"); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}

	if !engine.IsSignedIn() {
		t.Fatal("expected signed in")
	}
	stored, err := engine.StoredToken(ctx)
	if err != nil {
		t.Fatalf("StoredToken failed: %v", err)
	}
	if stored != "tok-1" {
		t.Fatalf("expected stored token tok-1, got %q", stored)
	}
	if got, _ := mr.Get(storageKey(cfg, cfg.Session.TokenKey)); got != "tok-1" {
		t.Fatalf("expected durable token tok-1, got %q", got)
	}
}

func TestSignInEmptyTokenRejected(t *testing.T) {
	engine, _ := newSessionEngine(t, sessionTestConfig(), nil)

	err := engine.SignIn(context.Background(), "")
	if !errors.Is(err, ErrEmptyToken) {
		t.Fatalf("expected ErrEmptyToken, got %v", err)
	}
	if engine.IsSignedIn() {
		t.Fatal("expected signed out after rejected sign-in")
	}
}

func TestSignInStorageFailureKeepsSignedOut(t *testing.T) {
	engine, mr := newSessionEngine(t, sessionTestConfig(), nil)
	mr.SetError("storage down")

	err := engine.SignIn(context.Background(), "tok-1")
	if !errors.Is(err, keyval.ErrUnavailable) {
		t.Fatalf("expected keyval.ErrUnavailable, got %v", err)
	}
	if engine.IsSignedIn() {
		t.Fatal("in-memory state must not run ahead of a failed durable write")
	}
}

func TestSignUpDoesNotActivate(t *testing.T) {
	engine, _ := newSessionEngine(t, sessionTestConfig(), nil)
	ctx := context.Background()

	if err := engine.SignUp(ctx, "tok-pending"); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if engine.IsSignedIn() {
		t.Fatal("SignUp must never flip the signed-in flag")
	}
	stored, err := engine.StoredToken(ctx)
	if err != nil {
		t.Fatalf("StoredToken failed: %v", err)
	}
	if stored != "tok-pending" {
		t.Fatalf("expected pending token persisted, got %q", stored)
	}
}

func TestSignInAfterSignUpActivates(t *testing.T) {
	engine, _ := newSessionEngine(t, sessionTestConfig(), nil)
	ctx := context.Background()

	if err := engine.SignUp(ctx, "tok-pending"); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if err := engine.SignInAfterSignUp(ctx); err != nil {
		t.Fatalf("SignInAfterSignUp failed: %v", err)
	}
	if !engine.IsSignedIn() {
		t.Fatal("expected signed in after activation")
	}
	if got := engine.Token(); got != "tok-pending" {
		t.Fatalf("expected activated token tok-pending, got %q", got)
	}
}

func TestSignInAfterSignUpWithoutSignUp(t *testing.T) {
	engine, _ := newSessionEngine(t, sessionTestConfig(), nil)

	if err := engine.SignInAfterSignUp(context.Background()); err != nil {
		t.Fatalf("expected silent no-op with no stored token, got %v", err)
	}
	if engine.IsSignedIn() {
		t.Fatal("expected signed out with nothing to activate")
	}
}

func TestSignOutClearsSessionAndStorage(t *testing.T) {
	cfg := sessionTestConfig()
	engine, mr := newSessionEngine(t, cfg, nil)
	ctx := context.Background()

	if err := engine.SignIn(ctx, "tok-1"); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	// Simulate earlier provisioning bookkeeping.
	mr.Set(storageKey(cfg, cfg.Provision.LastTokenKey), "tok-1")

	if err := engine.SignOut(ctx); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}

	if engine.IsSignedIn() {
		t.Fatal("expected signed out")
	}
	stored, err := engine.StoredToken(ctx)
	if err != nil {
		t.Fatalf("StoredToken failed: %v", err)
	}
	if stored != "" {
		t.Fatalf("expected no stored token, got %q", stored)
	}
	if mr.Exists(storageKey(cfg, cfg.Provision.LastTokenKey)) {
		t.Fatal("expected provisioning bookkeeping key deleted")
	}
}

func TestSignOutIdempotent(t *testing.T) {
	engine, _ := newSessionEngine(t, sessionTestConfig(), nil)
	ctx := context.Background()

	if err := engine.SignOut(ctx); err != nil {
		t.Fatalf("first sign-out while signed out: %v", err)
	}
	if err := engine.SignOut(ctx); err != nil {
		t.Fatalf("second sign-out: %v", err)
	}
	if engine.IsSignedIn() {
		t.Fatal("expected signed out")
	}
}

func TestSignOutStorageFailureKeepsSession(t *testing.T) {
	engine, mr := newSessionEngine(t, sessionTestConfig(), nil)
	ctx := context.Background()

	if err := engine.SignIn(ctx, "tok-1"); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	mr.SetError("storage down")

	err := engine.SignOut(ctx)
	if !errors.Is(err, keyval.ErrUnavailable) {
		t.Fatalf("expected keyval.ErrUnavailable, got %v", err)
	}
	if !engine.IsSignedIn() {
		t.Fatal("a failed sign-out must leave the session unchanged for retry")
	}
}

func TestStoredTokenBypassesMemory(t *testing.T) {
	cfg := sessionTestConfig()
	engine, mr := newSessionEngine(t, cfg, nil)
	mr.Set(storageKey(cfg, cfg.Session.TokenKey), "pre-restore")

	// No Restore yet: the in-memory session is still loading, but API
	// clients can already read the durable credential.
	stored, err := engine.StoredToken(context.Background())
	if err != nil {
		t.Fatalf("StoredToken failed: %v", err)
	}
	if stored != "pre-restore" {
		t.Fatalf("expected pre-restore token, got %q", stored)
	}
	if engine.IsSignedIn() {
		t.Fatal("reading the stored token must not activate the session")
	}
}

func TestProvisionScheduledOnSignIn(t *testing.T) {
	cfg := sessionTestConfig()
	prov := &recordingProvisioner{}
	engine, mr := newSessionEngine(t, cfg, prov)

	if err := engine.SignIn(context.Background(), "tok-1"); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}

	eventually(t, func() bool {
		got := prov.tokens()
		return len(got) == 1 && got[0] == "tok-1"
	}, "expected provisioning job with signed-in token")

	eventually(t, func() bool {
		v, err := mr.Get(storageKey(cfg, cfg.Provision.LastTokenKey))
		return err == nil && v == "tok-1"
	}, "expected last-provisioned bookkeeping write")
}

func TestProvisionerFailureDoesNotAffectSignIn(t *testing.T) {
	prov := &recordingProvisioner{err: errors.New("push backend down")}
	engine, _ := newSessionEngine(t, sessionTestConfig(), prov)

	if err := engine.SignIn(context.Background(), "tok-1"); err != nil {
		t.Fatalf("SignIn must not surface provisioning failures, got %v", err)
	}
	if !engine.IsSignedIn() {
		t.Fatal("expected signed in despite provisioning failure")
	}
	eventually(t, func() bool {
		return engine.ProvisionFailed() == 1
	}, "expected provisioning failure counted")
}

func TestSignUpSchedulesNoProvisioning(t *testing.T) {
	prov := &recordingProvisioner{}
	engine, _ := newSessionEngine(t, sessionTestConfig(), prov)

	if err := engine.SignUp(context.Background(), "tok-pending"); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	engine.Close()

	if got := prov.tokens(); len(got) != 0 {
		t.Fatalf("expected no provisioning for a pending session, got %v", got)
	}
}

func TestRemovalScheduledOnSignOut(t *testing.T) {
	prov := &recordingProvisioner{}
	engine, _ := newSessionEngine(t, sessionTestConfig(), prov)
	ctx := context.Background()

	if err := engine.SignIn(ctx, "tok-1"); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if err := engine.SignOut(ctx); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}
	engine.Close()

	if got := prov.removalCount(); got != 1 {
		t.Fatalf("expected one identity removal, got %d", got)
	}
}

func TestMetricsRecordSessionOperations(t *testing.T) {
	engine, _ := newSessionEngine(t, sessionTestConfig(), nil)
	ctx := context.Background()

	engine.Restore(ctx)
	if err := engine.SignIn(ctx, "tok-1"); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if err := engine.SignOut(ctx); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}

	snap := engine.MetricsSnapshot()
	for _, id := range []MetricID{MetricRestoreCompleted, MetricSignInSuccess, MetricSignOutSuccess} {
		if snap.Counters[id] != 1 {
			t.Fatalf("expected counter %d == 1, got %d", id, snap.Counters[id])
		}
	}
}
