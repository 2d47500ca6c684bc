// Command mindwise-sim runs a scripted client session against Redis (or an
// embedded miniredis when no address is given): restore, two-phase sign-up,
// dissolve transitions across a small screen graph, and sign-out. Audit
// events are written to stdout as JSON lines.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	mindwise "github.com/kpaternoster/mindwiseapp-sub004"
	"github.com/kpaternoster/mindwiseapp-sub004/nav"
	"github.com/kpaternoster/mindwiseapp-sub004/transition"
)

type loggingProvisioner struct{}

func (loggingProvisioner) ProvisionIfSubscribed(_ context.Context, token string) error {
	fmt.Printf("provisioner: associated identity for token %q\n", token)
	return nil
}

func (loggingProvisioner) RemoveExternalUserID(context.Context) error {
	fmt.Println("provisioner: removed external user id")
	return nil
}

func main() {
	var (
		redisAddr  = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		configPath = flag.String("config", "", "optional TOML config file")
		fade       = flag.Duration("fade", 60*time.Millisecond, "dissolve fade duration")
	)
	flag.Parse()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", mr.Addr())
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	cfg := configFrom(*configPath)
	cfg.Audit.Enabled = true
	cfg.Transition.FadeDuration = *fade

	engine, err := mindwise.New().
		WithConfig(cfg).
		WithRedis(client).
		WithProvisioner(loggingProvisioner{}).
		WithAuditSink(mindwise.NewJSONWriterSink(os.Stdout)).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build engine: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	ctx := mindwise.WithPlatform(mindwise.WithDeviceID(context.Background(), "sim-device"), "sim")

	engine.Restore(ctx)
	fmt.Printf("restored: signedIn=%v loading=%v\n", engine.IsSignedIn(), engine.Loading())

	stack := nav.NewStack("splash", nil).
		Register("welcome", "home", "exercise", "settings")
	driver := transition.TickerDriver{Interval: cfg.Transition.TickInterval}
	tcfg := transition.Config{Duration: cfg.Transition.FadeDuration}

	splash := transition.NewCoordinator("splash", stack, driver, tcfg).BindFocus(stack)
	home := transition.NewCoordinator("home", stack, driver, tcfg).BindFocus(stack)
	exercise := transition.NewCoordinator("exercise", stack, driver, tcfg).BindFocus(stack)

	// Splash is one-shot: replace it so back-navigation cannot reach it.
	step("splash -> home (replace)", splash.Replace("home", nil))

	if err := engine.SignUp(ctx, "tok-sim-1"); err != nil {
		fmt.Fprintf(os.Stderr, "sign up: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("after sign-up: signedIn=%v (pending activation)\n", engine.IsSignedIn())

	if err := engine.SignInAfterSignUp(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "activate: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("after activation: signedIn=%v\n", engine.IsSignedIn())

	step("home -> exercise", home.GoTo("exercise", map[string]string{"program": "breathing"}))
	step("exercise -> back", exercise.GoBack())
	fmt.Printf("home opacity after return: %.2f\n", home.Opacity())

	token, err := engine.StoredToken(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stored token: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("bearer token for API calls: %q\n", token)

	if err := engine.SignOut(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "sign out: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("after sign-out: signedIn=%v\n", engine.IsSignedIn())

	// Give the fire-and-forget dispatchers a beat before the snapshot.
	time.Sleep(50 * time.Millisecond)
	snap := engine.MetricsSnapshot()
	fmt.Printf("metrics: %d counters, provision failures=%d, audit dropped=%d\n",
		len(snap.Counters), engine.ProvisionFailed(), engine.AuditDropped())
}

func configFrom(path string) mindwise.Config {
	if path == "" {
		return mindwise.DefaultConfig()
	}
	cfg, err := mindwise.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func step(name string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
		os.Exit(1)
	}
	fmt.Printf("%s: ok\n", name)
}
