package mindwise

import "errors"

var (
	// ErrEmptyToken is returned by SignIn and SignUp when the supplied token
	// is empty. An empty token means signed-out and is never persisted.
	ErrEmptyToken = errors.New("empty session token")
	// ErrEngineNotReady is returned when an Engine method is called before
	// the engine was built or after required collaborators were removed.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrBuilderReused is returned by Builder.Build on a second call.
	ErrBuilderReused = errors.New("builder already used")
	// ErrRedisRequired is returned by Builder.Build when no Redis client was
	// provided for the durable key-value store.
	ErrRedisRequired = errors.New("redis client required")
)
