package mindwise

import "context"

type deviceIDContextKey struct{}
type platformContextKey struct{}

// WithDeviceID attaches the client device identifier to ctx. The Engine
// includes it in audit events so session activity can be traced per install.
func WithDeviceID(ctx context.Context, deviceID string) context.Context {
	return context.WithValue(ctx, deviceIDContextKey{}, deviceID)
}

// WithPlatform attaches the client platform ("ios", "android") to ctx for
// audit events.
func WithPlatform(ctx context.Context, platform string) context.Context {
	return context.WithValue(ctx, platformContextKey{}, platform)
}

func deviceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	deviceID, _ := ctx.Value(deviceIDContextKey{}).(string)
	return deviceID
}

func platformFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	platform, _ := ctx.Value(platformContextKey{}).(string)
	return platform
}
