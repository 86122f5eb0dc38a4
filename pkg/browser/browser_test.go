package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DriverRod, cfg.Driver)
	assert.True(t, cfg.Headless, "headless by default")
	assert.True(t, cfg.NoSandbox, "no-sandbox by default for containers")
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestParseDriver(t *testing.T) {
	for _, d := range Drivers() {
		got, err := ParseDriver(string(d))
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}

	_, err := ParseDriver("selenium")
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestOpen_UnknownDriver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Driver = "netscape"

	b, err := Open(context.Background(), cfg)
	assert.Nil(t, b)
	assert.True(t, errors.Is(err, ErrUnknownDriver), "got %v", err)
}

func TestOpen_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b, err := Open(ctx, DefaultConfig())
	assert.Nil(t, b)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTimeoutFromContext(t *testing.T) {
	assert.Equal(t, 7*time.Second, timeoutFromContext(context.Background(), 7*time.Second),
		"no deadline should use the fallback")

	// A scenario budget longer than the action timeout must not stretch it.
	long, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	assert.Equal(t, 30*time.Second, timeoutFromContext(long, 30*time.Second),
		"action timeout should cap a longer deadline")

	short, cancel1 := context.WithTimeout(context.Background(), time.Second)
	defer cancel1()
	got := timeoutFromContext(short, 30*time.Second)
	assert.Greater(t, got, 500*time.Millisecond)
	assert.LessOrEqual(t, got, time.Second, "a sooner deadline should win")

	expired, cancel2 := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel2()
	assert.Equal(t, time.Millisecond, timeoutFromContext(expired, time.Second),
		"an expired deadline should still yield a positive timeout")
}

func TestLaunchWithin_ReturnsURL(t *testing.T) {
	killed := false
	url, err := launchWithin(context.Background(), time.Second,
		func() (string, error) { return "ws://127.0.0.1:9222/devtools", nil },
		func() { killed = true })

	require.NoError(t, err)
	assert.Equal(t, "ws://127.0.0.1:9222/devtools", url)
	assert.False(t, killed)
}

func TestLaunchWithin_PropagatesError(t *testing.T) {
	launchErr := errors.New("chrome not found")
	_, err := launchWithin(context.Background(), time.Second,
		func() (string, error) { return "", launchErr },
		func() {})

	assert.ErrorIs(t, err, launchErr)
}

func TestLaunchWithin_TimesOut(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	killed := make(chan struct{}, 1)

	start := time.Now()
	_, err := launchWithin(context.Background(), 50*time.Millisecond,
		func() (string, error) { <-release; return "", nil },
		func() { killed <- struct{}{} })

	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not finish within 50ms")
	assert.Less(t, time.Since(start), 5*time.Second, "should not wait for a hung launch")
	assert.Len(t, killed, 1, "a hung launch should be killed")
}

func TestLaunchWithin_Cancelled(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := launchWithin(ctx, time.Minute,
		func() (string, error) { <-release; return "", nil },
		func() {})

	assert.ErrorIs(t, err, context.Canceled)
}
