package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProvider struct {
	name   string
	errs   []error
	calls  int
	closed bool
}

func (f *fakeProvider) Generate(context.Context, string) (string, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return "", err
		}
	}
	return f.name, nil
}

func (f *fakeProvider) Close() error {
	f.closed = true
	return nil
}

func (f *fakeProvider) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{"provider": f.name}
}

func TestMultiProvider_SwitchesAfterMaxFailures(t *testing.T) {
	req := require.New(t)
	boom := errors.New("connection reset")
	first := &fakeProvider{name: "first", errs: []error{boom, boom}}
	second := &fakeProvider{name: "second"}

	c := NewMultiProviderClientFrom([]Provider{first, second}, 2, zap.NewNop())

	_, err := c.Generate(context.Background(), "p")
	req.ErrorIs(err, boom)
	_, err = c.Generate(context.Background(), "p")
	req.ErrorIs(err, boom)

	got, err := c.Generate(context.Background(), "p")
	req.NoError(err)
	req.Equal("second", got)
	req.Equal(2, first.calls)
	req.Equal(1, second.calls)
}

func TestMultiProvider_OneAttemptPerRequest(t *testing.T) {
	req := require.New(t)
	first := &fakeProvider{name: "first", errs: []error{errors.New("timeout")}}
	second := &fakeProvider{name: "second"}

	c := NewMultiProviderClientFrom([]Provider{first, second}, 3, zap.NewNop())
	_, err := c.Generate(context.Background(), "p")
	req.Error(err)
	req.Equal(1, first.calls)
	req.Zero(second.calls)
}

func TestMultiProvider_RateLimitSwitchesImmediately(t *testing.T) {
	req := require.New(t)
	first := &fakeProvider{name: "first", errs: []error{errors.New("googleapi: Error 429: Quota exceeded")}}
	second := &fakeProvider{name: "second"}

	c := NewMultiProviderClientFrom([]Provider{first, second}, 5, zap.NewNop())
	_, err := c.Generate(context.Background(), "p")
	req.Error(err)
	req.Equal(1, c.GetModelInfo()["provider_index"])

	got, err := c.Generate(context.Background(), "p")
	req.NoError(err)
	req.Equal("second", got)
}

func TestMultiProvider_SuccessResetsFailures(t *testing.T) {
	req := require.New(t)
	boom := errors.New("boom")
	only := &fakeProvider{name: "only", errs: []error{boom, nil, boom}}

	c := NewMultiProviderClientFrom([]Provider{only}, 2, zap.NewNop())
	for i := 0; i < 3; i++ {
		_, _ = c.Generate(context.Background(), "p")
	}
	req.Equal(1, c.GetModelInfo()["failure_count"])
	req.Equal(0, c.GetModelInfo()["provider_index"])
}

func TestMultiProvider_CloseAndInfo(t *testing.T) {
	req := require.New(t)
	a, b := &fakeProvider{name: "a"}, &fakeProvider{name: "b"}
	c := NewMultiProviderClientFrom([]Provider{a, b}, 0, zap.NewNop())

	info := c.GetProvidersInfo()
	req.Len(info, 2)
	req.Equal(true, info[0]["is_current"])
	req.Equal(false, info[1]["is_current"])

	req.NoError(c.Close())
	req.True(a.closed)
	req.True(b.closed)
}

func TestNewMultiProviderClient_NoUsableProviders(t *testing.T) {
	_, err := NewMultiProviderClient(MultiProviderConfig{}, zap.NewNop())
	require.Error(t, err)

	_, err = NewMultiProviderClient(MultiProviderConfig{
		Providers: []ProviderConfig{{Type: ProviderGroq}, {Type: "unknown", APIKey: "k"}},
	}, zap.NewNop())
	require.ErrorIs(t, err, ErrAllProvidersFailed)
}

func TestIsRateLimitError(t *testing.T) {
	require.True(t, IsRateLimitError(errors.New("status 429")))
	require.True(t, IsRateLimitError(errors.New("Quota exceeded")))
	require.True(t, IsRateLimitError(errors.New("Rate limit reached")))
	require.False(t, IsRateLimitError(errors.New("connection refused")))
	require.False(t, IsRateLimitError(nil))
	require.False(t, IsRateLimitError(fmt.Errorf("%w: %w", ErrThrottled, context.DeadlineExceeded)))
}

func TestRateLimitedProvider_WaitHonoursContext(t *testing.T) {
	req := require.New(t)
	inner := &fakeProvider{name: "inner"}
	p := NewRateLimitedProvider(inner, 1, zap.NewNop())

	got, err := p.Generate(context.Background(), "p")
	req.NoError(err)
	req.Equal("inner", got)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = p.Generate(ctx, "p")
	req.ErrorIs(err, ErrThrottled)
	req.False(IsRateLimitError(err))
	req.Equal(1, inner.calls)
	req.Equal(1, p.GetModelInfo()["requests_per_minute"])
}

func TestMultiProvider_LocalThrottleDoesNotSwitch(t *testing.T) {
	req := require.New(t)
	first := NewRateLimitedProvider(&fakeProvider{name: "first"}, 1, zap.NewNop())
	second := &fakeProvider{name: "second"}
	c := NewMultiProviderClientFrom([]Provider{first, second}, 3, zap.NewNop())

	got, err := c.Generate(context.Background(), "p")
	req.NoError(err)
	req.Equal("first", got)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Generate(ctx, "p")
	req.ErrorIs(err, ErrThrottled)

	_, index := c.current()
	req.Zero(index)
	req.Zero(second.calls)
}
