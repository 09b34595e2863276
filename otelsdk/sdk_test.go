package otelsdk

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YaoYingLong/eleven-otelcore/autoconfigure"
)

func TestNewFillsDefaults(t *testing.T) {
	s := New()
	require.NotNil(t, s.TracerProvider)
	require.NotNil(t, s.MeterProvider)
	require.NotNil(t, s.LoggerProvider)
	require.NotNil(t, s.Propagator)
	require.NoError(t, s.Shutdown(context.Background()))
}

func TestFromAutoConfigureWrapsProviders(t *testing.T) {
	built, err := autoconfigure.Build(autoconfigure.BuildOptions{})
	require.NoError(t, err)

	s := FromAutoConfigure(built)
	assert.Same(t, built.TracerProvider, s.TracerProvider)
	assert.Same(t, built.MeterProvider, s.MeterProvider)
	assert.Same(t, built.LoggerProvider, s.LoggerProvider)

	require.NoError(t, s.Shutdown(context.Background()))
}

func TestShutdownIsSafeToCallTwice(t *testing.T) {
	s := New()
	require.NoError(t, s.Shutdown(context.Background()))
	require.NoError(t, s.Shutdown(context.Background()))
}
