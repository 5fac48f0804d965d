package options

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParse(t *testing.T) {
	opts, err := Parse(flag.NewFlagSet("test", flag.ContinueOnError), []string{})
	require.NoError(t, err)
	require.Equal(t, &Options{
		WorkerPoolSize: DefaultWorkerPoolSize,
		LogLevel:       zapcore.InfoLevel,
		PrintSummary:   true,
	}, opts)

	opts, err = Parse(flag.NewFlagSet("test", flag.ContinueOnError), []string{
		"--worker-pool-size=2", "--log-level=debug", "--metrics-file=/tmp/cpc.prom", "--enable-tracing", "--print-summary=false",
	})
	require.NoError(t, err)
	require.Equal(t, 2, opts.WorkerPoolSize)
	require.Equal(t, zapcore.DebugLevel, opts.LogLevel)
	require.Equal(t, "/tmp/cpc.prom", opts.MetricsFile)
	require.True(t, opts.EnableTracing)
	require.False(t, opts.PrintSummary)

	_, err = Parse(flag.NewFlagSet("test", flag.ContinueOnError), []string{"--log-level=loud"})
	require.Error(t, err)

	_, err = Parse(flag.NewFlagSet("test", flag.ContinueOnError), []string{"--worker-pool-size=0"})
	require.Error(t, err)
}
