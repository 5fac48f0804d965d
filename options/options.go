package options

import (
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap/zapcore"

	"github.com/kyma-project/cloud-pricing-collector/pkg/process"
)

const (
	DefaultWorkerPoolSize = process.DefaultWorkersPoolSize
	DefaultLogLevel       = zapcore.InfoLevel
)

type Options struct {
	WorkerPoolSize int
	LogLevel       zapcore.Level
	MetricsFile    string
	EnableTracing  bool
	PrintSummary   bool
}

func ParseArgs() *Options {
	opts, err := Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("failed to parse arguments: %v", err)
	}

	return opts
}

func Parse(fs *flag.FlagSet, args []string) (*Options, error) {
	var logLevel zapcore.Level

	workerPoolSize := fs.Int("worker-pool-size", DefaultWorkerPoolSize, "The number of provider tasks running in parallel")
	logLevelStr := fs.String("log-level", DefaultLogLevel.String(), "The log-level of the application. E.g. fatal, error, info, debug etc")
	metricsFile := fs.String("metrics-file", "", "Write the collected metrics in the Prometheus text format to this file at the end of the run")
	enableTracing := fs.Bool("enable-tracing", false, "Export traces through OTLP, configured by the OTEL_EXPORTER_OTLP_* variables")
	printSummary := fs.Bool("print-summary", true, "Print a summary table of the run to stdout")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := logLevel.Set(*logLevelStr); err != nil {
		return nil, fmt.Errorf("failed to parse log level %q: %w", *logLevelStr, err)
	}

	if *workerPoolSize <= 0 {
		return nil, fmt.Errorf("worker pool size must be positive, got %d", *workerPoolSize)
	}

	return &Options{
		WorkerPoolSize: *workerPoolSize,
		LogLevel:       logLevel,
		MetricsFile:    *metricsFile,
		EnableTracing:  *enableTracing,
		PrintSummary:   *printSummary,
	}, nil
}

func (o *Options) String() string {
	return fmt.Sprintf("--worker-pool-size=%d --log-level=%s --metrics-file=%s --enable-tracing=%t --print-summary=%t",
		o.WorkerPoolSize, o.LogLevel, o.MetricsFile, o.EnableTracing, o.PrintSummary)
}
