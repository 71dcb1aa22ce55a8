// mlpipeline runs the training pipeline: it downloads and extracts the dataset, then prepares
// the base model and its classification head. Artifacts are written under the artifacts root
// of the configuration, and running it again reuses what previous runs left there.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/askiada/go-mlpipeline/pkg/common"
	"github.com/askiada/go-mlpipeline/pkg/config"
	"github.com/askiada/go-mlpipeline/pkg/logging"
	"github.com/askiada/go-mlpipeline/pkg/pipeline"
	"github.com/askiada/go-mlpipeline/pkg/pipeline/drawer"
	"github.com/askiada/go-mlpipeline/pkg/pipeline/measure"
	"github.com/askiada/go-mlpipeline/pkg/pipeline/model"
	"github.com/askiada/go-mlpipeline/pkg/stage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

type options struct {
	configPath  string
	paramsPath  string
	logFile     string
	logFormat   string
	logLevel    string
	graphPath   string
	compression string
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}

	flagSet := pflag.NewFlagSet("mlpipeline", pflag.ContinueOnError)
	flagSet.StringVar(&opts.configPath, "config", config.DefaultConfigPath, "path to the artifact layout")
	flagSet.StringVar(&opts.paramsPath, "params", config.DefaultParamsPath, "path to the model parameters")
	flagSet.StringVar(&opts.logFile, "log-file", "logs/running_logs.log", "file the logs are appended to, empty to disable")
	flagSet.StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")
	flagSet.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	flagSet.StringVar(&opts.graphPath, "graph", "", "write a DOT graph of the run to this file")
	flagSet.StringVar(&opts.compression, "compression", common.CompressionZstd.String(), "object compression: none, lz4 or zstd")

	err := flagSet.Parse(args)
	if err != nil {
		return nil, err
	}

	if flagSet.NArg() > 0 {
		return nil, errors.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}

	if opts.logFormat != "text" && opts.logFormat != "json" {
		return nil, errors.Errorf("unknown log format %q", opts.logFormat)
	}

	return opts, nil
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, err := parseFlags(args)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}

	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(opts.logLevel)
	if err != nil {
		return err
	}

	compression, err := common.ParseCompression(opts.compression)
	if err != nil {
		return err
	}

	slogger, closer, err := logging.New(&logging.Config{
		Level:  level,
		Format: opts.logFormat,
		Output: stdout,
		File:   opts.logFile,
	})
	if err != nil {
		return err
	}
	defer closer.Close()

	logger := slogger.With("run_id", uuid.NewString())

	tk := common.New(common.WithLogger(logger), common.WithCompression(compression))

	manager, err := config.NewManager(tk, opts.configPath, opts.paramsPath)
	if err != nil {
		return err
	}

	msr := measure.NewDefaultMeasure()
	pipeOpts := []model.PipelineOption{pipeline.StageLogger(logger), measure.PipelineMeasure(msr)}

	if opts.graphPath != "" {
		pipeOpts = append(pipeOpts, drawer.PipelineDrawer(drawer.NewDOTDrawer(opts.graphPath), msr))
	}

	pipe, err := pipeline.New(pipeOpts...)
	if err != nil {
		return err
	}

	_, err = pipeline.AddStage(pipe, stage.DataIngestionName, func(ctx context.Context) error {
		cfg, err := manager.DataIngestionConfig()
		if err != nil {
			return err
		}

		return stage.NewDataIngestion(cfg, tk).Run(ctx)
	})
	if err != nil {
		return err
	}

	_, err = pipeline.AddStage(pipe, stage.PrepareBaseModelName, func(ctx context.Context) error {
		cfg, err := manager.PrepareBaseModelConfig()
		if err != nil {
			return err
		}

		return stage.NewPrepareBaseModel(cfg, tk).Run(ctx)
	})
	if err != nil {
		return err
	}

	err = pipe.Run(ctx)

	for _, name := range msr.Names() {
		mt := msr.GetMetric(name)
		if mt.AVGDuration() > 0 {
			logger.Debug("stage duration", "stage", name, "duration", mt.AVGDuration())
		}
	}

	return err
}
