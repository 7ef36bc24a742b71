/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dirpx.dev/dlog/apis/health"
	apipeline "dirpx.dev/dlog/apis/pipeline"
	"dirpx.dev/dlog/runtime/configsource"
	"dirpx.dev/dlog/runtime/extended"
	"dirpx.dev/dlog/runtime/flush"
	"dirpx.dev/dlog/runtime/input"
	"dirpx.dev/dlog/runtime/pipeline"
	"dirpx.dev/dlog/runtime/processor"
	"dirpx.dev/dlog/runtime/queue/keymgr"
	"dirpx.dev/dlog/runtime/queue/processqueue"
	"dirpx.dev/dlog/runtime/queue/sinkqueue"
	"dirpx.dev/dlog/runtime/sink"
)

const stopTimeout = 30 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build, start and run every pipeline named in a YAML specification",
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("config", "", "path to a dlog YAML specification (required)")
	runCmd.Flags().Int("provider-priority", 0, "override priority for the file provider")
	runCmd.Flags().Bool("dev", false, "use zap's development logger (human-readable, debug-enabled)")
	_ = runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	priority, _ := cmd.Flags().GetInt("provider-priority")
	dev, _ := cmd.Flags().GetBool("dev")

	base, err := newBaseLogger(dev)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer base.Sync() //nolint:errcheck

	run := runID()
	base.Info("dlogctl starting", zap.String("run_id", run), zap.String("config", configPath))

	src := configsource.NewFile(configPath, priority)
	spec, version, err := src.Snapshot(cmd.Context())
	if err != nil {
		return fmt.Errorf("load %s: %w", configPath, err)
	}
	base.Info("specification loaded", zap.String("version", version), zap.Int("pipelines", len(spec.Pipelines)))

	sinkQueues := sinkqueue.New()
	deps := pipeline.Deps{
		Inputs:        input.Global,
		Processors:    processor.Global,
		Sinks:         sink.Global,
		Keys:          keymgr.Global,
		ProcessQueues: processqueue.New(sinkQueues),
		SinkQueues:    sinkQueues,
		Flush:         flush.New(),
		Extended:      extended.New(),
		Base:          base,
		Alarm:         newLogAlarmSink(base),
	}
	builder := pipeline.NewBuilder(deps)

	aggregator := health.NewAggregator()
	built := make([]apipeline.Pipeline, 0, len(spec.Pipelines))
	for name, cfg := range spec.Pipelines {
		p, err := builder.Build(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("pipeline %q: build: %w", name, err)
		}
		ok, err := p.Init(cmd.Context())
		if err != nil {
			return fmt.Errorf("pipeline %q: init: %w", name, err)
		}
		if !ok {
			return fmt.Errorf("pipeline %q: init rejected its configuration", name)
		}
		if err := p.Start(cmd.Context()); err != nil {
			return fmt.Errorf("pipeline %q: start: %w", name, err)
		}
		built = append(built, p)
		aggregator.Add(name, health.CheckFunc(func(context.Context) (health.Result, error) {
			return health.Result{Name: name, Status: health.StatusHealthy}, nil
		}))
		base.Info("pipeline started", zap.String("run_id", run), zap.String("pipeline", name))
	}

	report := aggregator.Run(cmd.Context())
	base.Info("all pipelines started", zap.String("run_id", run), zap.String("status", string(report.Status)))

	sig := waitForSignal()
	base.Info("shutdown signal received", zap.String("run_id", run), zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	for _, p := range built {
		if err := p.Stop(shutdownCtx, false); err != nil {
			base.Warn("pipeline stop failed", zap.String("run_id", run), zap.Error(err))
		}
	}
	base.Info("dlogctl stopped", zap.String("run_id", run))
	return nil
}

func newBaseLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func waitForSignal() os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	return <-sigCh
}
