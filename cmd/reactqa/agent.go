package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"

	"github.com/rickchristie/reactqa/agents/react"
	"github.com/rickchristie/reactqa/config"
	"github.com/rickchristie/reactqa/hooks"
	"github.com/rickchristie/reactqa/logging"
	"github.com/rickchristie/reactqa/metrics"
	"github.com/rickchristie/reactqa/models"
	"github.com/rickchristie/reactqa/session"
	"github.com/rickchristie/reactqa/structured"
	"github.com/rickchristie/reactqa/toolchain"
	"github.com/rickchristie/reactqa/tools"
)

// newSession connects the configured model and wraps the agent in a session.
func newSession(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) (*session.Session, error) {
	llm, err := models.New(ctx, cfg.ModelSpec())
	if err != nil {
		return nil, err
	}
	agent, err := buildAgent(llm, cfg, reg)
	if err != nil {
		return nil, err
	}
	return session.New(agent, session.WithMemory(cfg.MemoryEnabled)), nil
}

// buildAgent wires the model, tools and hooks into a ReAct agent.
func buildAgent(llm llms.Model, cfg *config.Config, reg prometheus.Registerer) (*react.Agent, error) {
	hookRegistry := hooks.NewRegistry().
		Register(logging.NewGlobalHook()).
		Register(metrics.NewHook(reg))

	adapter := structured.New(llm,
		structured.WithPacer(structured.NewPacer(cfg.PacingDelay, nil)),
		structured.WithHooks(hookRegistry),
		structured.WithModelName(cfg.ModelName()),
	)

	enabled, err := tools.ByName(cfg.Tools)
	if err != nil {
		return nil, err
	}
	registry := toolchain.New().WithHooks(hookRegistry)
	for _, tool := range enabled {
		if err := registry.Register(tool); err != nil {
			return nil, fmt.Errorf("failed to register tool %s: %w", tool.Name(), err)
		}
	}

	var stepper react.Stepper
	switch cfg.StepMode {
	case config.StepModeFunction:
		stepper = react.NewFunctionStepper(adapter)
	default:
		stepper = react.NewTextStepper(adapter)
	}

	agent := react.NewAgent(stepper, registry).
		WithMaxIterations(cfg.MaxIterations).
		WithTimeout(cfg.Timeout).
		WithHooks(hookRegistry)

	log.Debug().
		Str("provider", cfg.Provider).
		Str("model", cfg.ModelName()).
		Str("step_mode", cfg.StepMode).
		Strs("tools", registry.Names()).
		Int("max_iterations", agent.MaxIterations()).
		Msg("agent ready")
	return agent, nil
}

// newMetricsRegistry returns the registry the metrics hook records into. When addr is
// set the registry is also served on /metrics until ctx is done.
func newMetricsRegistry(ctx context.Context, addr string) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	if addr == "" {
		return reg
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info().Str("addr", addr).Msg("serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	return reg
}
