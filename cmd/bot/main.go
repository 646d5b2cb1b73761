package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"

	"github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	"go.uber.org/zap"
	"max.ks1230/advisor-bot/internal/clients/kafka"
	"max.ks1230/advisor-bot/internal/clients/llm"
	"max.ks1230/advisor-bot/internal/clients/tg"
	"max.ks1230/advisor-bot/internal/config"
	"max.ks1230/advisor-bot/internal/logger"
	"max.ks1230/advisor-bot/internal/model/dialog"
	"max.ks1230/advisor-bot/internal/model/session"
)

const (
	serviceName = "advisor-bot"
	metricsAddr = ":9100"
)

func main() {
	conf, err := config.New()
	if err != nil {
		logger.Fatal("failed to init config:", zap.Error(err))
	}

	closeTracing, err := initTracing()
	if err != nil {
		logger.Fatal("failed to init tracing:", zap.Error(err))
	}
	defer closeTracing()

	go serveMetrics()

	llmClient := llm.New(conf.LLM())

	var sink session.PlanSink
	producer, err := kafka.NewProducer(conf.Kafka())
	if err != nil {
		logger.Error("failed to init kafka producer, plans will not be exported", zap.Error(err))
	} else {
		sink = producer
		defer producer.Close()
	}

	factory := func(chatID int64) *session.Service {
		machine := dialog.NewMachine(llmClient, conf.App())
		return session.New(chatID, machine, llmClient, sink, conf.App())
	}

	client, err := tg.New(conf.Telegram(), factory, conf.App())
	if err != nil {
		logger.Fatal("failed to init client:", zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	client.ListenUpdates(ctx)
}

func initTracing() (func(), error) {
	cfg := jaegercfg.Configuration{
		ServiceName: serviceName,
		Sampler: &jaegercfg.SamplerConfig{
			Type:  jaeger.SamplerTypeConst,
			Param: 1,
		},
	}
	tracer, closer, err := cfg.NewTracer()
	if err != nil {
		return nil, err
	}
	opentracing.SetGlobalTracer(tracer)
	return func() {
		if err := closer.Close(); err != nil {
			logger.Error("failed to close tracer", zap.Error(err))
		}
	}, nil
}

func serveMetrics() {
	http.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(metricsAddr, nil); err != nil {
		logger.Error("metrics server stopped", zap.Error(err))
	}
}
