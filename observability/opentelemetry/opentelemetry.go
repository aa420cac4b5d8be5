// Copyright 2021-2022
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package opentelemetry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"

	"github.com/penny-vault/comex/common"
)

const (
	Name = "github.com/penny-vault/comex"
)

func noopShutdown(context.Context) error { return nil }

// Setup installs an OTLP trace exporter when `otlp.enabled` is set. The
// returned function flushes pending spans and must be called before exit.
func Setup(ctx context.Context) (func(context.Context) error, error) {
	if !viper.GetBool("otlp.enabled") {
		log.Debug().Msg("otlp tracing disabled")
		return noopShutdown, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String("comex"),
			semconv.ServiceVersionKey.String(common.CurrentVersion.String()),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	var client otlptrace.Client

	endpoint := viper.GetString("otlp.endpoint")
	headers := viper.GetStringMapString("otlp.headers")
	insecure := viper.GetBool("otlp.insecure")
	if viper.GetBool("otlp.http") {
		log.Info().Str("Endpoint", endpoint).Bool("Insecure", insecure).Msg("using HTTP(s) for OTLP connection")
		opts := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(endpoint),
			otlptracehttp.WithHeaders(headers),
		}
		if insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		client = otlptracehttp.NewClient(opts...)
	} else {
		log.Info().Str("Endpoint", endpoint).Bool("Insecure", insecure).Msg("using gRPC for OTLP connection")
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(endpoint),
			otlptracegrpc.WithHeaders(headers),
		}
		if insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		client = otlptracegrpc.NewClient(opts...)
	}

	traceExporter, err := otlptrace.New(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(Sampler()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp),
	)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tracerProvider.Shutdown, nil
}

// Sampler samples every trace unless `otlp.sample_ratio` is in [0, 1); child
// spans follow their parent's decision
func Sampler() sdktrace.Sampler {
	ratio := 1.0
	if viper.IsSet("otlp.sample_ratio") {
		ratio = viper.GetFloat64("otlp.sample_ratio")
	}
	if ratio >= 1 || ratio < 0 {
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

// SpanAttributesFromRequest describes an outgoing vendor request. The query
// string is left out since it may carry credentials.
func SpanAttributesFromRequest(req *http.Request) []attribute.KeyValue {
	return []attribute.KeyValue{
		semconv.HTTPMethodKey.String(req.Method),
		semconv.HTTPHostKey.String(req.URL.Host),
		semconv.HTTPTargetKey.String(req.URL.Path),
	}
}
