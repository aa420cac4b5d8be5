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

package marketdata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/penny-vault/comex/common"
	"github.com/penny-vault/comex/observability/opentelemetry"
)

// CorrelationHeader carries a per-request id so vendor side logs can be
// matched with ours
const CorrelationHeader = "X-Correlation-ID"

var timeLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// parseTime reads vendor timestamps; values without a zone are UTC
func parseTime(s string) (time.Time, error) {
	var err error
	for _, layout := range timeLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable time %q", ErrVendorResponse, s)
}

type vendorError struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

func (e *vendorError) asError() error {
	if e == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %s", ErrVendorResponse, e.Category, e.Message)
}

// checkedResponse is implemented by decoded payloads that may carry an
// error reported by the vendor in a successful HTTP response
type checkedResponse interface {
	vendorErr() error
}

// fetchJSON performs a single GET and decodes the body into out. Successful
// responses are cached under cacheKey when useCache is set; cacheKey must
// not contain credentials.
func fetchJSON(ctx context.Context, client *http.Client, spanName string, u *url.URL, cacheKey string, useCache bool, out checkedResponse) error {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, spanName)
	defer span.End()

	correlationID := uuid.New().String()
	subLog := log.With().Str("Span", spanName).Str("CorrelationID", correlationID).Str("Path", u.Path).Logger()

	if useCache {
		if body, err := common.CacheGet(ctx, cacheKey); err == nil {
			if err := json.Unmarshal(body, out); err == nil {
				span.SetAttributes(attribute.Bool("CacheHit", true))
				subLog.Debug().Msg("served from cache")
				return nil
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "could not build request")
		subLog.Error().Err(err).Msg("could not build request")
		return err
	}
	req.Header.Set(CorrelationHeader, correlationID)
	req.Header.Set("Accept", "application/json")
	span.SetAttributes(opentelemetry.SpanAttributesFromRequest(req)...)
	span.SetAttributes(attribute.String("CorrelationID", correlationID))

	resp, err := client.Do(req)
	if err != nil {
		span.RecordError(err)
		msg := "vendor http request failed"
		span.SetStatus(codes.Error, msg)
		subLog.Error().Err(err).Msg(msg)
		return err
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("StatusCode", resp.StatusCode))
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		msg := "could not read vendor response body"
		span.SetStatus(codes.Error, msg)
		subLog.Error().Err(err).Msg(msg)
		return err
	}

	if resp.StatusCode >= 400 {
		msg := "vendor returned invalid response code"
		span.SetStatus(codes.Error, msg)
		subLog.Error().Int("HTTPResponseStatusCode", resp.StatusCode).Bytes("Body", body).Msg(msg)
		return fmt.Errorf("%w: %d", ErrVendorStatus, resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		span.RecordError(err)
		msg := "could not unmarshal json"
		span.SetStatus(codes.Error, msg)
		subLog.Error().Err(err).Bytes("Body", body).Msg(msg)
		return fmt.Errorf("%w: %s", ErrVendorResponse, err.Error())
	}

	if err := out.vendorErr(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "vendor reported an error")
		subLog.Error().Err(err).Msg("vendor reported an error")
		return err
	}

	if useCache {
		if err := common.CacheSet(ctx, cacheKey, body); err != nil {
			subLog.Warn().Err(err).Msg("could not cache vendor response")
		}
	}

	return nil
}
