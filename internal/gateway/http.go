package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/donaldgifford/cartsync/internal/metrics"
	domain "github.com/donaldgifford/cartsync/pkg/types"
)

const tracerName = "github.com/donaldgifford/cartsync/internal/gateway"

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 1 << 20

// HTTPGateway implements Gateway against the storefront cart REST API.
type HTTPGateway struct {
	client  *http.Client
	limiter *rate.Limiter
	headers map[string]string
	tracer  trace.Tracer
}

// Option configures the HTTPGateway.
type Option func(*HTTPGateway)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *HTTPGateway) {
		g.client = hc
	}
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(g *HTTPGateway) {
		g.client = &http.Client{Timeout: d}
	}
}

// WithRateLimit caps outbound requests with a token bucket. A non-positive
// perSecond leaves requests unlimited.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(g *HTTPGateway) {
		if perSecond <= 0 {
			g.limiter = nil
			return
		}
		g.limiter = rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
	}
}

// WithHeader adds a static request header, such as a WordPress nonce.
func WithHeader(key, value string) Option {
	return func(g *HTTPGateway) {
		g.headers[key] = value
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(g *HTTPGateway) {
		g.tracer = t
	}
}

// NewHTTPGateway creates a gateway with a 15 second request timeout.
func NewHTTPGateway(opts ...Option) *HTTPGateway {
	g := &HTTPGateway{
		client:  &http.Client{Timeout: 15 * time.Second},
		headers: make(map[string]string),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// UpdateQuantity sends PUT <url>?<query>.
func (g *HTTPGateway) UpdateQuantity(
	ctx context.Context,
	url, query string,
) (*domain.Outcome, error) {
	return g.do(ctx, "update", http.MethodPut, url, query)
}

// DeleteItem sends DELETE <url>.
func (g *HTTPGateway) DeleteItem(ctx context.Context, url string) (*domain.Outcome, error) {
	return g.do(ctx, "delete", http.MethodDelete, url, "")
}

func (g *HTTPGateway) do(
	ctx context.Context,
	op, method, url, query string,
) (*domain.Outcome, error) {
	if url == "" {
		return nil, ErrEmptyURL
	}

	ctx, span := g.tracer.Start(ctx, "cart."+op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	outcome, err := g.send(ctx, op, method, url, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.GatewayErrorsTotal.WithLabelValues(op).Inc()
		return nil, err
	}

	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.Int("http.response.status_code", outcome.StatusCode),
		attribute.String("cart.outcome", string(outcome.Kind())),
	)
	if outcome.Failed() {
		span.SetStatus(codes.Error, http.StatusText(outcome.StatusCode))
	}
	return outcome, nil
}

func (g *HTTPGateway) send(
	ctx context.Context,
	op, method, url, query string,
) (*domain.Outcome, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait: %w", err)
		}
	}

	target := url
	if query != "" {
		target += "?" + query
	}

	req, err := http.NewRequestWithContext(ctx, method, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range g.headers {
		req.Header.Set(k, v)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending %s request: %w", op, err)
	}
	defer resp.Body.Close()

	metrics.GatewayRequestDuration.
		WithLabelValues(op, strconv.Itoa(resp.StatusCode)).
		Observe(time.Since(start).Seconds())

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	outcome := &domain.Outcome{StatusCode: resp.StatusCode}
	if outcome.Kind() != domain.OutcomeOK || len(body) == 0 {
		return outcome, nil
	}

	var snap domain.CartSnapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("decoding cart snapshot: %w", err)
	}
	outcome.Snapshot = &snap
	return outcome, nil
}

var _ Gateway = (*HTTPGateway)(nil)
