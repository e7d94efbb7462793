package shrmem64

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "github.com/blacktop/go-shrmem64"

type instruments struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

func newInstruments(m metric.Meter) (*instruments, error) {
	if m == nil {
		m = metricnoop.NewMeterProvider().Meter(instrumentationName)
	}
	requests, err := m.Int64Counter("shrmem64.requests",
		metric.WithDescription("IARV64 requests issued, by request and outcome"))
	if err != nil {
		return nil, err
	}
	duration, err := m.Float64Histogram("shrmem64.request.duration",
		metric.WithDescription("IARV64 request latency"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	return &instruments{requests: requests, duration: duration}, nil
}

func tracerOrNoop(t trace.Tracer) trace.Tracer {
	if t == nil {
		return tracenoop.NewTracerProvider().Tracer(instrumentationName)
	}
	return t
}

// issue runs one facility call and classifies its return code. On failure
// the returned error is an *Error of the given kind.
func (c *Client) issue(req Request, kind ErrorKind, call func() (rc, rsn uint32), attrs ...slog.Attr) error {
	ctx, span := c.tracer.Start(context.Background(), "IARV64 "+req.String(),
		trace.WithAttributes(attribute.String("shrmem64.request", req.String())))
	defer span.End()

	start := time.Now()
	rc, rsn := call()
	elapsed := time.Since(start)

	ok := IsFacilitySuccess(rc)
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	set := metric.WithAttributes(
		attribute.String("request", req.String()),
		attribute.String("outcome", outcome),
	)
	c.inst.requests.Add(ctx, 1, set)
	c.inst.duration.Record(ctx, elapsed.Seconds(), set)
	recordRequest(req, elapsed)

	attrs = append(attrs,
		slog.String("request", req.String()),
		slog.Uint64("rc", uint64(rc)),
		slog.String("rsn", formatHex32(rsn)),
	)
	span.SetAttributes(attribute.Int64("shrmem64.rc", int64(rc)), attribute.Int64("shrmem64.rsn", int64(rsn)))

	if !ok {
		err := newError(kind, rc, rsn)
		recordFailure(req)
		span.RecordError(err)
		span.SetStatus(codes.Error, kind.String())
		attrs = append(attrs, slog.String("status", err.Status.String()))
		c.logger.LogAttrs(ctx, slog.LevelDebug, "IARV64 request failed", attrs...)
		return err
	}

	c.logger.LogAttrs(ctx, slog.LevelDebug, "IARV64 request", attrs...)
	return nil
}

func formatHex32(v uint32) string {
	return fmt.Sprintf("0x%08X", v)
}
