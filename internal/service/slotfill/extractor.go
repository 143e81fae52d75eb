package slotfill

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/seu-repo/songorder/internal/domain"
	"github.com/seu-repo/songorder/internal/observability/telemetry"
	"github.com/seu-repo/songorder/internal/ports"
)

// DefaultOracleTimeout bounds a single oracle call.
const DefaultOracleTimeout = 5 * time.Second

// Extraction is the checked result of one contract call.
type Extraction struct {
	Result     *domain.ExtractionResult
	Extra      map[string]*string
	Violations []*domain.ContractViolationError
}

type Extractor struct {
	oracle  ports.Oracle
	deid    *Deidentifier
	timeout time.Duration
	tracer  trace.Tracer
	logger  *zap.Logger
}

func NewExtractor(oracle ports.Oracle, deid *Deidentifier, timeout time.Duration, logger *zap.Logger) *Extractor {
	if timeout <= 0 {
		timeout = DefaultOracleTimeout
	}
	if deid == nil {
		deid = NewDeidentifier(nil)
	}
	return &Extractor{
		oracle:  oracle,
		deid:    deid,
		timeout: timeout,
		tracer:  telemetry.Tracer(),
		logger:  logger,
	}
}

// Extract renders the contract, calls the oracle once and checks the answer.
// Errors are *domain.OracleTransportError or *domain.MalformedOracleOutputError.
// Fields that break the contract are removed from the result and reported in
// Violations; the remaining fields are still usable.
func (e *Extractor) Extract(ctx context.Context, c Contract, state domain.PartialOrderState, turn string) (*Extraction, error) {
	ctx, span := e.tracer.Start(ctx, "slotfill.Extract")
	defer span.End()
	span.SetAttributes(
		attribute.String("contract", c.Name),
		attribute.Int("turn_length", utf8.RuneCountInString(turn)),
	)

	prompt, err := c.Render(state, turn)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "render failed")
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	raw, err := e.oracle.Extract(callCtx, prompt, c.Temperature)
	telemetry.OracleLatency.WithLabelValues(c.Name).Observe(time.Since(start).Seconds())
	if err != nil {
		status := "error"
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			status = "timeout"
		}
		telemetry.OracleCallsTotal.WithLabelValues(c.Name, status).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, status)
		e.logger.Warn("oracle call failed",
			zap.String("contract", c.Name),
			zap.String("status", status),
			zap.Error(err),
		)
		var transportErr *domain.OracleTransportError
		if errors.As(err, &transportErr) {
			return nil, transportErr
		}
		return nil, &domain.OracleTransportError{Provider: "oracle", Err: err}
	}

	payload, err := DecodeObject(raw, c.Keys())
	if err != nil {
		telemetry.OracleCallsTotal.WithLabelValues(c.Name, "parse_error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")
		e.logger.Warn("oracle returned malformed payload",
			zap.String("contract", c.Name),
			zap.Error(err),
		)
		return nil, err
	}
	telemetry.OracleCallsTotal.WithLabelValues(c.Name, "success").Inc()

	out := e.check(c, state, payload)
	span.SetAttributes(
		attribute.Int("slots_returned", len(out.Result.Values)),
		attribute.Int("violations", len(out.Violations)),
	)
	return out, nil
}

// check normalizes slot values and applies the contract's post-conditions.
func (e *Extractor) check(c Contract, state domain.PartialOrderState, p *Payload) *Extraction {
	out := &Extraction{
		Result: &domain.ExtractionResult{
			Values:   make(map[domain.SlotName]*string, len(c.Slots)),
			Response: p.Response,
		},
		Extra: make(map[string]*string, len(c.Extra)),
	}
	for _, k := range c.Extra {
		if v, ok := p.Fields[k]; ok {
			out.Extra[k] = v
		}
	}

	for _, slot := range c.Slots {
		v, ok := p.Fields[string(slot)]
		if !ok {
			continue
		}
		if v == nil || (*v == "" && slot != domain.SlotNotes) {
			out.Result.Values[slot] = nil
			continue
		}
		value := *v
		if vocab := domain.ClosedVocabulary(slot); vocab != nil {
			canonical, ok := canonicalize(slot, value, vocab)
			if !ok {
				out.reject(c, slot, "value "+value+" is outside the allowed list")
				continue
			}
			value = canonical
		}
		if slot == domain.SlotArtistStyle {
			if err := e.deid.Check(c.Name, value, state); err != nil {
				var violation *domain.ContractViolationError
				if errors.As(err, &violation) {
					out.Violations = append(out.Violations, violation)
					telemetry.ContractViolationsTotal.WithLabelValues(c.Name, string(slot)).Inc()
					continue
				}
			}
		}
		out.Result.Values[slot] = &value
	}

	for _, v := range out.Violations {
		e.logger.Info("dropped oracle value",
			zap.String("contract", v.Contract),
			zap.String("slot", string(v.Slot)),
			zap.String("reason", v.Reason),
		)
	}
	return out
}

func (x *Extraction) reject(c Contract, slot domain.SlotName, reason string) {
	x.Violations = append(x.Violations, &domain.ContractViolationError{
		Contract: c.Name,
		Slot:     slot,
		Reason:   reason,
	})
	telemetry.ContractViolationsTotal.WithLabelValues(c.Name, string(slot)).Inc()
}

func canonicalize(slot domain.SlotName, value string, vocab []string) (string, bool) {
	if slot == domain.SlotVocal {
		v, ok := domain.ParseVocal(value)
		return string(v), ok
	}
	return domain.Canonical(vocab, value)
}
