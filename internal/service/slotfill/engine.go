package slotfill

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/songorder/internal/domain"
	"github.com/seu-repo/songorder/internal/observability/telemetry"
	"github.com/seu-repo/songorder/internal/ports"
)

type Outcome int

const (
	OutcomeMerged Outcome = iota
	OutcomeClassified
	OutcomeRejected
	OutcomeFallback
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMerged:
		return "merged"
	case OutcomeClassified:
		return "classified"
	case OutcomeRejected:
		return "rejected"
	default:
		return "fallback"
	}
}

// Turn is one user message at a given step.
type Turn struct {
	Step  domain.Step
	Text  string
	State domain.PartialOrderState
}

// TurnOutcome is the result of HandleTurn. Err is informational: the engine
// always produces a usable State and Reply.
type TurnOutcome struct {
	State          domain.PartialOrderState
	Reply          string
	Outcome        Outcome
	Report         MergeReport
	Classification domain.Classification
	Review         *ReviewDecision
	Violations     []*domain.ContractViolationError
	Err            error
}

type Options struct {
	OracleTimeout     time.Duration
	KnownArtists      []string
	StoryQualityCheck bool
}

// Engine runs one dialog turn: gate, extract, sanitize, merge, with a
// deterministic fallback on any failure.
type Engine struct {
	extractor    *Extractor
	classifier   *Classifier
	gate         *Gate
	merger       *Merger
	fallback     *Fallback
	qualityCheck bool
	logger       *zap.Logger
}

func NewEngine(oracle ports.Oracle, opts Options, logger *zap.Logger) *Engine {
	return &Engine{
		extractor:    NewExtractor(oracle, NewDeidentifier(opts.KnownArtists), opts.OracleTimeout, logger),
		classifier:   NewClassifier(),
		gate:         NewGate(),
		merger:       NewMerger(),
		fallback:     NewFallback(logger),
		qualityCheck: opts.StoryQualityCheck,
		logger:       logger,
	}
}

var stepContracts = map[domain.Step]Contract{
	domain.StepIntake:    ContractIntake,
	domain.StepGenre:     ContractGenre,
	domain.StepMood:      ContractMood,
	domain.StepVocal:     ContractVocal,
	domain.StepRecipient: ContractRecipient,
}

// HandleTurn never fails; errors end up in TurnOutcome.Err with a fallback
// reply and the input state.
func (e *Engine) HandleTurn(ctx context.Context, turn Turn) TurnOutcome {
	out := e.handle(ctx, turn)
	telemetry.TurnsTotal.WithLabelValues(string(turn.Step), out.Outcome.String()).Inc()
	for _, s := range out.Report.Filled {
		telemetry.SlotUpdatesTotal.WithLabelValues(string(s), domain.UpdateValue.String()).Inc()
	}
	for _, s := range out.Report.Corrected {
		telemetry.SlotUpdatesTotal.WithLabelValues(string(s), domain.UpdateCorrection.String()).Inc()
	}
	return out
}

func (e *Engine) handle(ctx context.Context, turn Turn) TurnOutcome {
	switch turn.Step {
	case domain.StepIncludeName:
		return e.classify(turn, QuestionIncludeName, domain.SlotIncludeName)
	case domain.StepConfirmation:
		return e.classify(turn, QuestionConfirmation, domain.SlotConfirmation)
	case domain.StepLyricsReview:
		return e.review(turn)
	case domain.StepStory:
		return e.story(ctx, turn)
	case domain.StepNotes:
		return e.notes(turn)
	}

	contract, ok := stepContracts[turn.Step]
	if !ok {
		return e.fallback.Respond(turn.State, turn.Step, domain.ErrConversationClosed)
	}
	return e.extract(ctx, turn, contract.WithFilled(turn.State))
}

func (e *Engine) extract(ctx context.Context, turn Turn, contract Contract) TurnOutcome {
	ext, err := e.extractor.Extract(ctx, contract, turn.State, turn.Text)
	if err != nil {
		return e.fallback.Respond(turn.State, turn.Step, err)
	}
	state, report := e.merger.Merge(turn.State, ext.Result, turn.Text)
	e.logger.Debug("merged extraction",
		zap.String("contract", contract.Name),
		zap.Any("filled", report.Filled),
		zap.Any("corrected", report.Corrected),
		zap.Any("kept", report.Kept),
	)
	return TurnOutcome{
		State:      state,
		Reply:      ext.Result.Response,
		Outcome:    OutcomeMerged,
		Report:     report,
		Violations: ext.Violations,
	}
}

func (e *Engine) classify(turn Turn, q Question, slot domain.SlotName) TurnOutcome {
	cls, err := e.classifier.Classify(q, turn.Text)
	if err != nil {
		out := e.fallback.Respond(turn.State, turn.Step, err)
		out.Classification = domain.Undetermined
		return out
	}
	state, report := answer(turn.State, slot, boolString(cls == domain.Affirmative))
	return TurnOutcome{
		State:          state,
		Outcome:        OutcomeClassified,
		Report:         report,
		Classification: cls,
	}
}

func (e *Engine) review(turn Turn) TurnOutcome {
	decision, err := e.classifier.ClassifyReview(turn.Text)
	if err != nil {
		return e.fallback.Respond(turn.State, turn.Step, err)
	}
	state, report := answer(turn.State, domain.SlotLyricsReview, string(decision.Action))
	if decision.Action == domain.ReviewRevise {
		state = state.With(domain.SlotRevisionRequest, decision.Request)
	}
	return TurnOutcome{
		State:          state,
		Outcome:        OutcomeClassified,
		Report:         report,
		Classification: reviewClassification(decision.Action),
		Review:         &decision,
	}
}

func (e *Engine) story(ctx context.Context, turn Turn) TurnOutcome {
	story := strings.TrimSpace(turn.Text)
	in := GateInput{Story: &story}
	if notes, ok := turn.State.Get(domain.SlotNotes); ok {
		in.Notes = &notes
	}
	if err := e.gate.Check(in); err != nil {
		return e.reject(turn, err)
	}

	reply := ""
	if e.qualityCheck {
		ok, response := e.storyQuality(ctx, turn)
		if !ok {
			out := e.fallback.Respond(turn.State, turn.Step, nil)
			out.Outcome = OutcomeRejected
			if response != "" {
				out.Reply = response
			}
			return out
		}
		reply = response
	}

	state, report := e.merger.Merge(turn.State, resultOf(domain.SlotStory, story), turn.Text)
	return TurnOutcome{State: state, Reply: reply, Outcome: OutcomeMerged, Report: report}
}

// storyQuality fails open: any oracle or decoding problem counts as "ok".
func (e *Engine) storyQuality(ctx context.Context, turn Turn) (bool, string) {
	ext, err := e.extractor.Extract(ctx, ContractStoryQuality, turn.State, turn.Text)
	if err != nil {
		e.logger.Info("story quality check skipped", zap.Error(err))
		return true, ""
	}
	verdict := ext.Extra[VerdictKey]
	if verdict != nil && domain.Fold(*verdict) == "weak" {
		return false, ext.Result.Response
	}
	return true, ext.Result.Response
}

func (e *Engine) notes(turn Turn) TurnOutcome {
	notes := strings.TrimSpace(turn.Text)
	if e.classifier.NoNotes(notes) {
		notes = ""
	}
	in := GateInput{Notes: &notes}
	if story, ok := turn.State.Get(domain.SlotStory); ok {
		in.Story = &story
	}
	if err := e.gate.Check(in); err != nil {
		return e.reject(turn, err)
	}
	state, report := e.merger.Merge(turn.State, resultOf(domain.SlotNotes, notes), turn.Text)
	return TurnOutcome{State: state, Outcome: OutcomeMerged, Report: report}
}

func (e *Engine) reject(turn Turn, err error) TurnOutcome {
	if v, ok := err.(*domain.ValidationError); ok {
		telemetry.ValidationRejectionsTotal.WithLabelValues(string(v.Rule)).Inc()
	}
	return e.fallback.Respond(turn.State, turn.Step, err)
}

// answer stores a direct reply to a closed question. Each time the question
// is asked the new answer replaces the previous one.
func answer(state domain.PartialOrderState, slot domain.SlotName, value string) (domain.PartialOrderState, MergeReport) {
	var report MergeReport
	current, set := state.Get(slot)
	switch {
	case !set:
		report.Filled = append(report.Filled, slot)
	case current != value:
		report.Corrected = append(report.Corrected, slot)
	}
	return state.With(slot, value), report
}

func resultOf(slot domain.SlotName, value string) *domain.ExtractionResult {
	return &domain.ExtractionResult{Values: map[domain.SlotName]*string{slot: &value}}
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func reviewClassification(a domain.ReviewAction) domain.Classification {
	if a == domain.ReviewApprove {
		return domain.Affirmative
	}
	return domain.Negative
}
