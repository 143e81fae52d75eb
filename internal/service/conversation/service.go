package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seu-repo/songorder/internal/domain"
	"github.com/seu-repo/songorder/internal/observability/telemetry"
	"github.com/seu-repo/songorder/internal/ports"
	"github.com/seu-repo/songorder/internal/service/slotfill"
)

const (
	orderConfirmedReply = "Siparişiniz alındı, sipariş numaranız: %s. Şarkı sözleriniz hazır olduğunda onayınıza sunacağız. Sözleri beğenirseniz \"Onaylıyorum\" yazmanız yeterli, değişiklik isterseniz isteğinizi yazın."
	orderCancelledReply = "Siparişinizi iptal ettim. İsterseniz baştan başlayalım."
	orderFailedReply    = "Siparişinizi kaydederken bir sorun oluştu. Lütfen birkaç dakika sonra tekrar \"Evet\" yazın."
	revisionReply       = "İsteğinizi not aldık, sözleri güncelleyip tekrar onayınıza sunacağız."
	approvedReply       = "Teşekkürler! Sözleri onayladınız, şarkınızın hazırlanmasına başlıyoruz."
	closedReply         = "Bu sipariş tamamlandı. Yeni bir şarkı için bize tekrar yazabilirsiniz."
)

type Service struct {
	engine *slotfill.Engine
	store  ports.ConversationStore
	orders ports.OrderRepository
	events ports.EventPublisher
	logger *zap.Logger
	locks  *keyedMutex
	now    func() time.Time
}

func NewService(
	engine *slotfill.Engine,
	store ports.ConversationStore,
	orders ports.OrderRepository,
	events ports.EventPublisher,
	logger *zap.Logger,
) *Service {
	return &Service{
		engine: engine,
		store:  store,
		orders: orders,
		events: events,
		logger: logger,
		locks:  newKeyedMutex(),
		now:    time.Now,
	}
}

func (s *Service) Start(ctx context.Context, channel domain.Channel, userRef string) (*ports.Reply, error) {
	conv, err := s.start(ctx, uuid.NewString(), channel, userRef)
	if err != nil {
		return nil, err
	}
	return s.reply(conv, greeting), nil
}

func (s *Service) start(ctx context.Context, id string, channel domain.Channel, userRef string) (*domain.Conversation, error) {
	now := s.now()
	conv := &domain.Conversation{
		ID:        id,
		Channel:   channel,
		UserRef:   userRef,
		Step:      domain.StepIntake,
		State:     domain.NewPartialOrderState(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Save(ctx, conv); err != nil {
		return nil, fmt.Errorf("failed to save conversation: %w", err)
	}
	telemetry.ActiveConversations.Inc()
	s.emit(ctx, conv, domain.EventConversationStarted, "", "")
	s.logger.Info("Conversation started",
		zap.String("conversation_id", conv.ID),
		zap.String("channel", string(channel)),
	)
	return conv, nil
}

func (s *Service) Get(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	return s.store.Load(ctx, conversationID)
}

func (s *Service) HandleMessage(ctx context.Context, conversationID, text string) (*ports.Reply, error) {
	unlock := s.locks.Lock(conversationID)
	defer unlock()

	conv, err := s.store.Load(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv.Done() {
		return s.reply(conv, closedReply), domain.ErrConversationClosed
	}
	return s.turn(ctx, conv, text)
}

// HandleChannelMessage serves channels that only know the sender, such as
// WhatsApp. The conversation id is derived from channel and sender; a
// finished conversation is replaced by a new one.
func (s *Service) HandleChannelMessage(ctx context.Context, channel domain.Channel, userRef, text string) (*ports.Reply, error) {
	id := string(channel) + ":" + userRef
	unlock := s.locks.Lock(id)
	defer unlock()

	conv, err := s.store.Load(ctx, id)
	switch {
	case errors.Is(err, domain.ErrConversationNotFound):
		conv = nil
	case err != nil:
		return nil, err
	case conv.Done():
		if err := s.store.Delete(ctx, id); err != nil {
			return nil, fmt.Errorf("failed to reset conversation: %w", err)
		}
		conv = nil
	}

	fresh := conv == nil
	if fresh {
		if conv, err = s.start(ctx, id, channel, userRef); err != nil {
			return nil, err
		}
	}
	reply, err := s.turn(ctx, conv, text)
	if err != nil {
		return nil, err
	}
	if fresh && conv.State.Len() == 0 {
		reply.Text = greeting + "\n\n" + reply.Text
	}
	return reply, nil
}

// turn runs one message through the engine and advances the conversation.
func (s *Service) turn(ctx context.Context, conv *domain.Conversation, text string) (*ports.Reply, error) {
	step := conv.Step
	out := s.engine.HandleTurn(ctx, slotfill.Turn{Step: step, Text: text, State: conv.State})

	conv.State = out.State
	conv.Turns++
	conv.UpdatedAt = s.now()
	s.record(ctx, conv, out)

	var reply string
	switch {
	case out.Outcome == slotfill.OutcomeFallback || out.Outcome == slotfill.OutcomeRejected:
		reply = out.Reply
	case step == domain.StepConfirmation:
		reply = s.confirm(ctx, conv, out.Classification)
	case step == domain.StepLyricsReview:
		reply = s.review(ctx, conv, out.Review)
	default:
		conv.Step = NextStep(conv.State)
		reply = joinReply(out.Reply, Prompt(conv.Step, conv.State))
	}

	if err := s.store.Save(ctx, conv); err != nil {
		return nil, fmt.Errorf("failed to save conversation: %w", err)
	}
	s.logger.Debug("Turn handled",
		zap.String("conversation_id", conv.ID),
		zap.String("step", string(step)),
		zap.String("next_step", string(conv.Step)),
		zap.String("outcome", out.Outcome.String()),
	)
	return s.reply(conv, reply), nil
}

func (s *Service) confirm(ctx context.Context, conv *domain.Conversation, cls domain.Classification) string {
	if cls == domain.Negative {
		telemetry.OrdersConfirmedTotal.WithLabelValues("cancelled").Inc()
		s.emit(ctx, conv, domain.EventOrderCancelled, "", "")
		conv.State = domain.NewPartialOrderState()
		conv.Step = NextStep(conv.State)
		return joinReply(orderCancelledReply, Prompt(conv.Step, conv.State))
	}

	order := domain.NewOrder(uuid.NewString(), conv, s.now())
	if err := s.orders.Save(ctx, order); err != nil {
		s.logger.Error("Failed to save order",
			zap.String("conversation_id", conv.ID),
			zap.Error(err),
		)
		telemetry.OrdersConfirmedTotal.WithLabelValues("failed").Inc()
		// ask again on the next turn
		conv.State = conv.State.Without(domain.SlotConfirmation)
		return orderFailedReply
	}

	telemetry.OrdersConfirmedTotal.WithLabelValues("confirmed").Inc()
	conv.OrderID = order.ID
	conv.Step = domain.StepLyricsReview
	s.emit(ctx, conv, domain.EventOrderConfirmed, "", order.ID)
	s.logger.Info("Order confirmed",
		zap.String("conversation_id", conv.ID),
		zap.String("order_id", order.ID),
	)
	return fmt.Sprintf(orderConfirmedReply, order.ID)
}

func (s *Service) review(ctx context.Context, conv *domain.Conversation, decision *slotfill.ReviewDecision) string {
	if decision == nil {
		return slotfill.StepQuestion(domain.StepLyricsReview)
	}

	order, err := s.orders.FindByID(ctx, conv.OrderID)
	if err != nil || order == nil {
		s.logger.Warn("Order for review not found",
			zap.String("conversation_id", conv.ID),
			zap.String("order_id", conv.OrderID),
			zap.Error(err),
		)
	}

	if decision.Action == domain.ReviewApprove {
		if order != nil {
			order.Status = domain.OrderStatusLyricsApproved
			order.UpdatedAt = s.now()
			s.updateOrder(ctx, order)
		}
		conv.Step = domain.StepDone
		telemetry.ActiveConversations.Dec()
		s.emit(ctx, conv, domain.EventLyricsApproved, domain.SlotLyricsReview, conv.OrderID)
		return approvedReply
	}

	if order != nil {
		order.Status = domain.OrderStatusRevisionRequested
		order.RevisionRequest = decision.Request
		order.UpdatedAt = s.now()
		s.updateOrder(ctx, order)
	}
	s.emit(ctx, conv, domain.EventRevisionRequested, domain.SlotRevisionRequest, decision.Request)
	return revisionReply
}

func (s *Service) updateOrder(ctx context.Context, order *domain.Order) {
	if err := s.orders.Update(ctx, order); err != nil {
		s.logger.Error("Failed to update order",
			zap.String("order_id", order.ID),
			zap.Error(err),
		)
	}
}

// record publishes funnel events for what the turn did.
func (s *Service) record(ctx context.Context, conv *domain.Conversation, out slotfill.TurnOutcome) {
	for _, slot := range out.Report.Filled {
		s.emit(ctx, conv, domain.EventSlotFilled, slot, "")
	}
	for _, slot := range out.Report.Corrected {
		s.emit(ctx, conv, domain.EventSlotCorrected, slot, "")
	}
	for _, v := range out.Violations {
		s.emit(ctx, conv, domain.EventContractViolation, v.Slot, v.Reason)
	}

	var verr *domain.ValidationError
	switch {
	case errors.As(out.Err, &verr):
		s.emit(ctx, conv, domain.EventValidationRejected, "", string(verr.Rule))
	case out.Outcome == slotfill.OutcomeFallback:
		detail := ""
		if out.Err != nil {
			detail = out.Err.Error()
		}
		s.emit(ctx, conv, domain.EventFallback, "", detail)
	}
}

// emit is best effort: analytics must never break a conversation.
func (s *Service) emit(ctx context.Context, conv *domain.Conversation, typ domain.FunnelEventType, slot domain.SlotName, detail string) {
	event := domain.FunnelEvent{
		Type:           typ,
		ConversationID: conv.ID,
		Channel:        conv.Channel,
		Step:           conv.Step,
		Slot:           slot,
		Detail:         detail,
		OccurredAt:     s.now(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish funnel event",
			zap.String("type", string(typ)),
			zap.String("conversation_id", conv.ID),
			zap.Error(err),
		)
	}
}

func (s *Service) reply(conv *domain.Conversation, text string) *ports.Reply {
	return &ports.Reply{
		ConversationID: conv.ID,
		Text:           text,
		Step:           conv.Step,
		State:          conv.State,
		Done:           conv.Done(),
	}
}

func joinReply(parts ...string) string {
	nonEmpty := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "\n\n")
}
