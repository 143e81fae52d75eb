package handlers

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/songorder/internal/adapter/messaging/whatsapp"
	"github.com/seu-repo/songorder/internal/domain"
	"github.com/seu-repo/songorder/internal/ports"
)

const (
	emptyTwiML  = `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`
	turnTimeout = 30 * time.Second
)

// WhatsAppHandler receives Twilio webhooks. The webhook is acknowledged at
// once; the turn runs in the background and the reply goes out through the
// messenger.
type WhatsAppHandler struct {
	service    ports.ConversationService
	messenger  ports.Messenger
	authToken  string
	webhookURL string
	log        *zap.Logger
	wg         sync.WaitGroup
}

// NewWhatsAppHandler skips signature checks when authToken is empty.
// webhookURL is the public URL configured in Twilio, which is what Twilio
// signs; when empty it is rebuilt from the request.
func NewWhatsAppHandler(service ports.ConversationService, messenger ports.Messenger, authToken, webhookURL string, log *zap.Logger) *WhatsAppHandler {
	return &WhatsAppHandler{
		service:    service,
		messenger:  messenger,
		authToken:  authToken,
		webhookURL: webhookURL,
		log:        log,
	}
}

func (h *WhatsAppHandler) RegisterRoutes(app fiber.Router) {
	app.Post("/webhooks/whatsapp", h.Webhook)
}

func (h *WhatsAppHandler) Webhook(c *fiber.Ctx) error {
	form := url.Values{}
	c.Request().PostArgs().VisitAll(func(k, v []byte) {
		form.Add(string(k), string(v))
	})

	if h.authToken != "" {
		fullURL := h.signedURL(c)
		if !whatsapp.ValidSignature(h.authToken, fullURL, form, c.Get("X-Twilio-Signature")) {
			h.log.Warn("Rejected WhatsApp webhook with bad signature", zap.String("url", fullURL))
			return fiber.NewError(fiber.StatusForbidden, "invalid signature")
		}
	}

	from := whatsapp.Sender(form.Get("From"))
	body := form.Get("Body")
	if from == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing From")
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.process(from, body)
	}()

	c.Set(fiber.HeaderContentType, "text/xml")
	return c.SendString(emptyTwiML)
}

// signedURL is the URL Twilio computed the signature over.
func (h *WhatsAppHandler) signedURL(c *fiber.Ctx) string {
	if h.webhookURL != "" {
		return h.webhookURL
	}
	u := c.Protocol() + "://" + c.Hostname() + c.Path()
	if q := c.Request().URI().QueryString(); len(q) > 0 {
		u += "?" + string(q)
	}
	return u
}

func (h *WhatsAppHandler) process(from, body string) {
	ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
	defer cancel()

	reply, err := h.service.HandleChannelMessage(ctx, domain.ChannelWhatsApp, from, body)
	if err != nil {
		h.log.Error("WhatsApp turn failed", zap.String("from", from), zap.Error(err))
		return
	}
	if err := h.messenger.SendMessage(ctx, from, reply.Text); err != nil {
		h.log.Error("Failed to deliver WhatsApp reply",
			zap.String("conversation_id", reply.ConversationID),
			zap.Error(err),
		)
	}
}

// Wait blocks until in-flight turns finish; call it on shutdown.
func (h *WhatsAppHandler) Wait() {
	h.wg.Wait()
}
