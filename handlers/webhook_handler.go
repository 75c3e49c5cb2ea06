package handlers

import (
	"slices"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/a2n2k3p4/omise-payments/gateway"
	"github.com/a2n2k3p4/omise-payments/models"
)

// chargeEvents are the event keys that change a charge's outcome.
var chargeEvents = []string{
	"charge.complete",
	"charge.capture",
	"charge.failed",
	"charge.expired",
	"charge.reversed",
}

type WebhookHandler struct {
	events  gateway.Events
	charges gateway.Gateway
	logger  *zap.Logger
}

func NewWebhookHandler(events gateway.Events, charges gateway.Gateway, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{events: events, charges: charges, logger: logger}
}

// HandleWebhook accepts either an event payload (object "event") or a charge
// payload (object "charge"). Nothing in the payload is trusted: the event is
// retrieved from the gateway, then the charge it names. Unrelated payloads
// are acknowledged with 200 so the sender stops retrying them.
func (h *WebhookHandler) HandleWebhook(c *fiber.Ctx) error {
	var env models.WebhookEnvelope
	if err := c.BodyParser(&env); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	if err := models.Validate(&env); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload: "+err.Error())
	}

	ctx := c.UserContext()
	var (
		ev       *gateway.Event
		chargeID string
	)

	switch env.Object {
	case "event":
		var err error
		ev, err = h.events.RetrieveEvent(ctx, env.ID)
		if err != nil {
			h.logger.Warn("webhook event verification failed", zap.String("event_id", env.ID), zap.Error(err))
			return verificationError(err)
		}
		if !ev.IsCharge() || !slices.Contains(chargeEvents, ev.Key) {
			h.logger.Debug("webhook event ignored", zap.String("event_id", ev.ID), zap.String("key", ev.Key))
			return c.JSON(fiber.Map{"status": "ignored"})
		}
		chargeID = ev.DataID
	case "charge":
		chargeID = env.ID
	default:
		return c.JSON(fiber.Map{"status": "ignored"})
	}

	ch, err := h.charges.RetrieveCharge(ctx, chargeID)
	if err != nil {
		h.logger.Warn("webhook charge lookup failed", zap.String("charge_id", chargeID), zap.Error(err))
		return verificationError(err)
	}

	tx := models.TransactionFromCharge(ch, ev)
	h.logger.Info("webhook processed",
		zap.String("charge_id", tx.ChargeID),
		zap.String("event_key", tx.EventKey),
		zap.String("channel", tx.Channel),
		zap.String("status", tx.Status),
	)
	return c.JSON(tx)
}

// verificationError rejects payloads the gateway does not recognise and asks
// for a retry on any other failure.
func verificationError(err error) error {
	if gerr, ok := gateway.AsError(err); ok && (gerr.Code == gateway.CodeNotFound || gateway.IsClientError(err)) {
		return fiber.NewError(fiber.StatusBadRequest, "verification failed")
	}
	return fiber.NewError(fiber.StatusServiceUnavailable, "verification unavailable")
}
