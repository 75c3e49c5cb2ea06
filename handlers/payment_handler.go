// Package handlers exposes the payment manager over HTTP.
package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/a2n2k3p4/omise-payments/gateway"
	"github.com/a2n2k3p4/omise-payments/models"
	"github.com/a2n2k3p4/omise-payments/payment"
)

type PaymentHandler struct {
	manager *payment.Manager
	logger  *zap.Logger
}

func NewPaymentHandler(manager *payment.Manager, logger *zap.Logger) *PaymentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentHandler{manager: manager, logger: logger}
}

func (h *PaymentHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "payment_methods": len(h.manager.SupportedMethods())})
}

// ListMethods describes every registered payment method.
func (h *PaymentHandler) ListMethods(c *fiber.Ctx) error {
	methods := h.manager.SupportedMethods()
	infos := make([]payment.MethodInfo, 0, len(methods))
	for _, m := range methods {
		infos = append(infos, h.manager.MethodInfo(m))
	}
	return c.JSON(fiber.Map{"methods": infos})
}

func (h *PaymentHandler) GetMethod(c *fiber.Ctx) error {
	method, ok := h.method(c)
	if !ok {
		return unknownMethod(c, method)
	}
	return c.JSON(h.manager.MethodInfo(method))
}

// CreatePayment charges with the method named in the route.
func (h *PaymentHandler) CreatePayment(c *fiber.Ctx) error {
	method, ok := h.method(c)
	if !ok {
		return unknownMethod(c, method)
	}

	var req models.PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request: "+err.Error())
	}
	if err := models.Validate(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	res := h.manager.ProcessPayment(c.UserContext(), method, req.PaymentData())
	if !res.OK() {
		f := res.Failure()
		h.logger.Warn("payment failed",
			zap.String("payment_method", method),
			zap.String("error_code", f.Code),
			zap.String("error_message", f.Message),
		)
		return c.Status(statusFor(f.Code)).JSON(res)
	}

	p := res.Payment()
	h.logger.Info("payment created",
		zap.String("payment_method", p.PaymentMethod),
		zap.String("charge_id", p.ChargeID),
		zap.String("status", p.Status),
		zap.Bool("offline", p.IsOffline),
	)
	return c.Status(fiber.StatusCreated).JSON(res)
}

func (h *PaymentHandler) RefundPayment(c *fiber.Ctx) error {
	method, ok := h.method(c)
	if !ok {
		return unknownMethod(c, method)
	}

	var req models.RefundRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request: "+err.Error())
	}
	if err := models.Validate(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if !req.Amount.IsPositive() {
		return fiber.NewError(fiber.StatusBadRequest, "amount must be positive")
	}
	if !h.manager.HasRefundSupport(method) {
		return fail(c, &payment.Failure{
			Code:          payment.CodeUnsupportedOperation,
			Message:       "Refunds are not supported",
			PaymentMethod: method,
		})
	}

	refunded := h.manager.RefundPayment(c.UserContext(), method, req.ChargeID, req.Amount)
	h.logger.Info("refund requested",
		zap.String("payment_method", method),
		zap.String("charge_id", req.ChargeID),
		zap.String("amount", req.Amount.String()),
		zap.Bool("refunded", refunded),
	)

	status := fiber.StatusOK
	if !refunded {
		status = fiber.StatusBadGateway
	}
	return c.Status(status).JSON(fiber.Map{
		"success":        refunded,
		"charge_id":      req.ChargeID,
		"amount":         req.Amount,
		"payment_method": method,
	})
}

func (h *PaymentHandler) CapturePayment(c *fiber.Ctx) error {
	method, ok := h.method(c)
	if !ok {
		return unknownMethod(c, method)
	}

	var req models.CaptureRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request: "+err.Error())
		}
	}
	if req.Amount != nil && !req.Amount.IsPositive() {
		return fiber.NewError(fiber.StatusBadRequest, "amount must be positive")
	}

	capture, err := h.manager.CapturePayment(c.UserContext(), method, c.Params("id"), req.Amount)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(capture)
}

func (h *PaymentHandler) VoidPayment(c *fiber.Ctx) error {
	method, ok := h.method(c)
	if !ok {
		return unknownMethod(c, method)
	}

	v, err := h.manager.VoidPayment(c.UserContext(), method, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(v)
}

// GetChargeStatus polls the gateway for an offline charge.
func (h *PaymentHandler) GetChargeStatus(c *fiber.Ctx) error {
	method, ok := h.method(c)
	if !ok {
		return unknownMethod(c, method)
	}

	s, err := h.manager.CheckPaymentStatus(c.UserContext(), method, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(s)
}

func (h *PaymentHandler) ExpirePayment(c *fiber.Ctx) error {
	method, ok := h.method(c)
	if !ok {
		return unknownMethod(c, method)
	}

	e, err := h.manager.HandlePaymentExpiration(c.UserContext(), method, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(e)
}

func (h *PaymentHandler) GetPollingConfig(c *fiber.Ctx) error {
	method, ok := h.method(c)
	if !ok {
		return unknownMethod(c, method)
	}

	pc, err := h.manager.PollingConfig(method)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(pc)
}

// GetSchedule previews an installment plan for ?amount= over ?terms= months.
func (h *PaymentHandler) GetSchedule(c *fiber.Ctx) error {
	method, ok := h.method(c)
	if !ok {
		return unknownMethod(c, method)
	}

	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "amount must be a number")
	}

	s, err := h.manager.PaymentSchedule(method, amount, c.QueryInt("terms", 0))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(s)
}

func (h *PaymentHandler) method(c *fiber.Ctx) (string, bool) {
	method := strings.ToLower(strings.TrimSpace(c.Params("method")))
	return method, h.manager.Supports(method)
}

func unknownMethod(c *fiber.Ctx, method string) error {
	return c.Status(fiber.StatusNotFound).JSON(&payment.Failure{
		Code:          payment.CodeProcessorError,
		Message:       "Payment method '" + method + "' is not supported",
		PaymentMethod: method,
	})
}

func fail(c *fiber.Ctx, err error) error {
	f, ok := payment.AsFailure(err)
	if !ok {
		return err
	}
	return c.Status(statusFor(f.Code)).JSON(f)
}

// statusFor maps a failure code to an HTTP status. Codes not produced
// locally come from the gateway.
func statusFor(code string) int {
	switch code {
	case payment.CodeInvalidAmount, payment.CodeInvalidCurrency, payment.CodeInvalidDetails,
		payment.CodeUnsupportedOperation:
		return fiber.StatusUnprocessableEntity
	case payment.CodeNotAuthorized, payment.CodeAlreadyCaptured:
		return fiber.StatusConflict
	case payment.CodeProcessorError, payment.CodeProcessingError, payment.CodeSourceNotNeeded,
		payment.CodeCaptureError, payment.CodeVoidError, payment.CodeStatusCheckError:
		return fiber.StatusInternalServerError
	case gateway.CodeNotFound:
		return fiber.StatusNotFound
	case gateway.CodeServiceUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusBadGateway
	}
}
