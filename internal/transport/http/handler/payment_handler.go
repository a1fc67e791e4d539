package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"nextgen-training/internal/payment"
	httpez "nextgen-training/internal/transport/http/ez"
	resp "nextgen-training/internal/transport/http/response"
)

type PaymentHandler struct {
	reg *payment.Registry
	log *zap.Logger
}

func NewPaymentHandler(reg *payment.Registry, l *zap.Logger) *PaymentHandler {
	return &PaymentHandler{reg: reg, log: l}
}

type paymentIn struct {
	Amount   float64 `json:"amount"`
	Provider string  `json:"provider"` // 为空走默认
}

func (h *PaymentHandler) MountAPI(api *gin.RouterGroup) {
	httpez.POST(httpez.New(api), "/payments", h.Process)
}

func (h *PaymentHandler) Process(c *gin.Context, in paymentIn) resp.Envelope {
	res, err := h.reg.Process(c.Request.Context(), in.Provider, in.Amount)
	switch {
	case errors.Is(err, payment.ErrInvalidAmount), errors.Is(err, payment.ErrUnknownProvider):
		return resp.Failure(resp.CodeBadRequest, err.Error())
	case err != nil:
		h.log.Error("payment failed", zap.String("provider", in.Provider), zap.Error(err))
		return resp.Failure(resp.CodeServerError, "Payment failed")
	}
	return resp.Success(resp.CodeCreated, "Payment processed", res)
}
