// Package payment 支付渠道：统一接口 + 按名字注册
package payment

import (
	"context"
	"errors"
)

var (
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
	ErrUnknownProvider = errors.New("unknown payment provider")
)

type Result struct {
	Provider      string  `json:"provider"`
	Amount        float64 `json:"amount"`
	TransactionID string  `json:"transactionId"`
	Message       string  `json:"message"`
}

type Provider interface {
	Name() string
	ProcessPayment(ctx context.Context, amount float64) (Result, error)
}
