package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// simulated 不接真实网关，只生成流水号；stripe / paypal 共用
type simulated struct {
	name    string
	display string
	newID   func() string
}

func NewStripe() Provider { return &simulated{name: "stripe", display: "Stripe", newID: uuid.NewString} }
func NewPaypal() Provider { return &simulated{name: "paypal", display: "PayPal", newID: uuid.NewString} }

func (p *simulated) Name() string { return p.name }

func (p *simulated) ProcessPayment(ctx context.Context, amount float64) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if amount <= 0 {
		return Result{}, ErrInvalidAmount
	}
	return Result{
		Provider:      p.name,
		Amount:        amount,
		TransactionID: p.newID(),
		Message:       fmt.Sprintf("Processed payment of $%.2f with %s", amount, p.display),
	}, nil
}
