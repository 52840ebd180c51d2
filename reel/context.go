package reel

import "context"

// Operator is the person or system that triggered a reel operation.
// It is optional; spins started without one carry a nil operator.
type Operator struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// NewOperator creates a new Operator instance
func NewOperator(id, name string) *Operator {
	return &Operator{ID: id, Name: name}
}

type contextKey string

const contextKeyOperator contextKey = "reel_operator"

// WithOperator attaches op to ctx.
func WithOperator(ctx context.Context, op *Operator) context.Context {
	return context.WithValue(ctx, contextKeyOperator, op)
}

// OperatorFromContext returns nil if no operator was attached.
func OperatorFromContext(ctx context.Context) *Operator {
	if op, ok := ctx.Value(contextKeyOperator).(*Operator); ok {
		return op
	}
	return nil
}
