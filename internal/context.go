package internal

import "context"

type ctxKey struct{}

// Operator is the console administrator behind an authenticated request.
type Operator struct {
	UserID   string
	Username string
}

func ContextWithOperator(ctx context.Context, op Operator) context.Context {
	return context.WithValue(ctx, ctxKey{}, op)
}

// OperatorFromContext returns the zero Operator for unauthenticated contexts.
func OperatorFromContext(ctx context.Context) Operator {
	if ctx == nil {
		return Operator{}
	}
	op, _ := ctx.Value(ctxKey{}).(Operator)
	return op
}
