package stackalloc

import "context"

type stackCtxKey string

const ctxKey stackCtxKey = "_stCtxK"

// WithStack allows you to bind ctx with the target stack
// and then receive it from ctx using FromContext and FromContextOrDefault methods.
func WithStack(ctx context.Context, stack *Stack) context.Context {
	return context.WithValue(ctx, ctxKey, stack)
}

// FromContext allows you to receive the stack associated with this ctx.
// Returns the stack and true if there was some association.
func FromContext(ctx context.Context) (*Stack, bool) {
	value := ctx.Value(ctxKey)
	if value == nil {
		return nil, false
	}
	stack, ok := value.(*Stack)
	if !ok {
		return nil, false
	}
	return stack, true
}

// FromContextOrDefault allows you to receive the stack associated with this ctx.
// Returns the associated stack or defaultStack if there was no association.
func FromContextOrDefault(ctx context.Context, defaultStack *Stack) *Stack {
	ctxStack, ok := FromContext(ctx)
	if !ok {
		return defaultStack
	}
	return ctxStack
}
