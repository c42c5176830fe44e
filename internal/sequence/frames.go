package sequence

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// MaxDepth bounds how deeply sequence commands may nest.
const MaxDepth = 8

// ErrCycle is returned when a sequence would run itself again, directly or
// through other sequences, or when nesting exceeds MaxDepth.
var ErrCycle = errors.New("sequence cycle")

type framesKey struct{}

// Enter pushes the sequence command id onto the stack carried by ctx.
func Enter(ctx context.Context, id string) (context.Context, error) {
	stack := Stack(ctx)
	if slices.Contains(stack, id) {
		path := strings.Join(append(slices.Clone(stack), id), " -> ")
		return ctx, fmt.Errorf("sequence: %s is already running (%s): %w", id, path, ErrCycle)
	}
	if len(stack) >= MaxDepth {
		return ctx, fmt.Errorf("sequence: nesting deeper than %d: %w", MaxDepth, ErrCycle)
	}
	next := append(slices.Clone(stack), id)
	return context.WithValue(ctx, framesKey{}, next), nil
}

// Stack returns the ids of the sequence commands running in ctx, outermost first.
func Stack(ctx context.Context) []string {
	s, _ := ctx.Value(framesKey{}).([]string)
	return s
}
