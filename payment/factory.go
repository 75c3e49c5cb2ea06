package payment

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"
)

var (
	ErrUnsupportedMethod = errors.New("payment method is not supported")
	ErrProcessorNotFound = errors.New("payment processor does not exist")
	ErrInvalidProcessor  = errors.New("payment processor is invalid")
)

// Constructor builds a processor from the shared dependencies.
type Constructor func(Deps) (Processor, error)

// Factory resolves payment method keys to processors. Keys are case-insensitive.
type Factory struct {
	mu           sync.RWMutex
	deps         Deps
	constructors map[string]Constructor
}

// NewFactory returns a factory with credit_card, its card alias and promptpay registered.
func NewFactory(deps Deps) *Factory {
	f := &Factory{
		deps:         deps.withDefaults(),
		constructors: make(map[string]Constructor),
	}
	f.Register(MethodCreditCard, func(d Deps) (Processor, error) { return NewCreditCard(d), nil })
	f.Register("card", func(d Deps) (Processor, error) { return NewCreditCard(d), nil })
	f.Register(MethodPromptPay, func(d Deps) (Processor, error) { return NewPromptPay(d), nil })
	return f
}

func normalizeMethod(method string) string {
	return strings.ToLower(strings.TrimSpace(method))
}

// Make builds the processor registered for method.
func (f *Factory) Make(method string) (Processor, error) {
	key := normalizeMethod(method)

	f.mu.RLock()
	ctor, ok := f.constructors[key]
	f.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("payment processor for '%s': %w", key, ErrUnsupportedMethod)
	}
	if ctor == nil {
		return nil, fmt.Errorf("payment processor for '%s': %w", key, ErrProcessorNotFound)
	}

	p, err := ctor(f.deps)
	if err != nil {
		return nil, fmt.Errorf("build payment processor for '%s': %w", key, err)
	}
	if isNil(p) {
		return nil, fmt.Errorf("payment processor for '%s': %w", key, ErrInvalidProcessor)
	}
	return p, nil
}

func isNil(p Processor) bool {
	if p == nil {
		return true
	}
	v := reflect.ValueOf(p)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// Register adds or replaces the constructor for method.
func (f *Factory) Register(method string, ctor Constructor) *Factory {
	f.mu.Lock()
	f.constructors[normalizeMethod(method)] = ctor
	f.mu.Unlock()
	return f
}

// Unregister removes method from the table.
func (f *Factory) Unregister(method string) *Factory {
	f.mu.Lock()
	delete(f.constructors, normalizeMethod(method))
	f.mu.Unlock()
	return f
}

// Supports reports whether method is registered.
func (f *Factory) Supports(method string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.constructors[normalizeMethod(method)]
	return ok
}

// SupportedMethods returns the registered method keys in sorted order.
func (f *Factory) SupportedMethods() []string {
	f.mu.RLock()
	methods := make([]string, 0, len(f.constructors))
	for m := range f.constructors {
		methods = append(methods, m)
	}
	f.mu.RUnlock()
	slices.Sort(methods)
	return methods
}
