// Package premium prices insurance cover.
//
// An Engine dispatches on a product's calculation Method to one Formula and
// returns an unsaved Calculation. It has no side effects; callers stamp and
// persist the result.
package premium

// Engine selects a Formula by method. Methods without a registered formula use
// the internal formula.
type Engine struct {
	formulas map[Method]Formula
	fallback Formula
}

type Option func(*Engine)

// WithFormula registers or replaces the formula for f.Method().
func WithFormula(f Formula) Option {
	return func(e *Engine) {
		e.formulas[f.Method()] = f
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		formulas: map[Method]Formula{
			MethodHollard:  hollardFormula{},
			MethodTuraco:   turacoFormula{},
			MethodInternal: internalFormula{},
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.fallback = e.formulas[MethodInternal]
	return e
}

// Calculate prices in with the formula for in.Method.
func (e *Engine) Calculate(in Input) (*Calculation, error) {
	f, ok := e.formulas[in.Method]
	if !ok {
		f = e.fallback
	}
	return f.Calculate(in)
}
