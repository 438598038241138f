// Package tom holds temporal occurrence models.
package tom

import (
	"fmt"
	"math"
)

// OccurrenceModel turns an annual occurrence rate into probabilities over
// the model's time span.
type OccurrenceModel interface {
	TimeSpan() float64
	// ProbabilityOneOrMore is P(n >= 1) within the time span.
	ProbabilityOneOrMore(rate float64) float64
	// ProbabilityOneOccurrence is P(n == 1) within the time span.
	ProbabilityOneOccurrence(rate float64) float64
}

// Poisson is the memoryless occurrence model.
type Poisson struct {
	span float64
}

// NewPoisson returns a Poisson model over span years.
func NewPoisson(span float64) (*Poisson, error) {
	if span <= 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		return nil, fmt.Errorf("tom: time span must be a positive finite number, got %v", span)
	}
	return &Poisson{span: span}, nil
}

func (p *Poisson) TimeSpan() float64 { return p.span }

func (p *Poisson) ProbabilityOneOrMore(rate float64) float64 {
	return -math.Expm1(-rate * p.span)
}

func (p *Poisson) ProbabilityOneOccurrence(rate float64) float64 {
	rt := rate * p.span
	return rt * math.Exp(-rt)
}
