package inference

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"bankpredict/ml"
)

const (
	OutcomeSubscribes    = "subscribes"
	OutcomeNotSubscribes = "does_not_subscribe"
)

type Result struct {
	Label              int                    `json:"label"`
	Subscribes         bool                   `json:"subscribes"`
	Outcome            string                 `json:"outcome"`
	Probability        *float64               `json:"probability,omitempty"`
	ProbabilityDisplay string                 `json:"probability_display,omitempty"`
	Input              ml.RawRecord           `json:"input"`
	Features           map[string]interface{} `json:"features"`
	Cached             bool                   `json:"cached"`
}

func (r *Result) clone() *Result {
	out := *r
	if r.Probability != nil {
		p := *r.Probability
		out.Probability = &p
	}
	out.Features = make(map[string]interface{}, len(r.Features))
	for k, v := range r.Features {
		out.Features[k] = v
	}
	return &out
}

// PercentFormatter renders probabilities as percentages with two decimals.
type PercentFormatter struct {
	printer *message.Printer
}

func NewPercentFormatter(tag language.Tag) *PercentFormatter {
	return &PercentFormatter{printer: message.NewPrinter(tag)}
}

func (f *PercentFormatter) Format(p float64) string {
	return f.printer.Sprintf("%.2f%%", p*100)
}
