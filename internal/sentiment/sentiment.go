package sentiment

import (
	"github.com/grassmudhorses/vader-go/lexicon"
	"github.com/grassmudhorses/vader-go/sentitext"
)

const (
	LabelPositive = "Positive"
	LabelNeutral  = "Neutral"
	LabelNegative = "Negative"
)

// Result pairs the three-bucket label with the raw polarity that produced it.
type Result struct {
	Label string  `json:"sentiment"`
	Score float64 `json:"score"`
}

// Model produces a polarity score in [-1, 1] for a piece of text.
type Model interface {
	Polarity(text string) float64
}

// VaderModel scores text with the VADER lexicon.
type VaderModel struct{}

func (VaderModel) Polarity(text string) float64 {
	parsed := sentitext.Parse(text, lexicon.DefaultLexicon)
	return sentitext.PolarityScore(parsed).Compound
}

type Analyzer struct {
	model Model
}

func NewAnalyzer(model Model) *Analyzer {
	if model == nil {
		model = VaderModel{}
	}
	return &Analyzer{model: model}
}

// Analyze classifies free text. Empty or absent text yields a neutral result
// without invoking the model.
func (a *Analyzer) Analyze(text string) Result {
	if text == "" || text == "N/A" {
		return Result{Label: LabelNeutral, Score: 0}
	}
	return Classify(a.model.Polarity(text))
}

// Classify maps a polarity value to its bucket: above 0.2 is positive, below
// -0.2 is negative, everything in between is neutral.
func Classify(polarity float64) Result {
	switch {
	case polarity > 0.2:
		return Result{Label: LabelPositive, Score: polarity}
	case polarity < -0.2:
		return Result{Label: LabelNegative, Score: polarity}
	default:
		return Result{Label: LabelNeutral, Score: polarity}
	}
}
