package vision

import (
	"fmt"
	"time"

	"github.com/your-org/fer/internal/emotion"
	"github.com/your-org/fer/internal/observability"
)

// Result is the outcome of analyzing one photo.
type Result struct {
	Label      emotion.Label
	Message    string
	Scores     emotion.Distribution
	Confidence float32
}

// Analyzer runs the full inference chain:
// decode → normalize → classify → resolve label → pick message.
type Analyzer struct {
	predictor Predictor
	responses *emotion.Responses
	maxPixels int64
}

// NewAnalyzer wires a loaded predictor to a response table.
func NewAnalyzer(predictor Predictor, responses *emotion.Responses) *Analyzer {
	if responses == nil {
		responses = emotion.DefaultResponses()
	}
	return &Analyzer{predictor: predictor, responses: responses, maxPixels: DefaultMaxPixels}
}

// WithMaxPixels sets the largest width*height accepted for decoding.
// n <= 0 disables the limit.
func (a *Analyzer) WithMaxPixels(n int64) *Analyzer {
	a.maxPixels = n
	return a
}

// Analyze classifies the facial expression in an encoded image.
// Errors are returned as-is; a failed analysis never yields a label.
func (a *Analyzer) Analyze(imageData []byte) (*Result, error) {
	start := time.Now()
	tensor, err := NormalizeBytesLimited(imageData, a.maxPixels)
	if err != nil {
		return nil, err
	}
	observability.InferenceDuration.WithLabelValues("preprocess").Observe(time.Since(start).Seconds())

	start = time.Now()
	dist, err := a.predictor.Predict(tensor)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	observability.InferenceDuration.WithLabelValues("classify").Observe(time.Since(start).Seconds())

	label, err := emotion.Resolve(dist)
	if err != nil {
		return nil, err
	}

	observability.EmotionsDetected.WithLabelValues(string(label)).Inc()

	return &Result{
		Label:      label,
		Message:    a.responses.Select(label),
		Scores:     dist,
		Confidence: dist[emotion.Index(label)],
	}, nil
}
