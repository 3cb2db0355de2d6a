package emotion

import (
	"errors"
	"fmt"
)

// Label is one of the seven FER emotion classes.
type Label string

const (
	Angry    Label = "Angry"
	Disgust  Label = "Disgust"
	Fear     Label = "Fear"
	Happy    Label = "Happy"
	Sad      Label = "Sad"
	Surprise Label = "Surprise"
	Neutral  Label = "Neutral"
)

// NumClasses is the width of the classifier output layer.
const NumClasses = 7

// Labels maps a class index to its label. The order is fixed by the training
// data layout and must only change together with the model artifact.
var Labels = [NumClasses]Label{Angry, Disgust, Fear, Happy, Sad, Surprise, Neutral}

// ErrEmptyDistribution is returned when a distribution does not carry exactly
// one score per class.
var ErrEmptyDistribution = errors.New("distribution must have exactly 7 scores")

// Distribution holds one score per class, positionally aligned with Labels.
type Distribution []float32

// Valid reports whether l is one of the known labels.
func (l Label) Valid() bool {
	return Index(l) >= 0
}

// Index returns the class index of l, or -1.
func Index(l Label) int {
	for i, known := range Labels {
		if known == l {
			return i
		}
	}
	return -1
}

// ArgMax returns the index of the highest score. Ties go to the lowest index.
func (d Distribution) ArgMax() (int, error) {
	if len(d) != NumClasses {
		return -1, fmt.Errorf("%w: got %d", ErrEmptyDistribution, len(d))
	}
	best := 0
	for i := 1; i < len(d); i++ {
		if d[i] > d[best] {
			best = i
		}
	}
	return best, nil
}

// Resolve picks the most likely label from d.
func Resolve(d Distribution) (Label, error) {
	idx, err := d.ArgMax()
	if err != nil {
		return "", err
	}
	return Labels[idx], nil
}

// Scores returns d keyed by label.
func (d Distribution) Scores() map[Label]float32 {
	out := make(map[Label]float32, len(d))
	for i, v := range d {
		if i < NumClasses {
			out[Labels[i]] = v
		}
	}
	return out
}
