package vision

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/your-org/fer/internal/emotion"
)

func validMetadata() Metadata {
	return Metadata{
		Contract: emotion.Contract{
			Version: "fer2013-cnn-v1",
			Classes: []string{"Angry", "Disgust", "Fear", "Happy", "Sad", "Surprise", "Neutral"},
		},
		InputName:   "input",
		OutputName:  "output",
		InputShape:  []int64{-1, 48, 48, 1},
		OutputShape: []int64{-1, 7},
	}
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func writeMetadata(t *testing.T, path string, md Metadata) {
	t.Helper()
	raw, err := json.Marshal(md)
	require.NoError(t, err)
	writeFile(t, path, raw)
}

func TestMetadataPathFor(t *testing.T) {
	assert.Equal(t, "models/emotion.json", MetadataPathFor("models/emotion.onnx"))
	assert.Equal(t, "model.json", MetadataPathFor("model"))
}

func TestLoadMetadata(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "emotion.json")
	writeMetadata(t, path, validMetadata())

	md, err := LoadMetadata(path)
	require.NoError(t, err)
	assert.Equal(t, "fer2013-cnn-v1", md.Version)
	assert.Equal(t, "input", md.InputName)
	assert.Len(t, md.Classes, 7)
}

func TestMetadataValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Metadata)
		errMsg string
	}{
		{"reordered classes", func(m *Metadata) { m.Classes[0], m.Classes[6] = m.Classes[6], m.Classes[0] }, "label contract"},
		{"missing input name", func(m *Metadata) { m.InputName = "" }, "input and output"},
		{"rgb input", func(m *Metadata) { m.InputShape = []int64{1, 48, 48, 3} }, "input shape"},
		{"wrong size", func(m *Metadata) { m.InputShape = []int64{1, 64, 64, 1} }, "input shape"},
		{"wrong output", func(m *Metadata) { m.OutputShape = []int64{1, 8} }, "output shape"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := validMetadata()
			tt.mutate(&md)
			err := md.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	md := validMetadata()
	md.InputShape = []int64{1, 48, 48, 1}
	assert.NoError(t, md.Validate())
}

func TestNewClassifier_ModelLoadErrors(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "emotion.onnx")

	t.Run("empty path", func(t *testing.T) {
		_, err := NewClassifier(ClassifierConfig{})
		var mle *ModelLoadError
		require.ErrorAs(t, err, &mle)
	})

	t.Run("missing artifact", func(t *testing.T) {
		_, err := NewClassifier(ClassifierConfig{ModelPath: model})
		var mle *ModelLoadError
		require.ErrorAs(t, err, &mle)
		assert.Equal(t, model, mle.Path)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	writeFile(t, model, []byte("not really onnx"))

	t.Run("missing metadata", func(t *testing.T) {
		_, err := NewClassifier(ClassifierConfig{ModelPath: model})
		var mle *ModelLoadError
		require.ErrorAs(t, err, &mle)
		assert.Contains(t, err.Error(), "read metadata")
	})

	t.Run("corrupt metadata", func(t *testing.T) {
		meta := filepath.Join(dir, "corrupt.json")
		writeFile(t, meta, []byte("{classes: ["))
		_, err := NewClassifier(ClassifierConfig{ModelPath: model, MetadataPath: meta})
		var mle *ModelLoadError
		require.ErrorAs(t, err, &mle)
		assert.Contains(t, err.Error(), "parse metadata")
	})

	t.Run("label order drift", func(t *testing.T) {
		meta := filepath.Join(dir, "drift.json")
		md := validMetadata()
		md.Classes = []string{"Happy", "Sad", "Angry", "Fear", "Disgust", "Surprise", "Neutral"}
		writeMetadata(t, meta, md)
		_, err := NewClassifier(ClassifierConfig{ModelPath: model, MetadataPath: meta})
		var mle *ModelLoadError
		require.ErrorAs(t, err, &mle)
		assert.Contains(t, err.Error(), "label contract")
	})
}

func TestModelLoadError(t *testing.T) {
	cause := errors.New("boom")
	err := &ModelLoadError{Path: "m.onnx", Err: cause}
	assert.Equal(t, "load model m.onnx: boom", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestMetadataMatchModel(t *testing.T) {
	md := validMetadata()
	io := func(name string, dims ...int64) []ort.InputOutputInfo {
		return []ort.InputOutputInfo{{Name: name, Dimensions: ort.NewShape(dims...)}}
	}

	tests := []struct {
		name    string
		inputs  []ort.InputOutputInfo
		outputs []ort.InputOutputInfo
		errMsg  string
	}{
		{"dynamic batch", io("input", -1, 48, 48, 1), io("output", -1, 7), ""},
		{"fixed batch", io("input", 1, 48, 48, 1), io("output", 1, 7), ""},
		{"missing input", io("image", 1, 48, 48, 1), io("output", 1, 7), `no input "input"`},
		{"channels first", io("input", 1, 1, 48, 48), io("output", 1, 7), "model input"},
		{"rgb", io("input", 1, 48, 48, 3), io("output", 1, 7), "model input"},
		{"missing output", io("input", 1, 48, 48, 1), io("logits", 1, 7), `no output "output"`},
		{"eight classes", io("input", 1, 48, 48, 1), io("output", 1, 8), "model output"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := md.MatchModel(tt.inputs, tt.outputs)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestClassifierPredict_RejectsBadTensorBeforeRunning(t *testing.T) {
	// No session: a bad tensor must be rejected before the runtime is touched.
	c := &Classifier{}

	_, err := c.Predict(Tensor{Data: make([]float32, 48*48), Shape: []int64{1, 1, 48, 48}})
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = c.Predict(Tensor{Data: make([]float32, 10), Shape: []int64{1, 48, 48, 1}})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}
