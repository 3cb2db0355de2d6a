package vision

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/your-org/fer/internal/emotion"
)

// Predictor maps a normalized face tensor to per-class scores.
type Predictor interface {
	Predict(t Tensor) (emotion.Distribution, error)
}

// ClassifierConfig locates the model artifact and its metadata sidecar.
type ClassifierConfig struct {
	ModelPath    string
	MetadataPath string // defaults to ModelPath with a .json extension
	LibraryPath  string // onnxruntime shared library; empty uses DefaultLibraryPath
}

// Metadata describes the exported model. It is written by the training job
// next to the .onnx file.
type Metadata struct {
	emotion.Contract
	InputName   string  `json:"input_name"`
	OutputName  string  `json:"output_name"`
	InputShape  []int64 `json:"input_shape"`
	OutputShape []int64 `json:"output_shape"`
}

// MetadataPathFor returns the default sidecar path for a model file.
func MetadataPathFor(modelPath string) string {
	return strings.TrimSuffix(modelPath, filepath.Ext(modelPath)) + ".json"
}

// LoadMetadata reads and validates a metadata sidecar.
func LoadMetadata(path string) (*Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	var md Metadata
	if err := json.Unmarshal(raw, &md); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	if err := md.Validate(); err != nil {
		return nil, err
	}
	return &md, nil
}

// Validate checks the label contract and the declared tensor shapes.
func (m *Metadata) Validate() error {
	if err := m.Contract.Validate(); err != nil {
		return fmt.Errorf("label contract: %w", err)
	}
	if m.InputName == "" || m.OutputName == "" {
		return errors.New("metadata must name the input and output nodes")
	}

	// Keras exports usually leave the batch dimension dynamic (-1).
	if len(m.InputShape) != len(InputShape) {
		return fmt.Errorf("input shape %v, want %v", m.InputShape, InputShape)
	}
	for i := 1; i < len(InputShape); i++ {
		if m.InputShape[i] != InputShape[i] {
			return fmt.Errorf("input shape %v, want %v", m.InputShape, InputShape)
		}
	}
	if n := len(m.OutputShape); n == 0 || m.OutputShape[n-1] != emotion.NumClasses {
		return fmt.Errorf("output shape %v, want [1 %d]", m.OutputShape, emotion.NumClasses)
	}
	return nil
}

// DefaultLibraryPath returns the ONNX Runtime shared library name for this OS.
func DefaultLibraryPath() string {
	switch runtime.GOOS {
	case "windows":
		return "onnxruntime.dll"
	case "darwin":
		return "libonnxruntime.dylib"
	default:
		return "libonnxruntime.so"
	}
}

// MatchModel checks the metadata against the tensors the model file actually
// declares. Dynamic dimensions (<= 0) match anything.
func (m *Metadata) MatchModel(inputs, outputs []ort.InputOutputInfo) error {
	in, ok := findInfo(inputs, m.InputName)
	if !ok {
		return fmt.Errorf("model has no input %q", m.InputName)
	}
	if !shapeMatches(in.Dimensions, InputShape) {
		return fmt.Errorf("model input %q has shape %v, want %v", in.Name, in.Dimensions, InputShape)
	}

	out, ok := findInfo(outputs, m.OutputName)
	if !ok {
		return fmt.Errorf("model has no output %q", m.OutputName)
	}
	if !shapeMatches(out.Dimensions, []int64{1, emotion.NumClasses}) {
		return fmt.Errorf("model output %q has shape %v, want [1 %d]", out.Name, out.Dimensions, emotion.NumClasses)
	}
	return nil
}

func findInfo(infos []ort.InputOutputInfo, name string) (ort.InputOutputInfo, bool) {
	for _, info := range infos {
		if info.Name == name {
			return info, true
		}
	}
	return ort.InputOutputInfo{}, false
}

func shapeMatches(got ort.Shape, want []int64) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i] > 0 && got[i] != want[i] {
			return false
		}
	}
	return true
}

// Classifier runs the FER CNN through ONNX Runtime.
// It is created once at startup and shared by all requests.
type Classifier struct {
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
	Metadata     Metadata

	// The session is bound to a single pair of tensors, so runs are serialized.
	mu sync.Mutex
}

// NewClassifier loads the model. Every failure is a *ModelLoadError.
func NewClassifier(cfg ClassifierConfig) (*Classifier, error) {
	fail := func(err error) (*Classifier, error) {
		return nil, &ModelLoadError{Path: cfg.ModelPath, Err: err}
	}

	if cfg.ModelPath == "" {
		return fail(errors.New("empty model path"))
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return fail(err)
	}

	metaPath := cfg.MetadataPath
	if metaPath == "" {
		metaPath = MetadataPathFor(cfg.ModelPath)
	}
	md, err := LoadMetadata(metaPath)
	if err != nil {
		return fail(err)
	}

	if !ort.IsInitialized() {
		lib := cfg.LibraryPath
		if lib == "" {
			lib = DefaultLibraryPath()
		}
		ort.SetSharedLibraryPath(lib)
		if err := ort.InitializeEnvironment(); err != nil {
			return fail(fmt.Errorf("initialize onnx runtime: %w", err))
		}
	}

	inputs, outputs, err := ort.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		return fail(fmt.Errorf("read model io: %w", err))
	}
	if err := md.MatchModel(inputs, outputs); err != nil {
		return fail(err)
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(InputShape...))
	if err != nil {
		return fail(fmt.Errorf("create input tensor: %w", err))
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, emotion.NumClasses))
	if err != nil {
		inputTensor.Destroy()
		return fail(fmt.Errorf("create output tensor: %w", err))
	}

	session, err := ort.NewAdvancedSession(cfg.ModelPath,
		[]string{md.InputName},
		[]string{md.OutputName},
		[]ort.Value{inputTensor},
		[]ort.Value{outputTensor},
		nil,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return fail(fmt.Errorf("create session: %w", err))
	}

	return &Classifier{
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
		Metadata:     *md,
	}, nil
}

// Predict runs one forward pass. t must be a verified [1,48,48,1] tensor.
func (c *Classifier) Predict(t Tensor) (emotion.Distribution, error) {
	if err := t.Verify(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	copy(c.inputTensor.GetData(), t.Data)

	if err := c.session.Run(); err != nil {
		return nil, fmt.Errorf("run classifier: %w", err)
	}

	out := c.outputTensor.GetData()
	if len(out) < emotion.NumClasses {
		return nil, fmt.Errorf("unexpected output size: %d", len(out))
	}

	dist := make(emotion.Distribution, emotion.NumClasses)
	copy(dist, out)
	return dist, nil
}

// Close destroys the session and its bound tensors.
func (c *Classifier) Close() {
	if c.session != nil {
		c.session.Destroy()
	}
	if c.inputTensor != nil {
		c.inputTensor.Destroy()
	}
	if c.outputTensor != nil {
		c.outputTensor.Destroy()
	}
}
