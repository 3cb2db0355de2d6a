// Command inspect prints what an exported emotion model declares and checks it
// against its metadata sidecar. It exits non-zero when the two disagree.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/your-org/fer/internal/emotion"
	"github.com/your-org/fer/internal/vision"
)

func main() {
	modelPath := flag.String("model", "models/face_emotion.onnx", "path to the .onnx model")
	metaPath := flag.String("metadata", "", "path to the metadata sidecar (default: model path with .json)")
	libPath := flag.String("ort", "", "onnxruntime shared library (default: platform name)")
	flag.Parse()

	if err := run(*modelPath, *metaPath, *libPath); err != nil {
		fmt.Fprintf(os.Stderr, "inspect: %v\n", err)
		os.Exit(1)
	}
}

func run(modelPath, metaPath, libPath string) error {
	if metaPath == "" {
		metaPath = vision.MetadataPathFor(modelPath)
	}
	if libPath == "" {
		libPath = vision.DefaultLibraryPath()
	}

	ort.SetSharedLibraryPath(libPath)
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("initialize onnx runtime: %w", err)
	}
	defer ort.DestroyEnvironment()

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return fmt.Errorf("read model info: %w", err)
	}

	fmt.Printf("MODEL %s\n", modelPath)
	fmt.Printf("  Inputs: %d\n", len(inputs))
	for i, in := range inputs {
		fmt.Printf("    [%d] %s: %v (type: %s)\n", i, in.Name, in.Dimensions, in.DataType)
	}
	fmt.Printf("  Outputs: %d\n", len(outputs))
	for i, out := range outputs {
		fmt.Printf("    [%d] %s: %v (type: %s)\n", i, out.Name, out.Dimensions, out.DataType)
	}

	if meta, err := ort.GetModelMetadata(modelPath); err == nil {
		if producer, err := meta.GetProducerName(); err == nil && producer != "" {
			fmt.Printf("  Producer: %s\n", producer)
		}
		if version, err := meta.GetVersion(); err == nil {
			fmt.Printf("  Version: %d\n", version)
		}
		_ = meta.Destroy()
	}

	fmt.Printf("\nMETADATA %s\n", metaPath)
	md, err := vision.LoadMetadata(metaPath)
	if err != nil {
		return err
	}
	fmt.Printf("  Version: %s\n", md.Version)
	fmt.Printf("  Classes: %s\n", strings.Join(md.Classes, ", "))
	fmt.Printf("  Expected: %s\n", joinLabels(emotion.Labels[:]))

	if err := md.MatchModel(inputs, outputs); err != nil {
		return err
	}
	fmt.Println("\nContract OK")
	return nil
}

func joinLabels(labels []emotion.Label) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = string(l)
	}
	return strings.Join(parts, ", ")
}
