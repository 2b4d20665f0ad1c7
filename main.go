package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/nvr-ai/go-ilsvrc/dataset"
	"github.com/nvr-ai/go-ilsvrc/evaluator"
	"github.com/nvr-ai/go-ilsvrc/images"
	"github.com/nvr-ai/go-ilsvrc/inference"
	"github.com/nvr-ai/go-ilsvrc/inference/providers"
	"github.com/nvr-ai/go-ilsvrc/models"
	"github.com/nvr-ai/go-ilsvrc/profiler"
)

// DefaultProgressInterval is how often progress lines are logged, in images.
const DefaultProgressInterval = 100

func main() {
	var (
		paramsFile            string
		modelFile             string
		imagesPath            string
		groundTruthLabels     string
		modelOutputLabels     string
		blacklistFilePath     string
		delegate              string
		numImages             int
		numRanks              int
		numInterpreterThreads int
		numEvalThreads        int
		allowFP16             bool
		outputFilePath        string
		csvLogPath            string
		modelArch             string
		imageSize             int
		inputName             string
		outputName            string
		outputCount           int
		applySoftmax          bool
		warmupRuns            int
		progressEvery         int
	)
	flag.StringVar(&paramsFile, "params_file", "", "Optional YAML params file; explicit flags override it")
	flag.StringVar(&modelFile, "model_file", "", "Path to the ONNX classification model")
	flag.StringVar(&imagesPath, "ground_truth_images_path", "", "Directory of validation images")
	flag.StringVar(&groundTruthLabels, "ground_truth_labels", "", "Labels file, one per image in sorted image order")
	flag.StringVar(&modelOutputLabels, "model_output_labels", "", "Labels file mapping model output indices to labels")
	flag.StringVar(&blacklistFilePath, "blacklist_file_path", "", "Optional blacklist file of sorted 1-based image indices to skip")
	flag.StringVar(&delegate, "delegate", "", "Execution backend: cpu, cuda, gpu, coreml, openvino, dnnl (empty = cpu)")
	flag.IntVar(&numImages, "num_images", 0, "Maximum images to evaluate (0 = all)")
	flag.IntVar(&numRanks, "num_ranks", evaluator.DefaultNumRanks, "K for top-K accuracy")
	flag.IntVar(&numInterpreterThreads, "num_interpreter_threads", 1, "Intra-op thread count for the runtime")
	flag.IntVar(&numEvalThreads, "num_eval_threads", 1, "Number of dataset shards evaluated in parallel")
	flag.BoolVar(&allowFP16, "allow_fp16", false, "Permit reduced-precision execution where the provider supports it")
	flag.StringVar(&outputFilePath, "output_file_path", "", "Write the final JSON report here")
	flag.StringVar(&csvLogPath, "csv_log", "", "Write a per-image CSV log here")
	flag.StringVar(&modelArch, "model_arch", "mobilenet_v1", "Model architecture: "+strings.Join(models.Names(), ", "))
	flag.IntVar(&imageSize, "image_size", 0, "Override the architecture's input width and height")
	flag.StringVar(&inputName, "input_name", "", "Override the architecture's input node name")
	flag.StringVar(&outputName, "output_name", "", "Override the architecture's output node name")
	flag.IntVar(&outputCount, "output_count", 0, "Override the architecture's output category count")
	flag.BoolVar(&applySoftmax, "softmax", false, "Apply softmax to raw model outputs before ranking")
	flag.IntVar(&warmupRuns, "warmup", 1, "Warmup inference runs per shard before evaluation")
	flag.IntVar(&progressEvery, "progress_every", DefaultProgressInterval, "Log progress every N images")
	flag.Parse()

	params := evaluator.Params{
		ModelPath:             modelFile,
		ImagesPath:            imagesPath,
		GroundTruthLabelsPath: groundTruthLabels,
		ModelOutputLabelsPath: modelOutputLabels,
		BlacklistPath:         blacklistFilePath,
		Delegate:              delegate,
		NumImages:             numImages,
		NumRanks:              numRanks,
		NumInterpreterThreads: numInterpreterThreads,
		AllowFP16:             allowFP16,
		NumEvalThreads:        numEvalThreads,
		OutputPath:            outputFilePath,
	}
	if paramsFile != "" {
		var err error
		params, err = mergeParamsFile(paramsFile, params)
		if err != nil {
			log.Fatal(err)
		}
	}

	if err := validateParams(params); err != nil {
		log.Fatal(err)
	}

	backend, err := providers.ForDelegate(params.Delegate)
	if err != nil {
		log.Fatal(err)
	}

	outputLabels, err := dataset.ReadLabels(params.ModelOutputLabelsPath)
	if err != nil {
		log.Fatal(err)
	}

	spec, err := models.Lookup(modelArch)
	if err != nil {
		log.Fatal(err)
	}
	spec = overrideSpec(spec, imageSize, inputName, outputName, outputCount)

	printBanner(params, backend, spec, len(outputLabels))

	prof := profiler.New()

	factory := func(shardID uint64) (evaluator.Stage, error) {
		classifier, err := inference.NewClassifier(inference.Config{
			ModelPath:   params.ModelPath,
			InputName:   spec.InputName,
			OutputName:  spec.OutputName,
			InputShape:  []int64{1, 3, int64(spec.Preprocess.Height), int64(spec.Preprocess.Width)},
			OutputCount: spec.OutputCount,
			Provider: providers.Config{
				Backend:        backend,
				Options:        providerOptions(backend, params.AllowFP16, params.NumInterpreterThreads),
				IntraOpThreads: params.NumInterpreterThreads,
			},
			Precision:    precisionFor(params.AllowFP16),
			Warmup:       warmupRuns,
			ApplySoftmax: applySoftmax || spec.Logits,
		})
		if err != nil {
			return nil, err
		}
		return &classifierStage{
			classifier: classifier,
			preprocess: spec.Preprocess,
			prof:       prof,
		}, nil
	}

	eval, err := evaluator.New(params, outputLabels, factory)
	if err != nil {
		log.Fatal(err)
	}
	params = eval.Params()

	eval.AddObserver(evaluator.NewProgressLogger(progressEvery))

	if csvLogPath != "" {
		csvFile, err := os.Create(csvLogPath)
		if err != nil {
			log.Fatalf("failed to create csv log: %v", err)
		}
		defer csvFile.Close()

		csvLogger, err := evaluator.NewCSVLogger(csvFile, params.NumRanks)
		if err != nil {
			log.Fatalf("failed to initialize csv log: %v", err)
		}
		defer csvLogger.Flush()
		eval.AddObserver(csvLogger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	acc, err := eval.Run(ctx)
	if err != nil {
		log.Fatalf("evaluation failed: %v", err)
	}
	elapsed := time.Since(start)

	fmt.Printf("\n✅ Evaluation complete: %d images in %v\n\n", acc.Count, elapsed.Truncate(time.Millisecond))
	printAccuracyTable(acc.K, acc.Accuracies())
	printTimingTable(prof.Stats())

	if params.OutputPath != "" {
		report := evaluator.NewReport(params, acc)
		if err := report.Write(params.OutputPath); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("📄 Report written to %s\n", params.OutputPath)
	}
}

// classifierStage adapts a preprocessing config plus a classifier session
// into the evaluator's per-shard stage.
type classifierStage struct {
	classifier *inference.Classifier
	preprocess images.Config
	prof       *profiler.Profiler
}

func (s *classifierStage) Classify(ctx context.Context, imagePath string) ([]float32, error) {
	stopPreprocess := s.prof.StartOperation("preprocess")
	tensor, err := images.PreprocessFile(imagePath, s.preprocess)
	stopPreprocess()
	if err != nil {
		return nil, err
	}

	stopInference := s.prof.StartOperation("inference")
	scores, err := s.classifier.Classify(ctx, tensor)
	stopInference()
	return scores, err
}

func (s *classifierStage) Close() error {
	return s.classifier.Close()
}

// mergeParamsFile loads a YAML params file and overlays any explicitly set
// command line flags on top of it.
func mergeParamsFile(path string, flagParams evaluator.Params) (evaluator.Params, error) {
	params, err := evaluator.LoadParams(path)
	if err != nil {
		return evaluator.Params{}, err
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["model_file"] {
		params.ModelPath = flagParams.ModelPath
	}
	if set["ground_truth_images_path"] {
		params.ImagesPath = flagParams.ImagesPath
	}
	if set["ground_truth_labels"] {
		params.GroundTruthLabelsPath = flagParams.GroundTruthLabelsPath
	}
	if set["model_output_labels"] {
		params.ModelOutputLabelsPath = flagParams.ModelOutputLabelsPath
	}
	if set["blacklist_file_path"] {
		params.BlacklistPath = flagParams.BlacklistPath
	}
	if set["delegate"] {
		params.Delegate = flagParams.Delegate
	}
	if set["num_images"] {
		params.NumImages = flagParams.NumImages
	}
	if set["num_ranks"] {
		params.NumRanks = flagParams.NumRanks
	}
	if set["num_interpreter_threads"] {
		params.NumInterpreterThreads = flagParams.NumInterpreterThreads
	}
	if set["allow_fp16"] {
		params.AllowFP16 = flagParams.AllowFP16
	}
	if set["num_eval_threads"] {
		params.NumEvalThreads = flagParams.NumEvalThreads
	}
	if set["output_file_path"] {
		params.OutputPath = flagParams.OutputPath
	}

	return params, nil
}

// validateParams checks that the required inputs exist before any runtime
// initialization happens.
func validateParams(params evaluator.Params) error {
	if err := validateFile("model_file", params.ModelPath); err != nil {
		return err
	}
	if params.ImagesPath == "" {
		return fmt.Errorf("error: -ground_truth_images_path is required")
	}
	info, err := os.Stat(params.ImagesPath)
	if err != nil {
		return fmt.Errorf("error: images directory not found: %s", params.ImagesPath)
	}
	if !info.IsDir() {
		return fmt.Errorf("error: images path is not a directory: %s", params.ImagesPath)
	}
	if err := validateFile("ground_truth_labels", params.GroundTruthLabelsPath); err != nil {
		return err
	}
	if err := validateFile("model_output_labels", params.ModelOutputLabelsPath); err != nil {
		return err
	}
	if params.BlacklistPath != "" {
		if err := validateFile("blacklist_file_path", params.BlacklistPath); err != nil {
			return err
		}
	}
	return nil
}

// validateFile checks that a required flag was provided and points at an
// existing file.
func validateFile(flagName, path string) error {
	if path == "" {
		return fmt.Errorf("error: -%s is required", flagName)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("error: file not found for -%s: %s", flagName, path)
	}
	return nil
}

// overrideSpec applies explicit command line overrides on top of the
// registered architecture defaults.
func overrideSpec(spec models.Spec, size int, inputName, outputName string, outputCount int) models.Spec {
	if size > 0 {
		spec.Preprocess.Width = size
		spec.Preprocess.Height = size
	}
	if inputName != "" {
		spec.InputName = inputName
	}
	if outputName != "" {
		spec.OutputName = outputName
	}
	if outputCount > 0 {
		spec.OutputCount = outputCount
	}
	return spec
}

// providerOptions builds per-backend provider options from the flag values.
func providerOptions(backend providers.Backend, allowFP16 bool, threads int) providers.Options {
	switch backend {
	case providers.CUDABackend:
		return providers.CUDAOptions{DeviceID: 0, DoCopyInDefaultStream: true}
	case providers.OpenVINOBackend:
		opts := providers.OpenVINOOptions{DeviceType: "CPU", NumOfThreads: threads}
		if allowFP16 {
			opts.Precision = "FP16"
		}
		return opts
	case providers.CoreMLBackend:
		return providers.CoreMLOptions{}
	default:
		return nil
	}
}

func precisionFor(allowFP16 bool) inference.Precision {
	if allowFP16 {
		return inference.PrecisionFP16
	}
	return inference.PrecisionFP32
}

// printBanner prints the run configuration before evaluation starts.
func printBanner(params evaluator.Params, backend providers.Backend, spec models.Spec, labelCount int) {
	fmt.Printf("\n🚀 ImageNet Accuracy Evaluation\n")
	fmt.Printf("=====================================\n")
	fmt.Printf("⚙️  Configuration:\n")
	fmt.Printf("   🎯 Model: %s\n", params.ModelPath)
	fmt.Printf("   🖼️  Images: %s\n", params.ImagesPath)
	fmt.Printf("   🏷️  Output categories: %d\n", labelCount)
	fmt.Printf("   ⚡ Delegate: %s\n", backend)
	fmt.Printf("   📐 Architecture: %s (%dx%d input)\n", spec.Name, spec.Preprocess.Width, spec.Preprocess.Height)
	fmt.Printf("   📊 Top-K ranks: %d\n", params.NumRanks)
	if params.NumImages > 0 {
		fmt.Printf("   🔢 Image cap: %d\n", params.NumImages)
	}
	if params.BlacklistPath != "" {
		fmt.Printf("   🚫 Blacklist: %s\n", params.BlacklistPath)
	}
	fmt.Printf("   🧵 Eval threads: %d | Interpreter threads: %d\n", params.NumEvalThreads, params.NumInterpreterThreads)
	fmt.Printf("   🎛️  FP16: %t\n", params.AllowFP16)
	fmt.Printf("=====================================\n\n")
}

// printAccuracyTable renders the final top-K accuracies.
func printAccuracyTable(k int, accuracies []float64) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Rank", "Accuracy"})
	table.SetBorder(false)

	for i := 0; i < k && i < len(accuracies); i++ {
		table.Append([]string{
			fmt.Sprintf("top-%d", i+1),
			fmt.Sprintf("%.4f%%", accuracies[i]*100),
		})
	}

	table.Render()
	fmt.Println()
}

// printTimingTable renders per-operation latency statistics.
func printTimingTable(stats []profiler.OperationStats) {
	if len(stats) == 0 {
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Operation", "Count", "Avg", "Min", "Max"})
	table.SetBorder(false)

	for _, s := range stats {
		table.Append([]string{
			s.Name,
			fmt.Sprintf("%d", s.Count),
			s.Average().Truncate(time.Microsecond).String(),
			s.Min.Truncate(time.Microsecond).String(),
			s.Max.Truncate(time.Microsecond).String(),
		})
	}

	table.Render()
	fmt.Println()
}
