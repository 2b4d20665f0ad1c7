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

	"github.com/nvr-ai/go-ilsvrc/benchmark"
	"github.com/nvr-ai/go-ilsvrc/models"
)

func main() {
	var (
		modelFile  string
		imagesPath string
		modelArch  string
		delegates  string
		iterations int
		warmupRuns int
		threads    int
		outputPath string
	)
	flag.StringVar(&modelFile, "model_file", "", "Path to the ONNX classification model")
	flag.StringVar(&imagesPath, "images_path", "", "Directory of sample images")
	flag.StringVar(&modelArch, "model_arch", "mobilenet_v1", "Model architecture: "+strings.Join(models.Names(), ", "))
	flag.StringVar(&delegates, "delegates", "cpu", "Comma-separated delegates to benchmark")
	flag.IntVar(&iterations, "iterations", 100, "Measured inference runs per delegate")
	flag.IntVar(&warmupRuns, "warmup", 5, "Warmup runs per delegate")
	flag.IntVar(&threads, "num_interpreter_threads", 1, "Intra-op thread count for the runtime")
	flag.StringVar(&outputPath, "output_file_path", "", "Write JSON results here")
	flag.Parse()

	if modelFile == "" || imagesPath == "" {
		log.Fatal("error: -model_file and -images_path are required")
	}

	spec, err := models.Lookup(modelArch)
	if err != nil {
		log.Fatal(err)
	}

	var scenarios []benchmark.Scenario
	for _, delegate := range strings.Split(delegates, ",") {
		scenarios = append(scenarios, benchmark.Scenario{
			Delegate:       strings.TrimSpace(delegate),
			IntraOpThreads: threads,
			Iterations:     iterations,
			WarmupRuns:     warmupRuns,
		})
	}

	suite, err := benchmark.NewSuite(benchmark.SuiteConfig{
		ModelPath:  modelFile,
		Spec:       spec,
		ImagesPath: imagesPath,
	}, scenarios)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\n⏱️  Benchmarking %s (%s) across: %s\n\n", modelFile, spec.Name, delegates)

	if _, err := suite.Run(ctx); err != nil {
		log.Fatalf("benchmark failed: %v", err)
	}

	suite.PrintReport()

	if outputPath != "" {
		if err := suite.SaveResults(outputPath); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("\n📄 Results written to %s\n", outputPath)
	}
}
