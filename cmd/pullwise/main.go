package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/pullwise/pullwise"
	"github.com/pullwise/pullwise/progress"
	"github.com/pullwise/pullwise/service/review"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "pullwise:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := flag.NewFlagSet("pullwise", flag.ExitOnError)
	configURL := flags.String("config", "", "URL of the YAML configuration (file://, embed://, ...)")
	flags.Usage = usage(flags)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return fmt.Errorf("missing command")
	}

	ctx := context.Background()
	options, err := buildOptions(ctx, *configURL)
	if err != nil {
		return err
	}

	switch flags.Arg(0) {
	case "pr":
		if flags.NArg() != 4 {
			return fmt.Errorf("usage: pullwise pr <owner> <repo> <number>")
		}
		number, err := strconv.Atoi(flags.Arg(3))
		if err != nil {
			return fmt.Errorf("invalid pull request number %q", flags.Arg(3))
		}
		return reviewPR(ctx, options, flags.Arg(1), flags.Arg(2), number)
	case "demo":
		options = append(options, pullwise.WithFetcher(review.DemoFetcher()))
		return reviewPR(ctx, options, "pullwise", "sample", 42)
	default:
		return fmt.Errorf("unknown command %q", flags.Arg(0))
	}
}

func buildOptions(ctx context.Context, configURL string) ([]pullwise.Option, error) {
	if configURL == "" {
		return nil, nil
	}
	config, err := pullwise.LoadConfig(ctx, configURL)
	if err != nil {
		return nil, err
	}
	return []pullwise.Option{pullwise.WithConfig(config)}, nil
}

func reviewPR(ctx context.Context, options []pullwise.Option, owner, repo string, number int) error {
	tracker := progress.New()
	service, err := pullwise.New(append(options, pullwise.WithListener(tracker.Listener()))...)
	if err != nil {
		return err
	}
	summary, err := service.Review(ctx, owner, repo, number)
	if summary != nil {
		printSummary(summary)
		fmt.Printf("Steps:    %s\n", tracker.Snapshot())
	}
	return err
}

func printSummary(summary *review.Summary) {
	fmt.Printf("Review %s\n", summary.ReviewID)
	fmt.Printf("Decision: %s\n", summary.Decision.Outcome)
	fmt.Printf("Reason:   %s\n", summary.Decision.Reason)
	fmt.Printf("Metrics:  security %.1f/10, quality %.2f/10, coverage %.1f%%, confidence %.2f, docs %.1f%%\n",
		summary.Metrics.SecurityScore, summary.Metrics.QualityScore,
		summary.Metrics.Coverage, summary.Metrics.Confidence, summary.Metrics.Documentation)
	for _, branchErr := range summary.Errors {
		fmt.Printf("Failed:   %s (%s)\n", branchErr.Node, branchErr.Message)
	}
}

func usage(flags *flag.FlagSet) func() {
	return func() {
		fmt.Fprintln(os.Stderr, "Usage: pullwise [-config URL] <command>")
		fmt.Fprintln(os.Stderr, "Commands:")
		fmt.Fprintln(os.Stderr, "  pr <owner> <repo> <number>   review a GitHub pull request")
		fmt.Fprintln(os.Stderr, "  demo                         review the bundled sample change set")
		fmt.Fprintln(os.Stderr, "Flags:")
		flags.PrintDefaults()
	}
}
