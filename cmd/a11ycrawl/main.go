// Package main is the a11ycrawl CLI entry point (spec.md §6): one command,
// a positional entry point (or -i file of them), a config module, and the
// handful of output/log flags the orchestrator needs before it can start.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/a11ycrawl/a11ycrawl/internal/config"
	"github.com/a11ycrawl/a11ycrawl/internal/logging"
	"github.com/a11ycrawl/a11ycrawl/internal/orchestrator"
)

var (
	entryFile  string
	outputDir  string
	modulePath string
	debugLog   bool
	infoLog    bool
	formValues []string
)

var rootCmd = &cobra.Command{
	Use:   "a11ycrawl [entry point]",
	Short: "crawl a web application's state space and report accessibility findings",
	Long: `a11ycrawl explores a web application by simulating a maximally capable
build user, then re-walks the resulting graph under a set of constrained
user models to find states and actions that become unreachable or
degraded for them.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCrawl,
}

func init() {
	rootCmd.Flags().StringVarP(&entryFile, "input", "i", "", "file of entry points, one per line (alternative to the positional argument)")
	rootCmd.Flags().StringVar(&outputDir, "output_dir", "", "overrides the config module's output_dir")
	rootCmd.Flags().StringVarP(&modulePath, "mode", "m", "", "config module (YAML file path); built-in defaults if omitted")
	rootCmd.Flags().BoolVarP(&debugLog, "debug", "d", false, "log at debug level")
	rootCmd.Flags().BoolVarP(&infoLog, "verbose", "v", false, "log at info level")
	rootCmd.Flags().StringArrayVar(&formValues, "form_value", nil, "candidate value tried by FormFillAction, in order (repeatable)")
}

func runCrawl(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(modulePath)
	if err != nil {
		return fmt.Errorf("a11ycrawl: %w", err)
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}

	if err := logging.Init(logging.Options{Debug: debugLog, Info: infoLog, ToStdout: cfg.LogToStdout}); err != nil {
		return fmt.Errorf("a11ycrawl: initializing logging: %w", err)
	}
	defer logging.Sync()

	entryPoints, err := resolveEntryPoints(args, entryFile)
	if err != nil {
		return fmt.Errorf("a11ycrawl: %w", err)
	}

	o := orchestrator.New(*cfg, formValues)
	return o.Run(context.Background(), entryPoints)
}

// resolveEntryPoints merges the positional entry point (if any) with every
// non-blank line of file (if set) that does not start with '#'; lines are
// trimmed first. The positional argument comes first so
// a single extra entry point can be layered onto a saved list.
func resolveEntryPoints(args []string, file string) ([]string, error) {
	var points []string
	if len(args) == 1 {
		points = append(points, args[0])
	}

	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("reading entry point file %s: %w", file, err)
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			points = append(points, line)
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading entry point file %s: %w", file, err)
		}
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("no entry points given: pass one positionally or via -i")
	}
	return points, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
