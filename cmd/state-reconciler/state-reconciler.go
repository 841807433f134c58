package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v2"

	"github.com/opsforge/state-reconciler/internal/build"
	"github.com/opsforge/state-reconciler/internal/config"
	"github.com/opsforge/state-reconciler/internal/util"
	"github.com/opsforge/state-reconciler/pkg/reconcile"
)

const (
	ansiReset  = "\033[0m"
	ansiYellow = "\033[33m"
	ansiRed    = "\033[31m"
)

// specFile represents the desired-state document supplied by the user.
type specFile struct {
	Resources []*reconcile.Resource `yaml:"resources"`
}

// loadSpec reads and parses a desired-state document.
func loadSpec(path string) (*specFile, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	spec := &specFile{}
	if err := yaml.Unmarshal(bytes, spec); err != nil {
		return nil, err
	}

	return spec, nil
}

// printSummary renders one line per result, colored when stdout is a terminal.
func printSummary(results []*reconcile.Result) {
	tty := isatty.IsTerminal(os.Stdout.Fd())

	for _, r := range results {
		line := fmt.Sprintf("[%s] %s", r.Action, r.Resource)
		if len(r.Drift) > 0 {
			line += " (drift: " + strings.Join(r.Drift, ",") + ")"
		}

		if tty && r.Changed {
			color := ansiYellow
			if r.Action == reconcile.ActionDelete {
				color = ansiRed
			}
			line = color + line + ansiReset
		}

		fmt.Println(line)
	}
}

func main() {
	// Setup logging.
	log.SetOutput(os.Stderr)

	// Parse flags.
	specFlag := flag.String("spec", "", "path to a desired-state document")
	checkFlag := flag.Bool("check", false, "compute results without applying changes")
	summaryFlag := flag.Bool("summary", false, "print a one-line summary per resource")
	formatFlag := flag.String("format", "yaml", "select results output format")
	versionFlag := flag.Bool("version", false, "display state-reconciler version and build info")
	flag.Parse()

	if *versionFlag {
		fmt.Println("version:", build.Version)
		fmt.Println("build time:", build.Time)
		return
	}

	if len(*specFlag) == 0 {
		log.Fatal("no desired-state document specified, use the -spec flag")
	}

	// Load the desired-state document.
	spec, err := loadSpec(*specFlag)
	if err != nil {
		log.Fatal(err)
	}

	// Load the reconciler configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	if *checkFlag {
		cfg.Reconcile.CheckMode = true
	}

	// Initialize a new reconciler.
	reconciler, err := reconcile.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer reconciler.Close()

	// Reconcile all declared resources.
	results, err := reconciler.ReconcileAll(spec.Resources)
	if err != nil {
		log.Fatal(err)
	}

	if *summaryFlag {
		printSummary(results)
	} else {
		bytes, err := util.Marshal(results, *formatFlag)
		if err != nil {
			log.Fatal(err)
		}

		fmt.Println(string(bytes))
	}

	// In check mode a non-zero exit status signals detected drift.
	if cfg.Reconcile.CheckMode {
		for _, r := range results {
			if r.Changed {
				os.Exit(2)
			}
		}
	}
}
