// Command errorcode-checker enforces coded errors across the module: every
// error a package creates goes through pkg/errors with a declared Code.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
)

func main() {
	var (
		dir        = flag.String("dir", ".", "Directory to check")
		configPath = flag.String("config", "", "Path to a YAML configuration file")
		verbose    = flag.Bool("verbose", false, "Print every declared code")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *verbose {
		cfg.Verbose = true
	}

	fmt.Printf("🔍 Checking error codes in %s\n", *dir)
	fmt.Printf("🚫 Excluding: %s\n\n", strings.Join(cfg.ExcludePaths, ", "))

	checker := NewChecker(cfg)
	if err := checker.CheckDirectory(*dir); err != nil {
		log.Fatalf("Failed to check directory: %v", err)
	}

	findings := append(checker.ValidateCodes(), checker.Findings()...)
	for _, f := range findings {
		fmt.Println("❌", f)
	}

	unused := checker.Unused()
	for _, info := range unused {
		fmt.Printf("⚠️  unused: %s (%q) at %s:%d\n", info.Name, info.Value, info.Pos.Filename, info.Pos.Line)
	}

	fmt.Printf("\n📊 %d files, %d codes, %d findings, %d unused\n", checker.files, len(checker.codes), len(findings), len(unused))

	if (len(findings) > 0 && cfg.ExitOnFindings) || (len(unused) > 0 && cfg.ExitOnUnused) {
		os.Exit(1)
	}
	fmt.Println("✅ All checks passed")
}
