//go:build ignore

// build.go - gradesync build script
// Usage: go run build.go [-target=TARGET] [-v]
// Targets: all, updater, compare, summarize, unsubmitted, roster, completers, pipeline, clean, test, release

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"
)

const (
	module       = "gradesync"
	contractsPkg = module + "/pkg/contracts"
)

// BuildContext holds configuration for the build process
type BuildContext struct {
	Verbose bool
	Release bool
}

var (
	rootDir string
	distDir string

	// Binaries (key = cmd directory, value = output name)
	executables = map[string]string{
		"updater":     "gradesync-updater",
		"compare":     "gradesync-compare",
		"summarize":   "gradesync-summarize",
		"unsubmitted": "gradesync-unsubmitted",
		"roster":      "gradesync-roster",
		"completers":  "gradesync-completers",
		"pipeline":    "gradesync-pipeline",
	}

	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

func init() {
	cwd, err := os.Getwd()
	if err != nil {
		panic(fmt.Sprintf("Failed to get current directory: %v", err))
	}
	rootDir = cwd
	distDir = filepath.Join(rootDir, "dist")

	if _, err := os.Stat(filepath.Join(rootDir, "go.mod")); os.IsNotExist(err) {
		panic(fmt.Sprintf("go.mod not found in %s; run the build from the repository root", rootDir))
	}
}

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	printHeader()
	startTime := time.Now()
	ctx := &BuildContext{Verbose: *verbose}

	switch *target {
	case "all":
		buildAll(ctx)
	case "clean":
		clean(ctx.Verbose)
	case "test":
		runTests(ctx.Verbose)
	case "release":
		ctx.Release = true
		clean(ctx.Verbose)
		runTests(ctx.Verbose)
		buildAll(ctx)
	default:
		if _, ok := executables[*target]; !ok {
			showHelp()
			os.Exit(1)
		}
		prepareDirectories(ctx.Verbose)
		buildExecutable(*target, ctx)
	}

	duration := time.Since(startTime)
	printSuccess(fmt.Sprintf("Build completed in %s", duration.Round(time.Millisecond)))
}

func printHeader() {
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println(colorCyan + "        gradesync - Build System           " + colorReset)
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println()
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", colorGreen, colorReset, msg)
}

func printError(msg string) {
	fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}

func printWarning(msg string) {
	fmt.Printf("%s[WARNING]%s %s\n", colorYellow, colorReset, msg)
}

// Build every command
func buildAll(ctx *BuildContext) {
	printInfo("Building all commands...")
	prepareDirectories(ctx.Verbose)

	names := make([]string, 0, len(executables))
	for name := range executables {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		buildExecutable(name, ctx)
	}
	copyConfigFiles(ctx.Verbose)
}

func buildExecutable(name string, ctx *BuildContext) {
	exeName := executables[name]
	if runtime.GOOS == "windows" {
		exeName += ".exe"
	}
	printInfo(fmt.Sprintf("Building %s...", name))

	outputPath := filepath.Join(distDir, exeName)
	ldflags := fmt.Sprintf("-X %s.BuildTime=%s -X %s.GitCommit=%s",
		contractsPkg, time.Now().Format(time.RFC3339), contractsPkg, gitCommit())
	if ctx.Release {
		ldflags = "-s -w " + ldflags
	}

	args := []string{"build"}
	if ctx.Verbose {
		args = append(args, "-v")
	}
	args = append(args, "-ldflags", ldflags, "-o", outputPath, "./cmd/"+name)

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	if ctx.Verbose {
		fmt.Printf("Running: go %s\n", strings.Join(args, " "))
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Failed to build %s: %v", name, err))
		os.Exit(1)
	}

	if info, err := os.Stat(outputPath); err == nil {
		sizeMB := float64(info.Size()) / 1024 / 1024
		printSuccess(fmt.Sprintf("Built %s (%.1f MB)", exeName, sizeMB))
	}
}

// gitCommit returns the short hash of HEAD, or "unknown" outside a checkout.
func gitCommit() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

func clean(verbose bool) {
	printInfo("Cleaning build artifacts and logs...")
	clearLogs(verbose)

	if err := os.RemoveAll(distDir); err != nil {
		printError(fmt.Sprintf("Failed to clean dist directory: %v", err))
	}
	printSuccess("Build artifacts cleaned")
}

func runTests(verbose bool) {
	printInfo("Running Go tests...")
	args := []string{"test", "-race"}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "./...")

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Go tests failed: %v", err))
		os.Exit(1)
	}
	printSuccess("All tests passed")
}

func prepareDirectories(verbose bool) {
	dirs := []string{
		distDir,
		filepath.Join(distDir, "data"),
		filepath.Join(distDir, "logs"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			printError(fmt.Sprintf("Failed to create directory %s: %v", dir, err))
		} else if verbose {
			fmt.Printf("  Created: %s\n", dir)
		}
	}
}

func copyConfigFiles(verbose bool) {
	src := filepath.Join(rootDir, "gradesync.example.yaml")
	if _, err := os.Stat(src); err != nil {
		return
	}
	dest := filepath.Join(distDir, "gradesync.yaml")
	if _, err := os.Stat(dest); err == nil {
		printInfo("Keeping existing gradesync.yaml")
		return
	}
	if err := copyFile(src, dest); err != nil {
		printWarning(fmt.Sprintf("Failed to copy %s: %v", src, err))
		return
	}
	if verbose {
		fmt.Printf("  Copied: %s\n", dest)
	}
}

func copyFile(src, dest string) error {
	input, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	return os.WriteFile(dest, input, 0644)
}

func clearLogs(verbose bool) {
	printInfo("Clearing log files...")

	for _, dir := range []string{filepath.Join(distDir, "logs"), filepath.Join(rootDir, "logs")} {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if !info.IsDir() && strings.HasSuffix(path, ".log") {
				if verbose {
					fmt.Printf("  Removing: %s\n", path)
				}
				os.Remove(path)
			}
			return nil
		})
	}
	printSuccess("Log files cleared")
}

func showHelp() {
	fmt.Println("Usage: go run build.go [-target=TARGET] [-v]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  all               Build every command (default)")
	fmt.Println("  updater           Build the grade merge only")
	fmt.Println("  compare           Build the grade comparison only")
	fmt.Println("  summarize         Build the submission summary only")
	fmt.Println("  unsubmitted       Build the unsubmitted finder only")
	fmt.Println("  roster            Build the roster comparison only")
	fmt.Println("  completers        Build the completers check only")
	fmt.Println("  pipeline          Build the full pipeline only")
	fmt.Println("  clean             Remove dist/ and log files")
	fmt.Println("  test              Run all tests")
	fmt.Println("  release           Clean, test and build stripped binaries")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -v                Verbose output")
}
