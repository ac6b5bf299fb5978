package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	upgradehelper "github.com/jkuester/cht-upgrade-helper"
	"github.com/jkuester/cht-upgrade-helper/analyzer"
	"github.com/jkuester/cht-upgrade-helper/formfile"
	"github.com/jkuester/cht-upgrade-helper/report"
)

// CheckCmd represents the check command
type CheckCmd struct {
	ConfigDir      string   `help:"CHT project directory containing the forms" short:"d" name:"config-dir"`
	Output         string   `help:"Report file path ('-' for stdout)" short:"o"`
	Format         string   `help:"Report format (markdown, html, yaml, json)" short:"f"`
	Parallel       int      `help:"Number of forms processed in parallel (0 = CPU count)"`
	FailOnFindings bool     `help:"Exit with status 1 when issues are found"`
	Forms          []string `arg:"" optional:"" help:"Form files (*.xml, relative to the config dir) or form names to check"`
}

// Run executes the check command
func (cmd *CheckCmd) Run(ctx *Context) error {
	config, err := upgradehelper.LoadConfig(ctx.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cmd.applyOverrides(config)

	ruleSet, err := config.BuildRules()
	if err != nil {
		return fmt.Errorf("failed to configure rules: %w", err)
	}

	format, err := report.ParseFormat(config.Format)
	if err != nil {
		return err
	}

	paths, err := cmd.collectForms(config)
	if err != nil {
		return err
	}

	if len(paths) == 0 {
		return fmt.Errorf("%w in %s (searched %v)", upgradehelper.ErrNoForms, config.ConfigDir, config.FormDirs)
	}

	ctx.Infof("Checking %d forms in %s", len(paths), config.ConfigDir)

	runCtx := context.Background()

	sources, err := formfile.Load(runCtx, config.ConfigDir, paths, config.Parallel)
	if err != nil {
		return err
	}

	a := analyzer.New(ruleSet,
		analyzer.WithParallel(config.Parallel),
		analyzer.WithIgnore(config.Ignores),
		analyzer.WithProgress(func(formID string, findings int) {
			ctx.Infof("  %s: %d issues", formID, findings)
		}),
	)

	result, err := a.Run(runCtx, sources)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if err := writeReport(ctx, config.Output, result, format); err != nil {
		return err
	}

	if result.IsEmpty() {
		ctx.Successf("No upgrade issues found in %d forms", len(sources))
	} else {
		ctx.Warnf("Found %d upgrade issues in %d forms", result.Count(), len(sources))
	}

	if cmd.FailOnFindings && !result.IsEmpty() {
		return fmt.Errorf("%w: %d", ErrFindingsReported, result.Count())
	}

	return nil
}

// applyOverrides copies command line settings over the configuration
func (cmd *CheckCmd) applyOverrides(config *upgradehelper.Config) {
	if cmd.ConfigDir != "" {
		config.ConfigDir = cmd.ConfigDir
	}

	if cmd.Output != "" {
		config.Output = cmd.Output
	}

	if cmd.Format != "" {
		config.Format = cmd.Format
	}

	if cmd.Parallel > 0 {
		config.Parallel = cmd.Parallel
	}
}

// collectForms resolves explicit form files and discovers forms by name.
// Without arguments every form of the configured directories is checked.
func (cmd *CheckCmd) collectForms(config *upgradehelper.Config) ([]string, error) {
	var files, names []string

	for _, arg := range cmd.Forms {
		if formfile.IsFormFile(arg) {
			files = append(files, arg)
		} else {
			names = append(names, arg)
		}
	}

	paths, err := formfile.Resolve(config.ConfigDir, files)
	if err != nil {
		return nil, err
	}

	if len(files) > 0 && len(names) == 0 {
		return paths, nil
	}

	discovered, err := formfile.Discover(config.ConfigDir, config.FormDirs, names)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(paths))
	for _, path := range paths {
		seen[path] = true
	}

	for _, path := range discovered {
		if !seen[path] {
			seen[path] = true
			paths = append(paths, path)
		}
	}

	return paths, nil
}

// createReportFile opens the report output file
var createReportFile = func(name string) (io.WriteCloser, error) {
	return os.Create(name)
}

// writeReport renders the report to stdout or to the output file
func writeReport(ctx *Context, output string, r *report.Report, format report.Format) (err error) {
	if output == "" || output == upgradehelper.StdoutOutput {
		return report.Render(ctx.Stdout, r, format)
	}

	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", output, err)
	}

	f, err := createReportFile(output)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}

	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to write report file %s: %w", output, closeErr)
		}
	}()

	if err := report.Render(f, r, format); err != nil {
		return err
	}

	ctx.Infof("Report written to %s", output)

	return nil
}
