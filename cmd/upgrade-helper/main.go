package main

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
)

const version = "v0.1.0"

// Context represents the global context for commands
type Context struct {
	Config  string
	Verbose bool
	Quiet   bool
	// Stdout receives reports, Stderr receives status lines
	Stdout io.Writer
	Stderr io.Writer

	// guards Stderr, status lines come from analysis goroutines
	mu sync.Mutex
}

func (c *Context) printf(attr color.Attribute, format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	color.New(attr).Fprintf(c.Stderr, format+"\n", args...)
}

// Infof prints a progress line in verbose mode
func (c *Context) Infof(format string, args ...any) {
	if c.Verbose && !c.Quiet {
		c.printf(color.FgBlue, format, args...)
	}
}

// Warnf prints a warning unless quiet
func (c *Context) Warnf(format string, args ...any) {
	if !c.Quiet {
		c.printf(color.FgYellow, format, args...)
	}
}

// Successf prints a summary line unless quiet
func (c *Context) Successf(format string, args ...any) {
	if !c.Quiet {
		c.printf(color.FgGreen, format, args...)
	}
}

// CLI represents the command-line interface
var CLI struct {
	Config  string     `help:"Configuration file path" default:"upgrade-helper.yaml"`
	Verbose bool       `help:"Enable verbose output" short:"v"`
	Quiet   bool       `help:"Suppress status output" short:"q"`
	Check   CheckCmd   `cmd:"" default:"withargs" help:"Check forms for upgrade issues"`
	Rules   RulesCmd   `cmd:"" help:"List the available rules"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// VersionCmd represents the version command
type VersionCmd struct{}

// Run executes the version command
func (cmd *VersionCmd) Run(ctx *Context) error {
	fmt.Fprintf(ctx.Stdout, "cht-upgrade-helper %s\n", version)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("upgrade-helper"),
		kong.Description("Finds XForm constructs that behave differently after a CHT upgrade"),
	)

	appCtx := &Context{
		Config:  CLI.Config,
		Verbose: CLI.Verbose,
		Quiet:   CLI.Quiet,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}

	err := ctx.Run(appCtx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
