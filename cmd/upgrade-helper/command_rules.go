package main

import (
	"fmt"
	"text/tabwriter"

	upgradehelper "github.com/jkuester/cht-upgrade-helper"
	"github.com/jkuester/cht-upgrade-helper/rules"
)

// RulesCmd represents the rules command
type RulesCmd struct{}

// Run executes the rules command
func (cmd *RulesCmd) Run(ctx *Context) error {
	config, err := upgradehelper.LoadConfig(ctx.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	w := tabwriter.NewWriter(ctx.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tENABLED")

	for _, rule := range rules.Defaults() {
		fmt.Fprintf(w, "%s\t%s\t%t\n", rule.ID(), rule.Title(), config.IsEnabled(rule.ID()))
	}

	return w.Flush()
}
