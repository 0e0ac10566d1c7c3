package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/Amulet-Team/Amulet-Level/anvil"
	"github.com/Amulet-Team/Amulet-Level/internal/levellog"
	"github.com/Amulet-Team/Amulet-Level/levelconfig"
)

// compactCmd implements the compact subcommand.
type compactCmd struct {
	skipConfirm bool
	configPath  string
}

func (*compactCmd) Name() string     { return "compact" }
func (*compactCmd) Synopsis() string { return "Reclaim sectors freed by deletes and overwrites." }
func (*compactCmd) Usage() string {
	return `compact [-config dir] <region-file>
Rewrite a region file with every chunk's sectors packed contiguously after
the header, eliminating gaps left by deletes and by chunks that shrank.

WARNING: This command modifies the region file in place. Back it up first.

`
}
func (c *compactCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.skipConfirm, "skip_confirmation", false, "Do not ask for confirmation before proceeding.")
	f.StringVar(&c.configPath, "config", "", "Directory to look for amulet-level.yaml in.")
}

func (c *compactCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "<region-file> is required.")
		return subcommands.ExitUsageError
	}
	if !c.skipConfirm {
		confirm()
	}
	cfg, err := levelconfig.Load(c.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return subcommands.ExitFailure
	}
	compression, err := cfg.Anvil.CompressionID()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return subcommands.ExitFailure
	}
	r, err := anvil.Open(f.Arg(0), compression)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open region: %v\n", err)
		return subcommands.ExitFailure
	}
	r.SetAllowLZ4(cfg.Anvil.AllowLZ4)
	defer r.Close()

	if err := r.Compact(); err != nil {
		levellog.Default.Errorf("compact: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
