package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/Amulet-Team/Amulet-Level/anvil"
	"github.com/Amulet-Team/Amulet-Level/levelconfig"
)

// inspectCmd implements the inspect subcommand.
type inspectCmd struct {
	configPath string
}

func (*inspectCmd) Name() string     { return "inspect" }
func (*inspectCmd) Synopsis() string { return "List populated chunk slots in a region file." }
func (*inspectCmd) Usage() string {
	return `inspect [-config dir] <region-file>
List the local chunk coordinates populated in a region file, one per line,
followed by a summary count.

`
}
func (c *inspectCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", "", "Directory to look for amulet-level.yaml in.")
}

func (c *inspectCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "<region-file> is required.")
		return subcommands.ExitUsageError
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

	count := 0
	for lx, lz := range r.AllCoords() {
		fmt.Printf("%d,%d\n", lx, lz)
		count++
	}
	fmt.Printf("%d chunk(s) populated.\n", count)
	return subcommands.ExitSuccess
}
