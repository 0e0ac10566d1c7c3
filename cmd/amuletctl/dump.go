package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/google/subcommands"
	"github.com/klauspost/compress/zstd"

	"github.com/Amulet-Team/Amulet-Level/anvil"
	"github.com/Amulet-Team/Amulet-Level/levelconfig"
)

// dumpCmd implements the dump subcommand.
type dumpCmd struct {
	zstdCompress bool
	output       string
	configPath   string
}

func (*dumpCmd) Name() string     { return "dump" }
func (*dumpCmd) Synopsis() string { return "Dump one chunk's raw NBT data as JSON." }
func (*dumpCmd) Usage() string {
	return `dump [<flags>...] <region-file> <local-x> <local-z>
Read the chunk at local coordinate (<local-x>, <local-z>) within a region
file and write its raw NBT tree as JSON to stdout, or to -output if given.

`
}
func (c *dumpCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.zstdCompress, "zstd", false, "Compress the JSON output with zstd.")
	f.StringVar(&c.output, "output", "", "File to write to (stdout if empty).")
	f.StringVar(&c.configPath, "config", "", "Directory to look for amulet-level.yaml in.")
}

func (c *dumpCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() != 3 {
		fmt.Fprintln(os.Stderr, "<region-file> <local-x> <local-z> are required.")
		return subcommands.ExitUsageError
	}
	lx, err := strconv.Atoi(f.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid local-x: %v\n", err)
		return subcommands.ExitUsageError
	}
	lz, err := strconv.Atoi(f.Arg(2))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid local-z: %v\n", err)
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

	raw, err := r.GetChunk(ctx, lx, lz)
	if err != nil {
		fmt.Fprintf(os.Stderr, "get chunk: %v\n", err)
		return subcommands.ExitFailure
	}

	data, err := json.MarshalIndent(map[string]any(raw), "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal chunk: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.zstdCompress {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "create zstd encoder: %v\n", err)
			return subcommands.ExitFailure
		}
		data = enc.EncodeAll(data, nil)
		enc.Close()
	}

	w := os.Stdout
	if c.output != "" {
		f, err := os.Create(c.output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "create output file: %v\n", err)
			return subcommands.ExitFailure
		}
		defer f.Close()
		w = f
	}
	if _, err := w.Write(data); err != nil {
		fmt.Fprintf(os.Stderr, "write output: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
