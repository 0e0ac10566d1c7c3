// Command amuletctl is a diagnostic CLI over Anvil region files: it
// inspects a region's populated chunk slots, dumps a single chunk's raw
// NBT as JSON, and compacts a region to reclaim sectors freed by deletes
// and rewrites.
//
// Grounded on bwkimmel-mcstrings' commands/ package (Name/Synopsis/
// Usage/SetFlags/Execute shape, the "ask before touching files in place"
// confirm() pattern for compact) and wired into a proper main() using
// google/subcommands.Register/Execute, which the reference tool imports
// but never actually registers.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&inspectCmd{}, "")
	subcommands.Register(&compactCmd{}, "")
	subcommands.Register(&dumpCmd{}, "")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
