package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/Amulet-Team/Amulet-Level/internal/levellog"
)

// confirm asks the user for confirmation before an in-place modification,
// exiting the process if they decline.
func confirm() {
	fmt.Print("WARNING: This will modify the region file in-place. Make a backup first.\n\nProceed? (y/N): ")
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		levellog.Default.Info("Exiting.")
		os.Exit(1)
	}
	switch strings.TrimSpace(strings.ToLower(scanner.Text())) {
	case "y", "yes":
		return
	default:
		levellog.Default.Info("Exiting.")
		os.Exit(1)
	}
}
