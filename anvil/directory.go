package anvil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// RegionCoord identifies a region file by its region-grid coordinates, the
// X/Z embedded in its "r.<X>.<Z>.mca" filename.
type RegionCoord struct {
	X, Z int
}

// OpenAll scans dir for region files named "r.<X>.<Z>.mca" (the naming
// convention read in bwkimmel-mcstrings/mcstrings.go's directory walk) and
// opens them concurrently, returning one Region per coordinate. Opening
// each file only parses its header, so fanning this out with an errgroup
// keeps a full-dimension scan proportional to the slowest single open
// rather than the sum of all of them.
//
// If any region fails to open, OpenAll closes every region it had already
// opened and returns the first error.
func OpenAll(ctx context.Context, dir string, defaultCompression CompressionID) (map[RegionCoord]*Region, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("anvil: read dir %q: %w", dir, err)
	}

	type found struct {
		coord RegionCoord
		path  string
	}
	var files []found
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		var x, z int
		if _, err := fmt.Sscanf(e.Name(), "r.%d.%d.mca", &x, &z); err != nil {
			continue
		}
		files = append(files, found{coord: RegionCoord{X: x, Z: z}, path: filepath.Join(dir, e.Name())})
	}

	regions := make([]*Region, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, fl := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := Open(fl.path, defaultCompression)
			if err != nil {
				return fmt.Errorf("anvil: open %q: %w", fl.path, err)
			}
			regions[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, r := range regions {
			if r != nil {
				r.Close()
			}
		}
		return nil, err
	}

	out := make(map[RegionCoord]*Region, len(files))
	for i, fl := range files {
		out[fl.coord] = regions[i]
	}
	return out, nil
}
