// reorg moves photos into year/month directories based on the date they were taken
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"k8s.io/klog/v2"

	"github.com/tstromberg/photowall/pkg/library"
	"github.com/tstromberg/photowall/pkg/photo"
)

var dryRun = flag.Bool("n", false, "dry-run mode, don't move things")

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	if len(flag.Args()) != 1 {
		klog.Exitf("usage: %s [-n] <photo_dir>", os.Args[0])
	}
	root := flag.Args()[0]

	lib, err := library.Find(context.Background(), library.Options{InDirs: []string{root}})
	if err != nil {
		klog.Exitf("unable to collect: %v", err)
	}

	gs, err := photo.Normalize(lib.Items, photo.ByMonth, photo.Ascending)
	if err != nil {
		klog.Exitf("group: %v", err)
	}

	moved := 0
	for _, g := range gs {
		if len(g.Items) == 0 || g.Items[0].Taken.IsZero() {
			klog.Infof("skipping %d photos in %q", len(g.Items), g.Header.Title)
			continue
		}
		t := g.Items[0].Taken.UTC()
		dir := filepath.Join(root, fmt.Sprintf("%d", t.Year()), fmt.Sprintf("%02d", int(t.Month())))

		for _, i := range g.Items {
			old, ok := lib.Path(i.ID)
			if !ok {
				continue
			}
			base := filepath.Base(old)
			// fix bad apostrophes
			base = strings.ReplaceAll(base, "_s ", "'s ")

			new := filepath.Join(dir, base)
			if new == old {
				continue
			}
			klog.Infof("%s -> %s", old, new)
			if *dryRun {
				continue
			}
			if err := move(old, new); err != nil {
				klog.Errorf("move %s: %v", old, err)
				continue
			}
			moved++
		}
	}
	klog.Infof("moved %d of %d photos", moved, len(lib.Items))
}

// move renames old to new, bringing a JSON sidecar along if there is one.
func move(old string, new string) error {
	if _, err := os.Stat(new); err == nil {
		return fmt.Errorf("%s already exists", new)
	}
	if err := os.MkdirAll(filepath.Dir(new), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	if err := os.Rename(old, new); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	if _, err := os.Stat(old + ".json"); err == nil {
		if err := os.Rename(old+".json", new+".json"); err != nil {
			return fmt.Errorf("rename sidecar: %w", err)
		}
	}
	return nil
}
