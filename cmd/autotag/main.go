// autotag adds suggested tags to JPEG images using Gemini.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/barasher/go-exiftool"
	"k8s.io/klog/v2"

	"github.com/tstromberg/photowall/pkg/library"
	"github.com/tstromberg/photowall/pkg/tagger"
)

var (
	dryRun    = flag.Bool("n", false, "dry-run mode, don't tag things")
	overwrite = flag.Bool("o", false, "overwrite existing tags")
	caption   = flag.Bool("caption", false, "also write a caption for photos without one")
	model     = flag.String("model", tagger.DefaultModel, "Gemini model to use")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	klog.Infof("autotag starting with %d input directories", len(flag.Args()))
	if len(flag.Args()) == 0 {
		klog.Exitf("No input directories provided. Usage: %s <input_dir1> [input_dir2 ...]", os.Args[0])
	}

	ctx := context.Background()
	client, err := tagger.NewClient(ctx, "")
	if err != nil {
		klog.Exitf("client: %v", err)
	}

	lib, err := library.Find(ctx, library.Options{InDirs: flag.Args()})
	if err != nil {
		klog.Exitf("unable to collect: %v", err)
	}

	e, err := exiftool.NewExiftool()
	if err != nil {
		klog.Exitf("exiftool: %v", err)
	}
	defer func() {
		if err := e.Close(); err != nil {
			klog.Errorf("Failed to close exiftool: %v", err)
		}
	}()

	tagged := 0
	for _, i := range lib.Items {
		path, ok := lib.Path(i.ID)
		if !ok {
			continue
		}
		wantTags := *overwrite || len(i.Keywords) == 0
		wantCaption := *caption && i.Caption == ""
		if !wantTags && !wantCaption {
			klog.V(1).Infof("%s has tags: %v", path, i.Keywords)
			continue
		}

		o := e.ExtractMetadata(path)
		if wantTags {
			tags, err := tagger.Suggest(ctx, client.Models, *model, path)
			if err != nil {
				klog.Errorf("suggest %s: %v", path, err)
				continue
			}
			klog.Infof("adding tags to %s: %v", path, tags)
			o[0].SetStrings("Keywords", tags)
		}
		if wantCaption {
			c, err := tagger.Caption(ctx, client.Models, *model, path)
			if err != nil {
				klog.Errorf("caption %s: %v", path, err)
			} else {
				klog.Infof("adding caption to %s: %q", path, c)
				o[0].SetString("Headline", c)
			}
		}

		if *dryRun {
			continue
		}
		e.WriteMetadata(o)
		if o[0].Err != nil {
			klog.Errorf("Failed to write metadata for %s: %v", path, o[0].Err)
			continue
		}
		tagged++
	}

	klog.Infof("autotag completed. Updated %d of %d images", tagged, len(lib.Items))
}
