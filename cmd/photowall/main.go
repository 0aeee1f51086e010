package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"k8s.io/klog/v2"

	"github.com/tstromberg/photowall/pkg/config"
	"github.com/tstromberg/photowall/pkg/feed"
	"github.com/tstromberg/photowall/pkg/library"
	"github.com/tstromberg/photowall/pkg/manage"
	"github.com/tstromberg/photowall/pkg/overlay"
	"github.com/tstromberg/photowall/pkg/photo"
	"github.com/tstromberg/photowall/pkg/render"
	"github.com/tstromberg/photowall/pkg/thumb"
)

var (
	configPath = flag.String("config", "", "path to config file (default ~/.config/photowall/config.toml)")
	inDirs     = flag.String("in", "", "comma-separated input directories")
	outDir     = flag.String("out", "", "Location of output directory")
	title      = flag.String("title", "", "Title of photo wall")
	groupFlag  = flag.String("group", "", "group photos by month or person")
	orderFlag  = flag.String("order", "", "group order: asc or desc")
	width      = flag.Float64("width", 1200, "container width for the static page")
	listen     = flag.Bool("listen", false, "serve the wall via HTTP")
	addr       = flag.String("addr", "", "host:port to bind to in listen mode")
	watchFlag  = flag.Bool("watch", false, "watch for changes to input directories and rebuild")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		klog.Exitf("config: %v", err)
	}
	applyFlags(&cfg)

	if len(cfg.Library.InDirs) == 0 {
		klog.Exitf("--in is a required flag")
	}
	if cfg.Library.OutDir == "" {
		klog.Exitf("--out is a required flag")
	}

	key, err := photo.ParseKey(cfg.Library.Group)
	if err != nil {
		klog.Exitf("group: %v", err)
	}
	order, err := photo.ParseOrder(cfg.Library.Order)
	if err != nil {
		klog.Exitf("order: %v", err)
	}

	ctx := context.Background()
	lo := library.Options{
		InDirs:          cfg.Library.InDirs,
		ProcessSidecars: cfg.Library.ProcessSidecars,
		People:          cfg.PeopleByName(),
	}
	lib, err := library.Find(ctx, lo)
	if err != nil {
		klog.Exitf("find failed: %v", err)
	}

	var current atomic.Pointer[library.Library]
	current.Store(lib)

	thumbs := thumb.New(thumb.Options{
		OutDir:  cfg.Library.OutDir,
		Mirror:  true,
		Resolve: func(id string) (string, bool) { return current.Load().Path(id) },
	})
	defer thumbs.Close()

	e, err := feed.New(cfg.Layout,
		feed.WithLoader(thumbs),
		feed.WithGrouping(key, order),
		feed.WithCallbacks(overlay.Callbacks{
			OnItemClick:            func(i *photo.Item) { klog.Infof("open %s", i.ID) },
			OnToggleSelect:         func(id string) { klog.V(1).Infof("toggle %s", id) },
			OnRequestContextAction: func(id string, a overlay.Action) { klog.Infof("%s requested for %s", a, id) },
		}),
	)
	if err != nil {
		klog.Exitf("engine: %v", err)
	}
	if err := e.SetItems(lib.Items); err != nil {
		klog.Exitf("items: %v", err)
	}

	source := func(i *photo.Item) string {
		if m, ok := thumbs.Lookup(i.ID); ok {
			return m.URL()
		}
		return i.URL
	}

	if !*listen {
		if err := export(e, thumbs, lib, cfg.Serve.Title, cfg.Library.OutDir); err != nil {
			klog.Exitf("export failed: %v", err)
		}
	}

	srv := manage.New(e, manage.Options{Title: cfg.Serve.Title, OutDir: cfg.Library.OutDir, Source: source})

	var wg sync.WaitGroup
	if *watchFlag {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := watch(cfg.Library.InDirs, lib, func() error {
				l, err := library.Find(ctx, lo)
				if err != nil {
					return fmt.Errorf("find: %w", err)
				}
				current.Store(l)
				return srv.Update(func(e *feed.Engine) error {
					if err := e.SetItems(l.Items); err != nil {
						return err
					}
					if *listen {
						return nil
					}
					return export(e, thumbs, l, cfg.Serve.Title, cfg.Library.OutDir)
				})
			})
			if err != nil {
				klog.Errorf("watch: %v", err)
			}
		}()
	}

	if *listen {
		wg.Add(1)
		go func() {
			defer wg.Done()
			serve(srv, cfg.Serve.Addr)
		}()
	}

	wg.Wait()
}

func applyFlags(cfg *config.Config) {
	if *inDirs != "" {
		cfg.Library.InDirs = strings.Split(*inDirs, ",")
	}
	if *outDir != "" {
		cfg.Library.OutDir = *outDir
	}
	if *title != "" {
		cfg.Serve.Title = *title
	}
	if *groupFlag != "" {
		cfg.Library.Group = *groupFlag
	}
	if *orderFlag != "" {
		cfg.Library.Order = *orderFlag
	}
	if *addr != "" {
		cfg.Serve.Addr = *addr
	}
}

// export writes a static index.html with every row, generating thumbnails first.
func export(e *feed.Engine, thumbs *thumb.Loader, lib *library.Library, title string, out string) error {
	e.OnWidthChanged(*width)
	rows := e.All()

	urls := map[string]string{}
	for _, p := range rows {
		for _, c := range p.Row.Cells {
			src, ok := lib.Path(c.Item.ID)
			if !ok {
				continue
			}
			m, err := thumbs.Generate(c.Item.ID, src, thumb.Bucket(p.Row.Height, 160))
			if err != nil {
				klog.Errorf("thumbnail for %s: %v", c.Item.ID, err)
				continue
			}
			urls[c.Item.ID] = strings.TrimPrefix(m.URL(), "/")
		}
	}

	page := render.Page{
		Title:       title,
		Width:       *width,
		TotalHeight: e.Rows().TotalHeight,
		Rows:        rows,
		Source: func(i *photo.Item) string {
			if u, ok := urls[i.ID]; ok {
				return u
			}
			return strings.TrimPrefix(i.URL, "/")
		},
	}

	var buf bytes.Buffer
	if err := render.Document(&buf, page); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	p := filepath.Join(out, "index.html")
	klog.Infof("Writing %d rows to %s", len(rows), p)
	return os.WriteFile(p, buf.Bytes(), 0o644)
}

// serve serves the wall via HTTP
func serve(srv *manage.Server, addr string) {
	klog.Infof("Listening on %s...", addr)
	hs := &http.Server{Addr: addr, Handler: srv.Handler(), ReadHeaderTimeout: 10 * time.Second}
	if err := hs.ListenAndServe(); err != nil {
		klog.Exitf("listen failed: %v", err)
	}
}

// watch watches the photo directories for changes and calls rebuild
func watch(roots []string, lib *library.Library, rebuild func() error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("new watcher: %w", err)
	}
	defer w.Close()

	dirs := slices.Clone(roots)
	for _, i := range lib.Items {
		if p, ok := lib.Path(i.ID); ok {
			dirs = append(dirs, filepath.Dir(p))
		}
	}
	slices.Sort(dirs)
	dirs = slices.Compact(dirs)

	klog.Infof("watching %d dirs ...", len(dirs))
	for _, d := range dirs {
		if err := w.Add(d); err != nil {
			return fmt.Errorf("add %s: %w", d, err)
		}
	}

	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			klog.V(1).Infof("event: %v", event)
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				if err := rebuild(); err != nil {
					klog.Errorf("rebuild failed: %v", err)
				}
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			klog.Errorf("watch error: %v", err)
		}
	}
}
