// wallview browses a photo wall in the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"k8s.io/klog/v2"

	"github.com/tstromberg/photowall/pkg/config"
	"github.com/tstromberg/photowall/pkg/feed"
	"github.com/tstromberg/photowall/pkg/library"
	"github.com/tstromberg/photowall/pkg/overlay"
	"github.com/tstromberg/photowall/pkg/photo"
	"github.com/tstromberg/photowall/pkg/tui"
)

var (
	configPath = flag.String("config", "", "path to config file (default ~/.config/photowall/config.toml)")
	groupFlag  = flag.String("group", "", "group photos by month or person")
	orderFlag  = flag.String("order", "", "group order: asc or desc")
)

func main() {
	klog.InitFlags(nil)
	// klog would draw over the terminal UI
	_ = flag.Set("logtostderr", "false")
	_ = flag.Set("alsologtostderr", "false")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		klog.Exitf("config: %v", err)
	}
	if len(flag.Args()) > 0 {
		cfg.Library.InDirs = flag.Args()
	}
	if *groupFlag != "" {
		cfg.Library.Group = *groupFlag
	}
	if *orderFlag != "" {
		cfg.Library.Order = *orderFlag
	}
	if len(cfg.Library.InDirs) == 0 {
		klog.Exitf("usage: %s <input_dir> [input_dir ...]", os.Args[0])
	}

	key, err := photo.ParseKey(cfg.Library.Group)
	if err != nil {
		klog.Exitf("group: %v", err)
	}
	order, err := photo.ParseOrder(cfg.Library.Order)
	if err != nil {
		klog.Exitf("order: %v", err)
	}

	lib, err := library.Find(context.Background(), library.Options{
		InDirs:          cfg.Library.InDirs,
		ProcessSidecars: cfg.Library.ProcessSidecars,
		People:          cfg.PeopleByName(),
	})
	if err != nil {
		klog.Exitf("find failed: %v", err)
	}

	album := map[overlay.Action][]string{}
	e, err := feed.New(cfg.Layout,
		feed.WithGrouping(key, order),
		feed.WithCallbacks(overlay.Callbacks{
			OnRequestContextAction: func(id string, a overlay.Action) { album[a] = append(album[a], id) },
		}),
	)
	if err != nil {
		klog.Exitf("engine: %v", err)
	}
	if err := e.SetItems(lib.Items); err != nil {
		klog.Exitf("items: %v", err)
	}

	p := tea.NewProgram(tui.New(tui.Options{Engine: e, Title: cfg.Serve.Title}), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		klog.Exitf("tui: %v", err)
	}

	if ids := e.Overlay().Selection().IDs(); len(ids) > 0 {
		fmt.Printf("selected: %s\n", strings.Join(ids, " "))
	}
	for _, a := range overlay.Actions {
		if ids := album[a]; len(ids) > 0 {
			fmt.Printf("%s: %s\n", a, strings.Join(ids, " "))
		}
	}
}
