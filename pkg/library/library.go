// Package library finds photos on disk and turns their metadata into wall items.
package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/barasher/go-exiftool"
	"github.com/karrick/godirwalk"
	"k8s.io/klog/v2"

	"github.com/tstromberg/photowall/pkg/photo"
)

var exifDate = "2006:01:02 15:04:05"

// Extensions are the file suffixes Find picks up.
var Extensions = []string{".jpg", ".jpeg"}

// Options controls Find.
type Options struct {
	InDirs          []string
	ProcessSidecars bool
	// People supplies birth year and avatar by lowercased person name.
	People map[string]photo.Person
}

// TakeoutSidecar is a JSON file for EXIF overrides that is compatible with Google Takeout.
type TakeoutSidecar struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	// Not compatible
	Tags []string `json:"tags"`
}

// Library is the set of photos found on disk.
type Library struct {
	Items []*photo.Item
	paths map[string]string
}

// Path returns the file behind an item ID.
func (l *Library) Path(id string) (string, bool) {
	p, ok := l.paths[id]
	return p, ok
}

// Find walks every input directory and reads each photo's metadata.
func Find(ctx context.Context, o Options) (*Library, error) {
	if len(o.InDirs) == 0 {
		return nil, errors.New("no input directories")
	}

	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil, fmt.Errorf("exiftool: %w", err)
	}
	defer et.Close()

	l := &Library{paths: map[string]string{}}
	multi := len(o.InDirs) > 1

	for _, root := range o.InDirs {
		klog.Infof("scanning %s ...", root)
		err := godirwalk.Walk(root, &godirwalk.Options{
			Callback: func(path string, de *godirwalk.Dirent) error {
				if err := ctx.Err(); err != nil {
					return err
				}
				if filepath.Base(path)[0] == '.' && path != root {
					if de.IsDir() {
						return godirwalk.SkipThis
					}
					return nil
				}
				if de.IsDir() || !isPhoto(path) {
					return nil
				}

				klog.V(1).Infof("found %s", path)
				fm := et.ExtractMetadata(path)[0]
				if fm.Err != nil {
					klog.Errorf("extract fail for %q: %v", path, fm.Err)
					return nil
				}

				rel, err := filepath.Rel(root, path)
				if err != nil {
					return err
				}
				if multi {
					rel = filepath.Join(filepath.Base(root), rel)
				}

				i, err := fromMetadata(fm, o.People)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				i.ID = filepath.ToSlash(rel)
				i.URL = urlSafePath(i.ID)

				if o.ProcessSidecars {
					if err := applySidecar(i, path); err != nil {
						klog.Warningf("sidecar for %s: %v", path, err)
					}
				}

				if _, dup := l.paths[i.ID]; dup {
					return fmt.Errorf("%s: %w", path, photo.ErrDuplicateID)
				}
				l.paths[i.ID] = path
				l.Items = append(l.Items, i)
				return nil
			},
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}

	klog.Infof("found %d photos in %d directories", len(l.Items), len(o.InDirs))
	return l, nil
}

func isPhoto(path string) bool {
	return slices.Contains(Extensions, strings.ToLower(filepath.Ext(path)))
}

// fromMetadata builds an item from exiftool output. Missing fields are left empty.
func fromMetadata(fm exiftool.FileMetadata, people map[string]photo.Person) (*photo.Item, error) {
	i := &photo.Item{}
	var err error

	for k, v := range fm.Fields {
		klog.V(2).Infof("%q=%v", k, v)
	}

	i.Width, err = fm.GetInt("ImageWidth")
	if err != nil {
		klog.V(1).Infof("unable to get width for %s: %v", fm.File, err)
	}
	i.Height, err = fm.GetInt("ImageHeight")
	if err != nil {
		klog.V(1).Infof("unable to get height for %s: %v", fm.File, err)
	}

	i.Caption, err = fm.GetString("Headline")
	if err != nil || i.Caption == "" {
		i.Caption, _ = fm.GetString("ImageDescription")
	}
	i.Keywords, _ = fm.GetStrings("Keywords")

	var loc []string
	for _, k := range []string{"City", "Country"} {
		if s, err := fm.GetString(k); err == nil && s != "" {
			loc = append(loc, s)
		}
	}
	i.Location = strings.Join(loc, ", ")

	if names, err := fm.GetStrings("PersonInImage"); err == nil && len(names) > 0 {
		i.Person = person(names[0], people)
		i.PersonLabel = strings.Join(names, ", ")
	}

	ds, err := fm.GetString("DateTimeOriginal")
	if err != nil {
		klog.V(1).Infof("unable to get date time for %s: %v", fm.File, err)
		return i, nil
	}
	i.Taken, err = time.Parse(exifDate, ds)
	if err != nil {
		return nil, fmt.Errorf("parse time %q: %w", ds, err)
	}
	return i, nil
}

func person(name string, people map[string]photo.Person) *photo.Person {
	name = strings.TrimSpace(name)
	key := strings.ToLower(name)
	p := photo.Person{ID: strings.ReplaceAll(key, " ", "-"), Name: name}
	if known, ok := people[key]; ok {
		p.BirthYear = known.BirthYear
		p.Avatar = known.Avatar
	}
	return &p
}

// applySidecar overrides caption and keywords from <photo>.json, if present.
func applySidecar(i *photo.Item, path string) error {
	bs, err := os.ReadFile(path + ".json")
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	var sc TakeoutSidecar
	if err := json.Unmarshal(bs, &sc); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	klog.V(1).Infof("applying sidecar to %s: %+v", path, sc)

	switch {
	case sc.Title != "":
		i.Caption = sc.Title
	case sc.Description != "":
		i.Caption = sc.Description
	}
	if len(sc.Tags) > 0 {
		i.Keywords = sc.Tags
	}
	return nil
}

// urlSafePath escapes each element of a slash-separated path.
func urlSafePath(p string) string {
	parts := strings.Split(p, "/")
	for n, s := range parts {
		parts[n] = url.PathEscape(s)
	}
	return "/" + strings.Join(parts, "/")
}
