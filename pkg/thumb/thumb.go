// Package thumb generates row-height thumbnails in the background for photos
// that are about to scroll into view.
package thumb

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	"github.com/otiai10/copy"
	"k8s.io/klog/v2"

	"github.com/tstromberg/photowall/pkg/photo"
)

var (
	// ModTimeFormat is part of thumbnail names so edits bust caches.
	ModTimeFormat = "20060102150405"
	// Dir is where thumbnails live inside the output directory.
	Dir = "_thumbs"
)

// Meta describes a thumbnail on disk.
type Meta struct {
	X       int
	Y       int
	RelPath string
	Path    string
}

// URL returns the URL path the thumbnail is served under.
func (m Meta) URL() string {
	parts := strings.Split(filepath.ToSlash(m.RelPath), "/")
	for n, p := range parts {
		parts[n] = url.PathEscape(p)
	}
	return "/" + strings.Join(parts, "/")
}

// Options configures a Loader.
type Options struct {
	OutDir string
	// Resolve maps an item ID to its source file.
	Resolve func(id string) (string, bool)
	// Mirror copies originals into OutDir alongside their thumbnails.
	Mirror bool

	Quality   int
	Step      int
	Workers   int
	QueueSize int
}

type request struct {
	id     string
	src    string
	height int
}

// Loader creates thumbnails on worker goroutines. Requests are served newest
// first; once the queue is full the oldest request is dropped.
type Loader struct {
	o Options

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []request
	ready  map[string]Meta
	closed bool
	wg     sync.WaitGroup
}

// New starts a loader.
func New(o Options) *Loader {
	if o.Quality == 0 {
		o.Quality = 85
	}
	if o.Step == 0 {
		o.Step = 160
	}
	if o.Workers == 0 {
		o.Workers = 4
	}
	if o.QueueSize == 0 {
		o.QueueSize = 100
	}

	l := &Loader{o: o, ready: map[string]Meta{}}
	l.cond = sync.NewCond(&l.mu)
	for range o.Workers {
		l.wg.Add(1)
		go l.worker()
	}
	return l
}

// Bucket rounds height up to a multiple of step so nearby sizes share a thumbnail.
func Bucket(height float64, step int) int {
	b := int(math.Ceil(height/float64(step))) * step
	return max(b, step)
}

// Load queues a thumbnail for i at roughly the given display height. It never blocks on image work.
func (l *Loader) Load(i *photo.Item, _, height float64) {
	src, ok := l.o.Resolve(i.ID)
	if !ok {
		klog.Warningf("no source for %s", i.ID)
		return
	}
	h := Bucket(height, l.o.Step)

	l.mu.Lock()
	defer l.mu.Unlock()
	if m, ok := l.ready[i.ID]; ok && m.Y >= h {
		return
	}
	if l.closed {
		return
	}
	if len(l.queue) >= l.o.QueueSize {
		klog.V(1).Infof("thumbnail queue full, dropping %s", l.queue[0].id)
		l.queue = l.queue[1:]
	}
	l.queue = append(l.queue, request{id: i.ID, src: src, height: h})
	l.cond.Signal()
}

// Lookup returns the largest ready thumbnail for id.
func (l *Loader) Lookup(id string) (Meta, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.ready[id]
	return m, ok
}

// Close stops the workers once they finish their current request.
func (l *Loader) Close() {
	l.mu.Lock()
	l.closed = true
	l.queue = nil
	l.cond.Broadcast()
	l.mu.Unlock()
	l.wg.Wait()
}

func (l *Loader) worker() {
	defer l.wg.Done()
	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.closed {
			l.cond.Wait()
		}
		if l.closed {
			l.mu.Unlock()
			return
		}
		last := len(l.queue) - 1
		r := l.queue[last]
		l.queue = l.queue[:last]
		l.mu.Unlock()

		m, err := l.Generate(r.id, r.src, r.height)
		if err != nil {
			klog.Errorf("thumbnail for %s: %v", r.id, err)
			continue
		}

		l.mu.Lock()
		if prev, ok := l.ready[r.id]; !ok || m.Y > prev.Y {
			l.ready[r.id] = m
		}
		l.mu.Unlock()
	}
}

// Generate creates (or reuses) the thumbnail of src at height.
func (l *Loader) Generate(id string, src string, height int) (Meta, error) {
	sst, err := os.Stat(src)
	if err != nil {
		return Meta{}, fmt.Errorf("stat: %w", err)
	}

	if l.o.Mirror {
		if err := mirror(src, filepath.Join(l.o.OutDir, filepath.FromSlash(id)), sst); err != nil {
			return Meta{}, fmt.Errorf("mirror: %w", err)
		}
	}

	rel := relPath(id, height, sst)
	full := filepath.Join(l.o.OutDir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return Meta{}, fmt.Errorf("mkdir: %w", err)
	}

	st, err := os.Stat(full)
	if err == nil && st.Size() > int64(128) {
		klog.V(1).Infof("%s exists (%d bytes)", full, st.Size())
		m, err := readThumb(full)
		if err == nil {
			m.RelPath = rel
			return m, nil
		}
		klog.Warningf("unable to read thumb: %v", err)
	}

	img, err := imgio.Open(src)
	if err != nil {
		return Meta{}, fmt.Errorf("imgio.Open: %w", err)
	}
	m, err := createThumb(img, full, height, l.o.Quality)
	if err != nil {
		return Meta{}, fmt.Errorf("create thumb: %w", err)
	}
	m.RelPath = rel
	klog.V(1).Infof("created thumb: %+v", m)
	return m, nil
}

// mirror copies src to dest unless dest is already a current copy.
func mirror(src string, dest string, sst os.FileInfo) error {
	dst, err := os.Stat(dest)
	switch {
	case err != nil:
		klog.V(1).Infof("updating %s: does not exist", dest)
	case sst.Size() != dst.Size():
		klog.Infof("updating %s: size mismatch", dest)
	case sst.ModTime().After(dst.ModTime()):
		klog.Infof("updating %s: source newer", dest)
	default:
		return nil
	}
	return copy.Copy(src, dest)
}

func createThumb(i image.Image, path string, height int, quality int) (Meta, error) {
	if i.Bounds().Dy() == 0 || i.Bounds().Dx() == 0 {
		return Meta{}, fmt.Errorf("empty image %v", i.Bounds())
	}

	scale := float64(i.Bounds().Dy()) / float64(height)
	width := max(1, int(float64(i.Bounds().Dx())/scale))
	klog.V(1).Infof("creating %dx%d thumb: %s - %+v", width, height, path, i.Bounds())

	rimg := transform.Resize(i, width, height, transform.Lanczos)
	if err := imgio.Save(path, rimg, imgio.JPEGEncoder(quality)); err != nil {
		return Meta{}, fmt.Errorf("save: %w", err)
	}
	return Meta{X: rimg.Bounds().Dx(), Y: rimg.Bounds().Dy(), Path: path}, nil
}

func readThumb(path string) (Meta, error) {
	f, err := os.Open(path)
	if err != nil {
		return Meta{}, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	ic, _, err := image.DecodeConfig(f)
	if err != nil {
		return Meta{}, fmt.Errorf("unable to decode: %w", err)
	}
	return Meta{X: ic.Width, Y: ic.Height, Path: path}, nil
}

// relPath names a thumbnail after its source, height and modification time.
func relPath(id string, height int, st os.FileInfo) string {
	rel := filepath.FromSlash(id)
	base := filepath.Base(rel)
	noExt := strings.TrimSuffix(base, filepath.Ext(base))
	name := fmt.Sprintf("%s@y%d_%s.jpg", noExt, height, st.ModTime().Format(ModTimeFormat))
	return filepath.Join(Dir, filepath.Dir(rel), name)
}
