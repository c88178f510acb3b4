package fonts

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/image/font/sfnt"
)

// SystemDirs returns the conventional font directories of the platform.
func SystemDirs() []string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "darwin":
		return []string{"/System/Library/Fonts", "/Library/Fonts", filepath.Join(home, "Library", "Fonts")}
	case "windows":
		return []string{filepath.Join(os.Getenv("WINDIR"), "Fonts")}
	}
	return []string{"/usr/share/fonts", "/usr/local/share/fonts", filepath.Join(home, ".local", "share", "fonts"), filepath.Join(home, ".fonts")}
}

// Dir is a catalog built by scanning font files (.ttf, .otf, .ttc) under a
// set of directories. The scan runs once, on first use.
type Dir struct {
	dirs   []string
	logger *log.Logger

	once   sync.Once
	static *Static
}

// NewDir returns a directory catalog. No dirs means [SystemDirs].
func NewDir(logger *log.Logger, dirs ...string) *Dir {
	if len(dirs) == 0 {
		dirs = SystemDirs()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Dir{dirs: dirs, logger: logger}
}

// Styles implements [Catalog].
func (d *Dir) Styles(ctx context.Context, family string) ([]Style, error) {
	d.once.Do(d.scan)
	return d.static.Styles(ctx, family)
}

// Families lists every family found.
func (d *Dir) Families() []string {
	d.once.Do(d.scan)
	return d.static.Families()
}

func (d *Dir) scan() {
	d.static = NewStatic(nil)
	files := 0
	for _, root := range d.dirs {
		_ = filepath.WalkDir(root, func(path string, e fs.DirEntry, err error) error {
			if err != nil || e.IsDir() {
				return nil
			}
			switch strings.ToLower(filepath.Ext(path)) {
			case ".ttf", ".otf", ".ttc", ".otc":
			default:
				return nil
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return nil
			}
			if err := d.addFile(data); err != nil {
				d.logger.Debug("font skipped", "path", path, "err", err)
				return nil
			}
			files++
			return nil
		})
	}
	d.logger.Debug("font catalog scanned", "files", files, "families", len(d.static.Families()))
}

// addFile registers every face of a font file or collection.
func (d *Dir) addFile(data []byte) error {
	coll, err := sfnt.ParseCollection(data)
	if err != nil {
		return err
	}
	var buf sfnt.Buffer
	for i := range coll.NumFonts() {
		f, err := coll.Font(i)
		if err != nil {
			return err
		}
		family, sub := faceNames(f, &buf)
		if family == "" {
			continue
		}
		d.static.Add(family, ParseStyleName(sub))
	}
	return nil
}

// faceNames prefers the typographic family/subfamily names, which group
// weights under one family, over the legacy ones.
func faceNames(f *sfnt.Font, buf *sfnt.Buffer) (family, sub string) {
	family, _ = f.Name(buf, sfnt.NameIDTypographicFamily)
	if family == "" {
		family, _ = f.Name(buf, sfnt.NameIDFamily)
	}
	sub, _ = f.Name(buf, sfnt.NameIDTypographicSubfamily)
	if sub == "" {
		sub, _ = f.Name(buf, sfnt.NameIDSubfamily)
	}
	if sub == "" {
		sub = "Regular"
	}
	return family, sub
}
