// Package uploads stores files attached to a submission in a flat directory,
// named {id}_{category}_{sanitized original name}.
package uploads

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"

	"github.com/mbolis/boxer-intake/model"
)

var allowedExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"pdf":  true,
}

var reUnsafe = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

var ErrBadName = errors.New("bad upload name")

type Area struct {
	dir string
}

// NewArea makes sure dir exists.
func NewArea(dir string) (*Area, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "uploads: create %s", dir)
	}
	return &Area{dir: dir}, nil
}

func (a *Area) Dir() string {
	return a.dir
}

// Allowed checks the extension of the name as sent by the client,
// case-insensitively.
func Allowed(filename string) bool {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return false
	}
	return allowedExtensions[strings.ToLower(filename[i+1:])]
}

// SecureFilename reduces a client-supplied name to a safe ASCII file name:
// compatibility-decomposed, non-ASCII dropped, "/" and whitespace runs
// turned into "_", anything outside [A-Za-z0-9_.-] removed (a backslash is
// not a separator here, it is dropped), and leading or trailing dots and
// underscores trimmed. Case is kept. The result may be empty.
func SecureFilename(name string) string {
	name = norm.NFKD.String(name)
	name = strings.Map(func(r rune) rune {
		if r >= utf8.RuneSelf {
			return -1
		}
		if r == '/' {
			return ' '
		}
		return r
	}, name)
	name = strings.Join(strings.Fields(name), "_")
	name = reUnsafe.ReplaceAllLiteralString(name, "")
	return strings.Trim(name, "._")
}

func StoredName(id int64, category, sanitized string) string {
	return fmt.Sprintf("%d_%s_%s", id, category, sanitized)
}

// Save writes the accepted files of one category and returns their stored
// names. Files with a disallowed extension or an unusable name are skipped
// silently. A failing file does not stop the others: the names saved so far
// are returned together with every error met.
func (a *Area) Save(id int64, category string, files []*multipart.FileHeader) ([]string, error) {
	saved := []string{}
	var result *multierror.Error

	for _, fh := range files {
		if fh == nil || fh.Filename == "" || !Allowed(fh.Filename) {
			continue
		}
		clean := SecureFilename(fh.Filename)
		if clean == "" {
			continue
		}

		stored := StoredName(id, category, clean)
		if err := a.write(stored, fh); err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "save %s", stored))
			continue
		}
		saved = append(saved, stored)
	}

	return saved, result.ErrorOrNil()
}

// SaveForm saves the files of every upload category found in form. The
// result has an entry for each category, possibly empty.
func (a *Area) SaveForm(id int64, form *multipart.Form) (map[string][]string, error) {
	refs := make(map[string][]string, len(model.UploadCategories))
	var result *multierror.Error

	for _, c := range model.UploadCategories {
		var files []*multipart.FileHeader
		if form != nil {
			files = form.File[c.Field]
		}
		saved, err := a.Save(id, c.Name, files)
		if err != nil {
			result = multierror.Append(result, err)
		}
		refs[c.Name] = saved
	}

	return refs, result.ErrorOrNil()
}

func (a *Area) write(name string, fh *multipart.FileHeader) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(a.dir, name))
	if err != nil {
		return err
	}
	if _, err = io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

// Path resolves a stored name inside the area. Names that are not a single
// path element are rejected with ErrBadName.
func (a *Area) Path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", ErrBadName
	}
	return filepath.Join(a.dir, name), nil
}
