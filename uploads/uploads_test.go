package uploads

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type part struct {
	field, filename, body string
}

func multipartForm(t *testing.T, parts ...part) *multipart.Form {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, p := range parts {
		w, err := mw.CreateFormFile(p.field, p.filename)
		require.NoError(t, err)
		_, err = w.Write([]byte(p.body))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	r := httptest.NewRequest("POST", "/submit", &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, r.ParseMultipartForm(1<<20))
	return r.MultipartForm
}

func TestAllowed(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"photo.JPG", true},
		{"scan.jpeg", true},
		{"label.Png", true},
		{"sheet.pdf", true},
		{"archive.tar.pdf", true},
		{"evil.exe", false},
		{"pdf", false},
		{"photo.jpg.exe", false},
		{"noext.", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allowed(tt.name))
		})
	}
}

func TestSecureFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"photo.JPG", "photo.JPG"},
		{"My cool movie.mov", "My_cool_movie.mov"},
		{"../../../etc/passwd", "etc_passwd"},
		{`C:\Users\me\scan 1.pdf`, "CUsersmescan_1.pdf"},
		{`..\..\boot.ini.pdf`, "boot.ini.pdf"},
		{"i contain cool ümläuts.txt", "i_contain_cool_umlauts.txt"},
		{"Crème brûlée.png", "Creme_brulee.png"},
		{"  ._hidden_.  ", "hidden"},
		{"日本語.pdf", "pdf"},
		{"...", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SecureFilename(tt.in))
		})
	}
}

func TestStoredName(t *testing.T) {
	assert.Equal(t, "12_food_photo.JPG", StoredName(12, "food", "photo.JPG"))
}

func TestSaveForm(t *testing.T) {
	area, err := NewArea(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	form := multipartForm(t,
		part{"food_diary_upload", "photo.JPG", "jpeg bytes"},
		part{"food_diary_upload", "evil.exe", "MZ"},
		part{"weighin_sheet_upload", "weigh in.pdf", "%PDF"},
		part{"unrelated", "other.png", "png"},
	)

	refs, err := area.SaveForm(7, form)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"food":  {"7_food_photo.JPG"},
		"supp":  {},
		"weigh": {"7_weigh_weigh_in.pdf"},
	}, refs)

	data, err := os.ReadFile(filepath.Join(area.Dir(), "7_food_photo.JPG"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))

	_, err = os.Stat(filepath.Join(area.Dir(), "7_food_evil.exe"))
	assert.True(t, os.IsNotExist(err))

	entries, err := os.ReadDir(area.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestSaveForm_NilForm(t *testing.T) {
	area, err := NewArea(t.TempDir())
	require.NoError(t, err)

	refs, err := area.SaveForm(1, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"food": {}, "supp": {}, "weigh": {}}, refs)
}

func TestSave_PartialFailure(t *testing.T) {
	dir := t.TempDir()
	area, err := NewArea(dir)
	require.NoError(t, err)

	form := multipartForm(t,
		part{"f", "a.png", "a"},
		part{"f", "b.png", "b"},
	)
	// a directory squatting on the second target makes its write fail
	require.NoError(t, os.Mkdir(filepath.Join(dir, "3_supp_b.png"), 0o755))

	saved, err := area.Save(3, "supp", form.File["f"])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3_supp_b.png")
	assert.Equal(t, []string{"3_supp_a.png"}, saved)

	_, statErr := os.Stat(filepath.Join(dir, "3_supp_a.png"))
	assert.NoError(t, statErr)
}

func TestPath(t *testing.T) {
	area := &Area{dir: "/srv/uploads"}

	p, err := area.Path("1_food_a.png")
	require.NoError(t, err)
	assert.Equal(t, "/srv/uploads/1_food_a.png", p)

	for _, bad := range []string{"", ".", "..", "../x", `a\b`, "a/b"} {
		_, err := area.Path(bad)
		assert.ErrorIs(t, err, ErrBadName, bad)
	}
}
