package routes

import (
	"bytes"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mbolis/boxer-intake/app"
	"github.com/mbolis/boxer-intake/codec"
	"github.com/mbolis/boxer-intake/httpx"
	"github.com/mbolis/boxer-intake/model"
	"github.com/mbolis/boxer-intake/report"
	"github.com/mbolis/boxer-intake/store"
	"github.com/mbolis/boxer-intake/uploads"
)

func Dashboard(app app.App, pages *pages) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := app.ListAll(r.Context())
		if err != nil {
			httpx.LogInternalError(w, r, "db.list_intakes", err)
			return
		}

		pages.render(w, r, "dashboard.html", map[string]any{
			"Intakes": records,
		})
	}
}

type uploadLink struct {
	Label string
	Names []string
}

func SummaryPage(app app.App, pages *pages) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, ok := loadIntake(app, w, r)
		if !ok {
			return
		}

		var links []uploadLink
		for _, cat := range model.UploadCategories {
			if names := rec.UploadRefs[cat.Name]; len(names) > 0 {
				links = append(links, uploadLink{Label: cat.Label, Names: names})
			}
		}

		pages.render(w, r, "summary.html", map[string]any{
			"Summary":  report.Summarize(rec),
			"Sections": app.Schema.Sections(),
			"Extra":    extraKeys(app, rec.Fields),
			"Uploads":  links,
		})
	}
}

// extraKeys lists answers that no catalog question accounts for.
func extraKeys(app app.App, fields model.Fields) []string {
	extra := []string{}
	for _, key := range fields.Keys() {
		if _, known := app.Schema.Lookup(key); !known {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	return extra
}

func ExportCSV(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := app.ListAll(r.Context())
		if err != nil {
			httpx.LogInternalError(w, r, "db.list_intakes", err)
			return
		}

		var buf bytes.Buffer
		err = codec.WriteCSV(&buf, app.Schema.Questions(), records)
		if err != nil {
			httpx.LogInternalError(w, r, "export.csv", err)
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", "attachment; filename=intakes.csv")
		w.Write(buf.Bytes())
	}
}

func UploadedFile(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "filename")
		path, err := app.Uploads.Path(name)
		if errors.Is(err, uploads.ErrBadName) {
			httpx.LogNotFound(w, r, "uploads.get", name)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, r, "uploads.get", err)
			return
		}

		f, err := os.Open(path)
		if errors.Is(err, fs.ErrNotExist) {
			httpx.LogNotFound(w, r, "uploads.get", name)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, r, "uploads.open", err)
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			httpx.LogInternalError(w, r, "uploads.stat", err)
			return
		}
		if info.IsDir() {
			httpx.LogNotFound(w, r, "uploads.get", name)
			return
		}

		http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	}
}

type intakeItem struct {
	ID          int64   `json:"id"`
	CreatedAt   string  `json:"created_at_utc"`
	AthleteName *string `json:"athlete_name"`
	Email       *string `json:"email"`
}

func ListIntakes(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := app.ListAll(r.Context())
		if err != nil {
			httpx.LogInternalError(w, r, "db.list_intakes", err)
			return
		}

		items := make([]intakeItem, len(records))
		for i, rec := range records {
			items[i] = intakeItem{
				ID:          rec.ID,
				CreatedAt:   model.FormatTimestamp(rec.CreatedAt),
				AthleteName: rec.AthleteName,
				Email:       rec.Email,
			}
		}

		render.JSON(w, r, map[string]any{
			"intakes": items,
		})
	}
}

func GetIntakeSummary(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, ok := loadIntake(app, w, r)
		if !ok {
			return
		}
		render.JSON(w, r, report.Summarize(rec))
	}
}

func loadIntake(app app.App, w http.ResponseWriter, r *http.Request) (model.Record, bool) {
	id, ok := intakeID(w, r)
	if !ok {
		return model.Record{}, false
	}

	rec, err := app.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		httpx.LogNotFound(w, r, "intake", id)
		return model.Record{}, false
	}
	if err != nil {
		httpx.LogInternalError(w, r, "db.get_intake", err)
		return model.Record{}, false
	}
	return rec, true
}
