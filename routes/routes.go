package routes

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"

	"github.com/mbolis/boxer-intake/app"
	"github.com/mbolis/boxer-intake/httpx"
	"github.com/mbolis/boxer-intake/model"
	"github.com/mbolis/boxer-intake/routes/middlewares"
)

//go:embed templates
var templatesFS embed.FS

func Wire(app app.App) (http.Handler, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	root := chi.NewRouter()
	root.Use(middleware.RealIP, middlewares.RequestLogger, middleware.Recoverer)

	// athlete side
	root.Get("/", Form(app, pages))
	root.Post("/submit", Submit(app))
	root.Get(`/thankyou/{id:^\d+$}`, ThankYou(app, pages))
	root.Get("/api/schema", GetSchema(app))

	// coach side
	root.Group(func(r chi.Router) {
		r.Use(middlewares.CoachAuth(app.Verifier))

		r.Get("/coach", Dashboard(app, pages))
		r.Get(`/summary/{id:^\d+$}`, SummaryPage(app, pages))
		r.Get("/export/csv", ExportCSV(app))
		r.Get("/uploads/{filename}", UploadedFile(app))

		r.Get("/api/intakes", ListIntakes(app))
		r.Get(`/api/intakes/{id:^\d+$}/summary`, GetIntakeSummary(app))
	})

	return root, nil
}

type pages struct {
	tmpl *template.Template
}

func parsePages() (*pages, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"showIf":    showIfJSON,
		"answer":    answer,
		"deref":     deref,
		"timestamp": model.FormatTimestamp,
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &pages{tmpl: tmpl}, nil
}

// render executes into a buffer first so a template error still yields a
// clean 500.
func (p *pages) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		httpx.LogInternalError(w, r, "template."+name, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func showIfJSON(p *model.Predicate) string {
	if p == nil {
		return ""
	}
	b, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	return string(b)
}

func answer(fields model.Fields, name string) string {
	v, ok := fields.Get(name)
	if !ok {
		return ""
	}
	if v.IsList() {
		return strings.Join(v.Strings(), ", ")
	}
	return v.String()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
