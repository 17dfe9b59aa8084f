package routes

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mbolis/boxer-intake/app"
	"github.com/mbolis/boxer-intake/codec"
	"github.com/mbolis/boxer-intake/httpx"
	"github.com/mbolis/boxer-intake/log"
	"github.com/mbolis/boxer-intake/model"
)

// multipart parts beyond this spill to temporary files
const maxFormMemory = 32 << 20

const acceptedUploads = ".jpg,.jpeg,.png,.pdf"

func Form(app app.App, pages *pages) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pages.render(w, r, "form.html", map[string]any{
			"Sections": app.Schema.Sections(),
			"Uploads":  model.UploadCategories,
			"Accept":   acceptedUploads,
		})
	}
}

func GetSchema(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]any{
			"sections": app.Schema.Sections(),
		})
	}
}

// Submit stores a submission in two steps: the record is created first so
// its id can prefix the uploaded file names, then it is rewritten with the
// references of the files that were saved.
func Submit(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, app.MaxUploadBytes())
		err := r.ParseMultipartForm(maxFormMemory)
		if errors.Is(err, http.ErrNotMultipart) {
			err = r.ParseForm()
		}
		if err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				httpx.LogStatusMsg(w, r, http.StatusRequestEntityTooLarge, log.DebugLevel, "submit.parse_form", "submission larger than %d MB", app.MaxUploadMB)
				return
			}
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "submit.parse_form")
			return
		}
		if r.MultipartForm != nil {
			defer r.MultipartForm.RemoveAll()
		}

		meta := model.NewMeta(time.Now(), r.UserAgent())
		sub := codec.Decode(app.Schema, r.PostForm, meta)
		rec := model.Record{Fields: sub.Fields, Meta: sub.Meta}

		id, err := app.Create(r.Context(), sub.AthleteName, sub.Email, rec)
		if err != nil {
			httpx.LogInternalError(w, r, "db.insert_intake", err)
			return
		}

		refs, err := app.Uploads.SaveForm(id, r.MultipartForm)
		if err != nil {
			// keep whatever was saved
			log.WithFields(log.Fields{"intake_id": id}).WithError(err).Warn("uploads.save")
		}
		rec.UploadRefs = refs

		err = app.ReplaceFields(r.Context(), id, rec)
		if err != nil {
			httpx.LogInternalError(w, r, "db.update_intake.uploads", err)
			return
		}

		log.Infof("intake %d stored (%d fields)", id, rec.Fields.Len())
		http.Redirect(w, r, "/thankyou/"+strconv.FormatInt(id, 10), http.StatusFound)
	}
}

func ThankYou(app app.App, pages *pages) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, ok := loadIntake(app, w, r)
		if !ok {
			return
		}

		pages.render(w, r, "thankyou.html", map[string]any{
			"IntakeID": rec.ID,
		})
	}
}

func intakeID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(chi.URLParam(r, "id")), 10, 64)
	if err != nil {
		httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
		return 0, false
	}
	return id, true
}
