package httpx

import (
	"fmt"
	"net/http"

	"github.com/mbolis/boxer-intake/log"
)

// Request-scoped log fields are attached by middlewares.RequestLogger.
type ctxKey struct{}

var LogFieldsKey = ctxKey{}

func fields(r *http.Request) log.Fields {
	if f, ok := r.Context().Value(LogFieldsKey).(log.Fields); ok {
		return f
	}
	return log.Fields{}
}

// Will log an error, and send an HTTP response with status 500 and default text
func LogInternalError(w http.ResponseWriter, r *http.Request, code string, err error) {
	log.WithFields(fields(r)).WithError(err).Error(code)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// Will log a debug message, and send a plain 404
func LogNotFound(w http.ResponseWriter, r *http.Request, code string, id any) {
	log.WithFields(fields(r)).Debugf("%s: not found (%v)", code, id)
	http.Error(w, "Not found", http.StatusNotFound)
}

// Will log an error code at the given level, and send
// an HTTP response with status and default text
func LogStatus(w http.ResponseWriter, r *http.Request, status int, level log.Level, code string) {
	log.LogWith(fields(r), level, code)
	http.Error(w, http.StatusText(status), status)
}

// Will log an error code and message at the given level,
// and send an HTTP response with the given status and formatted message
func LogStatusMsg(w http.ResponseWriter, r *http.Request, status int, level log.Level, code string, msg string, args ...any) {
	errMsg := fmt.Sprintf(msg, args...)
	log.LogWith(fields(r), level, code+": "+errMsg)
	http.Error(w, errMsg, status)
}
