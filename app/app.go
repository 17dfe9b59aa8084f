package app

import (
	"github.com/mbolis/boxer-intake/config"
	"github.com/mbolis/boxer-intake/httpx"
	"github.com/mbolis/boxer-intake/schema"
	"github.com/mbolis/boxer-intake/store"
	"github.com/mbolis/boxer-intake/uploads"
)

type App struct {
	*store.Store
	Schema   *schema.Registry
	Uploads  *uploads.Area
	Verifier *httpx.CoachVerifier
	config.Config
}
