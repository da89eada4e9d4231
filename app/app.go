package app

import (
	"database/sql"

	"github.com/go-chi/oauth"
	"github.com/menuvercel2/googleform/config"
)

type App struct {
	*sql.DB
	*oauth.BearerServer
	config.Config
}
