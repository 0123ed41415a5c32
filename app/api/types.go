package api

import (
	"ainews/app/database"
)

type Handler struct {
	itemRepo database.ItemStore
	db       *database.DB
	newsDir  string
	version  string
}
