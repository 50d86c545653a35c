package db

import (
	"gorm.io/gorm"

	"clipstream.com/pkg/database"
)

var DB *gorm.DB

// Init binds the package to the shared connection pool.
func Init() {
	DB = database.GetDB()
}
