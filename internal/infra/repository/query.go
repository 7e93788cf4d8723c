package repository

import (
	"strings"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/nail-scheduler/internal/models"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern that matches term literally,
// lower-cased for use against LOWER(column) or a column folded in Go.
// Usernames are ASCII, so LOWER() folds them the same way on every driver.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

const (
	usernameContains = `LOWER(users.username) LIKE ? ESCAPE '\'`
	nameContains     = `search_name LIKE ? ESCAPE '\'`
)

// withRole keeps only profile rows whose user carries the profile's role.
func withRole(db *gorm.DB, table string, role models.Role) *gorm.DB {
	return db.
		Joins("JOIN users ON users.id = "+table+".user_id").
		Where("users.role = ?", role)
}
