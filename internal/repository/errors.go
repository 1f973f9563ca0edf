// Package repository implements MySQL persistence for users and game
// sessions.  The sentinel values below allow higher layers such as the
// game engine and the handlers to distinguish failure scenarios without
// inspecting driver errors.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ErrUsernameExists and ErrEmailExists are returned when registration
// collides with an existing user.  Handlers translate them into 409.
var (
	ErrUsernameExists = errors.New("username already exists")
	ErrEmailExists    = errors.New("email already exists")
)

// ErrActiveSessionExists is returned when inserting a session for a user
// who already has an ACTIVE one.
var ErrActiveSessionExists = errors.New("active game session already exists")

const mysqlDuplicateEntry = 1062

// duplicateKey reports whether err is a unique key violation and, if so,
// the message naming the violated key.
func duplicateKey(err error) (string, bool) {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return strings.ToLower(me.Message), true
	}
	return "", false
}
