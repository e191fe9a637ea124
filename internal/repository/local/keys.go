package local

import (
	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"
)

func userPrefix(userID uuid.UUID) string { return "user_" + userID.String() + "_" }

func dayKey(userID uuid.UUID, d civil.Date) string { return userPrefix(userID) + d.String() }

func libraryKey(userID uuid.UUID) string { return userPrefix(userID) + "library" }

func templateKey(userID uuid.UUID) string { return userPrefix(userID) + "template" }

// Date keys start with a digit; "0".."9" sort below ":", while library/template keys sort above.
func allDaysBounds(userID uuid.UUID) (string, string) {
	p := userPrefix(userID)
	return p + "0", p + ":"
}
