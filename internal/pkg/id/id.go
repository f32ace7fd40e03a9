package id

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. ULIDs are lexicographically sortable
// by creation time, so notification and audit log ids can be assigned before
// the item is written and still order by creation.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// Time extracts the creation time encoded in a ULID produced by New.
func Time(s string) (time.Time, error) {
	u, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(u.Time()), nil
}
