package sqlutil

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNullString(t *testing.T) {
	assert.Equal(t, sql.NullString{}, ToNullString(""))
	assert.Equal(t, sql.NullString{String: "p1", Valid: true}, ToNullString("p1"))
	assert.Equal(t, "", FromNullString(sql.NullString{String: "stale"}))
	assert.Equal(t, "p1", FromNullString(sql.NullString{String: "p1", Valid: true}))
}
