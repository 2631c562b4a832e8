package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name    string `validate:"required"`
	Mode    string `validate:"oneof=debug release"`
	Timeout string `validate:"duration"`
	Zone    string `validate:"timezone"`
	Rows    int    `validate:"min=1"`
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(sample{Name: "x", Mode: "debug", Timeout: "5s", Zone: "Asia/Kolkata", Rows: 1}))
}

func TestStruct_CollectsAllFailures(t *testing.T) {
	err := Struct(sample{Mode: "loud", Timeout: "soon", Zone: "Mars/Base", Rows: 0})
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "sample.Name is required")
	assert.Contains(t, msg, "sample.Mode must be one of: debug release")
	assert.Contains(t, msg, "sample.Timeout must be a duration")
	assert.Contains(t, msg, "sample.Zone must be an IANA time zone name")
	assert.Contains(t, msg, "sample.Rows must be at least 1")
}
