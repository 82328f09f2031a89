package sl_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/finsave/internal/lib/sl"
)

func TestErr(t *testing.T) {
	attr := sl.Err(errors.New("ledger.AddShare: over allocation"))
	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, slog.StringValue("ledger.AddShare: over allocation"), attr.Value)
}

func TestErr_Nil(t *testing.T) {
	assert.NotPanics(t, func() {
		attr := sl.Err(nil)
		assert.Equal(t, "", attr.Value.String())
	})
}
