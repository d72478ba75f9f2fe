package client

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atinyakov/itemgate/internal/models"
)

func TestShell_PrintItemReportsEncodeError(t *testing.T) {
	var out bytes.Buffer
	sh := &Shell{Out: &out}

	sh.printItem(7, models.Item{"bad": math.Inf(1)})

	assert.Contains(t, out.String(), "Error:")
	assert.NotContains(t, out.String(), "7:")
}
