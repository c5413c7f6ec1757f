package csvio

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicmue/payment-engine/internal/account"
	"github.com/nicmue/payment-engine/internal/model"
)

func snap(t *testing.T, client uint16, available, held string, locked bool) account.Snapshot {
	t.Helper()
	av, err := decimal.NewFromString(available)
	require.NoError(t, err)
	hd, err := decimal.NewFromString(held)
	require.NoError(t, err)
	return account.Snapshot{
		Client:    model.ClientID(client),
		Available: av,
		Held:      hd,
		Total:     av.Add(hd),
		Locked:    locked,
	}
}

func TestWriter_Report(t *testing.T) {
	var sb strings.Builder
	w := NewWriter(&sb)

	require.NoError(t, w.Write(snap(t, 1, "-10.5", "42.0", false)))
	require.NoError(t, w.Write(snap(t, 2, "3.25", "0", true)))
	require.NoError(t, w.Flush())

	assert.Equal(t,
		"client,available,held,total,locked\n"+
			"1,-10.5,42,31.5,false\n"+
			"2,3.25,0,3.25,true\n",
		sb.String())
}

func TestWriter_MinimalAmountRepresentation(t *testing.T) {
	var sb strings.Builder
	w := NewWriter(&sb)

	require.NoError(t, w.Write(snap(t, 7, "100.0000", "0.0000", false)))
	require.NoError(t, w.Flush())

	assert.Contains(t, sb.String(), "7,100,0,100,false\n")
}

func TestWriter_EmptyReportStillHasHeader(t *testing.T) {
	var sb strings.Builder
	w := NewWriter(&sb)
	require.NoError(t, w.Flush())
	assert.Equal(t, "client,available,held,total,locked\n", sb.String())
}
