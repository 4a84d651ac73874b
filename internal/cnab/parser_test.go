package cnab_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/cnab"
)

func fixedNow() time.Time {
	return time.Date(2019, 4, 1, 12, 0, 0, 0, time.UTC)
}

func newParser() *cnab.Parser {
	return cnab.NewParser(fixedNow)
}

func TestParser_DecodesLine(t *testing.T) {
	content := validLine(t) + "\n"

	recs, cerrs, err := newParser().Parse(strings.NewReader(content))
	require.NoError(t, err)
	require.Empty(t, cerrs)
	require.Len(t, recs, 1)

	rec := recs[0]
	assert.Equal(t, 1, rec.Line)
	assert.Equal(t, 3, rec.Type)
	assert.Equal(t, int64(14200), rec.AmountCents)
	assert.Equal(t, "09620676017", rec.CPF)
	assert.Equal(t, "4753****3153", rec.Card)
	assert.Equal(t, time.Date(2019, 3, 1, 15, 34, 53, 0, time.UTC), rec.OccurredAt)
	assert.Equal(t, "MERCADO DA AVENIDA", rec.Store.Name)
	assert.Equal(t, "MARCOS PEREIRA", rec.Store.OwnerName)
}

func TestParser_TrimsStoreFields(t *testing.T) {
	content := buildLine(t, "1", "20190301", "0000010000", "09620676017", "4753****3153", "153453", "JOSE COSTA", "BAR DO JOSE") + "\n"

	recs, cerrs, err := newParser().Parse(strings.NewReader(content))
	require.NoError(t, err)
	require.Empty(t, cerrs)
	require.Len(t, recs, 1)

	assert.Equal(t, "BAR DO JOSE", recs[0].Store.Name)
	assert.Equal(t, "JOSE COSTA", recs[0].Store.OwnerName)
}

func TestParser_SkipsPaddingLines(t *testing.T) {
	padding := strings.Repeat(" ", cnab.LineLength)
	content := padding + "\n" + validLine(t) + "\n" + padding + "\n"

	recs, cerrs, err := newParser().Parse(strings.NewReader(content))
	require.NoError(t, err)
	require.Empty(t, cerrs)
	require.Len(t, recs, 1)

	assert.Equal(t, 2, recs[0].Line)
}

func TestParser_PaddingOnlyFile(t *testing.T) {
	padding := strings.Repeat(" ", cnab.LineLength)
	content := padding + "\n" + padding + "\n"

	recs, cerrs, err := newParser().Parse(strings.NewReader(content))
	require.NoError(t, err)
	assert.Empty(t, cerrs)
	assert.Empty(t, recs)
}

func TestParser_InvalidType(t *testing.T) {
	content := buildLine(t, "0", "20190301", "0000014200", "09620676017", "4753****3153", "153453", "MARCOS PEREIRA", "MERCADO DA AVENIDA") + "\n"

	recs, cerrs, err := newParser().Parse(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, cerrs, 1)

	assert.Empty(t, recs)
	assert.Equal(t, "type", cerrs[0].Field)
	assert.Equal(t, 1, cerrs[0].Line)
}

func TestParser_NonNumericType(t *testing.T) {
	content := buildLine(t, "A", "20190301", "0000014200", "09620676017", "4753****3153", "153453", "MARCOS PEREIRA", "MERCADO DA AVENIDA") + "\n"

	_, cerrs, err := newParser().Parse(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, cerrs, 1)
	assert.Equal(t, "type", cerrs[0].Field)
}

func TestParser_ZeroAmount(t *testing.T) {
	content := buildLine(t, "3", "20190301", "0000000000", "09620676017", "4753****3153", "153453", "MARCOS PEREIRA", "MERCADO DA AVENIDA") + "\n"

	_, cerrs, err := newParser().Parse(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, cerrs, 1)

	assert.Equal(t, "amount", cerrs[0].Field)
	assert.Contains(t, cerrs[0].Message, "positive")
}

func TestParser_NonNumericAmount(t *testing.T) {
	content := buildLine(t, "3", "20190301", "00000142.0", "09620676017", "4753****3153", "153453", "MARCOS PEREIRA", "MERCADO DA AVENIDA") + "\n"

	_, cerrs, err := newParser().Parse(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, cerrs, 1)
	assert.Equal(t, "amount", cerrs[0].Field)
}

func TestParser_BadCPF(t *testing.T) {
	content := buildLine(t, "3", "20190301", "0000014200", "0962067601X", "4753****3153", "153453", "MARCOS PEREIRA", "MERCADO DA AVENIDA") + "\n"

	_, cerrs, err := newParser().Parse(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, cerrs, 1)
	assert.Equal(t, "cpf", cerrs[0].Field)
}

func TestParser_BlankCard(t *testing.T) {
	content := buildLine(t, "3", "20190301", "0000014200", "09620676017", "            ", "153453", "MARCOS PEREIRA", "MERCADO DA AVENIDA") + "\n"

	_, cerrs, err := newParser().Parse(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, cerrs, 1)
	assert.Equal(t, "card", cerrs[0].Field)
}

func TestParser_InvalidDate(t *testing.T) {
	content := buildLine(t, "3", "20191301", "0000014200", "09620676017", "4753****3153", "153453", "MARCOS PEREIRA", "MERCADO DA AVENIDA") + "\n"

	_, cerrs, err := newParser().Parse(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, cerrs, 1)
	assert.Equal(t, "date", cerrs[0].Field)
}

func TestParser_InvalidTime(t *testing.T) {
	content := buildLine(t, "3", "20190301", "0000014200", "09620676017", "4753****3153", "256090", "MARCOS PEREIRA", "MERCADO DA AVENIDA") + "\n"

	_, cerrs, err := newParser().Parse(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, cerrs, 1)
	assert.Equal(t, "time", cerrs[0].Field)
}

func TestParser_FutureDate(t *testing.T) {
	content := buildLine(t, "3", "20190402", "0000014200", "09620676017", "4753****3153", "153453", "MARCOS PEREIRA", "MERCADO DA AVENIDA") + "\n"

	_, cerrs, err := newParser().Parse(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, cerrs, 1)

	assert.Equal(t, "date", cerrs[0].Field)
	assert.Contains(t, cerrs[0].Message, "future")
}

func TestParser_SameDayIsNotFuture(t *testing.T) {
	content := buildLine(t, "3", "20190401", "0000014200", "09620676017", "4753****3153", "235959", "MARCOS PEREIRA", "MERCADO DA AVENIDA") + "\n"

	recs, cerrs, err := newParser().Parse(strings.NewReader(content))
	require.NoError(t, err)
	assert.Empty(t, cerrs)
	require.Len(t, recs, 1)
}

func TestParser_BlankOwner(t *testing.T) {
	content := buildLine(t, "3", "20190301", "0000014200", "09620676017", "4753****3153", "153453", "", "MERCADO DA AVENIDA") + "\n"

	_, cerrs, err := newParser().Parse(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, cerrs, 1)
	assert.Equal(t, "owner", cerrs[0].Field)
}

func TestParser_BlankStore(t *testing.T) {
	content := buildLine(t, "3", "20190301", "0000014200", "09620676017", "4753****3153", "153453", "MARCOS PEREIRA", "") + "\n"

	_, cerrs, err := newParser().Parse(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, cerrs, 1)
	assert.Equal(t, "store", cerrs[0].Field)
}

func TestParser_CollectsAllViolations(t *testing.T) {
	bad1 := buildLine(t, "0", "20190301", "0000014200", "09620676017", "4753****3153", "153453", "MARCOS PEREIRA", "MERCADO DA AVENIDA")
	bad2 := buildLine(t, "3", "20190301", "0000000000", "0962067601X", "4753****3153", "153453", "MARCOS PEREIRA", "MERCADO DA AVENIDA")
	content := bad1 + "\n" + validLine(t) + "\n" + bad2 + "\n"

	recs, cerrs, err := newParser().Parse(strings.NewReader(content))
	require.NoError(t, err)

	assert.Empty(t, recs)
	require.Len(t, cerrs, 3)
	assert.Equal(t, 1, cerrs[0].Line)
	assert.Equal(t, 3, cerrs[1].Line)
	assert.Equal(t, 3, cerrs[2].Line)

	summary := cerrs.Summary()
	assert.Contains(t, summary, "type")
	assert.Contains(t, summary, "amount")
	assert.Contains(t, summary, "cpf")
}

func TestParser_MultipleRecords(t *testing.T) {
	l1 := buildLine(t, "1", "20190301", "0000050000", "09620676017", "4753****3153", "100000", "MARCOS PEREIRA", "MERCADO DA AVENIDA")
	l2 := buildLine(t, "2", "20190301", "0000015000", "09620676017", "4753****3153", "110000", "MARCOS PEREIRA", "MERCADO DA AVENIDA")
	l3 := buildLine(t, "4", "20190301", "0000030000", "09620676017", "4753****3153", "120000", "MARCOS PEREIRA", "MERCADO DA AVENIDA")

	recs, cerrs, err := newParser().Parse(strings.NewReader(l1 + "\n" + l2 + "\n" + l3 + "\n"))
	require.NoError(t, err)
	require.Empty(t, cerrs)
	require.Len(t, recs, 3)

	assert.Equal(t, int64(50000), recs[0].AmountCents)
	assert.Equal(t, 2, recs[1].Type)
	assert.Equal(t, 3, recs[2].Line)
}
