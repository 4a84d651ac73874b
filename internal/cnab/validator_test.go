package cnab_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/cnab"
)

func buildLine(t *testing.T, typ, date, amount, cpf, card, clock, owner, store string) string {
	t.Helper()
	line := typ + date + amount + cpf + card + clock +
		fmt.Sprintf("%-14s", owner) +
		fmt.Sprintf("%-18s", store)
	require.Len(t, line, cnab.LineLength)
	return line
}

func validLine(t *testing.T) string {
	t.Helper()
	return buildLine(t, "3", "20190301", "0000014200", "09620676017", "4753****3153", "153453", "MARCOS PEREIRA", "MERCADO DA AVENIDA")
}

func TestValidate_OK(t *testing.T) {
	content := validLine(t) + "\n" + validLine(t) + "\n"

	res, err := cnab.Validate(strings.NewReader(content))
	require.NoError(t, err)

	assert.True(t, res.OK())
	assert.Equal(t, 2, res.Lines)
	assert.Equal(t, int64(len(content)), res.SizeBytes)
}

func TestValidate_NoTrailingNewline(t *testing.T) {
	res, err := cnab.Validate(strings.NewReader(validLine(t)))
	require.NoError(t, err)

	assert.True(t, res.OK())
	assert.Equal(t, 1, res.Lines)
}

func TestValidate_CRLF(t *testing.T) {
	content := validLine(t) + "\r\n" + validLine(t) + "\r\n"

	res, err := cnab.Validate(strings.NewReader(content))
	require.NoError(t, err)

	assert.True(t, res.OK())
	assert.Equal(t, 2, res.Lines)
}

func TestValidate_ShortLine(t *testing.T) {
	content := validLine(t)[:79] + "\n"

	res, err := cnab.Validate(strings.NewReader(content))
	require.NoError(t, err)

	require.Len(t, res.Errors, 1)
	assert.Equal(t, 1, res.Errors[0].Line)
	assert.Contains(t, res.Errors[0].Message, "expected 80 bytes, got 79")
}

func TestValidate_LongLine(t *testing.T) {
	content := validLine(t) + "X\n"

	res, err := cnab.Validate(strings.NewReader(content))
	require.NoError(t, err)

	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "got 81")
}

func TestValidate_NonASCII(t *testing.T) {
	line := []byte(validLine(t))
	line[50] = 0xc3

	res, err := cnab.Validate(strings.NewReader(string(line) + "\n"))
	require.NoError(t, err)

	require.Len(t, res.Errors, 1)
	assert.Equal(t, 1, res.Errors[0].Line)
	assert.Contains(t, res.Errors[0].Message, "not printable ASCII")
	assert.Contains(t, res.Errors[0].Message, "column 51")
}

func TestValidate_ControlByte(t *testing.T) {
	line := []byte(validLine(t))
	line[0] = 0x07

	res, err := cnab.Validate(strings.NewReader(string(line) + "\n"))
	require.NoError(t, err)

	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "0x07")
}

func TestValidate_EmptyFile(t *testing.T) {
	res, err := cnab.Validate(strings.NewReader(""))
	require.NoError(t, err)

	require.Len(t, res.Errors, 1)
	assert.Equal(t, 0, res.Errors[0].Line)
	assert.Contains(t, res.Errors[0].Message, "file is empty")
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	content := validLine(t)[:40] + "\n" + validLine(t) + "\n" + validLine(t) + "XX\n"

	res, err := cnab.Validate(strings.NewReader(content))
	require.NoError(t, err)

	require.Len(t, res.Errors, 2)
	assert.Equal(t, 1, res.Errors[0].Line)
	assert.Equal(t, 3, res.Errors[1].Line)
	assert.Contains(t, res.Summary(), "line 1")
	assert.Contains(t, res.Summary(), "line 3")
}

func TestValidate_OversizeFile(t *testing.T) {
	row := validLine(t) + "\n"
	content := strings.Repeat(row, cnab.MaxFileBytes/len(row)+1)
	require.Greater(t, len(content), cnab.MaxFileBytes)

	res, err := cnab.Validate(strings.NewReader(content))
	require.NoError(t, err)

	assert.False(t, res.OK())
	assert.Contains(t, res.Summary(), "exceeds")
}
