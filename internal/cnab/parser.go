package cnab

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Parser decodes structurally valid CNAB content into records.
type Parser struct {
	now func() time.Time
}

// NewParser returns a Parser that uses now as its clock for the
// no-future-dates rule.
func NewParser(now func() time.Time) *Parser {
	return &Parser{now: now}
}

// Parse decodes every line of r. Lines made entirely of spaces are padding
// and are skipped. All content violations in the file are collected; records
// are returned only when there are none.
func (p *Parser) Parse(r io.Reader) ([]Record, ContentErrors, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), MaxFileBytes+2)

	var (
		records []Record
		errs    ContentErrors
		lineNo  int
	)
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, recErrs := p.ParseLine(lineNo, line)
		if len(recErrs) > 0 {
			errs = append(errs, recErrs...)
			continue
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading file: %w", err)
	}
	if len(errs) > 0 {
		return nil, errs, nil
	}
	return records, nil, nil
}

// ParseLine decodes a single line that already passed structural validation.
func (p *Parser) ParseLine(lineNo int, line string) (Record, ContentErrors) {
	if len(line) != LineLength {
		return Record{}, ContentErrors{{
			Line:    lineNo,
			Field:   "line",
			Message: fmt.Sprintf("expected %d bytes, got %d", LineLength, len(line)),
		}}
	}

	var errs ContentErrors
	fail := func(field, msg string) {
		errs = append(errs, ContentError{Line: lineNo, Field: field, Message: msg})
	}

	rec := Record{Line: lineNo}

	typeStr := line[posType : posType+1]
	typ, err := strconv.Atoi(typeStr)
	if err != nil || typ < 1 || typ > 9 {
		fail("type", fmt.Sprintf("invalid transaction type %q", typeStr))
	} else {
		rec.Type = typ
	}

	amountStr := line[posAmountStart:posAmountEnd]
	if !allDigits(amountStr) {
		fail("amount", fmt.Sprintf("amount %q is not numeric", amountStr))
	} else {
		cents, _ := strconv.ParseInt(amountStr, 10, 64)
		if cents == 0 {
			fail("amount", "amount must be positive")
		}
		rec.AmountCents = cents
	}

	cpf := line[posCPFStart:posCPFEnd]
	if !allDigits(cpf) {
		fail("cpf", fmt.Sprintf("cpf %q must be 11 digits", cpf))
	}
	rec.CPF = cpf

	card := line[posCardStart:posCardEnd]
	if strings.TrimSpace(card) == "" {
		fail("card", "card is blank")
	}
	rec.Card = card

	dateStr := line[posDateStart:posDateEnd]
	date, dateErr := time.Parse("20060102", dateStr)
	if dateErr != nil {
		fail("date", fmt.Sprintf("invalid date %q", dateStr))
	}
	timeStr := line[posTimeStart:posTimeEnd]
	clock, timeErr := time.Parse("150405", timeStr)
	if timeErr != nil {
		fail("time", fmt.Sprintf("invalid time %q", timeStr))
	}
	if dateErr == nil && timeErr == nil {
		rec.OccurredAt = time.Date(
			date.Year(), date.Month(), date.Day(),
			clock.Hour(), clock.Minute(), clock.Second(), 0, time.UTC,
		)
		now := p.now().UTC()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		if date.After(today) {
			fail("date", fmt.Sprintf("date %s is in the future", dateStr))
		}
	}

	owner := strings.TrimSpace(line[posOwnerStart:posOwnerEnd])
	if owner == "" {
		fail("owner", "store owner is blank")
	}
	storeName := strings.TrimSpace(line[posStoreStart:posStoreEnd])
	if storeName == "" {
		fail("store", "store name is blank")
	}
	rec.Store = StoreIdentity{Name: storeName, OwnerName: owner}

	if len(errs) > 0 {
		return Record{}, errs
	}
	return rec, nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
