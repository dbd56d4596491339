// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jcodagnone/addrlookup/model"
	"github.com/jcodagnone/addrlookup/spatial"
	"github.com/xuri/excelize/v2"
)

// DefaultWorksheet is the sheet holding the registry.
const DefaultWorksheet = "address_registry"

// Spreadsheet keeps the registry in an XLSX worksheet whose first row is a
// header following model.Columns. Every query reads the whole sheet.
type Spreadsheet struct {
	mu    sync.Mutex
	path  string
	sheet string
	f     *excelize.File
	now   func() time.Time
}

// OpenSpreadsheet opens the workbook at path, creating it (and the sheet)
// when missing.
func OpenSpreadsheet(path, sheet string) (*Spreadsheet, error) {
	if sheet == "" {
		sheet = DefaultWorksheet
	}

	s := &Spreadsheet{path: path, sheet: sheet, now: time.Now}

	f, err := excelize.OpenFile(path)

	switch {
	case errors.Is(err, os.ErrNotExist):
		f = excelize.NewFile()
		if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
			return nil, fmt.Errorf("naming sheet: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	s.f = f

	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return nil, fmt.Errorf("looking up sheet %s: %w", sheet, err)
	}

	if idx < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("creating sheet %s: %w", sheet, err)
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", sheet, err)
	}

	if len(rows) == 0 {
		header := slices.Clone(model.Columns)
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return nil, fmt.Errorf("writing header: %w", err)
		}

		if err := f.SaveAs(path); err != nil {
			return nil, fmt.Errorf("saving %s: %w", path, err)
		}
	}

	return s, nil
}

// records returns the data rows; callers hold s.mu.
func (s *Spreadsheet) records() ([]*model.AddressRecord, error) {
	rows, err := s.f.GetRows(s.sheet)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.sheet, err)
	}

	var records []*model.AddressRecord

	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}

		records = append(records, model.FromRow(row))
	}

	return records, nil
}

func (s *Spreadsheet) filter(keep func(*model.AddressRecord) bool) ([]*model.AddressRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.records()
	if err != nil {
		return nil, err
	}

	var out []*model.AddressRecord

	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}

	return out, nil
}

func (s *Spreadsheet) first(keep func(*model.AddressRecord) bool) (*model.AddressRecord, error) {
	records, err := s.filter(keep)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, ErrNotFound
	}

	return records[0], nil
}

func (s *Spreadsheet) FindExact(name, city, country string) (*model.AddressRecord, error) {
	return s.first(func(r *model.AddressRecord) bool { return matchesExact(r, name, city, country) })
}

func (s *Spreadsheet) FindByPlaceID(placeID string) (*model.AddressRecord, error) {
	if placeID == "" {
		return nil, ErrNotFound
	}

	return s.first(func(r *model.AddressRecord) bool { return r.PlaceID == placeID })
}

func (s *Spreadsheet) Candidates(country string) ([]*model.AddressRecord, error) {
	return s.filter(func(r *model.AddressRecord) bool { return isCandidate(r, country) })
}

func (s *Spreadsheet) Insert(r *model.AddressRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepareInsert(r, uuid.NewString(), s.now().UTC())

	rows, err := s.f.GetRows(s.sheet)
	if err != nil {
		return fmt.Errorf("reading %s: %w", s.sheet, err)
	}

	cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return err
	}

	row := r.Row()
	if err := s.f.SetSheetRow(s.sheet, cell, &row); err != nil {
		return fmt.Errorf("inserting %s: %w", r.CompanyNormalized, err)
	}

	return s.save()
}

func (s *Spreadsheet) Update(name string, u Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.f.GetRows(s.sheet)
	if err != nil {
		return fmt.Errorf("reading %s: %w", s.sheet, err)
	}

	var (
		r        *model.AddressRecord
		excelRow int
	)

	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}

		if rec := model.FromRow(row); sameFold(rec.CompanyNormalized, name) {
			r, excelRow = rec, i+1

			break
		}
	}

	if r == nil {
		return ErrNotFound
	}

	u.apply(r, s.now().UTC())

	values := map[string]string{
		"confidence": strconv.FormatFloat(r.Confidence, 'f', -1, 64),
		"qa_status":  string(r.QAStatus),
		"notes":      r.Notes,
		"updated_at": r.UpdatedAt.Format(time.RFC3339),
	}

	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(slices.Index(model.Columns, col)+1, excelRow)
		if err != nil {
			return err
		}

		if err := s.f.SetCellStr(s.sheet, cell, v); err != nil {
			return fmt.Errorf("updating %s: %w", name, err)
		}
	}

	return s.save()
}

func (s *Spreadsheet) All(limit int) ([]*model.AddressRecord, error) {
	records, err := s.filter(func(*model.AddressRecord) bool { return true })
	if err != nil {
		return nil, err
	}

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	return records, nil
}

func (s *Spreadsheet) LowConfidence(threshold float64) ([]*model.AddressRecord, error) {
	return s.filter(func(r *model.AddressRecord) bool { return r.Confidence < threshold })
}

func (s *Spreadsheet) Nearby(p *spatial.Point, k int) ([]*model.AddressRecord, error) {
	if !p.Valid() {
		return nil, errors.New("invalid point")
	}

	cells, err := p.Neighborhood(NearbyResolution, k)
	if err != nil {
		return nil, err
	}

	records, err := s.All(0)
	if err != nil {
		return nil, err
	}

	return inCells(records, cells), nil
}

func (s *Spreadsheet) Stats() (Stats, error) {
	records, err := s.All(0)
	if err != nil {
		return Stats{}, err
	}

	return summarize(records), nil
}

func (s *Spreadsheet) save() error {
	if err := s.f.SaveAs(s.path); err != nil {
		return fmt.Errorf("saving %s: %w", s.path, err)
	}

	return nil
}

func (s *Spreadsheet) Close() error {
	return s.f.Close()
}
