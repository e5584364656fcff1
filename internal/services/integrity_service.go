package services

import (
	"context"
	"fmt"

	"winelist/internal/models"
)

// Below these sizes the document most likely lost data in a bad save or import.
const (
	minExpectedWineries = 5
	minExpectedWines    = 50
)

type DuplicateID struct {
	Collection string    `json:"collection"`
	ID         models.ID `json:"id"`
	Count      int       `json:"count"`
}

type WineRef struct {
	Index    int       `json:"index"`
	WineID   models.ID `json:"wineId"`
	Name     string    `json:"name"`
	WineryID models.ID `json:"wineryId,omitempty"`
}

type PairingRef struct {
	WineID models.ID `json:"wineId"`
	DishID models.ID `json:"dishId"`
}

type IntegrityReport struct {
	OK                 bool                    `json:"ok"`
	Counts             map[string]int          `json:"counts"`
	WinesWithoutID     []WineRef               `json:"winesWithoutId"`
	DuplicateIDs       []DuplicateID           `json:"duplicateIds"`
	WinesWithoutWinery []WineRef               `json:"winesWithoutWinery"`
	MissingWineries    []WineRef               `json:"missingWineries"`
	DanglingPairings   []PairingRef            `json:"danglingPairings"`
	Malformed          []models.MalformedEntry `json:"malformed"`
	Warnings           []string                `json:"warnings"`
}

type IntegrityService struct {
	source CatalogSource
}

func NewIntegrityService(source CatalogSource) *IntegrityService {
	return &IntegrityService{source: source}
}

func (s *IntegrityService) Report(ctx context.Context) (*IntegrityReport, error) {
	cat, err := s.source.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return Audit(cat), nil
}

// Audit checks references between collections. It never modifies the catalog.
func Audit(cat *models.Catalog) *IntegrityReport {
	r := &IntegrityReport{
		Counts: map[string]int{
			models.KeyWines:          len(cat.Wines),
			models.KeyWineries:       len(cat.Wineries),
			models.KeyMenu:           len(cat.Menu),
			models.KeyGlossary:       len(cat.Glossary),
			models.KeyAIInstructions: len(cat.AIInstructions),
		},
		WinesWithoutID:     []WineRef{},
		DuplicateIDs:       []DuplicateID{},
		WinesWithoutWinery: []WineRef{},
		MissingWineries:    []WineRef{},
		DanglingPairings:   []PairingRef{},
		Malformed:          cat.Malformed,
		Warnings:           []string{},
	}
	if r.Malformed == nil {
		r.Malformed = []models.MalformedEntry{}
	}

	wineIDs := make([]models.ID, 0, len(cat.Wines))
	for i, w := range cat.Wines {
		if w.ID == "" {
			r.WinesWithoutID = append(r.WinesWithoutID, WineRef{Index: i, Name: w.Name.String()})
			continue
		}
		wineIDs = append(wineIDs, w.ID)
	}
	wineryIDs := make([]models.ID, 0, len(cat.Wineries))
	for _, w := range cat.Wineries {
		wineryIDs = append(wineryIDs, w.ID)
	}
	dishIDs := make([]models.ID, 0, len(cat.Menu))
	for _, m := range cat.Menu {
		dishIDs = append(dishIDs, m.ID)
	}
	r.DuplicateIDs = append(r.DuplicateIDs, duplicates(models.KeyWines, wineIDs)...)
	r.DuplicateIDs = append(r.DuplicateIDs, duplicates(models.KeyWineries, wineryIDs)...)
	r.DuplicateIDs = append(r.DuplicateIDs, duplicates(models.KeyMenu, dishIDs)...)

	wineries := cat.WineryByID()
	dishes := make(map[models.ID]bool, len(dishIDs))
	for _, id := range dishIDs {
		dishes[id] = true
	}

	for i, w := range cat.Wines {
		ref := WineRef{Index: i, WineID: w.ID, Name: w.Name.String(), WineryID: w.WineryID}
		switch {
		case w.WineryID == "":
			r.WinesWithoutWinery = append(r.WinesWithoutWinery, ref)
		case wineries[w.WineryID] == nil:
			r.MissingWineries = append(r.MissingWineries, ref)
		}
		for _, p := range w.IanuaPairings {
			if p.DishID != "" && !dishes[p.DishID] {
				r.DanglingPairings = append(r.DanglingPairings, PairingRef{WineID: w.ID, DishID: p.DishID})
			}
		}
	}

	unnamed := 0
	for _, w := range cat.Wines {
		if w.Name.IsZero() {
			unnamed++
		}
	}
	if unnamed > 0 {
		r.Warnings = append(r.Warnings, fmt.Sprintf("%d wines without a name", unnamed))
	}
	if n := len(cat.Wineries); n < minExpectedWineries {
		r.Warnings = append(r.Warnings, fmt.Sprintf("only %d wineries in the document", n))
	}
	if n := len(cat.Wines); n < minExpectedWines {
		r.Warnings = append(r.Warnings, fmt.Sprintf("only %d wines in the document", n))
	}

	r.OK = len(r.WinesWithoutID) == 0 &&
		len(r.DuplicateIDs) == 0 &&
		len(r.WinesWithoutWinery) == 0 &&
		len(r.MissingWineries) == 0 &&
		len(r.DanglingPairings) == 0 &&
		len(r.Malformed) == 0
	return r
}

// duplicates lists ids seen more than once, in order of first appearance. Empty ids are skipped.
func duplicates(collection string, ids []models.ID) []DuplicateID {
	counts := make(map[models.ID]int, len(ids))
	var order []models.ID
	for _, id := range ids {
		if id == "" {
			continue
		}
		if counts[id] == 0 {
			order = append(order, id)
		}
		counts[id]++
	}
	var out []DuplicateID
	for _, id := range order {
		if counts[id] > 1 {
			out = append(out, DuplicateID{Collection: collection, ID: id, Count: counts[id]})
		}
	}
	return out
}
