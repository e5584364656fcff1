package services

import (
	"context"
	"errors"
	"strings"

	"winelist/internal/models"
	"winelist/internal/regions"
	"winelist/internal/utils"
)

var ErrUnknownZone = errors.New("unknown zone")

// CatalogSource provides the typed view of the current document.
type CatalogSource interface {
	Catalog(ctx context.Context) (*models.Catalog, error)
}

type WineryView struct {
	models.Winery
	Zone     string        `json:"zone"`
	Altitude int           `json:"altitude"`
	Wines    []models.Wine `json:"wines,omitempty"`
}

type ZoneView struct {
	regions.Zone
	Wineries []WineryView `json:"wineries"`
}

type SearchResult struct {
	Query    string            `json:"query"`
	Wines    []models.Wine     `json:"wines"`
	Wineries []WineryView      `json:"wineries"`
	Menu     []models.MenuItem `json:"menu"`
}

type CatalogService struct {
	source  CatalogSource
	regions *regions.Registry
}

func NewCatalogService(source CatalogSource, reg *regions.Registry) *CatalogService {
	return &CatalogService{source: source, regions: reg}
}

// Zones groups the visible wineries, with their visible wines, by zone.
// Wineries that match no zone land in a trailing "unknown" bucket.
func (s *CatalogService) Zones(ctx context.Context) ([]ZoneView, error) {
	cat, err := s.source.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	views := s.wineryViews(cat, true)
	byZone := make(map[string][]WineryView)
	for _, v := range views {
		byZone[v.Zone] = append(byZone[v.Zone], v)
	}

	zones := s.regions.Zones()
	out := make([]ZoneView, 0, len(zones)+1)
	for _, z := range zones {
		out = append(out, ZoneView{Zone: z, Wineries: nonNil(byZone[z.ID])})
	}
	out = append(out, ZoneView{
		Zone:     regions.Zone{ID: regions.UnknownZone, Label: "Unknown"},
		Wineries: nonNil(byZone[regions.UnknownZone]),
	})
	return out, nil
}

// Wineries lists visible wineries with their zone and altitude, optionally filtered by zone id.
func (s *CatalogService) Wineries(ctx context.Context, zone string) ([]WineryView, error) {
	if zone != "" && zone != regions.UnknownZone {
		if _, ok := s.regions.Zone(zone); !ok {
			return nil, ErrUnknownZone
		}
	}

	cat, err := s.source.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	out := []WineryView{}
	for _, v := range s.wineryViews(cat, false) {
		if zone == "" || v.Zone == zone {
			out = append(out, v)
		}
	}
	return out, nil
}

// Search matches visible entries against q, ignoring case and accents.
func (s *CatalogService) Search(ctx context.Context, q string) (*SearchResult, error) {
	needle := utils.Fold(strings.TrimSpace(q))
	if needle == "" {
		return nil, ErrEmptyQuery
	}

	cat, err := s.source.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	res := &SearchResult{
		Query:    q,
		Wines:    []models.Wine{},
		Wineries: []WineryView{},
		Menu:     []models.MenuItem{},
	}
	for _, w := range cat.Wines {
		if w.Hidden {
			continue
		}
		if utils.ContainsFolded(needle, textFields(w.Name, w.Grapes, w.Description)...) {
			res.Wines = append(res.Wines, w)
		}
	}
	for _, v := range s.wineryViews(cat, false) {
		if utils.ContainsFolded(needle, textFields(v.Name, v.Location)...) {
			res.Wineries = append(res.Wineries, v)
		}
	}
	for _, m := range cat.Menu {
		if m.Hidden {
			continue
		}
		if utils.ContainsFolded(needle, textFields(m.Name, m.Description, m.Ingredients)...) {
			res.Menu = append(res.Menu, m)
		}
	}
	return res, nil
}

func (s *CatalogService) wineryViews(cat *models.Catalog, withWines bool) []WineryView {
	var winesBy map[models.ID][]models.Wine
	if withWines {
		winesBy = make(map[models.ID][]models.Wine)
		for _, w := range cat.Wines {
			if !w.Hidden {
				winesBy[w.WineryID] = append(winesBy[w.WineryID], w)
			}
		}
	}

	views := make([]WineryView, 0, len(cat.Wineries))
	for _, w := range cat.Wineries {
		if w.Hidden {
			continue
		}
		v := WineryView{
			Winery:   w,
			Zone:     s.regions.Classify(w.Region.String(), w.Location.String()),
			Altitude: s.regions.Altitude(w.Location.String()),
		}
		if withWines {
			v.Wines = winesBy[w.ID]
		}
		views = append(views, v)
	}
	return views
}

func textFields(texts ...models.Text) []string {
	var out []string
	for _, t := range texts {
		out = append(out, t.Parts()...)
	}
	return out
}

func nonNil(v []WineryView) []WineryView {
	if v == nil {
		return []WineryView{}
	}
	return v
}
