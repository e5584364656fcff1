package models

import (
	"encoding/json"
	"fmt"
)

// Top-level keys of the wine-list document.
const (
	KeyWines          = "wines"
	KeyWineries       = "wineries"
	KeyMenu           = "menu"
	KeyGlossary       = "glossary"
	KeyAIInstructions = "ai_instructions"
)

// EmptyDocument is written when the store holds nothing yet.
var EmptyDocument = []byte(`{
  "wines": [],
  "wineries": [],
  "menu": [],
  "glossary": [],
  "ai_instructions": []
}`)

type Pairing struct {
	DishID      ID   `json:"dishId"`
	Label       Text `json:"label"`
	Description Text `json:"description"`
}

type Wine struct {
	ID            ID        `json:"id"`
	WineryID      ID        `json:"wineryId"`
	Name          Text      `json:"name"`
	Grapes        Text      `json:"grapes"`
	Type          Text      `json:"type"`
	Price         Text      `json:"price"`
	PriceRange    Text      `json:"priceRange"`
	Vintages      Text      `json:"vintages"`
	Image         Text      `json:"image"`
	Description   Text      `json:"description"`
	Curiosity     Text      `json:"curiosity"`
	Hidden        bool      `json:"hidden,omitempty"`
	IanuaPairings []Pairing `json:"ianuaPairings,omitempty"`
}

type Winery struct {
	ID          ID   `json:"id"`
	Name        Text `json:"name"`
	Location    Text `json:"location"`
	Region      Text `json:"region"`
	Description Text `json:"description"`
	Curiosity   Text `json:"curiosity"`
	Image       Text `json:"image"`
	Website     Text `json:"website"`
	Hidden      bool `json:"hidden,omitempty"`
}

type MenuItem struct {
	ID          ID   `json:"id"`
	Name        Text `json:"name"`
	Category    Text `json:"category"`
	Description Text `json:"description"`
	Ingredients Text `json:"ingredients"`
	Price       Text `json:"price"`
	Hidden      bool `json:"hidden,omitempty"`
}

type GlossaryTerm struct {
	ID         ID   `json:"id"`
	Term       Text `json:"term"`
	Definition Text `json:"definition"`
}

// MalformedEntry records an array element that could not be read as its collection's type.
type MalformedEntry struct {
	Collection string `json:"collection"`
	Index      int    `json:"index"`
	Error      string `json:"error"`
}

// Catalog is a typed, read-only view over the stored document.
type Catalog struct {
	Wines    []Wine
	Wineries []Winery
	Menu     []MenuItem
	Glossary []GlossaryTerm
	// AIInstructions are free-form notes for the sommelier assistant.
	AIInstructions []Text
	Malformed      []MalformedEntry
}

// ParseCatalog decodes the known collections of a document. Elements that do not decode are
// skipped and listed in Malformed instead of failing the whole document.
func ParseCatalog(body []byte) (*Catalog, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, fmt.Errorf("document is not a JSON object: %w", err)
	}

	cat := &Catalog{}
	var err error
	if cat.Wines, err = decodeCollection[Wine](top, KeyWines, &cat.Malformed); err != nil {
		return nil, err
	}
	if cat.Wineries, err = decodeCollection[Winery](top, KeyWineries, &cat.Malformed); err != nil {
		return nil, err
	}
	if cat.Menu, err = decodeCollection[MenuItem](top, KeyMenu, &cat.Malformed); err != nil {
		return nil, err
	}
	if cat.Glossary, err = decodeCollection[GlossaryTerm](top, KeyGlossary, &cat.Malformed); err != nil {
		return nil, err
	}
	if cat.AIInstructions, err = decodeCollection[Text](top, KeyAIInstructions, &cat.Malformed); err != nil {
		return nil, err
	}
	return cat, nil
}

func decodeCollection[T any](top map[string]json.RawMessage, key string, malformed *[]MalformedEntry) ([]T, error) {
	raw, ok := top[key]
	if !ok || string(raw) == "null" {
		return nil, nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, fmt.Errorf("%s is not an array: %w", key, err)
	}

	out := make([]T, 0, len(elems))
	for i, elem := range elems {
		var v T
		if err := json.Unmarshal(elem, &v); err != nil {
			*malformed = append(*malformed, MalformedEntry{Collection: key, Index: i, Error: err.Error()})
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// WineryByID indexes wineries by id. On duplicate ids the first entry wins.
func (c *Catalog) WineryByID() map[ID]*Winery {
	idx := make(map[ID]*Winery, len(c.Wineries))
	for i := range c.Wineries {
		if _, seen := idx[c.Wineries[i].ID]; !seen {
			idx[c.Wineries[i].ID] = &c.Wineries[i]
		}
	}
	return idx
}
