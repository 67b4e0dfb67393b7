package cart

import (
	"fmt"

	"github.com/sufrahub/sufra/models"
)

// ItemFromProduct builds a line item from a catalog product and the chosen
// size/extra ids. This is the catalog boundary: every id must belong to the
// product, so the engine itself never sees a malformed configuration.
func ItemFromProduct(p *models.Product, sizeID *uint, extraIDs []uint) (LineItem, error) {
	item := LineItem{
		ProductID:     p.ID,
		ProductName:   p.Name,
		ProductNameAr: p.NameAr,
		ImageURL:      p.ImageURL,
		BasePrice:     p.BasePrice,
	}

	if sizeID != nil {
		found := false
		for _, s := range p.Sizes {
			if s.ID == *sizeID {
				item.Size = &ChosenSize{ID: s.ID, Name: string(s.Name), PriceDelta: s.PriceDelta}
				found = true
				break
			}
		}
		if !found {
			return LineItem{}, fmt.Errorf("size %d does not belong to product %q", *sizeID, p.Code)
		}
	}

	for _, id := range extraIDs {
		found := false
		for _, e := range p.Extras {
			if e.ID == id {
				item.Extras = append(item.Extras, ChosenExtra{
					ID:         e.ID,
					Name:       e.Name,
					NameAr:     e.NameAr,
					PriceDelta: e.PriceDelta,
				})
				found = true
				break
			}
		}
		if !found {
			return LineItem{}, fmt.Errorf("extra %d does not belong to product %q", id, p.Code)
		}
	}

	item.normalize()
	return item, nil
}
