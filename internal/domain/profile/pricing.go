package profile

import (
	"math"
	"strconv"
	"strings"

	"github.com/BruksfildServices01/nail-scheduler/internal/httperr"
	"github.com/BruksfildServices01/nail-scheduler/internal/models"
)

// MaxPrice is the first value a decimal(10,2) column cannot hold.
const MaxPrice = 1e8

// ValidPrice rejects NaN, infinities, negatives and anything the price
// columns would overflow on.
func ValidPrice(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0 && v < MaxPrice
}

// ParsePrice reads a submitted price such as "20" or "20.50".
func ParsePrice(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || !ValidPrice(v) {
		return 0, httperr.ErrBusiness("invalid_price")
	}
	return v, nil
}

// PriceInput is one row of a master's price list as submitted. Nil Price
// means "use the service price".
type PriceInput struct {
	ServiceID   uint
	Price       *float64
	DurationMin *int
}

// BuildPriceList resolves inputs against the catalogue. A service listed
// twice is rejected rather than silently merged.
func BuildPriceList(masterID uint, inputs []PriceInput, catalogue map[uint]models.Service) ([]models.PriceList, error) {
	seen := make(map[uint]bool, len(inputs))
	out := make([]models.PriceList, 0, len(inputs))

	for _, in := range inputs {
		svc, ok := catalogue[in.ServiceID]
		if !ok {
			return nil, httperr.ErrBusiness("service_not_found")
		}
		if seen[in.ServiceID] {
			return nil, httperr.ErrBusiness("duplicate_price")
		}
		seen[in.ServiceID] = true

		price := svc.Price
		if in.Price != nil {
			if !ValidPrice(*in.Price) {
				return nil, httperr.ErrBusiness("invalid_price")
			}
			price = *in.Price
		}
		if in.DurationMin != nil && *in.DurationMin < 0 {
			return nil, httperr.ErrBusiness("invalid_duration")
		}

		out = append(out, models.PriceList{
			MasterID:    masterID,
			ServiceID:   svc.ID,
			Service:     svc,
			Price:       price,
			DurationMin: in.DurationMin,
		})
	}
	return out, nil
}
