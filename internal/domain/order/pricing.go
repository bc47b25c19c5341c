package order

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Horridhunk/carmannagement/internal/httperr"
)

type WashType string

const (
	WashBasic   WashType = "basic"
	WashPremium WashType = "premium"
	WashDeluxe  WashType = "deluxe"
)

var WashTypes = []WashType{WashBasic, WashPremium, WashDeluxe}

func ParseWashType(s string) (WashType, error) {
	wt := WashType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range WashTypes {
		if wt == known {
			return wt, nil
		}
	}
	return "", httperr.ErrValidation("invalid_wash_type", "Wash type must be basic, premium or deluxe.")
}

// Label is the display name, e.g. "Premium Wash".
func (w WashType) Label() string {
	return cases.Title(language.English).String(string(w)) + " Wash"
}

// PriceList maps each wash type to its fixed price.
type PriceList map[WashType]float64

var DefaultPrices = PriceList{
	WashBasic:   15.00,
	WashPremium: 25.00,
	WashDeluxe:  35.00,
}

func PricesFrom(m map[string]float64) PriceList {
	out := PriceList{}
	for wt, p := range DefaultPrices {
		out[wt] = p
	}
	for k, v := range m {
		out[WashType(k)] = v
	}
	return out
}

func (p PriceList) Price(wt WashType) float64 {
	if v, ok := p[wt]; ok {
		return v
	}
	return DefaultPrices[wt]
}
