// Package plans holds the static subscription catalog shown by the carousel.
package plans

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrUnknownPlan is returned when an id is not part of the catalog.
var ErrUnknownPlan = errors.New("unknown plan")

// Default is the plan assumed when the backend does not name one.
const Default = "free"

// Plan is one purchasable tier.
type Plan struct {
	ID          string
	Name        string
	Description string
	Price       float64
}

// PriceLabel renders the price without trailing zeros, e.g. "$5" or "$4.99".
func (p Plan) PriceLabel() string {
	return "$" + strconv.FormatFloat(p.Price, 'f', -1, 64)
}

// SubscribeLabel is the confirm button text for this plan.
func (p Plan) SubscribeLabel() string {
	return fmt.Sprintf("Subscribe to %s (%s)", p.Name, p.PriceLabel())
}

var catalog = []Plan{
	{
		ID:          "free",
		Name:        "Free",
		Description: "Basic features for free users.",
		Price:       0,
	},
	{
		ID:          "base",
		Name:        "Base",
		Description: "Access to chat history and more.",
		Price:       5,
	},
	{
		ID:          "pro",
		Name:        "Pro",
		Description: "Full features including search and attachments.",
		Price:       10,
	},
}

// Catalog returns a copy of the ordered plan list.
func Catalog() []Plan {
	return append([]Plan(nil), catalog...)
}

// Lookup finds a plan by id in list.
func Lookup(list []Plan, id string) (Plan, error) {
	i := IndexOf(list, id)
	if i < 0 {
		return Plan{}, fmt.Errorf("%w: %q", ErrUnknownPlan, id)
	}
	return list[i], nil
}

// IndexOf returns the position of id in list or -1.
func IndexOf(list []Plan, id string) int {
	for i, p := range list {
		if p.ID == id {
			return i
		}
	}
	return -1
}
