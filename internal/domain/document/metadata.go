package document

// Defaults applied when a catalog field is missing or not coercible.
const (
	DefaultDeliveryTimeMinutes = 999
	DefaultPopularity          = 0
	DefaultPrice               = 0.0
	DefaultRating              = 0.0
)

// Metadata is the flat, typed record stored next to every embedding.
// Veg and PureVeg are nil when the catalog does not say.
type Metadata struct {
	ItemID              string
	RestaurantID        string
	ItemName            string
	Category            string
	Price               float64
	Veg                 *bool
	SpiceLevel          string
	Calories            int
	ChefSpecial         bool
	RestaurantName      string
	CuisineType         string
	AverageRating       float64
	PriceRange          string
	Location            string
	DeliveryTimeMinutes int
	PureVeg             *bool
	PopularityScore     int
}

// Bool returns a pointer to b, for building metadata literals.
func Bool(b bool) *bool { return &b }
