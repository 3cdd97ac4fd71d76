package domain

type Airport struct {
	Code string `json:"code"`
	Name string `json:"name"`
	City string `json:"city"`
}

// Static reference set; never mutated at runtime.
var airports = []Airport{
	{Code: "DEL", Name: "Indira Gandhi International", City: "New Delhi"},
	{Code: "BOM", Name: "Chhatrapati Shivaji Maharaj International", City: "Mumbai"},
	{Code: "BLR", Name: "Kempegowda International", City: "Bangalore"},
	{Code: "HYD", Name: "Rajiv Gandhi International", City: "Hyderabad"},
	{Code: "MAA", Name: "Chennai International", City: "Chennai"},
	{Code: "CCU", Name: "Netaji Subhas Chandra Bose International", City: "Kolkata"},
	{Code: "COK", Name: "Cochin International", City: "Kochi"},
	{Code: "AMD", Name: "Sardar Vallabhbhai Patel International", City: "Ahmedabad"},
	{Code: "PNQ", Name: "Pune International", City: "Pune"},
	{Code: "GOI", Name: "Goa International", City: "Goa"},
}

func Airports() []Airport {
	out := make([]Airport, len(airports))
	copy(out, airports)
	return out
}

func AirportByCode(code string) (Airport, bool) {
	for _, a := range airports {
		if a.Code == code {
			return a, true
		}
	}
	return Airport{}, false
}
