package products

import "github.com/mamadbah2/butchershop/internal/domain/models"

// Fallback is the built-in Christmas range used when the spreadsheet is unavailable.
func Fallback() []models.SeasonalProduct {
	return []models.SeasonalProduct{
		{ID: "turkey-whole", Name: "Whole Free Range Turkey", Unit: "kg", Description: "Bronze turkey, oven ready"},
		{ID: "turkey-crown", Name: "Turkey Crown", Unit: "each", Description: "Boneless crown, serves 6-8"},
		{ID: "turkey-breast", Name: "Turkey Breast Joint", Unit: "kg", Description: "Rolled and tied"},
		{ID: "goose", Name: "Whole Goose", Unit: "each", Description: "Free range, oven ready"},
		{ID: "duck", Name: "Whole Duck", Unit: "each", Description: "Gressingham duck"},
		{ID: "three-bird-roast", Name: "Three Bird Roast", Unit: "each", Description: "Turkey, chicken and duck, stuffed"},
		{ID: "beef-rib", Name: "Rib of Beef", Unit: "kg", Description: "28 day dry aged, on the bone"},
		{ID: "beef-sirloin", Name: "Beef Sirloin Joint", Unit: "kg", Description: "Rolled sirloin"},
		{ID: "gammon", Name: "Gammon Joint", Unit: "kg", Description: "Smoked or unsmoked"},
		{ID: "pork-loin", Name: "Pork Loin with Crackling", Unit: "kg", Description: "Scored for crackling"},
		{ID: "lamb-leg", Name: "Leg of Lamb", Unit: "kg", Description: "Whole or half leg"},
		{ID: "pigs-in-blankets", Name: "Pigs in Blankets", Unit: "pack", Description: "Chipolatas wrapped in streaky bacon"},
		{ID: "sausage-meat", Name: "Sausage Meat", Unit: "kg", Description: "Pork sausage meat for stuffing"},
		{ID: "chipolatas", Name: "Chipolatas", Unit: "pack", Description: "Pack of 12"},
		{ID: "stuffing", Name: "Sage and Onion Stuffing", Unit: "pack", Description: "Homemade"},
	}
}
