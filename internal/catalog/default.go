package catalog

import "bakerybot/internal/model"

var defaultCategories = []model.Category{
	{Name: "Milk & Dairy", Items: []string{"Whole milk", "Skim milk", "Oat milk", "Almond milk", "Heavy cream", "Butter"}},
	{Name: "Baking", Items: []string{"Flour", "White sugar", "Brown sugar", "Powdered sugar", "Yeast", "Eggs", "Chocolate chips"}},
	{Name: "Fruits", Items: []string{"Strawberries", "Blueberries", "Bananas", "Lemons", "Apples"}},
	{Name: "Coffee & Tea", Items: []string{"Espresso beans", "Decaf beans", "Black tea", "Matcha"}},
	{Name: "Packaging", Items: []string{"Large to go cups", "Regular to go cups", "Espresso to go cups", "Cold to go cups", "Lids", "Small paper bags", "Large paper bags", "Pastry boxes", "Napkins"}},
}

var (
	allCups   = []string{"Large to go cups", "Regular to go cups", "Espresso to go cups", "Cold to go cups"}
	allFruits = []string{"Strawberries", "Blueberries", "Bananas", "Lemons", "Apples"}
)

var defaultAliases = []Alias{
	{Phrase: "oat", Items: []string{"Oat milk"}},
	{Phrase: "oatmilk", Items: []string{"Oat milk"}},
	{Phrase: "skim", Items: []string{"Skim milk"}},
	{Phrase: "almond", Items: []string{"Almond milk"}},
	{Phrase: "cream", Items: []string{"Heavy cream"}},
	{Phrase: "icing sugar", Items: []string{"Powdered sugar"}},
	{Phrase: "choc chips", Items: []string{"Chocolate chips"}},
	{Phrase: "coffee", Items: []string{"Espresso beans"}},
	{Phrase: "beans", Items: []string{"Espresso beans"}},
	{Phrase: "decaf", Items: []string{"Decaf beans"}},
	{Phrase: "tea", Items: []string{"Black tea"}},
	{Phrase: "boxes", Items: []string{"Pastry boxes"}},
	{Phrase: "iced cups", Items: []string{"Cold to go cups"}},

	{Phrase: "fruits", Items: allFruits, Policy: PolicyExpand},
	{Phrase: "all fruits", Items: allFruits, Policy: PolicyExpand},
	{Phrase: "all cups", Items: allCups, Policy: PolicyExpand},

	{Phrase: "cups", Items: allCups, Policy: PolicyAsk},
	{Phrase: "to go cups", Items: allCups, Policy: PolicyAsk},
	{Phrase: "bags", Items: []string{"Small paper bags", "Large paper bags"}, Policy: PolicyAsk},
	{Phrase: "sugar", Items: []string{"White sugar", "Brown sugar", "Powdered sugar"}, Policy: PolicyAsk},
	{Phrase: "milk", Items: []string{"Whole milk", "Skim milk", "Oat milk", "Almond milk"}, Policy: PolicyAsk},
	{Phrase: "berries", Items: []string{"Strawberries", "Blueberries"}, Policy: PolicyAsk},
}

// Default returns the bakery's catalog.
func Default() *Catalog {
	return MustNew(defaultCategories, defaultAliases)
}
