// internal/domain/retail/catalog.go
package retail

import "github.com/shopspring/decimal"

// Barangay is the smallest administrative unit a store is located in
type Barangay struct {
	Name string
	Lat  float64
	Lng  float64
}

// Location is a city with the barangays stores are placed in
type Location struct {
	Region    string
	Province  string
	City      string
	Barangays []Barangay
}

// CatalogProduct is a SKU in the reference catalog
type CatalogProduct struct {
	SKU   string
	Name  string
	Price decimal.Decimal
}

// CatalogBrand is a brand and its SKUs
type CatalogBrand struct {
	Name     string
	Client   bool
	Products []CatalogProduct
}

// CatalogCategory is a category and its brands
type CatalogCategory struct {
	Name   string
	Brands []CatalogBrand
}

// Locations are the Philippine cities covered by the reference data.
var Locations = []Location{
	{Region: "NCR", Province: "Metro Manila", City: "Manila", Barangays: []Barangay{
		{"Ermita", 14.5823, 120.9748},
		{"Malate", 14.5739, 120.9909},
		{"Quiapo", 14.5990, 120.9831},
		{"Sampaloc", 14.6112, 120.9926},
		{"Tondo", 14.6147, 120.9671},
	}},
	{Region: "NCR", Province: "Metro Manila", City: "Quezon City", Barangays: []Barangay{
		{"Diliman", 14.6507, 121.0494},
		{"Cubao", 14.6177, 121.0551},
		{"Commonwealth", 14.6832, 121.0896},
	}},
	{Region: "Region III", Province: "Pampanga", City: "Angeles", Barangays: []Barangay{
		{"Balibago", 15.1636, 120.5887},
		{"Anunas", 15.1333, 120.5987},
	}},
	{Region: "Region IV-A", Province: "Batangas", City: "Batangas City", Barangays: []Barangay{
		{"Poblacion", 13.7565, 121.0583},
		{"Alangilan", 13.7860, 121.0750},
	}},
	{Region: "Region VII", Province: "Cebu", City: "Cebu City", Barangays: []Barangay{
		{"Lahug", 10.3339, 123.8941},
		{"IT Park", 10.3308, 123.9054},
	}},
	{Region: "Region XI", Province: "Davao del Sur", City: "Davao City", Barangays: []Barangay{
		{"Poblacion", 7.0731, 125.6128},
		{"Buhangin", 7.1027, 125.6358},
	}},
}

// StoreNames are typical sari-sari store names.
var StoreNames = []string{
	"Aling Nena's Store", "Mang Juan Sari-Sari", "Tindahan ni Ate Maria",
	"Kuya Boy Store", "JM Mart", "RJ Store", "Triple M", "ABC Store",
	"Neighborhood Mart", "Corner Store", "Barangay Store", "24/7 Mart",
}

// PaymentMethods accepted at the counter.
var PaymentMethods = []string{"cash", "gcash", "maya", "credit"}

// Catalog is the FMCG and tobacco reference catalog.
var Catalog = []CatalogCategory{
	{Name: "Dairy", Brands: []CatalogBrand{
		{Name: "Alaska", Client: true, Products: []CatalogProduct{
			sku("ALS001", "Alaska Evap 370ml", "42.00"),
			sku("ALS002", "Alaska Evap 154ml", "18.00"),
			sku("ALS003", "Alaska Powdered Milk 33g", "8.50"),
		}},
		{Name: "Bear Brand", Products: []CatalogProduct{
			sku("BBR001", "Bear Brand Adult Plus 33g", "10.00"),
			sku("BBR002", "Bear Brand Fortified 150g", "45.00"),
		}},
	}},
	{Name: "Snack", Brands: []CatalogBrand{
		{Name: "Jack n Jill", Products: []CatalogProduct{
			sku("JNJ001", "Piattos Cheese 85g", "32.00"),
			sku("JNJ002", "Nova Multigrain", "25.00"),
			sku("JNJ003", "Chippy BBQ 110g", "28.00"),
		}},
		{Name: "Oishi", Products: []CatalogProduct{
			sku("OSH001", "Oishi Prawn Crackers", "20.00"),
			sku("OSH002", "Kirei Yummy Flakes", "15.00"),
		}},
	}},
	{Name: "Beverage", Brands: []CatalogBrand{
		{Name: "Coca-Cola", Client: true, Products: []CatalogProduct{
			sku("COK001", "Coke Mismo", "15.00"),
			sku("COK002", "Coke Sakto", "20.00"),
			sku("COK003", "Coke 1.5L", "65.00"),
		}},
		{Name: "C2", Products: []CatalogProduct{
			sku("C2T001", "C2 Apple 355ml", "22.00"),
			sku("C2T002", "C2 Lemon 500ml", "30.00"),
		}},
	}},
	{Name: "Home Care", Brands: []CatalogBrand{
		{Name: "Tide", Client: true, Products: []CatalogProduct{
			sku("TID001", "Tide Bar 130g", "25.00"),
			sku("TID002", "Tide Powder 66g", "12.00"),
			sku("TID003", "Tide Liquid 30ml", "8.50"),
		}},
		{Name: "Ariel", Products: []CatalogProduct{
			sku("ARL001", "Ariel Powder 66g", "11.00"),
			sku("ARL002", "Ariel Bar 130g", "23.00"),
		}},
	}},
	{Name: "Personal Care", Brands: []CatalogBrand{
		{Name: "Head & Shoulders", Client: true, Products: []CatalogProduct{
			sku("HNS001", "H&S Cool Menthol 12ml", "8.00"),
			sku("HNS002", "H&S Anti-Dandruff 170ml", "125.00"),
		}},
		{Name: "Safeguard", Products: []CatalogProduct{
			sku("SFG001", "Safeguard White 60g", "22.00"),
			sku("SFG002", "Safeguard Pure White 135g", "45.00"),
		}},
	}},
	{Name: "Tobacco", Brands: []CatalogBrand{
		{Name: "Marlboro", Client: true, Products: []CatalogProduct{
			sku("MAR001", "Marlboro Red", "180.00"),
			sku("MAR002", "Marlboro Lights", "180.00"),
			sku("MAR003", "Marlboro Black", "185.00"),
		}},
		{Name: "Fortune", Products: []CatalogProduct{
			sku("FOR001", "Fortune International", "145.00"),
			sku("FOR002", "Fortune Menthol", "145.00"),
		}},
	}},
}

// CatalogEntry locates a SKU within the catalog
type CatalogEntry struct {
	Category string
	Brand    string
	Product  CatalogProduct
}

// LookupSKU finds a SKU in the catalog.
func LookupSKU(code string) (CatalogEntry, bool) {
	for _, c := range Catalog {
		for _, b := range c.Brands {
			for _, p := range b.Products {
				if p.SKU == code {
					return CatalogEntry{Category: c.Name, Brand: b.Name, Product: p}, true
				}
			}
		}
	}
	return CatalogEntry{}, false
}

func sku(code, name, price string) CatalogProduct {
	return CatalogProduct{SKU: code, Name: name, Price: decimal.RequireFromString(price)}
}
