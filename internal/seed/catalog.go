package seed

import "github.com/shopspring/decimal"

// CatalogItem is one starter product.
type CatalogItem struct {
	Name     string
	Price    string
	ImageURL string
	Category string
}

// Catalog is the hardware range the storefront opens with.
var Catalog = []CatalogItem{
	{"Cement", "350.00", "cement.jpg", "Construction Materials"},
	{"Sand", "1500.00", "sand.jpg", "Construction Materials"},
	{"Hollow Blocks", "15.00", "hollow_blocks.jpg", "Construction Materials"},
	{"Wood", "80.00", "wood.jpg", "Construction Materials"},
	{"Steel Bars", "1200.00", "steel_bars.jpg", "Construction Materials"},
	{"Nails", "100.00", "nails.jpg", "Construction Materials"},
	{"Screws", "150.00", "screws.jpg", "Construction Materials"},
	{"Paint", "750.00", "paint.jpg", "Paint & Finishing"},
	{"Thinner", "200.00", "thinner.jpg", "Paint & Finishing"},
	{"Brush", "80.00", "brush.jpg", "Paint & Finishing"},
	{"Roller", "150.00", "roller.jpg", "Paint & Finishing"},
	{"Masking Tape", "60.00", "masking_tape.jpg", "Paint & Finishing"},
	{"PVC Pipes", "120.00", "pvc_pipes.jpg", "Plumbing Tools"},
	{"Faucet", "250.00", "faucet.jpg", "Plumbing Tools"},
	{"Fittings", "40.00", "fittings.jpg", "Plumbing Tools"},
	{"Sealant", "180.00", "sealant.jpg", "Plumbing Tools"},
	{"Wires", "950.00", "wires.jpg", "Electrical Tools"},
	{"Switch", "120.00", "switch.jpg", "Electrical Tools"},
	{"Outlet", "150.00", "outlet.jpg", "Electrical Tools"},
	{"Breaker", "450.00", "breaker.jpg", "Electrical Tools"},
	{"Light Bulb", "300.00", "light_bulbs.jpg", "Electrical Tools"},
	{"Battery", "100.00", "battery.jpg", "Electrical Tools"},
	{"Door Knobs", "350.00", "door_knobs.jpg", "Home Hardware"},
	{"Hinges", "90.00", "hinges.jpg", "Home Hardware"},
	{"Padlocks", "200.00", "padlock.jpg", "Home Hardware"},
	{"Shelves", "1000.00", "shelves.jpg", "Home Hardware"},
	{"Drills", "2500.00", "drills.jpg", "Power Tools"},
	{"Grinders", "2000.00", "grinders.jpg", "Power Tools"},
	{"Saws", "1800.00", "saws.jpg", "Power Tools"},
	{"Welding Machines", "6000.00", "welding_machines.jpg", "Power Tools"},
	{"Hammer", "250.00", "hammers.jpg", "Hand Tools"},
	{"Wrench", "300.00", "wrench.jpg", "Hand Tools"},
	{"Screwdriver", "120.00", "screwds.jpg", "Hand Tools"},
	{"Pliers", "180.00", "pliers.jpg", "Hand Tools"},
	{"Measuring Tape", "100.00", "measuring_tape.jpg", "Hand Tools"},
}

func (c CatalogItem) price() decimal.Decimal {
	return decimal.RequireFromString(c.Price)
}
