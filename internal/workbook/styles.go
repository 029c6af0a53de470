package workbook

import "github.com/Nehemiah-Career/billing-audit-pipeline/internal/model"

// Report header band colors.
const (
	headerBG   = "1F4E79"
	headerFont = "FFFFFF"
	reportFont = "Arial"
)

// flagStyle is the fill/font pair applied to every cell of a flagged row.
type flagStyle struct {
	BG   string
	Font string
}

// flagPalette keeps review-worthy rows visually distinct from clean ones.
var flagPalette = map[model.AuditFlag]flagStyle{
	model.FlagCorrectCurrent:    {BG: "D9EAD3", Font: "3D6B35"}, // soft green
	model.FlagPriceUnchanged:    {BG: "DDEBF7", Font: "2E5F8A"}, // soft blue
	model.FlagOldPrice:          {BG: "FFF2CC", Font: "7D6608"}, // soft yellow
	model.FlagNoMatch:           {BG: "F4CCCC", Font: "6B1A1A"}, // muted rose
	model.FlagCustomPricing:     {BG: "FCE5CD", Font: "8A4A00"}, // soft amber
	model.FlagNotInCatalog:      {BG: "EAD1DC", Font: "6B1A3A"}, // soft mauve
	model.FlagNoTierBandFound:   {BG: "EAD1DC", Font: "6B1A3A"}, // soft mauve
	model.FlagZeroQtyFlatPrice:  {BG: "E8F4FD", Font: "2E5F8A"}, // pale blue
	model.FlagBilledAtZero:      {BG: "FFF2CC", Font: "7D6608"}, // soft yellow
	model.FlagCredit:            {BG: "EFEFEF", Font: "595959"}, // light grey
	model.FlagNoCatalogCurrency: {BG: "E8E8E8", Font: "595959"}, // catalog gap, not billing error
}
