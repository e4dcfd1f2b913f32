package wiki

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Custom emoji used to annotate infobox values. The keys mirror the icon
// filenames they stand in for.
var emojiByName = map[string]string{
	"silver":         "<:silver:1134936407979343882>",
	"gold":           "<:gold:1134936607296868392>",
	"iridium":        "<:iridium:1134936532713734154>",
	"coin":           "<:coin:1134936732027068596>",
	"energy":         "<:20pxEnergy:1134935403992973453>",
	"health":         "<:20pxHealth:1134935743958102036>",
	"poison":         "<:POISON:1134936355814781110>",
	"silver_energy":  "<:SILVER_ENERGY:1134935600798122095>",
	"silver_health":  "<:SILVER_HEALTH:1134935657337339945>",
	"silver_poison":  "<:SILVER_POISON:1134935961692807298>",
	"gold_energy":    "<:GOLD_ENERGY:1134935821766643886>",
	"gold_health":    "<:GOLD_HEALTH:1134936028545818674>",
	"gold_poison":    "<:GOLD_POISON:1134936127023878155>",
	"iridium_energy": "<:IRIDIUM_ENERGY:1134936194237595829>",
	"iridium_health": "<:IRIDIUM_HEALTH:1134936250659381330>",
	"iridium_poison": "<:IRIDIUM_POISON:1134936308003901584>",
}

// GetQualityFromPath maps a quality badge image path to its glyph. Unknown
// paths yield the empty string.
func GetQualityFromPath(path string) string {
	switch {
	case strings.HasSuffix(path, "Iridium_Quality.png"):
		return emojiByName["iridium"]
	case strings.HasSuffix(path, "Gold_Quality.png"):
		return emojiByName["gold"]
	case strings.HasSuffix(path, "Silver_Quality.png"):
		return emojiByName["silver"]
	}
	return ""
}

func healthEnergyPoisonFromPath(path string) string {
	switch {
	case strings.HasSuffix(path, "Health.png"):
		return emojiByName["health"]
	case strings.HasSuffix(path, "Energy.png"):
		return emojiByName["energy"]
	case strings.HasSuffix(path, "Poison.png"):
		return emojiByName["poison"]
	}
	return ""
}

// qualityHealthEnergyPoison combines a stat back image with a quality fore
// image, e.g. gold-quality energy.
func qualityHealthEnergyPoison(backPath string, foreimages *goquery.Selection) string {
	img := foreimages.Find("img").First()
	if img.Length() == 0 {
		return ""
	}
	forePath, _ := img.Attr("src")

	var tier string
	switch {
	case strings.HasSuffix(forePath, "Silver_Quality_Icon.png"):
		tier = "silver"
	case strings.HasSuffix(forePath, "Gold_Quality_Icon.png"):
		tier = "gold"
	case strings.HasSuffix(forePath, "Iridium_Quality_Icon.png"):
		tier = "iridium"
	default:
		return ""
	}

	switch {
	case strings.HasSuffix(backPath, "Health.png"):
		return emojiByName[tier+"_health"]
	case strings.HasSuffix(backPath, "Energy.png"):
		return emojiByName[tier+"_energy"]
	case strings.HasSuffix(backPath, "Poison.png"):
		return emojiByName[tier+"_poison"]
	}
	return ""
}

func goldCoinFromForeimages(foreimages *goquery.Selection) string {
	img := foreimages.Find("img").First()
	if img.Length() == 0 {
		return ""
	}
	path, _ := img.Attr("src")
	if strings.HasSuffix(path, "Gold_Quality_Icon.png") {
		return emojiByName["coin"]
	}
	return ""
}

// identifyIcon resolves a back image path (plus any overlaid fore images)
// to a single glyph, trying the most specific shape first. Returns "" when
// nothing matches; callers must never fail on an unrecognized icon.
func identifyIcon(backPath string, foreimages *goquery.Selection, pagename string) string {
	if g := GetQualityFromPath(backPath); g != "" {
		return g
	}
	if foreimages != nil && foreimages.Length() > 0 {
		if g := qualityHealthEnergyPoison(backPath, foreimages); g != "" {
			return g
		}
	}
	if g := healthEnergyPoisonFromPath(backPath); g != "" {
		return g
	}
	if foreimages != nil && foreimages.Length() > 0 && pagename != "" {
		if g := goldCoinFromForeimages(foreimages); g != "" {
			return g
		}
	}
	return ""
}
