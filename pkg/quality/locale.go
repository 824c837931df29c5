package quality

// Locale selects the language of labels and recommendation text.
type Locale string

const (
	LocaleVI Locale = "vi"
	LocaleEN Locale = "en"

	// DefaultLocale is used for empty or unknown locale codes.
	DefaultLocale = LocaleVI
)

// ParseLocale returns the Locale for code and whether it is supported.
func ParseLocale(code string) (Locale, bool) {
	l := Locale(code)
	_, ok := catalogs[l]
	return l, ok
}

type message int

const (
	msgPHLow message = iota
	msgPHHigh
	msgTurbidity
	msgTDS
	msgOxygen
	msgPotable
	msgNotPotable
)

type catalog struct {
	tiers   [4]string
	classes [5]string
	aqi     [4]string
	msgs    map[message]string
}

var catalogs = map[Locale]*catalog{
	LocaleVI: {
		tiers:   [4]string{"Tối ưu", "Chấp nhận được", "Biên", "Kém"},
		classes: [5]string{"Xuất sắc", "Tốt", "Trung bình", "Kém", "Rất kém"},
		aqi:     [4]string{"Tốt", "Trung bình", "Kém", "Nguy hại"},
		msgs: map[message]string{
			msgPHLow:      "pH quá thấp (acid). Cần trung hòa bằng vôi hoặc natri bicarbonate.",
			msgPHHigh:     "pH quá cao (kiềm). Cần điều chỉnh bằng acid citric hoặc giấm.",
			msgTurbidity:  "Độ đục cao. Yêu cầu lọc qua cát, than hoạt tính hoặc màng lọc.",
			msgTDS:        "TDS cao. Cân nhắc sử dụng hệ thống lọc RO (Reverse Osmosis).",
			msgOxygen:     "Oxy hòa tan thấp. Cần sục khí hoặc kiểm tra nguồn ô nhiễm hữu cơ.",
			msgPotable:    "✓ Nước đạt tiêu chuẩn sử dụng.",
			msgNotPotable: "⚠ Nước KHÔNG đạt tiêu chuẩn uống. Cần xử lý trước khi sử dụng.",
		},
	},
	LocaleEN: {
		tiers:   [4]string{"Optimal", "Acceptable", "Marginal", "Poor"},
		classes: [5]string{"Excellent", "Good", "Fair", "Poor", "Very Poor"},
		aqi:     [4]string{"Good", "Moderate", "Unhealthy", "Hazardous"},
		msgs: map[message]string{
			msgPHLow:      "pH too low (acidic). Neutralize with lime or sodium bicarbonate.",
			msgPHHigh:     "pH too high (alkaline). Adjust with citric acid or vinegar.",
			msgTurbidity:  "High turbidity. Filter through sand, activated carbon or a membrane.",
			msgTDS:        "High TDS. Consider a reverse osmosis (RO) filtration system.",
			msgOxygen:     "Low dissolved oxygen. Aerate the water or check for organic pollution.",
			msgPotable:    "✓ Water meets the standard for use.",
			msgNotPotable: "⚠ Water does NOT meet drinking standards. Treat it before use.",
		},
	},
}

func (l Locale) catalog() *catalog {
	if c, ok := catalogs[l]; ok {
		return c
	}
	return catalogs[DefaultLocale]
}

func (c *catalog) tier(t Tier) string {
	if t < TierOptimal || t > TierPoor {
		return ""
	}
	return c.tiers[t]
}

func (c *catalog) class(cl Classification) string {
	if cl < ClassExcellent || cl > ClassVeryPoor {
		return ""
	}
	return c.classes[cl]
}

func (c *catalog) level(l AQILevel) string {
	if l < AQIGood || l > AQIHazardous {
		return ""
	}
	return c.aqi[l]
}
