package schedule

import "github.com/kirinyoku/railgo/internal/domain"

var stations = []domain.Station{
	{ID: "sta-1", Code: "CAI", Name: "محطة رمسيس", City: "Cairo", State: "القاهرة"},
	{ID: "sta-2", Code: "ALX", Name: "محطة مصر", City: "Alexandria", State: "الإسكندرية"},
	{ID: "sta-3", Code: "ASW", Name: "محطة أسوان", City: "Aswan", State: "أسوان"},
	{ID: "sta-4", Code: "LXR", Name: "محطة الأقصر", City: "Luxor", State: "الأقصر"},
	{ID: "sta-5", Code: "AST", Name: "محطة أسيوط", City: "Asyut", State: "أسيوط"},
	{ID: "sta-6", Code: "SHG", Name: "محطة سوهاج", City: "Sohag", State: "سوهاج"},
	{ID: "sta-7", Code: "QNA", Name: "محطة قنا", City: "Qena", State: "قنا"},
	{ID: "sta-8", Code: "MNF", Name: "محطة المنيا", City: "Minya", State: "المنيا"},
	{ID: "sta-9", Code: "TNT", Name: "محطة طنطا", City: "Tanta", State: "الغربية"},
	{ID: "sta-10", Code: "DMN", Name: "محطة دمنهور", City: "Damanhur", State: "البحيرة"},
	{ID: "sta-11", Code: "PSD", Name: "محطة بورسعيد", City: "Port Said", State: "بورسعيد"},
	{ID: "sta-12", Code: "ISM", Name: "محطة الإسماعيلية", City: "Ismailia", State: "الإسماعيلية"},
	{ID: "sta-13", Code: "SUZ", Name: "محطة السويس", City: "Suez", State: "السويس"},
	{ID: "sta-14", Code: "GZA", Name: "محطة الجيزة", City: "Giza", State: "الجيزة"},
	{ID: "sta-15", Code: "BNS", Name: "محطة بني سويف", City: "Beni Suef", State: "بني سويف"},
}

// Stations returns a copy of the station catalogue.
func Stations() []domain.Station {
	return append([]domain.Station(nil), stations...)
}

func StationByCode(code string) (domain.Station, bool) {
	for _, s := range stations {
		if s.Code == code {
			return s, true
		}
	}
	return domain.Station{}, false
}
