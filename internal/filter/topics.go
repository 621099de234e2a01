package filter

// Topic names a fixed keyword set. Topics are keyed by ID; the label is
// display text only and must never be used for matching or identity.
type Topic struct {
	ID       string
	Label    string
	Keywords []string
}

// Topics is the static topic table. An episode matches a topic when its
// title+description contains any keyword from the set; a topic with no
// keywords falls back to its lowercased label.
var Topics = []Topic{
	{ID: "ukraine", Label: "Україна", Keywords: []string{"україна", "київ", "львів", "харків", "одеса"}},
	{ID: "front", Label: "Фронт", Keywords: []string{"фронт", "бахмут", "авдіївка", "куп'янськ", "запоріжжя", "херсон", "донбас", "наступ", "контрнаступ", "оборона"}},
	{ID: "talks", Label: "Переговори", Keywords: []string{"переговори", "мир", "женева", "стамбул", "угода", "припинення вогню"}},
	{ID: "geopolitics", Label: "Геополітика", Keywords: []string{"британія", "лондон", "макрон", "шольц", "китай", "сі цзіньпін", "індія", "глобальний південь"}},
	{ID: "eu", Label: "ЄС", Keywords: []string{"єс", "євросоюз", "нато", "альянс", "брюссель", "членство"}},
	{ID: "usa", Label: "США", Keywords: []string{"сша", "америка", "трамп", "байден", "вашингтон", "конгрес", "сенат", "республіканці", "демократи"}},
	{ID: "russia", Label: "Росія", Keywords: []string{"росія", "рф", "москва", "путін", "кремль", "шойгу", "герасимов"}},
	{ID: "sanctions", Label: "Санкції", Keywords: []string{"санкції", "економіка", "нафта", "газ", "рубль", "swift", "активи"}},
	{ID: "weapons", Label: "Зброя", Keywords: []string{"f-16", "himars", "patriot", "leopard", "abrams", "atacms", "снаряди", "танки", "ракети", "дрони", "бпла"}},
	{ID: "analysis", Label: "Аналітика", Keywords: []string{"аналіз", "експерт", "погляд", "думка", "стратегія", "тактика"}},
	{ID: "politics", Label: "Політика", Keywords: []string{"політика", "парламент", "рада", "уряд", "міністр", "депутат", "корупція"}},
	{ID: "zelensky", Label: "Зеленський", Keywords: []string{"зеленський", "президент", "офіс президента"}},
}

// TopicByID resolves a topic by its stable identifier.
func TopicByID(id string) (Topic, bool) {
	for _, t := range Topics {
		if t.ID == id {
			return t, true
		}
	}
	return Topic{}, false
}
