package locate

import "strings"

type city struct {
	name    string
	country string
	region  string
	lat     float64
	lon     float64
}

// cities is the built-in gazetteer of commonly queried places.
var cities = map[string]city{
	"北京":          {"北京", "CN", "北京市", 39.9042, 116.4074},
	"上海":          {"上海", "CN", "上海市", 31.2304, 121.4737},
	"广州":          {"广州", "CN", "广东省", 23.1291, 113.2644},
	"深圳":          {"深圳", "CN", "广东省", 22.5431, 114.0579},
	"杭州":          {"杭州", "CN", "浙江省", 30.2741, 120.1551},
	"南京":          {"南京", "CN", "江苏省", 32.0603, 118.7969},
	"武汉":          {"武汉", "CN", "湖北省", 30.5928, 114.3055},
	"成都":          {"成都", "CN", "四川省", 30.5728, 104.0668},
	"西安":          {"西安", "CN", "陕西省", 34.3416, 108.9398},
	"重庆":          {"重庆", "CN", "重庆市", 29.5630, 106.5516},
	"london":      {"london", "GB", "England", 51.5074, -0.1278},
	"paris":       {"paris", "FR", "Île-de-France", 48.8566, 2.3522},
	"tokyo":       {"tokyo", "JP", "Tokyo", 35.6762, 139.6503},
	"new york":    {"new york", "US", "New York", 40.7128, -74.0060},
	"los angeles": {"los angeles", "US", "California", 34.0522, -118.2437},
	"sydney":      {"sydney", "AU", "New South Wales", -33.8688, 151.2093},
	"moscow":      {"moscow", "RU", "Moscow", 55.7558, 37.6176},
	"berlin":      {"berlin", "DE", "Berlin", 52.5200, 13.4050},
}

// cityAliases maps shorthand and romanized names to gazetteer entries.
var cityAliases = map[string]string{
	"bj":        "北京",
	"beijing":   "北京",
	"sh":        "上海",
	"shanghai":  "上海",
	"gz":        "广州",
	"guangzhou": "广州",
	"sz":        "深圳",
	"shenzhen":  "深圳",
	"hz":        "杭州",
	"hangzhou":  "杭州",
	"nj":        "南京",
	"nanjing":   "南京",
	"wh":        "武汉",
	"wuhan":     "武汉",
	"cd":        "成都",
	"chengdu":   "成都",
	"xa":        "西安",
	"xian":      "西安",
	"cq":        "重庆",
	"chongqing": "重庆",
	"nyc":       "new york",
	"la":        "los angeles",
}

func lookupCity(name string) (city, bool) {
	if c, ok := cities[name]; ok {
		return c, true
	}
	lower := strings.ToLower(name)
	if c, ok := cities[lower]; ok {
		return c, true
	}
	return city{}, false
}

// KnownCity reports whether the word names a gazetteer city or alias.
// The command classifier uses it as a location heuristic.
func KnownCity(word string) bool {
	lower := strings.ToLower(word)
	if _, ok := cities[lower]; ok {
		return true
	}
	if _, ok := cities[word]; ok {
		return true
	}
	_, ok := cityAliases[lower]
	return ok
}
