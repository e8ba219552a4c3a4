package command

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/chatweather/weatherbot/internal/locate"
)

// Parser is the deterministic, bilingual (zh/en) command classifier.
// Parse never panics; garbage input degrades to a current-weather command
// with no location.
type Parser struct {
	intentTiers      []intentTier
	locationPatterns []*regexp.Regexp
	timePatterns     []timePattern
	numberPattern    *regexp.Regexp
	wordPattern      *regexp.Regexp
	punctPattern     *regexp.Regexp
}

type intentTier struct {
	intent   Intent
	patterns []*regexp.Regexp
}

type timePattern struct {
	period   TimePeriod
	patterns []*regexp.Regexp
}

// NewParser compiles all patterns once.
func NewParser() *Parser {
	compile := func(exprs ...string) []*regexp.Regexp {
		out := make([]*regexp.Regexp, len(exprs))
		for i, e := range exprs {
			out[i] = regexp.MustCompile("(?i)" + e)
		}
		return out
	}

	return &Parser{
		// Priority-ordered: first tier whose patterns match wins.
		// Current weather is the fallback and needs no tier here.
		intentTiers: []intentTier{
			{IntentHelp, compile(
				`(?:帮助|help|使用说明|命令列表)`,
				`(?:天气|weather)(?:帮助|help)`,
				`(?:how\s+to\s+use|usage|commands)`,
			)},
			{IntentSetLocation, compile(
				`(?:设置|set)\s*(?:位置|location)\s*(.+)`,
				`(?:默认|default)\s*(?:位置|location)\s*(.+)`,
				`set\s+(?:my\s+)?(?:default\s+)?location\s+(?:to\s+)?(.+)`,
			)},
			{IntentSetUnits, compile(
				`(?:设置|set)\s*(?:单位|units)\s*(.+)`,
				`(?:使用|use)\s*(.+)\s*(?:单位|units)`,
				`set\s+units\s+(?:to\s+)?(.+)`,
			)},
			{IntentAlerts, compile(
				`(?:警报|alert|通知|notification)(.+)`,
				`(.+)(?:警报|alert)`,
				`weather\s+(?:alert|warning)s?\s*(?:for\s+)?(.+)`,
			)},
			{IntentActivities, compile(
				`(?:活动|activity|activities)\s*(?:推荐|recommendation)(.+)`,
				`(.+)(?:适合什么活动|能做什么)`,
				`what\s+(?:can\s+i\s+do|activities)\s+(?:in\s+|at\s+)?(.+)`,
				`(?:outdoor\s+)?activities\s+(?:for\s+|in\s+|at\s+)?(.+)`,
			)},
			{IntentHourlyForecast, compile(
				`(?:小时|hourly)\s*(?:预报|forecast)\s*(.+)`,
				`(.+)(?:的小时预报|小时预报)`,
				`hourly\s+(?:weather\s+)?(?:for\s+|in\s+|at\s+)?(.+)`,
			)},
			{IntentForecast, compile(
				`(?:明天|后天|大后天)(.*)(?:天气|气温|温度|预报)(?:怎么样|如何|多少|$)`,
				`(.*)(?:明天|后天|大后天)(?:天气|预报)`,
				`(.*)(?:的预报|预报怎么样)`,
				`(?:预报|forecast)\s*(.+)`,
				`(?:weather\s+)?forecast\s+(?:for\s+|in\s+|at\s+)?(.+)`,
				`(?:will\s+it\s+rain|will\s+it\s+snow)\s+(?:in\s+|at\s+)?(.+)`,
				`tomorrow'?s?\s+weather\s+(?:in\s+|at\s+|for\s+)?(.+)`,
			)},
		},
		locationPatterns: compile(
			`(?:今天|明天|后天)\s*([^的天气预报]+?)(?:的天气|天气|预报|$)`,
			`([^，,。.！!？?]+?)(?:的天气|天气怎么样|天气如何|的预报|的小时预报|小时预报)`,
			`(?:天气|预报|小时预报|weather|forecast|hourly)\s+([^，,。.！!？?]+?)(?:$|[，,。.！!？?])`,
			`(?:在|去|到|位于)\s*([^的]+?)(?:的|$)`,
			`(?:weather|forecast|hourly)\s+(?:in\s+|at\s+|for\s+)?([a-zA-Z\s]+?)(?:$|[,.])`,
			`(?:in|at|for)\s+([a-zA-Z\s]+?)(?:\s+weather|\s+forecast|$)`,
		),
		timePatterns: []timePattern{
			{PeriodToday, compile(`今天`, `现在`, `当前`, `today`, `now`, `current`)},
			{PeriodTomorrow, compile(`明天`, `tomorrow`)},
			{PeriodDayAfterTomorrow, compile(`后天`, `day\s+after\s+tomorrow`)},
			{PeriodThisWeek, compile(`这周`, `本周`, `this\s+week`)},
			{PeriodNextWeek, compile(`下周`, `next\s+week`)},
		},
		numberPattern: regexp.MustCompile(`\d+`),
		wordPattern:   regexp.MustCompile(`[\x{4e00}-\x{9fff}]+|[a-zA-Z]+`),
		punctPattern:  regexp.MustCompile(`[，,。.！!？?；;：:]`),
	}
}

// Parse classifies a message. The second return value is false for empty or
// whitespace-only input.
func (p *Parser) Parse(message string) (Command, bool) {
	text := strings.TrimSpace(message)
	if text == "" {
		return Command{}, false
	}

	intent := p.detectIntent(text)
	if intent == IntentHelp {
		return Command{Intent: IntentHelp, Params: map[string]string{}}, true
	}

	return Command{
		Intent:     intent,
		Location:   p.ExtractLocation(text),
		TimePeriod: p.extractTimePeriod(text),
		Params:     p.extractParams(text, intent),
	}, true
}

func (p *Parser) detectIntent(text string) Intent {
	for _, tier := range p.intentTiers {
		for _, pattern := range tier.patterns {
			if pattern.MatchString(text) {
				return tier.intent
			}
		}
	}
	// Anything non-empty that matched nothing is treated as a
	// current-weather query.
	return IntentCurrentWeather
}

// ExtractLocation pulls a best-effort location out of the text, or returns
// an empty string.
func (p *Parser) ExtractLocation(text string) string {
	for _, pattern := range p.locationPatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		candidate := p.cleanLocation(m[1])
		if p.validLocation(candidate) {
			return candidate
		}
	}
	return p.locationFallback(text)
}

func (p *Parser) extractTimePeriod(text string) TimePeriod {
	for _, tp := range p.timePatterns {
		for _, pattern := range tp.patterns {
			if pattern.MatchString(text) {
				return tp.period
			}
		}
	}
	return ""
}

func (p *Parser) extractParams(text string, intent Intent) map[string]string {
	params := map[string]string{}
	switch intent {
	case IntentSetUnits:
		if units := extractUnits(text); units != "" {
			params["units"] = units
		}
	case IntentForecast:
		if days := p.extractDays(text); days > 0 {
			params["days"] = strconv.Itoa(days)
		}
	case IntentHourlyForecast:
		if hours := p.extractHours(text); hours > 0 {
			params["hours"] = strconv.Itoa(hours)
		}
	}
	return params
}

// stopWords are dropped from location candidates.
var stopWords = map[string]bool{
	"的": true, "在": true, "去": true, "到": true, "位于": true,
	"地方": true, "城市": true, "地区": true,
	"今天": true, "明天": true, "后天": true,
	"the": true, "in": true, "at": true, "for": true, "of": true,
	"city": true, "area": true, "place": true, "today": true, "tomorrow": true,
	"alert": true, "alerts": true, "warning": true, "warnings": true, "警报": true,
}

// invalidLocations are words that match location patterns but never name a
// place.
var invalidLocations = map[string]bool{
	"今天": true, "明天": true, "后天": true, "现在": true, "当前": true,
	"天气": true, "预报": true, "怎么样": true, "如何": true, "多少": true,
	"today": true, "tomorrow": true, "now": true, "current": true,
	"weather": true, "forecast": true,
	"how": true, "what": true, "when": true, "where": true,
}

func (p *Parser) cleanLocation(candidate string) string {
	candidate = p.punctPattern.ReplaceAllString(candidate, "")
	words := strings.Fields(candidate)
	kept := words[:0]
	for _, w := range words {
		if !stopWords[strings.ToLower(w)] {
			kept = append(kept, w)
		}
	}
	return strings.TrimSpace(strings.Join(kept, " "))
}

func (p *Parser) validLocation(candidate string) bool {
	trimmed := strings.TrimSpace(candidate)
	if len([]rune(trimmed)) < 2 {
		return false
	}
	return !invalidLocations[strings.ToLower(trimmed)]
}

// administrative suffix characters common in Chinese place names
var locationIndicators = []string{"市", "省", "县", "区", "镇", "村", "州", "港", "岛"}

// locationFallback scans tokens for anything location-like: an
// administrative suffix, a capitalized English word, or a gazetteer city.
func (p *Parser) locationFallback(text string) string {
	for _, word := range p.wordPattern.FindAllString(text, -1) {
		if len([]rune(word)) < 2 || !p.validLocation(word) {
			continue
		}
		if looksLikeLocation(word) {
			return word
		}
	}
	return ""
}

func looksLikeLocation(word string) bool {
	for _, indicator := range locationIndicators {
		if strings.Contains(word, indicator) {
			return true
		}
	}
	runes := []rune(word)
	if unicode.IsUpper(runes[0]) && isAlpha(word) {
		return true
	}
	return locate.KnownCity(word)
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}

var metricKeywords = []string{"摄氏度", "公制", "metric", "celsius"}
var imperialKeywords = []string{"华氏度", "英制", "imperial", "fahrenheit"}

func extractUnits(text string) string {
	lower := strings.ToLower(text)
	for _, kw := range metricKeywords {
		if strings.Contains(lower, kw) {
			return "metric"
		}
	}
	for _, kw := range imperialKeywords {
		if strings.Contains(lower, kw) {
			return "imperial"
		}
	}
	// Bare "c" / "f" only count as standalone tokens.
	for _, tok := range strings.Fields(lower) {
		switch tok {
		case "c":
			return "metric"
		case "f":
			return "imperial"
		}
	}
	return ""
}

// extractDays maps symbolic day words through a fixed table, then falls
// back to the first integer in [1,14]. 0 means no day count was found.
func (p *Parser) extractDays(text string) int {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(text, "明天") || strings.Contains(lower, "tomorrow"):
		return 1
	case strings.Contains(text, "后天") || strings.Contains(lower, "day after tomorrow"):
		return 2
	case strings.Contains(text, "三天") || strings.Contains(text, "3天") || strings.Contains(lower, "3 day"):
		return 3
	case strings.Contains(text, "一周") || strings.Contains(text, "7天") || strings.Contains(lower, "week"):
		return 7
	}
	return p.firstNumberIn(text, 1, 14)
}

// extractHours returns the hour horizon: the first integer in [1,48] when
// an hour word is present, 24 when the hour word appears without a usable
// number, and 0 when the text has no hour word at all.
func (p *Parser) extractHours(text string) int {
	if !strings.Contains(text, "小时") && !strings.Contains(strings.ToLower(text), "hour") {
		return 0
	}
	if n := p.firstNumberIn(text, 1, 48); n > 0 {
		return n
	}
	return 24
}

func (p *Parser) firstNumberIn(text string, lo, hi int) int {
	for _, numStr := range p.numberPattern.FindAllString(text, -1) {
		n, err := strconv.Atoi(numStr)
		if err == nil && n >= lo && n <= hi {
			return n
		}
	}
	return 0
}
