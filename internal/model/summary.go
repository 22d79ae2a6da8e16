package model

// LanguageSentinel is returned for FavoriteLanguage and MostStarredLanguage
// when there is no data to rank.
const LanguageSentinel = "N/A"

// Summary is the derived usage-analytics record for one user.
//
// Languages holds the distinct execution languages in first-encountered order,
// and LanguagesCount always equals len(LanguageStats). Last24Hours counts
// executions strictly newer than now minus 24 hours, evaluated against a single
// wall-clock sample taken at aggregation time — repeated calls are therefore
// not idempotent across the window boundary.
type Summary struct {
	TotalExecutions     int            `json:"totalExecutions"`
	LanguagesCount      int            `json:"languagesCount"`
	Languages           []string       `json:"languages"`
	Last24Hours         int            `json:"last24Hours"`
	FavoriteLanguage    string         `json:"favoriteLanguage"`
	LanguageStats       map[string]int `json:"languageStats"`
	MostStarredLanguage string         `json:"mostStarredLanguage"`
}
