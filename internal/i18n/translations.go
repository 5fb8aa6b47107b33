package i18n

import (
	"github.com/dettline1/WeatherApp/internal/weather"
)

// Dictionary maps a text key to its display string.
type Dictionary map[string]string

var dictionaries = map[weather.Language]Dictionary{
	weather.LanguageRussian: {
		"app_title":            "Прогноз Погоды",
		"search_placeholder":   "Введите название города...",
		"search_button":        "Показать погоду",
		"temperature":          "Температура",
		"feels_like":           "Ощущается как",
		"humidity":             "Влажность",
		"wind_speed":           "Скорость ветра",
		"history_title":        "История запросов",
		"no_history":           "История пуста",
		"error_city_not_found": "Город не найден. Проверьте название.",
		"error_api_key":        "Ошибка API ключа. Проверьте конфигурацию.",
		"error_connection":     "Ошибка подключения к сервису погоды.",
		"error_general":        "Произошла ошибка. Попробуйте позже.",
		"error_input":          "Введите название города.",
		"error_storage":        "Не удалось сохранить историю.",
		"autodetect":           "Определить мой город",
		"language":             "Язык",
		"last_updated":         "Обновлено",
		"clear_history":        "Очистить историю",
	},
	weather.LanguageEnglish: {
		"app_title":            "Weather Forecast",
		"search_placeholder":   "Enter city name...",
		"search_button":        "Show Weather",
		"temperature":          "Temperature",
		"feels_like":           "Feels Like",
		"humidity":             "Humidity",
		"wind_speed":           "Wind Speed",
		"history_title":        "Search History",
		"no_history":           "No history yet",
		"error_city_not_found": "City not found. Check the name.",
		"error_api_key":        "API key error. Check configuration.",
		"error_connection":     "Connection error to weather service.",
		"error_general":        "An error occurred. Try again later.",
		"error_input":          "Please enter a city name.",
		"error_storage":        "Could not save history.",
		"autodetect":           "Detect my city",
		"language":             "Language",
		"last_updated":         "Updated",
		"clear_history":        "Clear history",
	},
}

// Text returns the display string for key in lang. Unknown languages fall
// back to English; unknown keys are returned as-is.
func Text(key string, lang weather.Language) string {
	dict, ok := dictionaries[lang]
	if !ok {
		dict = dictionaries[weather.LanguageEnglish]
	}
	if v, ok := dict[key]; ok {
		return v
	}
	return key
}

// Has reports whether lang has a dictionary.
func Has(lang weather.Language) bool {
	_, ok := dictionaries[lang]
	return ok
}

// For returns a copy of the dictionary for lang, or nil if there is none.
func For(lang weather.Language) Dictionary {
	dict, ok := dictionaries[lang]
	if !ok {
		return nil
	}
	out := make(Dictionary, len(dict))
	for k, v := range dict {
		out[k] = v
	}
	return out
}
