package weather

import "time"

// Daily is one day of aggregated weather: mean temperature (°C) and mean
// relative humidity (%).
type Daily struct {
	Date        time.Time `json:"date"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
}

// geoEntry is one result of the OpenWeatherMap direct-geocoding endpoint.
type geoEntry struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// hourlyConditions is the nested "main" block shared by the historical and
// forecast payloads.
type hourlyConditions struct {
	Temp     float64 `json:"temp"`
	Humidity float64 `json:"humidity"`
}

type historyResponse struct {
	List []struct {
		Dt   int64            `json:"dt"`
		Main hourlyConditions `json:"main"`
	} `json:"list"`
}

type forecastResponse struct {
	List []struct {
		Dt   int64            `json:"dt"`
		Main hourlyConditions `json:"main"`
	} `json:"list"`
}
