// Package noaa implements queries to NOAA Tides & Currents. Tide data is requested as a
// high/low time series per station (see PredictionQuery). A successful query returns a
// list of predictions with time, height, and whether it is high or low. All times are
// the station's local wall clock.
//
// The package also scrapes the public station directory: the listing page for station
// ids and names, and each station's home page for its coordinates.
package noaa
