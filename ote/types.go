package ote

import "encoding/json"

const API_URL = "https://www.ote-cr.cz/cs/kratkodobe-trhy/elektrina/denni-trh/@@chart-data"

// Wire format of the OTE day-ahead chart endpoint. Only the price data line
// is of interest; the first line carries traded volumes.
type chartData struct {
	Data struct {
		DataLine []dataLine `json:"dataLine"`
	} `json:"data"`
}

type dataLine struct {
	Title string  `json:"title"`
	Point []point `json:"point"`
}

type point struct {
	X json.Number `json:"x"` // 1-based slot index, sometimes quoted
	Y float64     `json:"y"` // price in EUR/MWh
}
