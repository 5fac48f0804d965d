package ovh

import "encoding/json"

// priceScale is the number of catalog price units per currency unit.
const priceScale = 1e8

type catalog struct {
	Locale struct {
		CurrencyCode string `json:"currencyCode"`
		Subsidiary   string `json:"subsidiary"`
	} `json:"locale"`
	Addons []json.RawMessage `json:"addons"`
}

type addon struct {
	PlanCode       string          `json:"planCode"`
	InvoiceName    string          `json:"invoiceName"`
	Product        string          `json:"product"`
	Pricings       []pricing       `json:"pricings"`
	Configurations []configuration `json:"configurations"`
	Blobs          *blobs          `json:"blobs"`
}

type pricing struct {
	Capacities   []string `json:"capacities"`
	Mode         string   `json:"mode"`
	IntervalUnit string   `json:"intervalUnit"`
	Price        int64    `json:"price"`
}

type configuration struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

type blobs struct {
	Commercial struct {
		Brick string `json:"brick"`
	} `json:"commercial"`
	Technical struct {
		CPU struct {
			Cores int    `json:"cores"`
			Brand string `json:"brand"`
			Model string `json:"model"`
		} `json:"cpu"`
		Memory struct {
			Size float64 `json:"size"`
		} `json:"memory"`
		Storage struct {
			Disks []struct {
				Capacity   float64 `json:"capacity"`
				Technology string  `json:"technology"`
				Number     int     `json:"number"`
			} `json:"disks"`
		} `json:"storage"`
	} `json:"technical"`
}
