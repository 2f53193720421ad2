package model

type DailyCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type StatsResponse struct {
	TotalDetections int          `json:"total_detections"`
	Daily           []DailyCount `json:"daily"`
	TopThreats      []NameCount  `json:"top_threats"`
	ByDepartment    []NameCount  `json:"by_department"`
}
