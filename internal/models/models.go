package models

// Place is one row of the places reference table (GeoNames postal layout)
// JSON tags match the column names so clients see the table as-is
type Place struct {
	CountryCode string  `json:"country_code" gorm:"column:country_code;size:2;index:idx_places_group,priority:1"`
	PostalCode  string  `json:"postal_code" gorm:"column:postal_code;size:20;index"`
	PlaceName   string  `json:"place_name" gorm:"column:place_name;size:180;index:idx_places_group,priority:2"`
	AdminName1  string  `json:"admin_name1" gorm:"column:admin_name1;size:100"`
	AdminCode1  string  `json:"admin_code1" gorm:"column:admin_code1;size:20;index:idx_places_group,priority:3"`
	AdminName2  string  `json:"admin_name2" gorm:"column:admin_name2;size:100"`
	AdminCode2  string  `json:"admin_code2" gorm:"column:admin_code2;size:20"`
	AdminName3  string  `json:"admin_name3" gorm:"column:admin_name3;size:100"`
	AdminCode3  string  `json:"admin_code3" gorm:"column:admin_code3;size:20"`
	Latitude    float64 `json:"latitude" gorm:"column:latitude;index"`
	Longitude   float64 `json:"longitude" gorm:"column:longitude"`
	Accuracy    int     `json:"accuracy" gorm:"column:accuracy"`
}

// TableName pins the seeded table name
func (Place) TableName() string {
	return "places"
}

// GroupKey identifies places that look identical on the map
type GroupKey struct {
	CountryCode string
	PlaceName   string
	AdminCode1  string
}

// Key returns the (country, name, region) triple the viewport lookup groups by
func (p Place) Key() GroupKey {
	return GroupKey{CountryCode: p.CountryCode, PlaceName: p.PlaceName, AdminCode1: p.AdminCode1}
}

// Article is a single news item for a location
type Article struct {
	Link  string `json:"link"`
	Title string `json:"title"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error string `json:"error"`
}
