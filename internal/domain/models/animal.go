package models

import (
	"strings"
	"time"
)

// AnimalType enumerates the livestock kinds the registry knows about.
type AnimalType string

const (
	AnimalCow     AnimalType = "Cow"
	AnimalBuffalo AnimalType = "Buffalo"
)

// ParseAnimalType canonicalises s. Unknown values are returned verbatim with ok=false.
func ParseAnimalType(s string) (AnimalType, bool) {
	trimmed := strings.TrimSpace(s)
	for _, t := range []AnimalType{AnimalCow, AnimalBuffalo} {
		if strings.EqualFold(trimmed, string(t)) {
			return t, true
		}
	}
	return AnimalType(s), false
}

const (
	gestationDays      = 283
	dryOffDays         = 212
	pregnancyMonthDays = 30
)

// Picture is an uploaded image referenced by the animal record.
type Picture struct {
	ID       int    `json:"id"`
	URL      string `json:"url"`
	Title    string `json:"title"`
	Filename string `json:"filename"`
	Alt      string `json:"alt"`
	MimeType string `json:"mime_type"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// IsZero reports whether no picture is attached.
func (p Picture) IsZero() bool { return p.ID == 0 && p.URL == "" }

// GalleryImage is one entry of the picture gallery.
type GalleryImage struct {
	ImgURL string `json:"img_url"`
}

// Calf captures calf metadata recorded on the mother.
type Calf struct {
	TagNo  string `json:"tagNo"`
	Gender string `json:"gender"`
}

// Animal is one livestock unit with its embedded milk and vaccination history.
type Animal struct {
	ID    int        `json:"id"`
	Title string     `json:"title"`
	Name  string     `json:"name"`
	Color string     `json:"color"`
	Breed string     `json:"breed"`
	Type  AnimalType `json:"animal_type"`

	MilkingCapacity Number `json:"milking_capacity"`
	PurchaseDate    Date   `json:"purchase_date"`
	PurchaseAmount  Number `json:"purchase_amount"`
	Source          string `json:"source"`
	TagNo           string `json:"tag_no"`
	ParentTagNo     string `json:"parent_tag_no"`

	Pregnant                   bool   `json:"pregnant"`
	ConceiveDate               Date   `json:"conceive_date"`
	ExpectedDeliveryDate       Date   `json:"expected_delivery_date"`
	ExpectedDeliveryDateLegacy Date   `json:"expecteddeliverydate"`
	Calving                    string `json:"calving"`
	Dry                        bool   `json:"dry"`
	HasCalf                    bool   `json:"has_calf"`
	CalfTagNo                  string `json:"calf_tag_no"`
	CalfGender                 string `json:"calf_gender"`
	Calves                     []Calf `json:"calves"`

	Picture        Picture        `json:"picture"`
	Gallery        []GalleryImage `json:"gallery"`
	MilkRecords    []MilkGroup    `json:"milk_records"`
	Vaccinations   []Vaccination  `json:"vaccinations"`
	MedicalHistory string         `json:"medical_history"`

	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Capacity returns the daily milking capacity in liters. Non-numeric and
// negative values are reported as unknown; the stored text is left as is.
func (a Animal) Capacity() (float64, bool) {
	v, ok := a.MilkingCapacity.Float()
	if !ok || v < 0 {
		return 0, false
	}
	return v, true
}

// ExpectedDelivery is the conceive date plus the gestation period.
func (a Animal) ExpectedDelivery() (time.Time, bool) {
	if !a.ConceiveDate.Valid() {
		return time.Time{}, false
	}
	return a.ConceiveDate.Time.AddDate(0, 0, gestationDays), true
}

// ExpectedDry is the conceive date plus the dry-off offset.
func (a Animal) ExpectedDry() (time.Time, bool) {
	if !a.ConceiveDate.Valid() {
		return time.Time{}, false
	}
	return a.ConceiveDate.Time.AddDate(0, 0, dryOffDays), true
}

// PregnancyDuration splits the days since conception into 30-day months and
// remaining days.
func (a Animal) PregnancyDuration(now time.Time) (months, days int, ok bool) {
	if !a.ConceiveDate.Valid() {
		return 0, 0, false
	}
	total := int(now.Sub(a.ConceiveDate.Time).Hours() / 24)
	return total / pregnancyMonthDays, total % pregnancyMonthDays, true
}
