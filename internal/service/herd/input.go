package herd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mamadbah2/dfarm/internal/domain/models"
	"github.com/mamadbah2/dfarm/internal/normalizer"
)

// ErrInvalidRecord marks input rejected before anything is written.
var ErrInvalidRecord = errors.New("invalid record")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRecord, fmt.Sprintf(format, args...))
}

// AnimalInput is the editable profile of an animal. Nil collections are left
// untouched on update.
type AnimalInput struct {
	Name                 string                `json:"name"`
	Type                 string                `json:"animal_type"`
	Color                string                `json:"color"`
	Breed                string                `json:"breed"`
	MilkingCapacity      models.Number         `json:"milking_capacity"`
	PurchaseDate         string                `json:"purchase_date"`
	PurchaseAmount       models.Number         `json:"purchase_amount"`
	Source               string                `json:"source"`
	TagNo                string                `json:"tag_no"`
	ParentTagNo          string                `json:"parent_tag_no"`
	Pregnant             bool                  `json:"pregnant"`
	ConceiveDate         string                `json:"conceive_date"`
	ExpectedDeliveryDate string                `json:"expected_delivery_date"`
	Calving              string                `json:"calving"`
	Dry                  bool                  `json:"dry"`
	HasCalf              bool                  `json:"has_calf"`
	CalfTagNo            string                `json:"calf_tag_no"`
	CalfGender           string                `json:"calf_gender"`
	Calves               []models.Calf         `json:"calves"`
	Picture              *models.Picture       `json:"picture"`
	Gallery              []models.GalleryImage `json:"gallery"`
	MedicalHistory       string                `json:"medical_history"`
}

// Validate checks the fields the registry relies on.
func (in AnimalInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name is required")
	}
	if !in.MilkingCapacity.IsZero() {
		if v, ok := in.MilkingCapacity.Float(); !ok || v < 0 {
			return invalid("milking_capacity must be a non-negative number")
		}
	}
	if !in.PurchaseAmount.IsZero() {
		if v, ok := in.PurchaseAmount.Float(); !ok || v < 0 {
			return invalid("purchase_amount must be a non-negative number")
		}
	}
	dates := []struct{ field, value string }{
		{"purchase_date", in.PurchaseDate},
		{"conceive_date", in.ConceiveDate},
		{"expected_delivery_date", in.ExpectedDeliveryDate},
	}
	for _, d := range dates {
		if strings.TrimSpace(d.value) != "" && !normalizer.InputDate(d.value).Valid() {
			return invalid("%s is not a valid date", d.field)
		}
	}
	if in.Pregnant && strings.TrimSpace(in.ConceiveDate) == "" {
		return invalid("conceive_date is required for pregnant animals")
	}
	return nil
}

// apply copies the profile onto a. Expected delivery is derived from the
// conceive date when not given.
func (in AnimalInput) apply(a *models.Animal) {
	a.Name = strings.TrimSpace(in.Name)
	a.Title = a.Name
	if t, ok := models.ParseAnimalType(in.Type); ok {
		a.Type = t
	} else {
		a.Type = models.AnimalType(strings.TrimSpace(in.Type))
	}
	a.Color = in.Color
	a.Breed = in.Breed
	a.MilkingCapacity = in.MilkingCapacity
	a.PurchaseDate = inputDate(in.PurchaseDate)
	a.PurchaseAmount = in.PurchaseAmount
	a.Source = in.Source
	a.TagNo = in.TagNo
	a.ParentTagNo = in.ParentTagNo
	a.Pregnant = in.Pregnant
	a.ConceiveDate = inputDate(in.ConceiveDate)
	a.ExpectedDeliveryDate = inputDate(in.ExpectedDeliveryDate)
	if a.Pregnant && a.ExpectedDeliveryDate.IsZero() {
		if due, ok := a.ExpectedDelivery(); ok {
			a.ExpectedDeliveryDate = models.DateOf(due)
		}
	}
	a.Calving = in.Calving
	a.Dry = in.Dry
	a.HasCalf = in.HasCalf
	a.CalfTagNo = in.CalfTagNo
	a.CalfGender = in.CalfGender
	a.MedicalHistory = in.MedicalHistory

	if in.Calves != nil {
		a.Calves = in.Calves
	}
	if in.Picture != nil {
		a.Picture = *in.Picture
	}
	if in.Gallery != nil {
		a.Gallery = in.Gallery
	}
}

func inputDate(s string) models.Date {
	if strings.TrimSpace(s) == "" {
		return models.Date{}
	}
	return normalizer.InputDate(s)
}

// MilkInput is one yield entry submitted for an animal.
type MilkInput struct {
	Date    string        `json:"date"`
	Yield   models.Number `json:"yield"`
	Time    string        `json:"time"`
	Quality string        `json:"quality"`
}

// VaccinationInput is one vaccination event submitted for an animal.
type VaccinationInput struct {
	Date        string        `json:"date"`
	Vaccine     string        `json:"vaccine"`
	NextDueDate string        `json:"nextDueDate"`
	Notes       string        `json:"notes"`
	Cost        models.Number `json:"cost"`
}
