// Package normalizer maps content API resources to the domain model and back.
//
// Inbound mapping never fails: malformed fields fall back to a safe default
// and the fallback is logged at debug level.
package normalizer

import (
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/dfarm/internal/acf"
	"github.com/mamadbah2/dfarm/internal/domain/models"
	"github.com/mamadbah2/dfarm/internal/milk"
)

const publishStatus = "publish"

// Normalizer converts between wire resources and domain records.
type Normalizer struct {
	logger *zap.Logger
}

// New returns a Normalizer logging fallbacks to logger.
func New(logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{logger: logger}
}

// Animal maps an animal resource. A missing field bag yields an animal with
// only its post metadata set.
func (n *Normalizer) Animal(res acf.AnimalResource) models.Animal {
	f := res.ACF.Fields
	log := n.logger.With(zap.Int("animal_id", res.ID))

	animal := models.Animal{
		ID:             res.ID,
		Title:          res.Title.Rendered,
		Name:           string(f.Name),
		Color:          string(f.Color),
		Breed:          string(f.Breeds),
		Source:         string(f.Source),
		TagNo:          string(f.TagNo),
		ParentTagNo:    string(f.ParentTagNo),
		PurchaseAmount: f.PurchaseAmount,
		Pregnant:       bool(f.Pregnant),
		Calving:        string(f.Calving),
		Dry:            bool(f.DryCow),
		HasCalf:        bool(f.HasCalf),
		CalfTagNo:      string(f.CalfTagNo),
		CalfGender:     string(f.CalfGender),
		Calves:         append([]models.Calf{}, f.Calves.Calves...),
		Picture:        f.Picture.Picture,
		MedicalHistory: string(f.MedicalHistory),
		CreatedAt:      parsePostTime(res.Date),
		ModifiedAt:     parsePostTime(res.Modified),
	}
	if !res.ACF.Present {
		log.Debug("animal has no custom fields")
	}

	if t, ok := models.ParseAnimalType(string(f.AnimalType)); ok {
		animal.Type = t
	} else {
		animal.Type = models.AnimalType(f.AnimalType)
	}

	animal.MilkingCapacity = f.MilkingCapacity
	if _, ok := animal.Capacity(); !ok && !f.MilkingCapacity.IsZero() {
		log.Debug("keep invalid milking capacity as unknown", zap.String("value", string(f.MilkingCapacity)))
	}

	animal.PurchaseDate = n.persistedDate(log, "buy_date", string(f.BuyDate))
	animal.ConceiveDate = n.persistedDate(log, "conceive_date", string(f.ConceiveDate))
	animal.ExpectedDeliveryDate = n.persistedDate(log, "expected_delivery_date", string(f.ExpectedDeliveryDate))
	animal.ExpectedDeliveryDateLegacy = n.persistedDate(log, "expecteddeliverydate", string(f.ExpectedDeliveryDateLegacy))

	if f.Picture.Invalid {
		log.Debug("ignore unreadable picture")
	}

	animal.Gallery = append([]models.GalleryImage{}, f.PictureGallery.Images...)
	if f.PictureGallery.Invalid {
		log.Debug("gallery unreadable, using empty gallery")
	}

	animal.MilkRecords = milk.GroupByDate(f.MilkingRecords.Groups)
	if f.MilkingRecords.Invalid {
		log.Debug("milk records unreadable, using empty history")
	}

	animal.Vaccinations = append([]models.Vaccination{}, f.Vaccinations.Records...)
	if f.Vaccinations.Invalid {
		log.Debug("vaccinations unreadable, using empty list")
	}

	return animal
}

func (n *Normalizer) persistedDate(log *zap.Logger, field, raw string) models.Date {
	d := PersistedDate(raw)
	if !d.IsZero() && !d.Valid() {
		log.Debug("keep unparseable date", zap.String("field", field), zap.String("value", raw))
	}
	return d
}

// Expense maps an expense resource. Unknown categories become Other, unknown
// payment methods are cleared and unreadable amounts become 0.
func (n *Normalizer) Expense(res acf.ExpenseResource) models.Expense {
	f := res.ACF.Fields
	log := n.logger.With(zap.Int("expense_id", res.ID))

	expense := models.Expense{
		ID:            res.ID,
		Description:   string(f.Description),
		Vendor:        string(f.Vendor),
		ReceiptNumber: string(f.ReceiptNumber),
		Notes:         string(f.Notes),
		Author:        int(res.Author),
		AuthorName:    string(res.AuthorName),
	}
	if expense.Description == "" {
		expense.Description = res.Title.Rendered
	}

	category, ok := models.ParseExpenseCategory(string(f.Category))
	if !ok {
		log.Debug("unknown expense category, using Other", zap.String("value", string(f.Category)))
		category = models.CategoryOther
	}
	expense.Category = category

	if method, ok := models.ParsePaymentMethod(string(f.PaymentMethod)); ok {
		expense.PaymentMethod = method
	} else if f.PaymentMethod != "" {
		log.Debug("unknown payment method", zap.String("value", string(f.PaymentMethod)))
	}

	expense.Amount = parseAmount(log, f.Amount)

	if t, ok := parseExpenseDate(string(f.Date)); ok {
		expense.Date = t.Format(models.ISODateLayout)
	} else {
		log.Debug("expense date unreadable, using modified date",
			zap.String("value", string(f.Date)), zap.String("modified", res.Modified))
		if len(res.Modified) >= len(models.ISODateLayout) {
			expense.Date = res.Modified[:len(models.ISODateLayout)]
		}
	}

	return expense
}

func parseAmount(log *zap.Logger, raw models.Number) float64 {
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return 0
	}
	amount, err := decimal.NewFromString(text)
	if err != nil {
		log.Debug("expense amount unreadable, using 0", zap.String("value", text), zap.Error(err))
		return 0
	}
	return amount.InexactFloat64()
}

// AnimalPayload builds the full replacement bag for a. Dates are written as
// DD/MM/YYYY and nested collections as JSON documents.
func (n *Normalizer) AnimalPayload(a models.Animal) acf.AnimalWrite {
	title := a.Title
	if title == "" {
		title = a.Name
	}

	calves := a.Calves
	if calves == nil {
		calves = []models.Calf{}
	}

	return acf.AnimalWrite{
		Status: publishStatus,
		Title:  title,
		Meta:   acf.WriteMeta{ACFChanged: true},
		ACF: acf.AnimalFieldsWrite{
			Name:                       a.Name,
			BuyDate:                    FormatDate(a.PurchaseDate),
			Pregnant:                   a.Pregnant,
			AnimalType:                 string(a.Type),
			Color:                      a.Color,
			Breeds:                     a.Breed,
			PurchaseAmount:             a.PurchaseAmount,
			ConceiveDate:               FormatDate(a.ConceiveDate),
			MilkingCapacity:            a.MilkingCapacity,
			Calving:                    a.Calving,
			DryCow:                     a.Dry,
			HasCalf:                    a.HasCalf,
			CalfGender:                 a.CalfGender,
			Picture:                    acf.EncodePicture(a.Picture),
			PictureGallery:             acf.EncodeGallery(a.Gallery),
			Calves:                     calves,
			MilkingRecords:             acf.EncodeMilkGroups(a.MilkRecords),
			Vaccinations:               acf.EncodeVaccinations(a.Vaccinations),
			Source:                     a.Source,
			CalfTagNo:                  a.CalfTagNo,
			TagNo:                      a.TagNo,
			ParentTagNo:                a.ParentTagNo,
			ExpectedDeliveryDate:       FormatDate(a.ExpectedDeliveryDate),
			ExpectedDeliveryDateLegacy: FormatDate(a.ExpectedDeliveryDateLegacy),
		},
	}
}

// ExpensePayload builds the write payload for e. The date stays YYYY-MM-DD.
func (n *Normalizer) ExpensePayload(e models.Expense) acf.ExpenseWrite {
	return acf.ExpenseWrite{
		Status: publishStatus,
		Title:  e.Description,
		Meta:   acf.WriteMeta{ACFChanged: true},
		ACF: acf.ExpenseFieldsWrite{
			Date:          e.Date,
			Category:      string(e.Category),
			Description:   e.Description,
			Amount:        e.Amount,
			Vendor:        e.Vendor,
			PaymentMethod: string(e.PaymentMethod),
			ReceiptNumber: e.ReceiptNumber,
			Notes:         e.Notes,
		},
	}
}
