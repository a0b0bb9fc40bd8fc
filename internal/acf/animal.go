package acf

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/mamadbah2/dfarm/internal/domain/models"
)

// AnimalResource is an animal post as returned by the content API.
type AnimalResource struct {
	ID       int               `json:"id"`
	Date     string            `json:"date"`
	Modified string            `json:"modified"`
	Author   FlexInt           `json:"author"`
	Status   string            `json:"status"`
	Title    Rendered          `json:"title"`
	ACF      Bag[AnimalFields] `json:"acf"`
}

// AnimalFields is the custom-field bag of an animal post.
type AnimalFields struct {
	Name                       FlexString        `json:"name"`
	BuyDate                    FlexString        `json:"buy_date"`
	Pregnant                   FlexBool          `json:"pregnant"`
	AnimalType                 FlexString        `json:"animal_type"`
	Color                      FlexString        `json:"color"`
	Breeds                     FlexString        `json:"breeds"`
	PurchaseAmount             models.Number     `json:"purchase_amount"`
	ConceiveDate               FlexString        `json:"conceive_date"`
	MilkingCapacity            models.Number     `json:"milking_capacity"`
	Calving                    FlexString        `json:"calving"`
	DryCow                     FlexBool          `json:"dry_cow"`
	HasCalf                    FlexBool          `json:"hasCalf"`
	CalfGender                 FlexString        `json:"calfgender"`
	Picture                    PictureField      `json:"picture_"`
	PictureGallery             GalleryField      `json:"pictureGallery"`
	Calves                     CalvesField       `json:"calves"`
	MilkingRecords             MilkRecordsField  `json:"milking_records_json"`
	Vaccinations               VaccinationsField `json:"vaccinations"`
	MedicalHistory             FlexString        `json:"medicalHistory"`
	Source                     FlexString        `json:"source"`
	CalfTagNo                  FlexString        `json:"calf_tag_no"`
	TagNo                      FlexString        `json:"tagno"`
	ParentTagNo                FlexString        `json:"parenttagno"`
	ExpectedDeliveryDate       FlexString        `json:"expected_delivery_date"`
	ExpectedDeliveryDateLegacy FlexString        `json:"expecteddeliverydate"`
}

// DecodeAnimal decodes one animal payload.
func DecodeAnimal(data []byte) (AnimalResource, error) {
	var res AnimalResource
	if err := decodeObject(data, &res); err != nil {
		return AnimalResource{}, err
	}
	return res, nil
}

// PictureField is the main picture: a media object, a bare URL, a media ID or
// false.
type PictureField struct {
	Picture models.Picture
	Invalid bool
}

type mediaObject struct {
	UpperID  FlexInt    `json:"ID"`
	ID       FlexInt    `json:"id"`
	URL      FlexString `json:"url"`
	Title    FlexString `json:"title"`
	Filename FlexString `json:"filename"`
	Alt      FlexString `json:"alt"`
	MimeType FlexString `json:"mime_type"`
	Width    FlexInt    `json:"width"`
	Height   FlexInt    `json:"height"`
}

// UnmarshalJSON never fails.
func (p *PictureField) UnmarshalJSON(data []byte) error {
	*p = PictureField{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	switch {
	case data[0] == '{':
		var m mediaObject
		if err := decodeTolerant(data, &m); err != nil {
			p.Invalid = true
			return nil
		}
		id := int(m.UpperID)
		if id == 0 {
			id = int(m.ID)
		}
		p.Picture = models.Picture{
			ID:       id,
			URL:      string(m.URL),
			Title:    string(m.Title),
			Filename: string(m.Filename),
			Alt:      string(m.Alt),
			MimeType: string(m.MimeType),
			Width:    int(m.Width),
			Height:   int(m.Height),
		}
	case data[0] == '"':
		var s FlexString
		_ = s.UnmarshalJSON(data)
		p.Picture = models.Picture{URL: string(s)}
	case isNumber(data):
		var id FlexInt
		_ = id.UnmarshalJSON(data)
		p.Picture = models.Picture{ID: int(id)}
	case bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte("false")):
	default:
		p.Invalid = true
	}
	return nil
}

// GalleryField is the picture gallery, stored either as a JSON string or as
// an array. Entries without a string img_url are dropped.
type GalleryField struct {
	Images  []models.GalleryImage
	Invalid bool
}

// UnmarshalJSON never fails.
func (g *GalleryField) UnmarshalJSON(data []byte) error {
	*g = GalleryField{}
	text, ok := textOf(data)
	if !ok {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		g.Invalid = true
		return nil
	}

	for _, item := range items {
		if img, ok := galleryImage(item); ok {
			g.Images = append(g.Images, img)
		}
	}
	return nil
}

func galleryImage(item json.RawMessage) (models.GalleryImage, bool) {
	trimmed := bytes.TrimSpace(item)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil && s != "" {
			return models.GalleryImage{ImgURL: s}, true
		}
		return models.GalleryImage{}, false
	}

	var entry struct {
		ImgURL any `json:"img_url"`
	}
	if err := json.Unmarshal(trimmed, &entry); err != nil {
		return models.GalleryImage{}, false
	}
	url, ok := entry.ImgURL.(string)
	if !ok {
		return models.GalleryImage{}, false
	}
	return models.GalleryImage{ImgURL: url}, true
}

// CalvesField is the calves list, stored either as a JSON string or an array.
type CalvesField struct {
	Calves []models.Calf
}

// UnmarshalJSON never fails.
func (c *CalvesField) UnmarshalJSON(data []byte) error {
	*c = CalvesField{}
	text, ok := textOf(data)
	if !ok || openingShape(text) != "[{" {
		return nil
	}
	var calves []struct {
		TagNo  FlexString `json:"tagNo"`
		Gender FlexString `json:"gender"`
	}
	if err := decodeTolerant([]byte(text), &calves); err != nil {
		return nil
	}
	for _, calf := range calves {
		c.Calves = append(c.Calves, models.Calf{TagNo: string(calf.TagNo), Gender: string(calf.Gender)})
	}
	return nil
}

// MilkRecordsField is the string-encoded list of date-grouped milk records.
type MilkRecordsField struct {
	Groups  []models.MilkGroup
	Invalid bool
}

// UnmarshalJSON never fails.
func (m *MilkRecordsField) UnmarshalJSON(data []byte) error {
	*m = MilkRecordsField{}
	text, ok := textOf(data)
	if !ok {
		return nil
	}
	groups, ok := DecodeMilkGroups(text)
	m.Groups = groups
	m.Invalid = !ok
	return nil
}

// DecodeMilkGroups parses the stored milk record text. Well-formed JSON is
// used as is; otherwise the text is cleaned up (escaped line breaks,
// whitespace and surrounding quotes removed, wrapped in brackets unless it
// already starts with "[[") and parsed again. A flat list of records becomes a
// single group. ok is false when neither attempt yields records.
func DecodeMilkGroups(text string) ([]models.MilkGroup, bool) {
	if strings.TrimSpace(text) == "" {
		return nil, true
	}
	if groups, ok := unmarshalMilkGroups(text); ok {
		return groups, true
	}
	return unmarshalMilkGroups(cleanMilkText(text))
}

func unmarshalMilkGroups(text string) ([]models.MilkGroup, bool) {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(trimmed), &inner); err != nil {
			return nil, false
		}
		return unmarshalMilkGroups(inner)
	}

	switch openingShape(trimmed) {
	case "[]":
		return []models.MilkGroup{}, true
	case "[[":
		var groups []models.MilkGroup
		if err := decodeTolerant([]byte(trimmed), &groups); err != nil {
			return nil, false
		}
		return groups, true
	case "[{":
		var flat models.MilkGroup
		if err := decodeTolerant([]byte(trimmed), &flat); err != nil {
			return nil, false
		}
		return []models.MilkGroup{flat}, true
	}
	return nil, false
}

func cleanMilkText(text string) string {
	cleaned := strings.ReplaceAll(text, `\r\n`, "")
	cleaned = strings.Join(strings.Fields(cleaned), "")
	cleaned = strings.Trim(cleaned, `"`)
	if strings.HasPrefix(cleaned, "[[") {
		return cleaned
	}
	cleaned = strings.TrimSuffix(cleaned, ",")
	return "[" + cleaned + "]"
}

// VaccinationsField is the string-encoded flat list of vaccinations.
type VaccinationsField struct {
	Records []models.Vaccination
	Invalid bool
}

// UnmarshalJSON never fails.
func (v *VaccinationsField) UnmarshalJSON(data []byte) error {
	*v = VaccinationsField{}
	text, ok := textOf(data)
	if !ok {
		return nil
	}

	switch openingShape(text) {
	case "[]":
		return nil
	case "[{":
		var records []struct {
			Date        FlexString    `json:"date"`
			Vaccine     FlexString    `json:"vaccine"`
			NextDueDate FlexString    `json:"nextDueDate"`
			Notes       FlexString    `json:"notes"`
			Cost        models.Number `json:"cost"`
		}
		if err := decodeTolerant([]byte(text), &records); err != nil {
			v.Invalid = true
			return nil
		}
		for _, r := range records {
			v.Records = append(v.Records, models.Vaccination{
				Date:        string(r.Date),
				Vaccine:     string(r.Vaccine),
				NextDueDate: string(r.NextDueDate),
				Notes:       string(r.Notes),
				Cost:        r.Cost,
			})
		}
	default:
		v.Invalid = true
	}
	return nil
}

// WriteMeta flags the custom fields as changed so the server persists them.
type WriteMeta struct {
	ACFChanged bool `json:"_acf_changed"`
}

// AnimalWrite is the create/update payload for an animal post.
type AnimalWrite struct {
	Status string            `json:"status"`
	Title  string            `json:"title"`
	Meta   WriteMeta         `json:"meta"`
	ACF    AnimalFieldsWrite `json:"acf"`
}

// AnimalFieldsWrite is the full custom-field bag resent on every write.
type AnimalFieldsWrite struct {
	Name                       string        `json:"name"`
	BuyDate                    string        `json:"buy_date"`
	Pregnant                   bool          `json:"pregnant"`
	AnimalType                 string        `json:"animal_type"`
	Color                      string        `json:"color"`
	Breeds                     string        `json:"breeds"`
	PurchaseAmount             models.Number `json:"purchase_amount"`
	ConceiveDate               string        `json:"conceive_date"`
	MilkingCapacity            models.Number `json:"milking_capacity"`
	Calving                    string        `json:"calving"`
	DryCow                     bool          `json:"dry_cow"`
	HasCalf                    bool          `json:"hasCalf"`
	CalfGender                 string        `json:"calfgender"`
	Picture                    any           `json:"picture_"`
	PictureGallery             string        `json:"pictureGallery"`
	Calves                     []models.Calf `json:"calves"`
	MilkingRecords             string        `json:"milking_records_json"`
	Vaccinations               string        `json:"vaccinations"`
	Source                     string        `json:"source"`
	CalfTagNo                  string        `json:"calf_tag_no"`
	TagNo                      string        `json:"tagno"`
	ParentTagNo                string        `json:"parenttagno"`
	ExpectedDeliveryDate       string        `json:"expected_delivery_date"`
	ExpectedDeliveryDateLegacy string        `json:"expecteddeliverydate"`
}

// PictureWrite is the media object form of the main picture.
type PictureWrite struct {
	UpperID  int    `json:"ID"`
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Link     string `json:"link"`
	Alt      string `json:"alt"`
	MimeType string `json:"mime_type"`
	Type     string `json:"type"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// EncodePicture returns the media object for p, or false when no picture is set.
func EncodePicture(p models.Picture) any {
	if p.IsZero() {
		return false
	}
	mime := p.MimeType
	if mime == "" {
		mime = "image/jpeg"
	}
	return PictureWrite{
		UpperID:  p.ID,
		ID:       p.ID,
		Title:    p.Title,
		Filename: p.Filename,
		URL:      p.URL,
		Link:     p.URL,
		Alt:      p.Alt,
		MimeType: mime,
		Type:     "image",
		Width:    p.Width,
		Height:   p.Height,
	}
}

// EncodeMilkGroups serializes the whole milk record collection.
func EncodeMilkGroups(groups []models.MilkGroup) string {
	if groups == nil {
		groups = []models.MilkGroup{}
	}
	return encodeList(groups)
}

// EncodeVaccinations serializes the whole vaccination list.
func EncodeVaccinations(records []models.Vaccination) string {
	if records == nil {
		records = []models.Vaccination{}
	}
	return encodeList(records)
}

// EncodeGallery serializes the whole gallery.
func EncodeGallery(images []models.GalleryImage) string {
	if images == nil {
		images = []models.GalleryImage{}
	}
	return encodeList(images)
}

func encodeList(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}
