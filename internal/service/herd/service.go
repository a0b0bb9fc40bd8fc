package herd

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/dfarm/internal/domain/models"
	"github.com/mamadbah2/dfarm/internal/milk"
	"github.com/mamadbah2/dfarm/internal/normalizer"
	repo "github.com/mamadbah2/dfarm/internal/repository/wordpress"
	wp "github.com/mamadbah2/dfarm/pkg/clients/wordpress"
)

const (
	defaultLatestLimit = 5

	highMilkThreshold   = 20
	mediumMilkThreshold = 10
)

// Herd filters understood besides animal type and breed.
const (
	FilterAll        = "All"
	FilterPregnant   = "Pregnant"
	FilterDry        = "Dry"
	FilterHighMilk   = "HighMilk"
	FilterMediumMilk = "MediumMilk"
	FilterLowMilk    = "LowMilk"
)

// AnimalQuery narrows a herd listing.
type AnimalQuery struct {
	Filter string
	Query  string
	Limit  int
}

// Profile is an animal with the figures derived from its breeding and milk
// history.
type Profile struct {
	models.Animal
	ExpectedDelivery string            `json:"expected_delivery"`
	ExpectedDry      string            `json:"expected_dry"`
	PregnancyMonths  int               `json:"pregnancy_months"`
	PregnancyDays    int               `json:"pregnancy_days"`
	MilkSummaries    []milk.DaySummary `json:"milk_summaries"`
}

// MilkHistory is the grouped milk log of one animal.
type MilkHistory struct {
	AnimalID  int                `json:"animal_id"`
	Groups    []models.MilkGroup `json:"groups"`
	Summaries []milk.DaySummary  `json:"summaries"`
	Total     float64            `json:"total"`
}

// Service manages the animal registry and the records embedded in it.
type Service struct {
	animals repo.AnimalRepository
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires a herd service.
func NewService(animals repo.AnimalRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{animals: animals, logger: logger, now: time.Now}
}

// List returns the animals matching q.
func (s *Service) List(ctx context.Context, sess models.Session, q AnimalQuery) ([]models.Animal, error) {
	animals, err := s.animals.List(ctx, sess, wp.ListParams{Filter: q.Filter, Limit: q.Limit})
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(strings.TrimSpace(q.Query))
	out := make([]models.Animal, 0, len(animals))
	for _, a := range animals {
		if query != "" && !strings.Contains(strings.ToLower(a.Name), query) &&
			!strings.Contains(strings.ToLower(a.Title), query) {
			continue
		}
		if !matchesFilter(a, q.Filter) {
			continue
		}
		out = append(out, a)
	}

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func matchesFilter(a models.Animal, filter string) bool {
	filter = strings.TrimSpace(filter)
	if filter == "" || filter == FilterAll {
		return true
	}

	capacity, known := a.Capacity()
	switch filter {
	case FilterPregnant:
		return a.Pregnant
	case FilterDry:
		return a.Dry
	case FilterHighMilk:
		return known && capacity > highMilkThreshold
	case FilterMediumMilk:
		return known && capacity > mediumMilkThreshold && capacity <= highMilkThreshold
	case FilterLowMilk:
		return known && capacity <= mediumMilkThreshold
	default:
		return strings.EqualFold(string(a.Type), filter) || strings.EqualFold(a.Breed, filter)
	}
}

// Latest returns the most recently created animals, newest first.
func (s *Service) Latest(ctx context.Context, sess models.Session, limit int) ([]models.Animal, error) {
	if limit <= 0 {
		limit = defaultLatestLimit
	}

	animals, err := s.animals.List(ctx, sess, wp.ListParams{})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(animals, func(i, j int) bool {
		return animals[i].CreatedAt.After(animals[j].CreatedAt)
	})

	if len(animals) > limit {
		animals = animals[:limit]
	}
	return animals, nil
}

// Get fetches one animal.
func (s *Service) Get(ctx context.Context, sess models.Session, id int) (models.Animal, error) {
	return s.animals.Get(ctx, sess, id)
}

// Profile fetches one animal with its derived breeding dates and milk summaries.
func (s *Service) Profile(ctx context.Context, sess models.Session, id int) (Profile, error) {
	a, err := s.animals.Get(ctx, sess, id)
	if err != nil {
		return Profile{}, err
	}

	p := Profile{Animal: a, MilkSummaries: milk.Summaries(a.MilkRecords)}
	if a.Pregnant {
		if due, ok := a.ExpectedDelivery(); ok {
			p.ExpectedDelivery = due.Format(models.ISODateLayout)
		}
		if dry, ok := a.ExpectedDry(); ok {
			p.ExpectedDry = dry.Format(models.ISODateLayout)
		}
		if months, days, ok := a.PregnancyDuration(s.now()); ok {
			p.PregnancyMonths, p.PregnancyDays = months, days
		}
	}
	return p, nil
}

// Create registers a new animal.
func (s *Service) Create(ctx context.Context, sess models.Session, in AnimalInput) (models.Animal, error) {
	if err := in.Validate(); err != nil {
		return models.Animal{}, err
	}

	var a models.Animal
	in.apply(&a)

	created, err := s.animals.Create(ctx, sess, a)
	if err != nil {
		return models.Animal{}, err
	}
	s.logger.Info("animal created", zap.Int("animal_id", created.ID), zap.Int("user_id", sess.UserID))
	return created, nil
}

// Update replaces the profile of an animal. The stored record is read first
// so the milk and vaccination history is resent unchanged.
func (s *Service) Update(ctx context.Context, sess models.Session, id int, in AnimalInput) (models.Animal, error) {
	if err := in.Validate(); err != nil {
		return models.Animal{}, err
	}

	return s.animals.Mutate(ctx, sess, id, func(a *models.Animal) error {
		in.apply(a)
		return nil
	})
}

// Delete removes an animal.
func (s *Service) Delete(ctx context.Context, sess models.Session, id int) error {
	if err := s.animals.Delete(ctx, sess, id); err != nil {
		return err
	}
	s.logger.Info("animal deleted", zap.Int("animal_id", id), zap.Int("user_id", sess.UserID))
	return nil
}

// AddMilkRecord appends a yield entry to the group of its date. An empty date
// means today.
func (s *Service) AddMilkRecord(ctx context.Context, sess models.Session, id int, in MilkInput) (models.Animal, error) {
	rec, err := s.milkRecord(in)
	if err != nil {
		return models.Animal{}, err
	}

	updated, err := s.animals.Mutate(ctx, sess, id, func(a *models.Animal) error {
		a.MilkRecords = milk.AddRecord(a.MilkRecords, rec)
		return nil
	})
	if err != nil {
		return models.Animal{}, fmt.Errorf("add milk record: %w", err)
	}

	s.logger.Info("milk record added",
		zap.Int("animal_id", id),
		zap.String("date", rec.Date),
		zap.String("time", string(rec.Time)),
		zap.String("yield", string(rec.Yield)))
	return updated, nil
}

func (s *Service) milkRecord(in MilkInput) (models.MilkingRecord, error) {
	yield, ok := in.Yield.Float()
	if !ok || yield < 0 {
		return models.MilkingRecord{}, invalid("yield must be a non-negative number")
	}

	t, ok := models.ParseMilkingTime(in.Time)
	if !ok {
		return models.MilkingRecord{}, invalid("time must be Morning or Evening")
	}

	date, err := s.persistedDate(in.Date, "date")
	if err != nil {
		return models.MilkingRecord{}, err
	}

	return models.MilkingRecord{
		Date:    date,
		Yield:   models.Number(strings.TrimSpace(string(in.Yield))),
		Time:    t,
		Quality: strings.TrimSpace(in.Quality),
	}, nil
}

// AddVaccination appends a vaccination event to the animal's flat list.
func (s *Service) AddVaccination(ctx context.Context, sess models.Session, id int, in VaccinationInput) (models.Animal, error) {
	if strings.TrimSpace(in.Vaccine) == "" {
		return models.Animal{}, invalid("vaccine is required")
	}
	if !in.Cost.IsZero() {
		if v, ok := in.Cost.Float(); !ok || v < 0 {
			return models.Animal{}, invalid("cost must be a non-negative number")
		}
	}

	date, err := s.persistedDate(in.Date, "date")
	if err != nil {
		return models.Animal{}, err
	}

	var nextDue string
	if strings.TrimSpace(in.NextDueDate) != "" {
		if nextDue, err = s.persistedDate(in.NextDueDate, "nextDueDate"); err != nil {
			return models.Animal{}, err
		}
	}

	v := models.Vaccination{
		Date:        date,
		Vaccine:     strings.TrimSpace(in.Vaccine),
		NextDueDate: nextDue,
		Notes:       in.Notes,
		Cost:        in.Cost,
	}

	updated, err := s.animals.Mutate(ctx, sess, id, func(a *models.Animal) error {
		a.Vaccinations = append(append([]models.Vaccination{}, a.Vaccinations...), v)
		return nil
	})
	if err != nil {
		return models.Animal{}, fmt.Errorf("add vaccination: %w", err)
	}

	s.logger.Info("vaccination added", zap.Int("animal_id", id), zap.String("vaccine", v.Vaccine))
	return updated, nil
}

// MilkHistory returns the grouped milk log of an animal with one summary per
// day, most recent day first.
func (s *Service) MilkHistory(ctx context.Context, sess models.Session, id int) (MilkHistory, error) {
	a, err := s.animals.Get(ctx, sess, id)
	if err != nil {
		return MilkHistory{}, err
	}

	summaries := milk.Summaries(a.MilkRecords)
	sort.SliceStable(summaries, func(i, j int) bool {
		di, _ := normalizer.ParsePersistedDate(summaries[i].Date)
		dj, _ := normalizer.ParsePersistedDate(summaries[j].Date)
		return di.After(dj)
	})

	history := MilkHistory{AnimalID: a.ID, Groups: a.MilkRecords, Summaries: summaries}
	for _, summary := range summaries {
		history.Total += summary.Total
	}
	return history, nil
}

// persistedDate formats s as DD/MM/YYYY, defaulting to today.
func (s *Service) persistedDate(value, field string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return s.now().Format(normalizer.PersistedDateLayout), nil
	}
	formatted := normalizer.FormatPersistedDate(value)
	if _, ok := normalizer.ParsePersistedDate(formatted); !ok {
		return "", invalid("%s is not a valid date", field)
	}
	return formatted, nil
}
