// Package wordpress stores animals and expenses as content API posts. It
// joins the gateway client, the wire codec and the normalizer so callers only
// ever see domain records.
package wordpress

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/dfarm/internal/acf"
	"github.com/mamadbah2/dfarm/internal/domain/models"
	"github.com/mamadbah2/dfarm/internal/normalizer"
	wp "github.com/mamadbah2/dfarm/pkg/clients/wordpress"
)

// ErrUnreadable is returned when a single-resource response is not a JSON object.
var ErrUnreadable = errors.New("resource payload could not be read")

// MutateFunc edits an animal in place before it is written back.
type MutateFunc func(animal *models.Animal) error

// AnimalRepository defines the operations on animal posts.
type AnimalRepository interface {
	List(ctx context.Context, sess models.Session, params wp.ListParams) ([]models.Animal, error)
	Get(ctx context.Context, sess models.Session, id int) (models.Animal, error)
	Create(ctx context.Context, sess models.Session, animal models.Animal) (models.Animal, error)
	Update(ctx context.Context, sess models.Session, animal models.Animal) (models.Animal, error)
	Delete(ctx context.Context, sess models.Session, id int) error
	Mutate(ctx context.Context, sess models.Session, id int, fn MutateFunc) (models.Animal, error)
}

// Animals implements AnimalRepository on top of a Gateway.
type Animals struct {
	gateway    wp.Gateway
	normalizer *normalizer.Normalizer
	logger     *zap.Logger
}

// NewAnimals builds an animal repository.
func NewAnimals(gateway wp.Gateway, norm *normalizer.Normalizer, logger *zap.Logger) *Animals {
	if logger == nil {
		logger = zap.NewNop()
	}
	if norm == nil {
		norm = normalizer.New(logger)
	}
	return &Animals{gateway: gateway, normalizer: norm, logger: logger}
}

// List returns every readable animal. Items that are not JSON objects are
// skipped.
func (r *Animals) List(ctx context.Context, sess models.Session, params wp.ListParams) ([]models.Animal, error) {
	items, err := r.gateway.List(ctx, sess, wp.ResourceAnimals, params)
	if err != nil {
		return nil, fmt.Errorf("list animals: %w", err)
	}

	animals := make([]models.Animal, 0, len(items))
	for i, item := range items {
		res, err := acf.DecodeAnimal(item)
		if err != nil {
			r.logger.Debug("skip unreadable animal", zap.Int("index", i), zap.Error(err))
			continue
		}
		animals = append(animals, r.normalizer.Animal(res))
	}
	return animals, nil
}

// Get fetches one animal.
func (r *Animals) Get(ctx context.Context, sess models.Session, id int) (models.Animal, error) {
	raw, err := r.gateway.Get(ctx, sess, wp.ResourceAnimals, id)
	if err != nil {
		return models.Animal{}, fmt.Errorf("get animal %d: %w", id, err)
	}
	return r.decode(raw, id)
}

// Create posts a new animal and returns it as stored.
func (r *Animals) Create(ctx context.Context, sess models.Session, animal models.Animal) (models.Animal, error) {
	raw, err := r.gateway.Create(ctx, sess, wp.ResourceAnimals, r.normalizer.AnimalPayload(animal))
	if err != nil {
		return models.Animal{}, fmt.Errorf("create animal: %w", err)
	}
	return r.decode(raw, 0)
}

// Update resends the full field bag of animal.
func (r *Animals) Update(ctx context.Context, sess models.Session, animal models.Animal) (models.Animal, error) {
	raw, err := r.gateway.Update(ctx, sess, wp.ResourceAnimals, animal.ID, r.normalizer.AnimalPayload(animal))
	if err != nil {
		return models.Animal{}, fmt.Errorf("update animal %d: %w", animal.ID, err)
	}
	return r.decode(raw, animal.ID)
}

// Delete removes an animal.
func (r *Animals) Delete(ctx context.Context, sess models.Session, id int) error {
	if err := r.gateway.Delete(ctx, sess, wp.ResourceAnimals, id); err != nil {
		return fmt.Errorf("delete animal %d: %w", id, err)
	}
	return nil
}

// Mutate reads the animal, applies fn and writes the whole record back. There
// is no retry and no version check: when two callers mutate the same animal
// concurrently the later write wins.
func (r *Animals) Mutate(ctx context.Context, sess models.Session, id int, fn MutateFunc) (models.Animal, error) {
	current, err := r.Get(ctx, sess, id)
	if err != nil {
		return models.Animal{}, err
	}

	if err := fn(&current); err != nil {
		return models.Animal{}, err
	}
	current.ID = id

	return r.Update(ctx, sess, current)
}

func (r *Animals) decode(raw []byte, id int) (models.Animal, error) {
	res, err := acf.DecodeAnimal(raw)
	if err != nil {
		r.logger.Debug("animal response unreadable", zap.Int("animal_id", id), zap.Error(err))
		return models.Animal{}, fmt.Errorf("animal %d: %w", id, ErrUnreadable)
	}
	return r.normalizer.Animal(res), nil
}
