package implementation

import (
	"context"
	"encoding/json"
	"errors"

	"what-coffee-be/internal/entity"
	"what-coffee-be/internal/mapper"
	"what-coffee-be/internal/model"
	"what-coffee-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type CoffeeRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CoffeeMapper
}

func NewCoffeeRepository(db *gorm.DB) contract.CoffeeRepository {
	return &CoffeeRepositoryImpl{
		db:     db,
		mapper: mapper.NewCoffeeMapper(),
	}
}

func (r *CoffeeRepositoryImpl) Create(ctx context.Context, coffee *entity.Coffee) error {
	m := r.mapper.ToModel(coffee)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*coffee = *r.mapper.ToEntity(m)
	return nil
}

func (r *CoffeeRepositoryImpl) CreateBulk(ctx context.Context, coffees []*entity.Coffee) error {
	if len(coffees) == 0 {
		return nil
	}
	models := make([]*model.Coffee, len(coffees))
	for i, c := range coffees {
		models[i] = r.mapper.ToModel(c)
	}

	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}

	// Update generated IDs and positions back to entities
	for i, m := range models {
		*coffees[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *CoffeeRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*entity.Coffee, error) {
	var m model.Coffee
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *CoffeeRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Coffee{}).
		Where("is_available = ?", true).
		Count(&count).Error
	return count, err
}

func (r *CoffeeRepositoryImpl) NearestNeighbors(ctx context.Context, vec []float32, k int) ([]*contract.ScoredCoffee, error) {
	if k <= 0 {
		k = 5
	}

	// pgvector cosine distance: embedding <=> q equals 1 - cosine_similarity.
	// Position ASC makes equal-distance ordering follow catalog insertion order.
	type result struct {
		model.Coffee
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(vec)

	err := r.db.WithContext(ctx).
		Table("coffees").
		Select("coffees.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Where("is_available = ?", true).
		Order(gorm.Expr("embedding <=> ?, position ASC", queryVector)).
		Limit(k).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredCoffee, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredCoffee{
			Coffee:     r.mapper.ToEntity(&res.Coffee),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}

func (r *CoffeeRepositoryImpl) FilterBy(ctx context.Context, brewMethods []string, curated *bool) ([]*entity.Coffee, error) {
	query := r.db.WithContext(ctx).Model(&model.Coffee{}).
		Where("is_available = ?", true)

	if len(brewMethods) > 0 {
		// brew_methods @> '["espresso"]' matches items listing the method
		cond := r.db
		for i, method := range brewMethods {
			j, err := json.Marshal([]string{method})
			if err != nil {
				return nil, err
			}
			if i == 0 {
				cond = r.db.Where("brew_methods::jsonb @> ?", string(j))
			} else {
				cond = cond.Or("brew_methods::jsonb @> ?", string(j))
			}
		}
		query = query.Where(cond)
	}

	if curated != nil {
		query = query.Where("curated = ?", *curated)
	}

	var models []*model.Coffee
	if err := query.Order("position ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	entities := make([]*entity.Coffee, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}
