package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"mazadly/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type CategoryRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	repo    CategoryRepository
	context context.Context
}

func (suite *CategoryRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewCategoryRepository(mock)
	suite.context = context.Background()
}

func (suite *CategoryRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestCategoryRepoTestSuite(t *testing.T) {
	suite.Run(t, new(CategoryRepoTestSuite))
}

func (suite *CategoryRepoTestSuite) TestCreate_Success() {
	category := &models.Category{
		ID:   uuid.New(),
		Name: "Matériel agricole",
		Type: models.CategoryTypeProduct,
	}

	suite.mock.ExpectExec(`INSERT INTO categories`).
		WithArgs(category.ID, category.Name, category.Type, category.Thumb, category.ParentID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.context, category)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *CategoryRepoTestSuite) TestGetByID_NotFound() {
	id := uuid.New()
	suite.mock.ExpectQuery(`SELECT id, name, type, thumb, parent_id`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	result, err := suite.repo.GetByID(suite.context, id)
	assert.ErrorIs(suite.T(), err, pgx.ErrNoRows)
	assert.Nil(suite.T(), result)
}

func (suite *CategoryRepoTestSuite) TestListAll_Success() {
	rootID := uuid.New()
	now := time.Now()
	rows := pgxmock.NewRows([]string{"id", "name", "type", "thumb", "parent_id", "created_at", "updated_at"}).
		AddRow(rootID, "Cheptel", models.CategoryTypeProduct, (*string)(nil), (*uuid.UUID)(nil), now, now).
		AddRow(uuid.New(), "Ovins", models.CategoryTypeProduct, (*string)(nil), &rootID, now, now)

	suite.mock.ExpectQuery(`SELECT id, name, type, thumb, parent_id, created_at, updated_at FROM categories ORDER BY name ASC`).
		WillReturnRows(rows)

	result, err := suite.repo.ListAll(suite.context)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), result, 2)
	assert.Equal(suite.T(), "Cheptel", result[0].Name)
	assert.Equal(suite.T(), rootID, *result[1].ParentID)
}

func (suite *CategoryRepoTestSuite) TestListChildren_Empty() {
	parentID := uuid.New()
	rows := pgxmock.NewRows([]string{"id", "name", "type", "thumb", "parent_id", "created_at", "updated_at"})

	suite.mock.ExpectQuery(`SELECT id, name, type, thumb, parent_id, created_at, updated_at FROM categories WHERE parent_id = \$1`).
		WithArgs(parentID).
		WillReturnRows(rows)

	result, err := suite.repo.ListChildren(suite.context, parentID)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), result)
}

func (suite *CategoryRepoTestSuite) TestReplaceAll_CommitsDeleteAndInserts() {
	categories := []*models.Category{
		{ID: uuid.New(), Name: "A", Type: models.CategoryTypeProduct},
		{ID: uuid.New(), Name: "B", Type: models.CategoryTypeService},
	}

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`DELETE FROM categories`).
		WillReturnResult(pgxmock.NewResult("DELETE", 5))
	for _, category := range categories {
		suite.mock.ExpectExec(`INSERT INTO categories`).
			WithArgs(category.ID, category.Name, category.Type, category.Thumb, category.ParentID).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	suite.mock.ExpectCommit()

	err := suite.repo.ReplaceAll(suite.context, categories)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *CategoryRepoTestSuite) TestReplaceAll_RollsBackOnInsertError() {
	categories := []*models.Category{
		{ID: uuid.New(), Name: "A", Type: models.CategoryTypeProduct},
	}

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`DELETE FROM categories`).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	suite.mock.ExpectExec(`INSERT INTO categories`).
		WithArgs(categories[0].ID, categories[0].Name, categories[0].Type, categories[0].Thumb, categories[0].ParentID).
		WillReturnError(errors.New("disk full"))
	suite.mock.ExpectRollback()

	err := suite.repo.ReplaceAll(suite.context, categories)
	assert.ErrorContains(suite.T(), err, "disk full")
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *CategoryRepoTestSuite) TestDelete_Success() {
	id := uuid.New()
	suite.mock.ExpectExec(`DELETE FROM categories WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := suite.repo.Delete(suite.context, id)
	assert.NoError(suite.T(), err)
}
