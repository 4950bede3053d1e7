package service

import (
	"context"

	"github.com/rocketscienceinc/tictactoe-solver/internal/entity"
	"github.com/stretchr/testify/mock"
)

type mockGameRepo struct {
	mock.Mock
}

func (that *mockGameRepo) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	args := that.Called(ctx, game)
	return args.Error(0)
}

func (that *mockGameRepo) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	args := that.Called(ctx, id)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameRepo) DeleteByID(ctx context.Context, id string) error {
	args := that.Called(ctx, id)
	return args.Error(0)
}

type mockOpener struct {
	mock.Mock
}

func (that *mockOpener) Pick(board entity.Board) (entity.Cell, error) {
	args := that.Called(board)
	return args.Get(0).(entity.Cell), args.Error(1)
}
