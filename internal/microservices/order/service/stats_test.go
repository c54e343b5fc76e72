package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dineflow/internal/microservices/order/domain/dao"
	"dineflow/internal/microservices/order/domain/dto"
	"dineflow/internal/microservices/order/domain/errs"
	"dineflow/internal/microservices/order/repository"
)

func TestAggregate(t *testing.T) {
	loc := time.FixedZone("kitchen", 7*60*60)
	now := time.Date(2024, 5, 10, 15, 0, 0, 0, loc)
	today := time.Date(2024, 5, 10, 9, 0, 0, 0, loc)
	yesterday := time.Date(2024, 5, 9, 22, 0, 0, 0, loc)

	testCases := map[string]struct {
		orders   []dao.Order
		expected Stats
	}{
		"should return zeroes for an empty store": {
			orders:   nil,
			expected: Stats{},
		},
		"should exclude cancelled orders from revenue": {
			orders: []dao.Order{
				{Total: 100, Status: dao.StatusNew, CreatedAt: today},
				{Total: 200, Status: dao.StatusCompleted, CreatedAt: today},
				{Total: 50, Status: dao.StatusCancelled, CreatedAt: today},
			},
			expected: Stats{TotalOrders: 3, ActiveOrders: 1, CompletedToday: 1, TodaysRevenue: 300},
		},
		"should ignore previous days except for active orders": {
			orders: []dao.Order{
				{Total: 400, Status: dao.StatusReady, CreatedAt: yesterday},
				{Total: 500, Status: dao.StatusCompleted, CreatedAt: yesterday},
				{Total: 70, Status: dao.StatusPreparing, CreatedAt: today},
			},
			expected: Stats{TotalOrders: 1, ActiveOrders: 2, CompletedToday: 0, TodaysRevenue: 70},
		},
		"should use the local day boundary for UTC timestamps": {
			orders: []dao.Order{
				// 2024-05-09 17:30 UTC is 00:30 on the 10th in the kitchen zone
				{Total: 10, Status: dao.StatusCompleted, CreatedAt: time.Date(2024, 5, 9, 17, 30, 0, 0, time.UTC)},
				// 16:59 UTC is still the 9th locally
				{Total: 20, Status: dao.StatusCompleted, CreatedAt: time.Date(2024, 5, 9, 16, 59, 0, 0, time.UTC)},
			},
			expected: Stats{TotalOrders: 1, CompletedToday: 1, TodaysRevenue: 10},
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Aggregate(tc.orders, now))
		})
	}
}

func TestStatsService_ComputeStats(t *testing.T) {
	clock := newFakeClock()
	repo := repository.NewMemoryRepository(101)
	orders := NewOrderService(repo, nil, nil, WithClock(clock.Now))
	stats := NewStatsService(repo, nil, clock.Now, time.Local)
	ctx := context.Background()

	mk := func(price int64) dao.Order {
		o, err := orders.CreateOrder(ctx, dto.CreateOrderRequest{Items: []dto.OrderItemInput{item("Dish", price, 1)}})
		require.NoError(t, err)
		return o
	}
	mk(100)
	done := mk(200)
	dropped := mk(50)

	for _, step := range pathTo[dao.StatusCompleted] {
		_, err := orders.TransitionStatus(ctx, done.ID, step)
		require.NoError(t, err)
	}
	_, err := orders.TransitionStatus(ctx, dropped.ID, dao.StatusCancelled)
	require.NoError(t, err)

	st := stats.ComputeStats(ctx)

	assert.Equal(t, 3, st.TotalOrders)
	assert.Equal(t, 1, st.ActiveOrders)
	assert.Equal(t, 1, st.CompletedToday)
	assert.EqualValues(t, 300, st.TodaysRevenue)
}

func TestStatsService_ComputeStats_DegradesOnStoreFailure(t *testing.T) {
	repo := &mockRepo{}
	repo.On("List", mock.Anything, dao.Status("")).Return(nil, errs.Store("list orders", errors.New("down")))
	stats := NewStatsService(repo, nil, nil, nil)

	assert.Equal(t, Stats{}, stats.ComputeStats(context.Background()))
	repo.AssertExpectations(t)
}
