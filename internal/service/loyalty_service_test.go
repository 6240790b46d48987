package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wandertrip/tour_booking/internal/apperr"
	"github.com/wandertrip/tour_booking/internal/loyalty"
	"github.com/wandertrip/tour_booking/internal/model"
	"go.uber.org/zap"
)

func newLoyaltyFixture() (*LoyaltyService, *fakeUserStore, *fakePointsStore) {
	users := newFakeUserStore()
	points := &fakePointsStore{}
	svc := NewLoyaltyService(&fakeDB{}, users, points, loyalty.DefaultPolicy(), zap.NewNop())
	return svc, users, points
}

func TestAddPointsUpdatesBalanceAndLedger(t *testing.T) {
	svc, users, points := newLoyaltyFixture()
	users.users[1] = &model.User{ID: 1, MemberTier: model.TierBronze}

	earned, err := svc.AddPoints(context.Background(), nil, 1, 25000, "test earn", nil)
	require.NoError(t, err)
	assert.Equal(t, 250, earned)
	assert.Equal(t, 250, users.users[1].LoyaltyPoints)

	require.Len(t, points.entries, 1)
	assert.Equal(t, model.PointsEarned, points.entries[0].TransactionType)
	assert.Equal(t, 250, points.entries[0].Points)
}

func TestAddPointsBelowUnitEarnsNothing(t *testing.T) {
	svc, users, points := newLoyaltyFixture()
	users.users[1] = &model.User{ID: 1, MemberTier: model.TierBronze}

	earned, err := svc.AddPoints(context.Background(), nil, 1, 50, "tiny", nil)
	require.NoError(t, err)
	assert.Zero(t, earned)
	assert.Empty(t, points.entries)
}

func TestAddPointsPromotesTier(t *testing.T) {
	svc, users, _ := newLoyaltyFixture()
	users.users[1] = &model.User{ID: 1, LoyaltyPoints: 9950, MemberTier: model.TierBronze}

	_, err := svc.AddPoints(context.Background(), nil, 1, 10000, "promotion", nil)
	require.NoError(t, err)

	assert.Equal(t, 10050, users.users[1].LoyaltyPoints)
	assert.Equal(t, model.TierSilver, users.users[1].MemberTier)
}

func TestTierNeverDowngradesOnRedeem(t *testing.T) {
	svc, users, _ := newLoyaltyFixture()
	users.users[1] = &model.User{ID: 1, LoyaltyPoints: 10000, MemberTier: model.TierSilver}

	err := svc.Redeem(context.Background(), nil, 1, 9000, "big spend", nil)
	require.NoError(t, err)

	// Баланс упал ниже порога silver, уровень остаётся
	assert.Equal(t, 1000, users.users[1].LoyaltyPoints)
	assert.Equal(t, model.TierSilver, users.users[1].MemberTier)
}

func TestTierMonotonicOnRepeatedEarns(t *testing.T) {
	svc, users, _ := newLoyaltyFixture()
	users.users[1] = &model.User{ID: 1, MemberTier: model.TierBronze}
	ctx := context.Background()

	prev := users.users[1].MemberTier
	for i := 0; i < 12; i++ {
		_, err := svc.AddPoints(ctx, nil, 1, 500000, "earn", nil)
		require.NoError(t, err)

		current := users.users[1].MemberTier
		assert.GreaterOrEqual(t, current.Rank(), prev.Rank())
		prev = current
	}
	assert.Equal(t, model.TierGold, prev)
}

func TestRedeemInsufficientBalance(t *testing.T) {
	svc, users, points := newLoyaltyFixture()
	users.users[1] = &model.User{ID: 1, LoyaltyPoints: 100, MemberTier: model.TierBronze}

	err := svc.Redeem(context.Background(), nil, 1, 200, "too much", nil)
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	assert.Equal(t, 100, users.users[1].LoyaltyPoints)
	assert.Empty(t, points.entries)
}

func TestConvertPointsToMoney(t *testing.T) {
	svc, users, points := newLoyaltyFixture()
	users.users[1] = &model.User{ID: 1, LoyaltyPoints: 1000, MemberTier: model.TierBronze}

	value, err := svc.ConvertPointsToMoney(context.Background(), nil, 1, 300, nil)
	require.NoError(t, err)
	assert.Equal(t, 3000.0, value)
	assert.Equal(t, 700, users.users[1].LoyaltyPoints)

	require.Len(t, points.entries, 1)
	assert.Equal(t, -300, points.entries[0].Points)
}

func TestConvertPointsToMoneyRejectsOddAmount(t *testing.T) {
	svc, users, _ := newLoyaltyFixture()
	users.users[1] = &model.User{ID: 1, LoyaltyPoints: 1000, MemberTier: model.TierBronze}

	_, err := svc.ConvertPointsToMoney(context.Background(), nil, 1, 150, nil)
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	assert.Equal(t, 1000, users.users[1].LoyaltyPoints)
}

func TestAwardForBookingOnlyOnce(t *testing.T) {
	svc, users, points := newLoyaltyFixture()
	users.users[1] = &model.User{ID: 1, MemberTier: model.TierBronze}

	first, err := svc.AwardForBooking(context.Background(), nil, 1, 20000, "WTR-20260830-AB12")
	require.NoError(t, err)
	assert.Equal(t, 200, first)

	second, err := svc.AwardForBooking(context.Background(), nil, 1, 20000, "WTR-20260830-AB12")
	require.NoError(t, err)
	assert.Zero(t, second)

	assert.Equal(t, 200, users.users[1].LoyaltyPoints)
	assert.Len(t, points.entries, 1)
}

func TestClawBackClampsToBalance(t *testing.T) {
	svc, users, points := newLoyaltyFixture()
	users.users[1] = &model.User{ID: 1, LoyaltyPoints: 50, MemberTier: model.TierBronze}

	code := "WTR-20260830-CD34"
	deducted, err := svc.ClawBack(context.Background(), nil, 1, 20000, &code)
	require.NoError(t, err)

	// За 20000 было бы 200 баллов, но на балансе только 50
	assert.Equal(t, 50, deducted)
	assert.Zero(t, users.users[1].LoyaltyPoints)

	require.Len(t, points.entries, 1)
	assert.Equal(t, model.PointsAdjusted, points.entries[0].TransactionType)
	assert.Equal(t, -50, points.entries[0].Points)
}

func TestClawBackNothingOnEmptyBalance(t *testing.T) {
	svc, users, points := newLoyaltyFixture()
	users.users[1] = &model.User{ID: 1, MemberTier: model.TierBronze}

	deducted, err := svc.ClawBack(context.Background(), nil, 1, 20000, nil)
	require.NoError(t, err)
	assert.Zero(t, deducted)
	assert.Empty(t, points.entries)
}

func TestLedgerSumMatchesBalance(t *testing.T) {
	svc, users, points := newLoyaltyFixture()
	users.users[1] = &model.User{ID: 1, MemberTier: model.TierBronze}
	ctx := context.Background()

	_, err := svc.AddPoints(ctx, nil, 1, 50000, "earn", nil)
	require.NoError(t, err)
	require.NoError(t, svc.Redeem(ctx, nil, 1, 200, "redeem", nil))
	_, err = svc.ClawBack(ctx, nil, 1, 10000, nil)
	require.NoError(t, err)

	sum, err := points.SumByUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, users.users[1].LoyaltyPoints, sum)
}

func TestStatement(t *testing.T) {
	svc, users, _ := newLoyaltyFixture()
	users.users[1] = &model.User{ID: 1, LoyaltyPoints: 500, MemberTier: model.TierBronze}

	_, err := svc.AddPoints(context.Background(), nil, 1, 10000, "earn", nil)
	require.NoError(t, err)

	user, entries, err := svc.Statement(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 600, user.LoyaltyPoints)
	assert.Len(t, entries, 1)
}

func TestStatementUnknownUser(t *testing.T) {
	svc, _, _ := newLoyaltyFixture()

	_, _, err := svc.Statement(context.Background(), 404)
	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}
