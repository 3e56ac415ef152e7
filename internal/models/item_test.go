package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemCreateValidate(t *testing.T) {
	valid := func() *ItemCreate {
		return &ItemCreate{
			CustomerID:     1,
			Name:           "Gold ring",
			AppraisedValue: decimal.NewFromInt(800),
		}
	}

	assert.NoError(t, valid().Validate())

	item := valid()
	item.Name = "   "
	assert.Error(t, item.Validate())

	item = valid()
	item.CustomerID = 0
	assert.Error(t, item.Validate())

	item = valid()
	item.AppraisedValue = decimal.Zero
	assert.Error(t, item.Validate())
}

func TestItemCanBePawned(t *testing.T) {
	item := (&ItemCreate{CustomerID: 1, Name: "Watch", AppraisedValue: decimal.NewFromInt(300)}).ToItem()
	assert.True(t, item.CanBePawned())

	item.Status = ItemStatusPawned
	assert.False(t, item.CanBePawned())

	item.Status = ItemStatusForfeited
	assert.False(t, item.CanBePawned())

	item.Status = ItemStatusSold
	assert.False(t, item.CanBePawned())
}

func TestItemForfeit(t *testing.T) {
	item := (&ItemCreate{CustomerID: 1, Name: "Watch", AppraisedValue: decimal.NewFromInt(300)}).ToItem()
	item.Status = ItemStatusPawned

	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	price := decimal.NewFromInt(250)
	auctionDate := now.AddDate(0, 0, 14)

	item.Forfeit(now, "loan defaulted", &price, &auctionDate)

	assert.Equal(t, ItemStatusForfeited, item.Status)
	require.NotNil(t, item.ForfeitedDate)
	assert.Equal(t, now, *item.ForfeitedDate)
	assert.Equal(t, "loan defaulted", item.ForfeitureNotes)
	require.NotNil(t, item.AuctionPrice)
	assert.Equal(t, "250.00", item.AuctionPrice.StringFixed(2))
	require.NotNil(t, item.AuctionDate)
	assert.Equal(t, auctionDate, *item.AuctionDate)
}
