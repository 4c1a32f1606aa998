package balance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/insightdelivered/releve-converter/internal/models"
)

func TestCompute_RoundsHalfAwayFromZero(t *testing.T) {
	b := Compute([]models.Transaction{
		{IsCredit: true, Value: 10.005},
		{IsCredit: false, Value: 3.001},
	})

	assert.Equal(t, "10.01", b.Credit.StringFixed(2))
	assert.Equal(t, "3.00", b.Debit.StringFixed(2))
}

func TestCompute_SumsWithoutFloatDrift(t *testing.T) {
	var txns []models.Transaction
	for i := 0; i < 10; i++ {
		txns = append(txns, models.Transaction{Value: 0.1})
	}
	txns = append(txns, models.Transaction{IsCredit: true, Value: 1234.56})

	b := Compute(txns)
	assert.Equal(t, "1.00", b.Debit.StringFixed(2))
	assert.Equal(t, "1234.56", b.Credit.StringFixed(2))
}

func TestCompute_SkipsParseErrors(t *testing.T) {
	b := Compute([]models.Transaction{
		{Value: 5, ParseError: true},
		{Value: 2.5},
	})
	assert.Equal(t, "2.50", b.Debit.StringFixed(2))
	assert.True(t, b.Credit.IsZero())
}

func TestCompute_Empty(t *testing.T) {
	b := Compute(nil)
	assert.True(t, b.Credit.IsZero())
	assert.True(t, b.Debit.IsZero())
}
