package treasury

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCashRegister(t *testing.T) {
	register, err := NewCashRegister("Caixa Loja 1")
	require.NoError(t, err)

	assert.Equal(t, "Caixa Loja 1", register.Name)
	assert.True(t, register.Balance.IsZero())
	assert.True(t, register.Active)

	_, err = NewCashRegister("")
	assert.Error(t, err)
}

func TestCashRegister_Apply(t *testing.T) {
	register, err := NewCashRegister("Caixa Loja 1")
	require.NoError(t, err)

	register.Apply(decimal.NewFromInt(1000))
	register.Apply(decimal.NewFromInt(-250))

	assert.True(t, register.Balance.Equal(decimal.NewFromInt(750)), "balance was %s", register.Balance)
}

func TestCashRegister_Deactivate(t *testing.T) {
	register, err := NewCashRegister("Caixa Loja 1")
	require.NoError(t, err)

	register.Deactivate()
	assert.False(t, register.Active)
}
