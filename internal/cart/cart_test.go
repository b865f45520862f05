package cart

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestSummary_Empty(t *testing.T) {
	assert.Equal(t, EmptySummary, Summary(nil))
	assert.Equal(t, EmptySummary, Summary([]Line{}))
}

func TestSummary_PricedLine(t *testing.T) {
	got := Summary([]Line{{ProductName: "Roti Coklat", Quantity: 2, Price: price("15000")}})
	assert.Equal(t, "• 2x Roti Coklat - Rp 30.000\nTotal: Rp 30.000", got)
}

func TestSummary_UnpricedLinesHaveNoTotal(t *testing.T) {
	got := Summary([]Line{{ProductName: "Brownies", Quantity: 3}})
	assert.Equal(t, "• 3x Brownies", got)
}

func TestSummary_MixedLines(t *testing.T) {
	got := Summary([]Line{
		{ProductName: "Red Velvet Cake", Quantity: 1, Price: price("75000")},
		{ProductName: "Croissant"},
		{ProductName: "Donat", Quantity: 4, Price: price("6500.75")},
	})
	want := "• 1x Red Velvet Cake - Rp 75.000\n" +
		"• 1x Croissant\n" +
		"• 4x Donat - Rp 26.003\n" +
		"Total: Rp 101.003"
	assert.Equal(t, want, got)
}

func TestRupiah_Grouping(t *testing.T) {
	assert.Equal(t, "Rp 0", Rupiah(decimal.Zero))
	assert.Equal(t, "Rp 950", Rupiah(decimal.NewFromInt(950)))
	assert.Equal(t, "Rp 1.250.000", Rupiah(decimal.NewFromInt(1250000)))
}

func TestApply_AddMergesCaseInsensitively(t *testing.T) {
	current := []Line{{ProductName: "Roti Coklat", Quantity: 2, Price: price("15000")}}
	m := Add(Line{ProductName: "roti coklat", Quantity: 3, Price: price("16000")})

	got := m.Apply(current)

	require.Len(t, got, 1)
	assert.Equal(t, "Roti Coklat", got[0].ProductName)
	assert.Equal(t, 5, got[0].Quantity)
	assert.True(t, got[0].Price.Equal(decimal.NewFromInt(16000)))
	// caller's cart untouched
	assert.Equal(t, 2, current[0].Quantity)
	assert.True(t, current[0].Price.Equal(decimal.NewFromInt(15000)))
}

func TestApply_AddAppendsNewProduct(t *testing.T) {
	current := []Line{{ProductName: "Donat", Quantity: 1}}
	got := Add(Line{ProductName: "Brownies", Quantity: 2}).Apply(current)
	require.Len(t, got, 2)
	assert.Equal(t, "Brownies", got[1].ProductName)
	assert.Len(t, current, 1)
}

func TestApply_AddKeepsPriceWhenMutationHasNone(t *testing.T) {
	current := []Line{{ProductName: "Donat", Quantity: 1, Price: price("5000")}}
	got := Add(Line{ProductName: "DONAT", Quantity: 1}).Apply(current)
	require.Len(t, got, 1)
	assert.True(t, got[0].Price.Equal(decimal.NewFromInt(5000)))
}

func TestApply_RemoveAndClear(t *testing.T) {
	current := []Line{
		{ProductName: "Donat", Quantity: 1},
		{ProductName: "Brownies", Quantity: 2},
	}
	got := Remove("donat").Apply(current)
	require.Len(t, got, 1)
	assert.Equal(t, "Brownies", got[0].ProductName)
	assert.Len(t, current, 2)

	assert.Equal(t, current, Remove("Bolu").Apply(current), "removing an absent product is a no-op")
	assert.Empty(t, Clear().Apply(current))

	var none *Mutation
	assert.Equal(t, current, none.Apply(current))
}

func TestMutation_WireForm(t *testing.T) {
	b, err := json.Marshal(Add(Line{ProductName: "Brownies", Quantity: 2, Price: price("25000")}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"add","items":[{"product_name":"Brownies","quantity":2,"price":25000}]}`, string(b))
	assert.Contains(t, string(b), `"price":25000`)

	b, err = json.Marshal(Remove("Donat"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"remove","items":[{"product_name":"Donat"}]}`, string(b))

	b, err = json.Marshal(Clear())
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"clear"}`, string(b))

	var m Mutation
	require.NoError(t, json.Unmarshal([]byte(`{"type":"remove","items":[{"product_name":"Donat"}]}`), &m))
	assert.Equal(t, KindRemove, m.Kind)
	assert.Equal(t, []string{"Donat"}, m.Names)

	assert.Error(t, json.Unmarshal([]byte(`{"type":"explode"}`), &m))
}

func TestLine_PriceAcceptsNumberOrString(t *testing.T) {
	var lines []Line
	require.NoError(t, json.Unmarshal([]byte(`[
		{"product_name":"A","quantity":1,"price":"15000"},
		{"product_name":"B","quantity":2,"price":12500.5},
		{"product_name":"C"}
	]`), &lines))
	require.Len(t, lines, 3)
	assert.True(t, lines[0].Price.Equal(decimal.NewFromInt(15000)))
	assert.True(t, lines[1].Price.Equal(decimal.RequireFromString("12500.5")))
	assert.Nil(t, lines[2].Price)
	assert.Equal(t, 1, lines[2].Qty())
}
